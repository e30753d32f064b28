package domain

// Image is a reference to a catalog-hosted asset. URLs are passed through
// verbatim; this service never fetches or transforms image bytes.
type Image struct {
	URL string `json:"url"`
}

// ContentBlock is one block of the rich-text synopsis, flattened to plain
// text. The catalog stores nested span children; the mapper joins them.
type ContentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type Platform struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Slug        string  `json:"slug"`
	ReleaseDate *string `json:"releaseDate,omitempty"`
	Image       *Image  `json:"image,omitempty"`
}

type Game struct {
	ID          int64          `json:"id"`
	Name        string         `json:"name"`
	Slug        string         `json:"slug"`
	Price       *float64       `json:"price,omitempty"`
	DailyRate   *float64       `json:"dailyRate,omitempty"`
	FileSizeGB  *float64       `json:"fileSizeGB,omitempty"`
	ReleaseDate *string        `json:"releaseDate,omitempty"`
	Synopsis    []ContentBlock `json:"synopsis,omitempty"`
	Cover       *Image         `json:"cover,omitempty"`
	Gallery     []Image        `json:"gallery,omitempty"`
	Platforms   []Platform     `json:"platforms,omitempty"`
}

// PlatformDetail is the read model for a platform page: the platform itself
// plus the games released on it.
type PlatformDetail struct {
	Platform Platform `json:"platform"`
	Games    []Game   `json:"games"`
}

// GamesQuery narrows a game listing. Zero value lists everything.
type GamesQuery struct {
	PlatformID *int64
}
