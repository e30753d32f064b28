package app

import (
	"strconv"
	"strings"
	"time"

	"gamerental/internal/domain"
)

/********** alias registries (single source of truth) **********/

// The catalog has served two envelope generations (nested `attributes` vs
// flattened) and two field-name generations (English vs the original Spanish
// schema). Every read goes through these registries so the rest of the core
// never sees the drift.

var gameAliases = map[string][]string{
	"name":        {"name", "nombre", "title"},
	"slug":        {"slug"},
	"price":       {"price", "precio"},
	"dailyRate":   {"dailyRate", "daily_rate", "rentPricePerDay", "precio_renta_dia"},
	"fileSizeGB":  {"fileSizeGB", "file_size_gb", "peso_gb"},
	"releaseDate": {"releaseDate", "release_date", "fecha_salida"},
	"synopsis":    {"synopsis", "sinopsis"},
	"cover":       {"cover", "portada"},
	"gallery":     {"gallery", "images", "imagenes"},
	"platforms":   {"platforms", "plataformas"},
}

var platformAliases = map[string][]string{
	"name":        {"name", "nombre"},
	"slug":        {"slug"},
	"releaseDate": {"releaseDate", "release_date", "fecha_lanzamiento"},
	"image":       {"image", "imagen"},
	"games":       {"games", "videojuegos"},
}

var reservationAliases = map[string][]string{
	"game":  {"game.id", "game", "videojuego.id", "videojuego"},
	"start": {"startDate", "start_date", "fecha_inicio"},
	"end":   {"endDate", "end_date", "fecha_fin"},
	"name":  {"customerName", "customer_name", "nombre_cliente"},
	"email": {"customerEmail", "customer_email", "email_cliente"},
	"phone": {"customerPhone", "customer_phone", "telefono"},
}

/********** tiny helpers **********/

// flatten merges a Strapi v4 `attributes` object into the top level so alias
// paths work against either envelope generation. The id stays top-level.
func flatten(m map[string]any) map[string]any {
	attrs, ok := m["attributes"].(map[string]any)
	if !ok {
		return m
	}
	out := make(map[string]any, len(attrs)+1)
	for k, v := range attrs {
		out[k] = v
	}
	if id, ok := m["id"]; ok {
		out["id"] = id
	}
	return out
}

// unwrapData peels `{"data": ...}` relation wrappers, returning the inner
// value (object or slice) or nil when the relation is empty.
func unwrapData(v any) any {
	m, ok := v.(map[string]any)
	if !ok {
		return v
	}
	if inner, ok := m["data"]; ok {
		return inner
	}
	return v
}

// lookupAny: safe nested lookup with dot paths on maps.
func lookupAny(m map[string]any, path string) any {
	cur := any(m)
	for _, part := range strings.Split(path, ".") {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		v, ok := obj[part]
		if !ok {
			return nil
		}
		cur = v
	}
	return cur
}

func lookupStr(m map[string]any, path string) string {
	if v := lookupAny(m, path); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// firstNonEmptyAlias: first non-empty string for a named alias set.
func firstNonEmptyAlias(m map[string]any, aliases map[string][]string, key string) *string {
	for _, p := range aliases[key] {
		if s := lookupStr(m, p); s != "" {
			return &s
		}
	}
	return nil
}

// getFloatFlexible: number from several paths (float64/int/string like "8,0").
func getFloatFlexible(m map[string]any, paths ...string) *float64 {
	for _, k := range paths {
		switch v := lookupAny(m, k).(type) {
		case float64:
			f := v
			return &f
		case int:
			f := float64(v)
			return &f
		case string:
			s := strings.TrimSpace(strings.ReplaceAll(v, ",", "."))
			if s == "" {
				continue
			}
			if f, err := strconv.ParseFloat(s, 64); err == nil {
				return &f
			}
		}
	}
	return nil
}

// firstInt64Flexible: int64 from several paths (float64/int/string).
func firstInt64Flexible(m map[string]any, paths ...string) *int64 {
	for _, k := range paths {
		switch v := lookupAny(m, k).(type) {
		case float64:
			x := int64(v)
			return &x
		case int:
			x := int64(v)
			return &x
		case int64:
			x := v
			return &x
		case string:
			s := strings.TrimSpace(v)
			if s == "" {
				continue
			}
			if n, err := strconv.ParseInt(s, 10, 64); err == nil {
				return &n
			}
		}
	}
	return nil
}

/********** media **********/

// mapImage accepts `{url}`, a v4 relation `{data:{attributes:{url}}}`, or a
// bare string; nil when the relation is empty.
func mapImage(v any) *domain.Image {
	switch t := unwrapData(v).(type) {
	case string:
		if t != "" {
			return &domain.Image{URL: t}
		}
	case map[string]any:
		flat := flatten(t)
		if u := lookupStr(flat, "url"); u != "" {
			return &domain.Image{URL: u}
		}
	}
	return nil
}

func mapImages(v any) []domain.Image {
	raw, ok := unwrapData(v).([]any)
	if !ok {
		return nil
	}
	out := make([]domain.Image, 0, len(raw))
	for _, it := range raw {
		if img := mapImage(it); img != nil {
			out = append(out, *img)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

/********** synopsis **********/

// mapSynopsis flattens rich-text blocks (`[{type, children:[{text}]}]`) to
// one text per block. A plain string becomes a single paragraph.
func mapSynopsis(v any) []domain.ContentBlock {
	switch t := v.(type) {
	case string:
		if t == "" {
			return nil
		}
		return []domain.ContentBlock{{Type: "paragraph", Text: t}}
	case []any:
		out := make([]domain.ContentBlock, 0, len(t))
		for _, b := range t {
			blk, ok := b.(map[string]any)
			if !ok {
				continue
			}
			typ, _ := blk["type"].(string)
			if typ == "" {
				typ = "paragraph"
			}
			var parts []string
			if children, ok := blk["children"].([]any); ok {
				for _, ch := range children {
					if cm, ok := ch.(map[string]any); ok {
						if txt, ok := cm["text"].(string); ok && txt != "" {
							parts = append(parts, txt)
						}
					}
				}
			}
			out = append(out, domain.ContentBlock{Type: typ, Text: strings.Join(parts, "")})
		}
		if len(out) == 0 {
			return nil
		}
		return out
	}
	return nil
}

/********** entity mappers **********/

func mapPlatform(m map[string]any) domain.Platform {
	flat := flatten(m)
	p := domain.Platform{
		Name: deref(firstNonEmptyAlias(flat, platformAliases, "name")),
		Slug: deref(firstNonEmptyAlias(flat, platformAliases, "slug")),
	}
	if id := firstInt64Flexible(flat, "id"); id != nil {
		p.ID = *id
	}
	p.ReleaseDate = firstNonEmptyAlias(flat, platformAliases, "releaseDate")
	for _, k := range platformAliases["image"] {
		if v, ok := flat[k]; ok {
			if img := mapImage(v); img != nil {
				p.Image = img
				break
			}
		}
	}
	return p
}

func mapPlatforms(v any) []domain.Platform {
	raw, ok := unwrapData(v).([]any)
	if !ok {
		return nil
	}
	out := make([]domain.Platform, 0, len(raw))
	for _, it := range raw {
		if m, ok := it.(map[string]any); ok {
			out = append(out, mapPlatform(m))
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func mapGame(m map[string]any) domain.Game {
	flat := flatten(m)
	g := domain.Game{
		Name: deref(firstNonEmptyAlias(flat, gameAliases, "name")),
		Slug: deref(firstNonEmptyAlias(flat, gameAliases, "slug")),
	}
	if id := firstInt64Flexible(flat, "id"); id != nil {
		g.ID = *id
	}
	g.Price = getFloatFlexible(flat, gameAliases["price"]...)
	g.DailyRate = getFloatFlexible(flat, gameAliases["dailyRate"]...)
	g.FileSizeGB = getFloatFlexible(flat, gameAliases["fileSizeGB"]...)
	g.ReleaseDate = firstNonEmptyAlias(flat, gameAliases, "releaseDate")
	for _, k := range gameAliases["synopsis"] {
		if v, ok := flat[k]; ok {
			if blocks := mapSynopsis(v); blocks != nil {
				g.Synopsis = blocks
				break
			}
		}
	}
	for _, k := range gameAliases["cover"] {
		if v, ok := flat[k]; ok {
			if img := mapImage(v); img != nil {
				g.Cover = img
				break
			}
		}
	}
	for _, k := range gameAliases["gallery"] {
		if v, ok := flat[k]; ok {
			if imgs := mapImages(v); imgs != nil {
				g.Gallery = imgs
				break
			}
		}
	}
	for _, k := range gameAliases["platforms"] {
		if v, ok := flat[k]; ok {
			if ps := mapPlatforms(v); ps != nil {
				g.Platforms = ps
				break
			}
		}
	}
	return g
}

func mapGames(v any) []domain.Game {
	raw, ok := unwrapData(v).([]any)
	if !ok {
		return nil
	}
	out := make([]domain.Game, 0, len(raw))
	for _, it := range raw {
		if m, ok := it.(map[string]any); ok {
			out = append(out, mapGame(m))
		}
	}
	return out
}

func mapPlatformDetail(m map[string]any) domain.PlatformDetail {
	flat := flatten(m)
	d := domain.PlatformDetail{Platform: mapPlatform(m)}
	for _, k := range platformAliases["games"] {
		if v, ok := flat[k]; ok {
			if gs := mapGames(v); gs != nil {
				d.Games = gs
				break
			}
		}
	}
	return d
}

// mapReservation normalizes an existing reservation as read back for
// conflict checks. Dates that fail to parse come through zero-valued; the
// availability decision counts rows, it does not re-derive the overlap.
func mapReservation(m map[string]any) domain.Reservation {
	flat := flatten(m)
	var rv domain.Reservation
	if id := firstInt64Flexible(flat, "id"); id != nil {
		rv.ID = *id
	}
	for _, p := range reservationAliases["game"] {
		v := unwrapData(lookupAny(flat, p))
		switch t := v.(type) {
		case float64:
			rv.GameID = int64(t)
		case map[string]any:
			if id := firstInt64Flexible(flatten(t), "id"); id != nil {
				rv.GameID = *id
			}
		}
		if rv.GameID != 0 {
			break
		}
	}
	if s := firstNonEmptyAlias(flat, reservationAliases, "start"); s != nil {
		if t, err := parseDate(*s); err == nil {
			rv.Dates.Start = t
		}
	}
	if s := firstNonEmptyAlias(flat, reservationAliases, "end"); s != nil {
		if t, err := parseDate(*s); err == nil {
			rv.Dates.End = t
		}
	}
	rv.Customer.Name = deref(firstNonEmptyAlias(flat, reservationAliases, "name"))
	rv.Customer.Email = deref(firstNonEmptyAlias(flat, reservationAliases, "email"))
	rv.Customer.Phone = deref(firstNonEmptyAlias(flat, reservationAliases, "phone"))
	return rv
}

func mapReservations(in []map[string]any) []domain.Reservation {
	out := make([]domain.Reservation, 0, len(in))
	for _, m := range in {
		out = append(out, mapReservation(m))
	}
	return out
}

// parseDate accepts plain dates and RFC3339 timestamps (older catalog rows
// stored datetimes).
func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(domain.DateLayout, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
