package app

import (
	"testing"

	"gamerental/internal/domain"
)

func TestMapGame_FlatPayload(t *testing.T) {
	raw := map[string]any{
		"id":          42.0,
		"name":        "Star Drift",
		"slug":        "star-drift",
		"price":       59.99,
		"dailyRate":   4.5,
		"fileSizeGB":  72.3,
		"releaseDate": "2025-11-20",
		"synopsis": []any{
			map[string]any{"type": "paragraph", "children": []any{
				map[string]any{"type": "text", "text": "An open-galaxy racer."},
			}},
		},
		"cover":   map[string]any{"url": "/uploads/star-drift.png"},
		"gallery": []any{map[string]any{"url": "/uploads/s1.png"}, map[string]any{"url": "/uploads/s2.png"}},
		"platforms": []any{
			map[string]any{"id": 3.0, "name": "Nebula X", "slug": "nebula-x"},
		},
	}

	g := mapGame(raw)
	if g.ID != 42 || g.Name != "Star Drift" || g.Slug != "star-drift" {
		t.Fatalf("identity fields: %+v", g)
	}
	if g.Price == nil || *g.Price != 59.99 {
		t.Fatalf("price: %v", g.Price)
	}
	if g.DailyRate == nil || *g.DailyRate != 4.5 {
		t.Fatalf("daily rate: %v", g.DailyRate)
	}
	if g.Cover == nil || g.Cover.URL != "/uploads/star-drift.png" {
		t.Fatalf("cover: %+v", g.Cover)
	}
	if len(g.Gallery) != 2 {
		t.Fatalf("gallery: %+v", g.Gallery)
	}
	if len(g.Synopsis) != 1 || g.Synopsis[0].Text != "An open-galaxy racer." {
		t.Fatalf("synopsis: %+v", g.Synopsis)
	}
	if len(g.Platforms) != 1 || g.Platforms[0].Slug != "nebula-x" {
		t.Fatalf("platforms: %+v", g.Platforms)
	}
}

func TestMapGame_NestedLegacyPayload(t *testing.T) {
	// Older envelope generation: `attributes` nesting, Spanish field names,
	// relations wrapped in `data`.
	raw := map[string]any{
		"id": 7.0,
		"attributes": map[string]any{
			"nombre":           "Cazador de Sombras",
			"slug":             "cazador-de-sombras",
			"precio":           "49,99",
			"precio_renta_dia": 3.0,
			"peso_gb":          88.0,
			"fecha_salida":     "2024-06-01",
			"sinopsis":         "Aventura de sigilo.",
			"cover": map[string]any{
				"data": map[string]any{"attributes": map[string]any{"url": "/uploads/sombras.png"}},
			},
			"plataformas": map[string]any{
				"data": []any{
					map[string]any{"id": 1.0, "attributes": map[string]any{
						"nombre": "RetroBox", "slug": "retrobox", "fecha_lanzamiento": "2013-11-15",
					}},
				},
			},
		},
	}

	g := mapGame(raw)
	if g.ID != 7 || g.Name != "Cazador de Sombras" {
		t.Fatalf("identity fields: %+v", g)
	}
	if g.Price == nil || *g.Price != 49.99 {
		t.Fatalf("comma-decimal price: %v", g.Price)
	}
	if g.DailyRate == nil || *g.DailyRate != 3.0 {
		t.Fatalf("legacy daily rate: %v", g.DailyRate)
	}
	if g.FileSizeGB == nil || *g.FileSizeGB != 88.0 {
		t.Fatalf("legacy file size: %v", g.FileSizeGB)
	}
	if g.Cover == nil || g.Cover.URL != "/uploads/sombras.png" {
		t.Fatalf("nested cover relation: %+v", g.Cover)
	}
	if len(g.Synopsis) != 1 || g.Synopsis[0].Text != "Aventura de sigilo." {
		t.Fatalf("string synopsis: %+v", g.Synopsis)
	}
	if len(g.Platforms) != 1 || g.Platforms[0].Name != "RetroBox" {
		t.Fatalf("legacy platforms relation: %+v", g.Platforms)
	}
	if g.Platforms[0].ReleaseDate == nil || *g.Platforms[0].ReleaseDate != "2013-11-15" {
		t.Fatalf("platform release date: %+v", g.Platforms[0])
	}
}

func TestMapGame_AbsentOptionalFields(t *testing.T) {
	g := mapGame(map[string]any{"id": 5.0, "name": "Bare", "slug": "bare",
		"cover":   map[string]any{"data": nil},
		"gallery": map[string]any{"data": []any{}},
	})
	if g.Cover != nil {
		t.Fatalf("empty cover relation must map to nil, got %+v", g.Cover)
	}
	if g.Gallery != nil {
		t.Fatalf("empty gallery must map to nil, got %+v", g.Gallery)
	}
	if g.Price != nil || g.Synopsis != nil || g.Platforms != nil {
		t.Fatalf("absent fields must stay zero: %+v", g)
	}
}

func TestMapReservation_BothFieldGenerations(t *testing.T) {
	modern := mapReservation(map[string]any{
		"id":            9.0,
		"game":          map[string]any{"data": map[string]any{"id": 42.0}},
		"startDate":     "2026-01-10",
		"endDate":       "2026-01-15",
		"customerName":  "Ana",
		"customerEmail": "a@b.com",
		"customerPhone": "5512345678",
	})
	if modern.GameID != 42 || modern.Customer.Name != "Ana" {
		t.Fatalf("modern shape: %+v", modern)
	}
	if modern.Dates.Start.Format(domain.DateLayout) != "2026-01-10" {
		t.Fatalf("modern start date: %v", modern.Dates.Start)
	}

	legacy := mapReservation(map[string]any{
		"id": 10.0,
		"attributes": map[string]any{
			"videojuego":     map[string]any{"data": map[string]any{"id": 42.0}},
			"fecha_inicio":   "2026-01-10T00:00:00.000Z",
			"fecha_fin":      "2026-01-15T00:00:00.000Z",
			"nombre_cliente": "Luis",
			"email_cliente":  "l@c.com",
			"telefono":       "5587654321",
		},
	})
	if legacy.GameID != 42 || legacy.Customer.Name != "Luis" {
		t.Fatalf("legacy shape: %+v", legacy)
	}
	if legacy.Dates.End.Format(domain.DateLayout) != "2026-01-15" {
		t.Fatalf("legacy datetime end date: %v", legacy.Dates.End)
	}
}

func TestMapPlatformDetail(t *testing.T) {
	d := mapPlatformDetail(map[string]any{
		"id":    3.0,
		"name":  "Nebula X",
		"slug":  "nebula-x",
		"image": map[string]any{"url": "/uploads/nebula.png"},
		"games": []any{
			map[string]any{"id": 42.0, "name": "Star Drift", "slug": "star-drift"},
			map[string]any{"id": 43.0, "name": "Moon Haul", "slug": "moon-haul"},
		},
	})
	if d.Platform.ID != 3 || d.Platform.Image == nil {
		t.Fatalf("platform: %+v", d.Platform)
	}
	if len(d.Games) != 2 || d.Games[1].Slug != "moon-haul" {
		t.Fatalf("games: %+v", d.Games)
	}
}
