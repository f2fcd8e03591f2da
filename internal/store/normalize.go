package store

import (
	"encoding/json"
	"strings"

	"go.uber.org/zap"

	getsafe "kakao-store-bot/util/get_safe"
)

// Raw metadata reaches us in two historical shapes: camelCase from the survey
// intake path and snake_case from older search-result payloads. Each canonical
// field resolves through an ordered alias list; the first present non-nil
// value wins.
var fieldAliases = map[string][]string{
	"id":        {"surveyId", "survey_id", "id"},
	"name":      {"name"},
	"category":  {"industry", "category"},
	"address":   {"address"},
	"phone":     {"phone"},
	"openHour":  {"openingHourStart", "opening_hour_start"},
	"closeHour": {"openingHourEnd", "opening_hour_end"},
	"strengths": {"strengths"},
	"parking":   {"parkingInfo", "parking_info"},
	"link":      {"snsUrl", "sns_url"},
	"persona":   {"persona"},
}

var (
	latAliases = []string{"latitude", "lat"}
	lonAliases = []string{"longitude", "lng", "lon"}
)

// FromMetadata converts a loosely-typed index payload into a canonical
// Record. It never fails: malformed sub-fields are logged and replaced with
// empty defaults.
func FromMetadata(meta map[string]any) Record {
	rec := Record{
		ID:        pick(meta, fieldAliases["id"]),
		Name:      pick(meta, fieldAliases["name"]),
		Category:  pick(meta, fieldAliases["category"]),
		Address:   pick(meta, fieldAliases["address"]),
		Phone:     pick(meta, fieldAliases["phone"]),
		OpenHour:  pick(meta, fieldAliases["openHour"]),
		CloseHour: pick(meta, fieldAliases["closeHour"]),
		Strengths: pick(meta, fieldAliases["strengths"]),
		Parking:   pick(meta, fieldAliases["parking"]),
		LinkURL:   pick(meta, fieldAliases["link"]),
		Persona:   pick(meta, fieldAliases["persona"]),
		Holidays:  normalizeHolidays(meta["holidays"]),
		Services:  normalizeServices(meta["services"]),
	}

	for _, key := range latAliases {
		if v, ok := getsafe.Float(meta, key); ok {
			lat := v
			rec.Lat = &lat
			break
		}
	}
	for _, key := range lonAliases {
		if v, ok := getsafe.Float(meta, key); ok {
			lon := v
			rec.Lon = &lon
			break
		}
	}

	return rec
}

func pick(meta map[string]any, keys []string) string {
	for _, key := range keys {
		if v, ok := meta[key]; ok && v != nil {
			if s := getsafe.String(meta, key); s != "" {
				return s
			}
		}
	}
	return ""
}

// normalizeHolidays guarantees a slice: an empty raw string means "no
// holidays", not [""].
func normalizeHolidays(raw any) []string {
	switch v := raw.(type) {
	case string:
		if strings.TrimSpace(v) == "" {
			return []string{}
		}
		parts := strings.Split(v, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				out = append(out, trimmed)
			}
		}
		return out
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
				out = append(out, s)
			}
		}
		return out
	default:
		return []string{}
	}
}

// normalizeServices accepts either a structured list or a JSON-encoded string.
// Legacy records were written with single-quoted pseudo-JSON, so quotes are
// repaired before decoding. Parse failures fall back to an empty menu.
func normalizeServices(raw any) []MenuItem {
	switch v := raw.(type) {
	case nil:
		return []MenuItem{}
	case string:
		repaired := strings.ReplaceAll(v, "'", `"`)
		var items []MenuItem
		if err := json.Unmarshal([]byte(repaired), &items); err != nil {
			zap.L().Warn("failed to parse services metadata",
				zap.String("raw", v),
				zap.Error(err))
			return []MenuItem{}
		}
		return items
	case []any:
		items := make([]MenuItem, 0, len(v))
		for _, entry := range v {
			m, ok := entry.(map[string]any)
			if !ok {
				continue
			}
			item := MenuItem{
				Menu:  getsafe.String(m, "menu"),
				Price: m["price"],
			}
			if item.Menu == "" {
				item.Menu = getsafe.String(m, "name")
			}
			if item.Price == nil {
				item.Price = m["amount"]
			}
			if item.Menu != "" {
				items = append(items, item)
			}
		}
		return items
	case []MenuItem:
		return v
	default:
		return []MenuItem{}
	}
}
