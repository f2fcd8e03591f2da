package store

import (
	"fmt"
	"strconv"
	"strings"
)

// MenuItem is one entry of a store's menu. Price is kept as whatever the
// index stored (number or pre-formatted string) and only rendered at the
// presentation boundary via FormatPrice.
type MenuItem struct {
	Menu  string `json:"menu"`
	Price any    `json:"price"`
}

// Record is the canonical store entity shared by search results, session
// state, and the survey lookup path. Holidays and Services are never nil
// after normalization.
type Record struct {
	ID         string     `json:"surveyId"`
	Name       string     `json:"name"`
	Category   string     `json:"industry"`
	Address    string     `json:"address"`
	Phone      string     `json:"phone"`
	OpenHour   string     `json:"openingHourStart"`
	CloseHour  string     `json:"openingHourEnd"`
	Holidays   []string   `json:"holidays"`
	Services   []MenuItem `json:"services"`
	Strengths  string     `json:"strengths"`
	Parking    string     `json:"parkingInfo"`
	LinkURL    string     `json:"snsUrl"`
	Persona    string     `json:"persona,omitempty"`
	Lat        *float64   `json:"latitude,omitempty"`
	Lon        *float64   `json:"longitude,omitempty"`
	Score      float64    `json:"score,omitempty"`
	DistanceKm *float64   `json:"distanceKm,omitempty"`
}

func (r Record) HasCoordinates() bool {
	return r.Lat != nil && r.Lon != nil
}

// FormatPrice renders numeric prices with thousands separators ("12500" is
// stored, "12,500" is shown). String prices pass through verbatim.
func FormatPrice(price any) string {
	switch p := price.(type) {
	case nil:
		return ""
	case int:
		return groupDigits(int64(p))
	case int64:
		return groupDigits(p)
	case float64:
		if p == float64(int64(p)) {
			return groupDigits(int64(p))
		}
		return strconv.FormatFloat(p, 'f', -1, 64)
	case string:
		return p
	default:
		return fmt.Sprintf("%v", p)
	}
}

func groupDigits(n int64) string {
	s := strconv.FormatInt(n, 10)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	var b strings.Builder
	for i, d := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(d)
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}
