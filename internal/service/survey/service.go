package survey

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"kakao-store-bot/embedder"
	"kakao-store-bot/index"
	"kakao-store-bot/internal/store"
)

// Submission is the survey intake payload for one store.
type Submission struct {
	SurveyID  string           `json:"surveyId"`
	Name      string           `json:"name"`
	Industry  string           `json:"industry"`
	Address   string           `json:"address"`
	Phone     string           `json:"phone"`
	OpenHour  string           `json:"openingHourStart"`
	CloseHour string           `json:"openingHourEnd"`
	Holidays  []string         `json:"holidays"`
	Services  []store.MenuItem `json:"services"`
	Strengths string           `json:"strengths"`
	Parking   string           `json:"parkingInfo"`
	LinkURL   string           `json:"snsUrl"`
	Persona   string           `json:"persona"`
	Lat       *float64         `json:"latitude"`
	Lon       *float64         `json:"longitude"`
}

func (sub Submission) Validate() error {
	if strings.TrimSpace(sub.SurveyID) == "" {
		return fmt.Errorf("surveyId is required")
	}
	if strings.TrimSpace(sub.Name) == "" {
		return fmt.Errorf("name is required")
	}
	return nil
}

// Service registers stores into the vector index and looks them back up.
type Service struct {
	embedder embedder.Embedder
	index    index.Index
	logger   *zap.Logger
}

// Register serializes the submission into a descriptive text blob, embeds
// it, and upserts it with normalized metadata under the survey id.
func (s *Service) Register(ctx context.Context, sub Submission) error {
	if err := sub.Validate(); err != nil {
		return err
	}

	blob := describe(sub)

	vector, err := s.embedder.Embed(ctx, blob)
	if err != nil {
		return fmt.Errorf("embedding store profile: %w", err)
	}

	if err := s.index.Upsert(ctx, sub.SurveyID, vector, metadata(sub)); err != nil {
		return fmt.Errorf("upserting store: %w", err)
	}

	s.logger.Info("store registered",
		zap.String("survey_id", sub.SurveyID),
		zap.String("name", sub.Name))

	return nil
}

// GetByID fetches one record and re-normalizes its metadata. A nil record
// with nil error means "not found".
func (s *Service) GetByID(ctx context.Context, id string) (*store.Record, error) {
	match, err := s.index.Fetch(ctx, id)
	if err != nil {
		return nil, err
	}
	if match == nil {
		return nil, nil
	}

	rec := store.FromMetadata(match.Metadata)
	if rec.ID == "" {
		rec.ID = match.ID
	}

	return &rec, nil
}

// describe renders the searchable text the embedding is computed over.
func describe(sub Submission) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s은(는) %s에 위치한 %s 매장입니다.\n", sub.Name, sub.Address, sub.Industry)
	fmt.Fprintf(&b, "영업시간은 %s부터 %s까지입니다.\n", sub.OpenHour, sub.CloseHour)

	if len(sub.Holidays) > 0 {
		fmt.Fprintf(&b, "휴무일: %s\n", strings.Join(sub.Holidays, ", "))
	}

	if len(sub.Services) > 0 {
		b.WriteString("대표 메뉴: ")
		names := make([]string, 0, len(sub.Services))
		for _, item := range sub.Services {
			if item.Menu != "" {
				names = append(names, item.Menu)
			}
		}
		b.WriteString(strings.Join(names, ", "))
		b.WriteString("\n")
	}

	if sub.Strengths != "" {
		fmt.Fprintf(&b, "강점: %s\n", sub.Strengths)
	}
	if sub.Parking != "" {
		fmt.Fprintf(&b, "주차: %s\n", sub.Parking)
	}

	return b.String()
}

// metadata flattens the submission into the index payload. The services
// list is JSON-encoded and holidays joined by commas; the normalizer
// reverses both on the way out.
func metadata(sub Submission) map[string]any {
	services := "[]"
	if raw, err := json.Marshal(sub.Services); err == nil {
		services = string(raw)
	}

	meta := map[string]any{
		"surveyId":         sub.SurveyID,
		"name":             sub.Name,
		"industry":         sub.Industry,
		"address":          sub.Address,
		"phone":            sub.Phone,
		"openingHourStart": sub.OpenHour,
		"openingHourEnd":   sub.CloseHour,
		"holidays":         strings.Join(sub.Holidays, ","),
		"services":         services,
		"strengths":        sub.Strengths,
		"parkingInfo":      sub.Parking,
		"snsUrl":           sub.LinkURL,
	}

	if sub.Persona != "" {
		meta["persona"] = sub.Persona
	}
	if sub.Lat != nil && sub.Lon != nil {
		meta["latitude"] = *sub.Lat
		meta["longitude"] = *sub.Lon
	}

	return meta
}

func New(embedder embedder.Embedder, index index.Index, logger *zap.Logger) *Service {
	if embedder == nil {
		panic("embedder is required")
	}

	if index == nil {
		panic("index is required")
	}

	return &Service{
		embedder: embedder,
		index:    index,
		logger:   logger,
	}
}
