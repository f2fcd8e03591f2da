package dialog

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"kakao-store-bot/generator"
	"kakao-store-bot/geocoder"
	"kakao-store-bot/internal/kakao"
	"kakao-store-bot/internal/service/responder"
	"kakao-store-bot/internal/service/search"
	"kakao-store-bot/internal/service/session"
	"kakao-store-bot/internal/store"
)

const (
	textOnboarding = "안녕하세요! 맛집을 찾아드립니다.\n'근처 맛집 추천해줘' 또는 '한식 맛집 찾아줘'라고 말씀해주세요."
	textNoResults  = "죄송합니다. 검색 결과가 없습니다."
	textPickAgain  = "어떤 가게를 선택하시겠어요? 가게 이름을 말씀해주세요."
	textApology    = "죄송합니다. 오류가 발생했습니다."
)

var triggerKeywords = []string{"추천", "맛집"}

// Turn is one inbound webhook message, distilled from the platform payload.
type Turn struct {
	UserKey     string
	Utterance   string
	Location    string // explicit location slot
	SysLocation string // platform-supplied location slot
	Food        string
	StoreName   string // clientExtra payload from a details button
}

// Service drives the per-user conversation state machine. Branch order is
// load-bearing: search trigger, then selection payload, then LIST
// disambiguation, then DETAIL Q&A, then onboarding. A recommendation
// keyword always starts a fresh search, even mid-DETAIL.
type Service struct {
	search    *search.Service
	sessions  *session.Service
	responder *responder.Service
	geocoder  geocoder.Geocoder
	logger    *zap.Logger

	radiusKm      float64
	topK          int
	detailBlockID string
}

// HandleTurn produces exactly one reply payload for the turn. Internal
// faults never escape; the user sees a generic apology instead. Turns for
// the same user key are serialized through the session store.
func (s *Service) HandleTurn(ctx context.Context, turn Turn) (rsp kakao.Response) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("dialog turn panicked",
				zap.String("user", turn.UserKey),
				zap.Any("panic", r))
			rsp = kakao.SimpleText(textApology)
		}
	}()

	s.sessions.Do(turn.UserKey, func() {
		rsp = s.handle(ctx, turn)
	})

	return rsp
}

func (s *Service) handle(ctx context.Context, turn Turn) kakao.Response {
	utterance := strings.TrimSpace(turn.Utterance)

	if s.isSearchTrigger(utterance, turn) {
		return s.handleSearch(ctx, turn, utterance)
	}

	if turn.StoreName != "" && utterance == "" {
		return s.handleSelection(ctx, turn)
	}

	st, ok := s.sessions.Get(turn.UserKey)

	if ok && st.Mode == session.ModeList && utterance != "" {
		return s.handleDisambiguation(ctx, turn, st, utterance)
	}

	if ok && st.Mode == session.ModeDetail && utterance != "" {
		return s.handleDetailChat(ctx, turn, st, utterance)
	}

	return kakao.SimpleText(textOnboarding)
}

func (s *Service) isSearchTrigger(utterance string, turn Turn) bool {
	for _, kw := range triggerKeywords {
		if strings.Contains(utterance, kw) {
			return true
		}
	}
	return turn.Location != "" || turn.SysLocation != "" || turn.Food != ""
}

func (s *Service) handleSearch(ctx context.Context, turn Turn, utterance string) kakao.Response {
	var point *geocoder.Point
	for _, place := range []string{turn.Location, turn.SysLocation} {
		if strings.TrimSpace(place) == "" {
			continue
		}
		p, err := s.geocoder.Geocode(ctx, place)
		if err != nil {
			s.logger.Warn("geocoding failed",
				zap.String("place", place),
				zap.Error(err))
			continue
		}
		if p != nil {
			point = p
			break
		}
	}

	var results []store.Record
	if point != nil {
		results = s.search.ByLocation(ctx, point.Lat, point.Lon, s.radiusKm, s.topK)
	} else {
		query := joinNonEmpty(utterance, turn.SysLocation, turn.Location, turn.Food)
		results = s.search.ByText(ctx, query, s.topK)
	}

	if len(results) == 0 {
		// existing session stays as-is
		return kakao.SimpleText(textNoResults)
	}

	s.sessions.Put(turn.UserKey, session.State{
		Mode:       session.ModeList,
		Candidates: results,
	})

	return kakao.ListCard(results, s.detailBlockID)
}

// handleSelection is the first turn after the user taps a details button.
// It seeds the DETAIL session from a single-result search and answers with
// a static greeting; no LLM call happens here.
func (s *Service) handleSelection(ctx context.Context, turn Turn) kakao.Response {
	name := strings.TrimSpace(turn.StoreName)

	rec := store.Record{Name: name}
	if results := s.search.ByText(ctx, name, 1); len(results) > 0 {
		rec = results[0]
	}

	s.sessions.Put(turn.UserKey, session.State{
		Mode:     session.ModeDetail,
		Selected: &rec,
		History:  []session.Exchange{},
	})

	return kakao.SimpleText(fmt.Sprintf("안녕하세요! 😊 '%s'입니다.\n무엇을 도와드릴까요?", name))
}

func (s *Service) handleDisambiguation(ctx context.Context, turn Turn, st session.State, utterance string) kakao.Response {
	idx, ok := s.responder.PickBestMatch(ctx, utterance, st.Candidates)
	if !ok {
		// session unchanged; ask again
		return kakao.SimpleText(textPickAgain)
	}

	selected := st.Candidates[idx]

	s.sessions.Put(turn.UserKey, session.State{
		Mode:     session.ModeDetail,
		Selected: &selected,
		History:  []session.Exchange{},
	})

	return kakao.BasicCard(selected)
}

func (s *Service) handleDetailChat(ctx context.Context, turn Turn, st session.State, utterance string) kakao.Response {
	reply, err := s.responder.Reply(ctx, *st.Selected, utterance, st.History)
	if err != nil {
		s.logger.Error("reply generation failed",
			zap.String("user", turn.UserKey),
			zap.Error(err))
		return kakao.SimpleText(textApology)
	}

	st.Append(generator.RoleUser, utterance)
	st.Append(generator.RoleAssistant, reply)
	s.sessions.Put(turn.UserKey, st)

	return kakao.SimpleText(reply)
}

func joinNonEmpty(parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, " ")
}

func New(
	search *search.Service,
	sessions *session.Service,
	responder *responder.Service,
	geocoder geocoder.Geocoder,
	logger *zap.Logger,
	radiusKm float64,
	topK int,
	detailBlockID string,
) *Service {
	if search == nil || sessions == nil || responder == nil || geocoder == nil {
		panic("search, sessions, responder, and geocoder are required")
	}

	if radiusKm <= 0 {
		radiusKm = 5.0
	}

	if topK <= 0 {
		topK = 5
	}

	return &Service{
		search:        search,
		sessions:      sessions,
		responder:     responder,
		geocoder:      geocoder,
		logger:        logger,
		radiusKm:      radiusKm,
		topK:          topK,
		detailBlockID: detailBlockID,
	}
}
