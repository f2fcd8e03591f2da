package responder

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"kakao-store-bot/generator"
	"kakao-store-bot/internal/service/session"
	"kakao-store-bot/internal/store"
)

const (
	matchSystemPrompt = "당신은 사용자의 질문을 분석하여 적절한 상점을 찾아주는 어시스턴트입니다."

	noInfo          = "정보 없음"
	noHolidays      = "없음"
	noMenu          = "- (등록된 메뉴 정보가 없습니다)"
	defaultGreeting = "안녕하세요. 무엇을 도와드릴까요?"
)

// Service wraps the two LLM operations of the bot: mapping a free-text
// utterance to one of the listed candidates, and answering in a store's
// persona.
type Service struct {
	generator generator.Generator
	logger    *zap.Logger
}

// PickBestMatch asks the model which candidate the utterance refers to. The
// model answers a single 1-based integer, 0 meaning "none". Any reply that
// does not parse to an in-range index means "no match", never an error.
func (s *Service) PickBestMatch(ctx context.Context, utterance string, candidates []store.Record) (int, bool) {
	if len(candidates) == 0 {
		return 0, false
	}

	var list strings.Builder
	for i, c := range candidates {
		list.WriteString(fmt.Sprintf("%d. %s - %s (%s)\n", i+1, c.Name, c.Address, c.Category))
	}

	prompt := fmt.Sprintf(`다음은 사용자가 찾고 있는 상점 목록입니다:
%s
사용자 질문: "%s"

위 목록에서 사용자가 찾는 상점의 번호만 숫자로 답변해주세요.
만약 명확하지 않다면 0을 반환하세요.`, list.String(), utterance)

	reply, err := s.generator.Generate(ctx, []generator.Message{
		{Role: generator.RoleSystem, Content: matchSystemPrompt},
		{Role: generator.RoleUser, Content: prompt},
	})
	if err != nil {
		s.logger.Warn("best-match generation failed", zap.Error(err))
		return 0, false
	}

	n, err := strconv.Atoi(strings.TrimSpace(reply))
	if err != nil {
		return 0, false
	}

	idx := n - 1
	if idx < 0 || idx >= len(candidates) {
		return 0, false
	}

	return idx, true
}

// Reply answers the utterance as the store's virtual clerk, conditioned on
// its normalized profile and the prior exchange history.
func (s *Service) Reply(ctx context.Context, rec store.Record, utterance string, history []session.Exchange) (string, error) {
	messages := make([]generator.Message, 0, len(history)+2)
	messages = append(messages, generator.Message{
		Role:    generator.RoleSystem,
		Content: systemPrompt(rec),
	})

	for _, ex := range history {
		messages = append(messages, generator.Message{
			Role:    ex.Role,
			Content: ex.Text,
		})
	}

	if strings.TrimSpace(utterance) == "" {
		utterance = defaultGreeting
	}
	messages = append(messages, generator.Message{
		Role:    generator.RoleUser,
		Content: utterance,
	})

	return s.generator.Generate(ctx, messages)
}

func systemPrompt(rec store.Record) string {
	name := rec.Name
	if name == "" {
		name = "가게"
	}

	persona := rec.Persona
	if persona == "" {
		persona = fmt.Sprintf("상냥하고 도움이 되는 %s 매장 직원", name)
	}

	holidays := noHolidays
	if len(rec.Holidays) > 0 {
		holidays = strings.Join(rec.Holidays, ", ")
	}

	menu := noMenu
	if len(rec.Services) > 0 {
		var lines []string
		for _, item := range rec.Services {
			if item.Menu == "" {
				continue
			}
			line := "- " + item.Menu
			if price := store.FormatPrice(item.Price); price != "" {
				line += ": " + price + "원"
			}
			lines = append(lines, line)
		}
		if len(lines) > 0 {
			menu = strings.Join(lines, "\n")
		}
	}

	return fmt.Sprintf(`당신은 '%s'의 친절한 챗봇 상담원입니다.
%s에 맞게 답변해주어야 합니다.

[상점 정보]
- 상점명: %s
- 업종: %s
- 주소: %s
- 전화번호: %s
- 영업시간: %s ~ %s
- 휴무일: %s
- 메뉴:
%s
- 강점: %s
- 주차정보: %s
- SNS: %s

위 정보를 바탕으로 고객의 질문에 친절하고 정확하게 답변해주세요.
정보가 없는 경우 솔직하게 알려주세요.`,
		name, persona, name,
		orNoInfo(rec.Category), orNoInfo(rec.Address), orNoInfo(rec.Phone),
		rec.OpenHour, rec.CloseHour, holidays, menu,
		orNoInfo(rec.Strengths), orNoInfo(rec.Parking), orNoInfo(rec.LinkURL))
}

func orNoInfo(v string) string {
	if strings.TrimSpace(v) == "" {
		return noInfo
	}
	return v
}

func New(generator generator.Generator, logger *zap.Logger) *Service {
	if generator == nil {
		panic("generator is required")
	}

	return &Service{
		generator: generator,
		logger:    logger,
	}
}
