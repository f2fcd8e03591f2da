package responder

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"kakao-store-bot/generator"
	"kakao-store-bot/internal/service/session"
	"kakao-store-bot/internal/store"
)

type fakeGenerator struct {
	reply string
	err   error

	lastMessages []generator.Message
}

func (f *fakeGenerator) Generate(ctx context.Context, messages []generator.Message) (string, error) {
	f.lastMessages = messages
	return f.reply, f.err
}

func candidates() []store.Record {
	return []store.Record{
		{Name: "한식당", Address: "서울시 강남구", Category: "한식"},
		{Name: "분식집", Address: "서울시 서초구", Category: "분식"},
		{Name: "일식집", Address: "서울시 송파구", Category: "일식"},
	}
}

func TestPickBestMatchParsesIndex(t *testing.T) {
	gen := &fakeGenerator{reply: "2"}
	svc := New(gen, zap.NewNop())

	idx, ok := svc.PickBestMatch(context.Background(), "분식집이요", candidates())

	require.True(t, ok)
	assert.Equal(t, 1, idx)
}

func TestPickBestMatchTrimsWhitespace(t *testing.T) {
	gen := &fakeGenerator{reply: " 3\n"}
	svc := New(gen, zap.NewNop())

	idx, ok := svc.PickBestMatch(context.Background(), "일식", candidates())

	require.True(t, ok)
	assert.Equal(t, 2, idx)
}

func TestPickBestMatchRejectsBadReplies(t *testing.T) {
	cases := map[string]string{
		"zero sentinel": "0",
		"out of range":  "4",
		"negative":      "-1",
		"prose":         "2번이 맞는 것 같아요",
	}

	for name, reply := range cases {
		t.Run(name, func(t *testing.T) {
			svc := New(&fakeGenerator{reply: reply}, zap.NewNop())

			_, ok := svc.PickBestMatch(context.Background(), "아무거나", candidates())
			assert.False(t, ok)
		})
	}
}

func TestPickBestMatchGeneratorFailure(t *testing.T) {
	svc := New(&fakeGenerator{err: errors.New("rate limited")}, zap.NewNop())

	_, ok := svc.PickBestMatch(context.Background(), "한식당", candidates())
	assert.False(t, ok)
}

func TestPickBestMatchEmptyCandidates(t *testing.T) {
	gen := &fakeGenerator{reply: "1"}
	svc := New(gen, zap.NewNop())

	_, ok := svc.PickBestMatch(context.Background(), "한식당", nil)

	assert.False(t, ok)
	assert.Nil(t, gen.lastMessages)
}

func TestReplyBuildsMessages(t *testing.T) {
	gen := &fakeGenerator{reply: "네, 주차 가능합니다."}
	svc := New(gen, zap.NewNop())

	rec := store.Record{
		Name:    "한식당",
		Persona: "무뚝뚝하지만 정 많은 사장님",
		Parking: "건물 뒤 전용 주차장",
	}

	history := []session.Exchange{
		{Role: generator.RoleUser, Text: "영업시간 알려주세요"},
		{Role: generator.RoleAssistant, Text: "오전 10시부터입니다."},
	}

	reply, err := svc.Reply(context.Background(), rec, "주차 되나요?", history)

	require.NoError(t, err)
	assert.Equal(t, "네, 주차 가능합니다.", reply)

	require.Len(t, gen.lastMessages, 4)
	assert.Equal(t, generator.RoleSystem, gen.lastMessages[0].Role)
	assert.Contains(t, gen.lastMessages[0].Content, "한식당")
	assert.Contains(t, gen.lastMessages[0].Content, "무뚝뚝하지만 정 많은 사장님")
	assert.Contains(t, gen.lastMessages[0].Content, "건물 뒤 전용 주차장")
	assert.Equal(t, "영업시간 알려주세요", gen.lastMessages[1].Content)
	assert.Equal(t, "오전 10시부터입니다.", gen.lastMessages[2].Content)
	assert.Equal(t, generator.RoleUser, gen.lastMessages[3].Role)
	assert.Equal(t, "주차 되나요?", gen.lastMessages[3].Content)
}

func TestReplyDefaultsPersonaAndGreeting(t *testing.T) {
	gen := &fakeGenerator{reply: "어서오세요!"}
	svc := New(gen, zap.NewNop())

	_, err := svc.Reply(context.Background(), store.Record{Name: "분식집"}, "  ", nil)
	require.NoError(t, err)

	require.Len(t, gen.lastMessages, 2)
	assert.Contains(t, gen.lastMessages[0].Content, "상냥하고 도움이 되는 분식집 매장 직원")
	assert.Equal(t, defaultGreeting, gen.lastMessages[1].Content)
}

func TestSystemPromptFillsMissingFields(t *testing.T) {
	prompt := systemPrompt(store.Record{
		Name: "한식당",
		Services: []store.MenuItem{
			{Menu: "김치찌개", Price: float64(9000)},
			{Menu: "된장찌개", Price: "8,000"},
		},
	})

	assert.Contains(t, prompt, noInfo)
	assert.Contains(t, prompt, "휴무일: "+noHolidays)
	assert.Contains(t, prompt, "- 김치찌개: 9,000원")
	assert.Contains(t, prompt, "- 된장찌개: 8,000원")
}
