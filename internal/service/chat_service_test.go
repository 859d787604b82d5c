package service

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/AnselmJeong/Flow-v4/internal/config"
	"github.com/AnselmJeong/Flow-v4/internal/domain"
	"github.com/AnselmJeong/Flow-v4/internal/llm"
	"github.com/AnselmJeong/Flow-v4/internal/prompt"
	"github.com/AnselmJeong/Flow-v4/internal/repository"
)

const testAnchor = "시간은 공간화된 개념이 아니라 순수 지속이다."

type fakeGenerator struct {
	reply string
	err   error

	calls    int
	gotTurns []prompt.Turn
	gotCfg   llm.ModelConfig
}

func (f *fakeGenerator) Generate(ctx context.Context, turns []prompt.Turn, cfg llm.ModelConfig) (string, error) {
	f.calls++
	f.gotTurns = turns
	f.gotCfg = cfg
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

type chatFixture struct {
	svc      *ChatService
	sessions *repository.SessionRepository
	settings *repository.SettingsRepository
	session  *domain.Session
}

func newChatFixture(t *testing.T, gen Generator) *chatFixture {
	t.Helper()
	ctx := context.Background()

	cfg := &config.Config{}
	cfg.LLM.Model = "gemini-1.5-flash"

	db, err := repository.NewDB(filepath.Join(t.TempDir(), "flow.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	books := repository.NewBookRepository(db)
	sessions := repository.NewSessionRepository(db)
	settings := repository.NewSettingsRepository(db)

	book := &domain.Book{Title: "창조적 진화", Location: "/books/creative-evolution.epub", Format: domain.FormatEPUB}
	require.NoError(t, books.Create(ctx, book))

	session := &domain.Session{BookID: book.ID, AnchorText: testAnchor}
	require.NoError(t, sessions.Create(ctx, session))

	require.NoError(t, settings.Set(ctx, domain.SettingAPIKey, "test-key"))

	return &chatFixture{
		svc:      NewChatService(cfg, sessions, settings, gen, zap.NewNop()),
		sessions: sessions,
		settings: settings,
		session:  session,
	}
}

func TestSendMessage_FirstTurn(t *testing.T) {
	ctx := context.Background()
	gen := &fakeGenerator{reply: "베르그송은 시계가 재는 시간과 의식이 겪는 시간을 구분합니다."}
	fx := newChatFixture(t, gen)

	outcome, err := fx.svc.SendMessage(ctx, fx.session.ID, "이게 무슨 의미야?")
	require.NoError(t, err)
	require.Nil(t, outcome.Failure)
	assert.Equal(t, "이게 무슨 의미야?", outcome.UserMessage.Body)
	assert.Equal(t, gen.reply, outcome.Assistant.Body)

	// The gateway saw the composed anchor frame.
	require.Len(t, gen.gotTurns, 1)
	assert.True(t, strings.HasPrefix(gen.gotTurns[0].Text, "Passage from the book:"))
	assert.Contains(t, gen.gotTurns[0].Text, testAnchor)
	assert.Contains(t, gen.gotTurns[0].Text, "이게 무슨 의미야?")
	assert.Equal(t, "test-key", gen.gotCfg.APIKey)
	assert.Equal(t, "gemini-1.5-flash", gen.gotCfg.Model)

	// The transcript stores only the raw text, never the composed frame.
	messages, err := fx.sessions.Messages(ctx, fx.session.ID)
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, "이게 무슨 의미야?", messages[0].Body)
	assert.Equal(t, domain.RoleUser, messages[0].Role)
	assert.Equal(t, gen.reply, messages[1].Body)
	assert.Equal(t, domain.RoleAssistant, messages[1].Role)
	assert.NotContains(t, messages[0].Body, "Passage from the book:")
}

func TestSendMessage_SecondTurnReplaysHistory(t *testing.T) {
	ctx := context.Background()
	gen := &fakeGenerator{reply: "첫 번째 답변입니다."}
	fx := newChatFixture(t, gen)

	_, err := fx.svc.SendMessage(ctx, fx.session.ID, "이게 무슨 의미야?")
	require.NoError(t, err)

	gen.reply = "더 쉬운 설명입니다."
	outcome, err := fx.svc.SendMessage(ctx, fx.session.ID, "좀 더 쉽게 설명해줘")
	require.NoError(t, err)
	require.Nil(t, outcome.Failure)

	require.Len(t, gen.gotTurns, 3)
	assert.Contains(t, gen.gotTurns[0].Text, testAnchor)
	assert.Contains(t, gen.gotTurns[0].Text, "이게 무슨 의미야?")
	assert.Equal(t, domain.RoleAssistant, gen.gotTurns[1].Role)
	assert.Equal(t, "첫 번째 답변입니다.", gen.gotTurns[1].Text)
	assert.Equal(t, "좀 더 쉽게 설명해줘", gen.gotTurns[2].Text)

	// Anchor appears exactly once across the outgoing prompt.
	var all strings.Builder
	for _, turn := range gen.gotTurns {
		all.WriteString(turn.Text)
	}
	assert.Equal(t, 1, strings.Count(all.String(), testAnchor))

	messages, err := fx.sessions.Messages(ctx, fx.session.ID)
	require.NoError(t, err)
	assert.Len(t, messages, 4)
}

func TestSendMessage_ProviderFailureRecordedInThread(t *testing.T) {
	ctx := context.Background()
	gen := &fakeGenerator{err: fmt.Errorf("%w: model overloaded", domain.ErrProvider)}
	fx := newChatFixture(t, gen)

	before, err := fx.sessions.Get(ctx, fx.session.ID)
	require.NoError(t, err)
	time.Sleep(10 * time.Millisecond)

	outcome, err := fx.svc.SendMessage(ctx, fx.session.ID, "이게 무슨 의미야?")
	require.NoError(t, err, "a model failure is an outcome, not an error")
	require.NotNil(t, outcome.Failure)
	assert.Equal(t, domain.FailureProvider, outcome.Failure.Kind)
	assert.Contains(t, outcome.Assistant.Body, "rejected")

	// Both the question and the failure notice are durable.
	messages, err := fx.sessions.Messages(ctx, fx.session.ID)
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, domain.RoleUser, messages[0].Role)
	assert.Equal(t, domain.RoleAssistant, messages[1].Role)
	assert.Equal(t, outcome.Assistant.Body, messages[1].Body)

	// The failed turn still counts as activity.
	after, err := fx.sessions.Get(ctx, fx.session.ID)
	require.NoError(t, err)
	assert.True(t, after.UpdatedAt.After(before.UpdatedAt))

	// The notice is replayed verbatim on the next turn like any other message.
	gen.err = nil
	gen.reply = "이제 됩니다."
	_, err = fx.svc.SendMessage(ctx, fx.session.ID, "다시 시도해줘")
	require.NoError(t, err)
	require.Len(t, gen.gotTurns, 3)
	assert.Equal(t, messages[1].Body, gen.gotTurns[1].Text)
}

func TestSendMessage_NotConfigured(t *testing.T) {
	ctx := context.Background()
	// Real gateway: the missing key must short-circuit before any network use.
	fx := newChatFixture(t, llm.NewGateway("http://127.0.0.1:1"))
	require.NoError(t, fx.settings.Set(ctx, domain.SettingAPIKey, ""))

	outcome, err := fx.svc.SendMessage(ctx, fx.session.ID, "누구 없어요?")
	require.NoError(t, err)
	require.NotNil(t, outcome.Failure)
	assert.Equal(t, domain.FailureNotConfigured, outcome.Failure.Kind)
	assert.Contains(t, outcome.Assistant.Body, "Settings")

	messages, err := fx.sessions.Messages(ctx, fx.session.ID)
	require.NoError(t, err)
	assert.Len(t, messages, 2, "the question stays on record even without a configured key")
}

func TestSendMessage_EmptyGeneration(t *testing.T) {
	ctx := context.Background()
	gen := &fakeGenerator{err: domain.ErrEmptyGeneration}
	fx := newChatFixture(t, gen)

	outcome, err := fx.svc.SendMessage(ctx, fx.session.ID, "질문")
	require.NoError(t, err)
	require.NotNil(t, outcome.Failure)
	assert.Equal(t, domain.FailureEmptyGeneration, outcome.Failure.Kind)
}

func TestSendMessage_EmptyText(t *testing.T) {
	ctx := context.Background()
	gen := &fakeGenerator{reply: "unused"}
	fx := newChatFixture(t, gen)

	_, err := fx.svc.SendMessage(ctx, fx.session.ID, "   ")
	assert.ErrorIs(t, err, domain.ErrEmptyMessage)

	messages, err := fx.sessions.Messages(ctx, fx.session.ID)
	require.NoError(t, err)
	assert.Empty(t, messages)
	assert.Equal(t, 0, gen.calls)
}

func TestSendMessage_MissingSession(t *testing.T) {
	gen := &fakeGenerator{reply: "unused"}
	fx := newChatFixture(t, gen)

	_, err := fx.svc.SendMessage(context.Background(), "no-such-session", "hello")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	assert.Equal(t, 0, gen.calls)
}

func TestSendMessage_ModelOverrideFromSettings(t *testing.T) {
	ctx := context.Background()
	gen := &fakeGenerator{reply: "ok"}
	fx := newChatFixture(t, gen)
	require.NoError(t, fx.settings.Set(ctx, domain.SettingModel, "gemini-1.5-pro"))

	_, err := fx.svc.SendMessage(ctx, fx.session.ID, "질문")
	require.NoError(t, err)
	assert.Equal(t, "gemini-1.5-pro", gen.gotCfg.Model)
}
