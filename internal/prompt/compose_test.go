package prompt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AnselmJeong/Flow-v4/internal/domain"
)

const bergsonAnchor = "시간은 공간화된 개념이 아니라 순수 지속이다. 우리는 시간을 측정하는 순간 그것을 공간으로 번역해버린다."

func msg(role domain.Role, body string) *domain.Message {
	return &domain.Message{Role: role, Body: body}
}

func joined(a Assembly) string {
	var b strings.Builder
	for _, t := range a.Turns {
		b.WriteString(t.Text)
		b.WriteString("\n")
	}
	return b.String()
}

func TestCompose(t *testing.T) {
	got := Compose("some passage", "what does this mean?")

	want := "Passage from the book:\n\"\"\"\nsome passage\n\"\"\"\n\nwhat does this mean?"
	assert.Equal(t, want, got)
}

func TestAssemble_FirstTurn(t *testing.T) {
	question := "이게 무슨 의미야?"

	a, err := Assemble(bergsonAnchor, nil, question)
	require.NoError(t, err)
	require.Len(t, a.Turns, 1)
	assert.True(t, a.Anchored)

	turn := a.Turns[0]
	assert.Equal(t, domain.RoleUser, turn.Role)
	assert.True(t, strings.HasPrefix(turn.Text, "Passage from the book:"))
	assert.Contains(t, turn.Text, bergsonAnchor)
	assert.True(t, strings.HasSuffix(turn.Text, question))
}

func TestAssemble_SecondTurn(t *testing.T) {
	history := []*domain.Message{
		msg(domain.RoleUser, "이게 무슨 의미야?"),
		msg(domain.RoleAssistant, "베르그송은 시계가 재는 시간과 의식이 겪는 시간을 구분합니다."),
	}

	a, err := Assemble(bergsonAnchor, history, "좀 더 쉽게 설명해줘")
	require.NoError(t, err)
	require.Len(t, a.Turns, 3)
	assert.True(t, a.Anchored)

	// First turn is recomposed from the anchor and the first stored question.
	assert.Equal(t, domain.RoleUser, a.Turns[0].Role)
	assert.Equal(t, Compose(bergsonAnchor, "이게 무슨 의미야?"), a.Turns[0].Text)

	// The rest of the history is replayed verbatim.
	assert.Equal(t, domain.RoleAssistant, a.Turns[1].Role)
	assert.Equal(t, history[1].Body, a.Turns[1].Text)

	// The new question rides unframed at the end.
	assert.Equal(t, domain.RoleUser, a.Turns[2].Role)
	assert.Equal(t, "좀 더 쉽게 설명해줘", a.Turns[2].Text)

	// The anchor is injected exactly once no matter how long the thread gets.
	assert.Equal(t, 1, strings.Count(joined(a), bergsonAnchor))
}

func TestAssemble_AnchorInjectedOnceOnLongThreads(t *testing.T) {
	var history []*domain.Message
	for i := 0; i < 6; i++ {
		history = append(history, msg(domain.RoleUser, "질문"))
		history = append(history, msg(domain.RoleAssistant, "답변"))
	}

	a, err := Assemble(bergsonAnchor, history, "마지막 질문")
	require.NoError(t, err)
	require.Len(t, a.Turns, 13)
	assert.Equal(t, 1, strings.Count(joined(a), bergsonAnchor))
}

func TestAssemble_PreservesHistoryOrder(t *testing.T) {
	history := []*domain.Message{
		msg(domain.RoleUser, "first question"),
		msg(domain.RoleAssistant, "first answer"),
		msg(domain.RoleUser, "second question"),
		msg(domain.RoleAssistant, "second answer"),
	}

	a, err := Assemble("anchor passage", history, "third question")
	require.NoError(t, err)
	require.Len(t, a.Turns, 5)

	wantRoles := []domain.Role{
		domain.RoleUser, domain.RoleAssistant, domain.RoleUser, domain.RoleAssistant, domain.RoleUser,
	}
	for i, want := range wantRoles {
		assert.Equal(t, want, a.Turns[i].Role, "turn %d role", i)
	}
	assert.Equal(t, "first answer", a.Turns[1].Text)
	assert.Equal(t, "second question", a.Turns[2].Text)
	assert.Equal(t, "second answer", a.Turns[3].Text)
	assert.Equal(t, "third question", a.Turns[4].Text)
}

func TestAssemble_EmptyAnchor(t *testing.T) {
	_, err := Assemble("   \n\t", nil, "question")
	assert.ErrorIs(t, err, domain.ErrEmptyAnchor)
}

func TestAssemble_AssistantFirstHistoryReplayedVerbatim(t *testing.T) {
	history := []*domain.Message{
		msg(domain.RoleAssistant, "orphaned answer"),
		msg(domain.RoleUser, "follow-up"),
	}

	a, err := Assemble(bergsonAnchor, history, "new question")
	require.NoError(t, err)
	require.Len(t, a.Turns, 3)
	assert.False(t, a.Anchored)

	// No anchor frame is fabricated for a transcript that never had one.
	assert.Equal(t, "orphaned answer", a.Turns[0].Text)
	assert.Equal(t, "follow-up", a.Turns[1].Text)
	assert.Equal(t, "new question", a.Turns[2].Text)
	assert.NotContains(t, joined(a), bergsonAnchor)
}
