// Package prompt rebuilds the outgoing conversation for a session from its
// anchor passage and stored transcript. The provider is stateless across
// calls, so the whole history is resent every turn; the anchor passage is
// woven into the first user turn and must appear there exactly once, no
// matter how many turns have passed.
package prompt

import (
	"strings"

	"github.com/AnselmJeong/Flow-v4/internal/domain"
)

// First-turn frame. The anchor passage is materialized here and nowhere else.
const (
	openingHeader    = "Passage from the book:"
	openingDelimiter = `"""`
)

// Turn is one role-tagged entry in an outgoing prompt sequence.
type Turn struct {
	Role domain.Role
	Text string
}

// Assembly is the reconstructed prompt for one model call. Anchored is false
// only when the stored transcript did not begin with a user turn and the
// history was replayed verbatim instead of re-framed; callers should log that
// as a data-integrity condition.
type Assembly struct {
	Turns    []Turn
	Anchored bool
}

// Compose renders the fixed first-turn template from the anchor passage and a
// question. It is a pure function: the composed text is never stored, so the
// template can change without a data migration.
func Compose(anchor, question string) string {
	var b strings.Builder
	b.WriteString(openingHeader)
	b.WriteString("\n")
	b.WriteString(openingDelimiter)
	b.WriteString("\n")
	b.WriteString(anchor)
	b.WriteString("\n")
	b.WriteString(openingDelimiter)
	b.WriteString("\n\n")
	b.WriteString(question)
	return b.String()
}

// Assemble rebuilds the full prompt sequence for a session's next turn.
//
// The first turn of a session is the composed anchor+question frame. On later
// turns that frame is recomposed from the anchor and the first stored user
// message, the rest of the history is replayed verbatim in order, and the new
// user text is appended unframed as the final turn.
func Assemble(anchorText string, history []*domain.Message, newUserText string) (Assembly, error) {
	if strings.TrimSpace(anchorText) == "" {
		return Assembly{}, domain.ErrEmptyAnchor
	}

	if len(history) == 0 {
		return Assembly{
			Turns:    []Turn{{Role: domain.RoleUser, Text: Compose(anchorText, newUserText)}},
			Anchored: true,
		}, nil
	}

	if history[0].Role != domain.RoleUser {
		// Broken transcript head. Replay it untouched rather than fabricate
		// an anchor turn that was never part of the real conversation.
		turns := make([]Turn, 0, len(history)+1)
		for _, m := range history {
			turns = append(turns, Turn{Role: m.Role, Text: m.Body})
		}
		turns = append(turns, Turn{Role: domain.RoleUser, Text: newUserText})
		return Assembly{Turns: turns, Anchored: false}, nil
	}

	turns := make([]Turn, 0, len(history)+1)
	turns = append(turns, Turn{Role: domain.RoleUser, Text: Compose(anchorText, history[0].Body)})
	for _, m := range history[1:] {
		turns = append(turns, Turn{Role: m.Role, Text: m.Body})
	}
	turns = append(turns, Turn{Role: domain.RoleUser, Text: newUserText})

	return Assembly{Turns: turns, Anchored: true}, nil
}
