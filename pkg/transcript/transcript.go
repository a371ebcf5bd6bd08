// Package transcript models the conversation as an append-only sequence of
// turns, built by a pure reducer over inbound data-channel events.
package transcript

import "github.com/kaikura/voicecafe/pkg/protocol"

// Role identifies the author of a turn.
type Role string

const (
	RoleAssistant Role = "assistant"
	RoleUser      Role = "user"
)

// Turn is a single display unit in the conversation.
type Turn struct {
	Role Role   `json:"role"`
	Text string `json:"text"`
	Done bool   `json:"done"`
}

// Transcript is an ordered sequence of turns. At most one assistant turn
// is open (Done == false) at any time, and it is always the last turn.
type Transcript []Turn

// Reduce applies one inbound event to the transcript and returns the
// updated transcript. The input slice is not mutated beyond its open
// tail turn; callers that need isolation should use Snapshot.
func Reduce(tr Transcript, ev *protocol.Event) Transcript {
	switch ev.Type {
	case protocol.TypeTextDelta:
		if n := len(tr); n > 0 && tr[n-1].Role == RoleAssistant && !tr[n-1].Done {
			tr[n-1].Text += ev.Text
			return tr
		}
		return append(tr, Turn{Role: RoleAssistant, Text: ev.Text})

	case protocol.TypeTextDone:
		// No open turn is fine; completion is then a no-op.
		if n := len(tr); n > 0 && tr[n-1].Role == RoleAssistant && !tr[n-1].Done {
			tr[n-1].Done = true
		}
		return tr

	default:
		return tr
	}
}

// AppendUser appends a completed user turn.
func AppendUser(tr Transcript, text string) Transcript {
	return append(tr, Turn{Role: RoleUser, Text: text, Done: true})
}

// AppendAssistant appends a completed assistant turn, closing any open
// turn first so a later delta starts fresh.
func AppendAssistant(tr Transcript, text string) Transcript {
	if n := len(tr); n > 0 && tr[n-1].Role == RoleAssistant && !tr[n-1].Done {
		tr[n-1].Done = true
	}
	return append(tr, Turn{Role: RoleAssistant, Text: text, Done: true})
}

// Snapshot returns a copy safe to hand to readers.
func Snapshot(tr Transcript) Transcript {
	out := make(Transcript, len(tr))
	copy(out, tr)
	return out
}
