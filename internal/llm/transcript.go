package llm

// TokenCounter counts tokens in a piece of text.
type TokenCounter interface {
	Count(text string) int
}

// Transcript is the ordered conversation log of one process run.
// It starts with exactly one system turn and only ever grows by appending.
type Transcript struct {
	turns []ChatMessage
}

// NewTranscript creates a transcript seeded with the given system turn.
func NewTranscript(system ChatMessage) *Transcript {
	if system.Role == "" {
		system.Role = RoleSystem
	}
	return &Transcript{
		turns: []ChatMessage{system},
	}
}

// Append adds a turn to the end of the transcript.
func (t *Transcript) Append(msg ChatMessage) {
	t.turns = append(t.turns, msg)
}

// Len returns the number of turns, including the system turn.
func (t *Transcript) Len() int {
	return len(t.turns)
}

// Messages returns a copy of all turns in order.
func (t *Transcript) Messages() []ChatMessage {
	out := make([]ChatMessage, len(t.turns))
	copy(out, t.turns)
	return out
}

// Window returns the system turn followed by the most recent turns whose
// combined token count fits within budget. A budget <= 0 or a nil counter
// returns every turn. The newest turn is always kept, even when it alone
// exceeds the budget, so a request never goes out without the prompt.
func (t *Transcript) Window(budget int, counter TokenCounter) []ChatMessage {
	if budget <= 0 || counter == nil {
		return t.Messages()
	}

	system := t.turns[0]
	used := counter.Count(system.Content)

	history := t.turns[1:]
	start := len(history)
	for i := len(history) - 1; i >= 0; i-- {
		tokens := counter.Count(history[i].Content)
		if used+tokens > budget && start < len(history) {
			break
		}
		used += tokens
		start = i
	}

	out := make([]ChatMessage, 0, 1+len(history)-start)
	out = append(out, system)
	out = append(out, history[start:]...)
	return out
}
