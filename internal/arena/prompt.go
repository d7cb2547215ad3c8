package arena

import (
	"fmt"
	"strings"
)

// buildPrompt embeds the position and the full literal legal-move list. The
// list is never truncated: the oracle must only ever see (and pick from) the
// exact set the protocol will validate against.
func buildPrompt(side, fen string, legalUCI []string) string {
	return fmt.Sprintf(`You are playing a game of chess against a strong engine. You are playing %s.

Current board position (FEN): %s

Here is the list of legally possible moves you can make:
%s

Analyze the position and pick the best move from the legal list above.

IMPORTANT: Reply ONLY with the move in UCI format (e.g., e7e5). Do not write any other text.`,
		side, fen, strings.Join(legalUCI, ", "))
}

// promptWithFeedback appends the accumulated correction notes of the current
// turn to the base prompt.
func promptWithFeedback(base string, notes []string) string {
	if len(notes) == 0 {
		return base
	}
	return base + "\n\n" + strings.Join(notes, "\n\n")
}

// normalizeReply strips whitespace, embedded newlines and one layer of
// markdown code fencing from an oracle reply. Idempotent.
func normalizeReply(s string) string {
	s = strings.TrimSpace(s)
	replacer := strings.NewReplacer("`", "", "\n", "", "\r", "", " ", "", "\t", "")
	return replacer.Replace(s)
}
