package ctxengine

import (
	"fmt"
	"strings"

	"github.com/undergrid/recall/internal/provider"
)

// summarySystemPrompt instructs the model on its role for the
// summarization request.
const summarySystemPrompt = "You are an assistant that writes concise summaries of conversations, preserving all important information."

// summaryRequestTemplate carries the rendered transcript. The closing
// line asks for the summary in the conversation's own working language
// so a restored session keeps reading naturally.
const summaryRequestTemplate = `Create a concise summary of the following conversation.
Preserve ALL important facts, context, and conclusions.
The summary must make it possible to continue the conversation without losing context.

Conversation:
%s

Concise summary (in the language of the conversation):`

// renderTranscript renders every non-system turn as a "<ROLE>: <content>"
// line, joined in order.
func renderTranscript(turns []provider.Message) string {
	lines := make([]string, 0, len(turns))
	for i := range turns {
		if turns[i].Role == provider.MessageRoleSystem {
			continue
		}
		lines = append(lines, fmt.Sprintf("%s: %s", strings.ToUpper(string(turns[i].Role)), turns[i].Content))
	}
	return strings.Join(lines, "\n")
}

// buildSummaryRequest assembles the fixed two-turn summarization
// request for the given history. Kept separate from the transport call
// so the template is unit-testable without a live service.
func buildSummaryRequest(turns []provider.Message) []provider.Message {
	return []provider.Message{
		{Role: provider.MessageRoleSystem, Content: summarySystemPrompt},
		{Role: provider.MessageRoleUser, Content: fmt.Sprintf(summaryRequestTemplate, renderTranscript(turns))},
	}
}

// summaryTurnContent formats the single system turn that replaces the
// compacted history.
func summaryTurnContent(messageCount int, summary string) string {
	return fmt.Sprintf("Prior context (summary of %d messages): %s", messageCount, summary)
}
