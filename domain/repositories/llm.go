package repositories

import (
	"context"

	"github.com/prepwise/server/domain/entities"
)

// InterviewBrief carries the interview configuration embedded into the
// question-generation prompt.
type InterviewBrief struct {
	Role       string
	Difficulty string
	Type       string
}

// Interviewer abstracts the chat/LLM provider behind the three text
// operations the rooms need. Every call is a single request/response pair
// with no retry and no caching; failures are surfaced to the caller.
type Interviewer interface {
	// GenerateQuestion asks for one concise interview question matching the
	// brief. Providers fall back to a fixed phrase when the model returns
	// nothing usable.
	GenerateQuestion(ctx context.Context, brief InterviewBrief) (string, error)
	// GenerateFollowUp asks for one short follow-up to the latest answer.
	GenerateFollowUp(ctx context.Context, lastAnswer string) (string, error)
	// EvaluateAnswer scores a (question, answer) pair. A response body that
	// fails to parse is substituted with a fixed neutral Feedback rather than
	// reported as an error.
	EvaluateAnswer(ctx context.Context, question, answer string) (entities.Feedback, error)
}
