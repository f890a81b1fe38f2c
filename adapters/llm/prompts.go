package llm

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/prepwise/server/domain/entities"
	"github.com/prepwise/server/domain/repositories"
)

// Fallback lines used when the model returns nothing usable.
const (
	FallbackQuestion = "Tell me about yourself."
	FallbackFollowUp = "Tell me more."
)

const (
	questionMaxTokens   = 120
	evaluationMaxTokens = 150
)

func fallbackFeedback() entities.Feedback {
	return entities.Feedback{
		Score:        5,
		Strengths:    "Good effort",
		Improvements: "Keep practicing",
	}
}

func questionPrompt(brief repositories.InterviewBrief) string {
	var b strings.Builder
	b.WriteString("Act as an interviewer.\n")
	fmt.Fprintf(&b, "Role: %s\n", brief.Role)
	fmt.Fprintf(&b, "Difficulty: %s\n", brief.Difficulty)
	fmt.Fprintf(&b, "Type: %s\n", brief.Type)
	b.WriteString("Ask one concise, relevant interview question.")
	return b.String()
}

func followUpPrompt(lastAnswer string) string {
	var b strings.Builder
	b.WriteString("You are a friendly professional interviewer.\n")
	fmt.Fprintf(&b, "Previous user answer: %s.\n", lastAnswer)
	b.WriteString("Ask **one short follow-up** or next question relevant to the interview.")
	return b.String()
}

func evaluationPrompt(question, answer string) string {
	var b strings.Builder
	b.WriteString("You are an interview coach.\n")
	fmt.Fprintf(&b, "Question: %s\n", question)
	fmt.Fprintf(&b, "Answer: %s\n", answer)
	b.WriteString("Respond ONLY with JSON: {\"score\": <0-10>, \"strengths\": \"...\", \"improvements\": \"...\"}")
	return b.String()
}

// parseFeedback extracts the evaluation JSON from model output. Models wrap
// JSON in code fences or prose often enough that we scan for the outermost
// braces instead of unmarshalling the raw text. Unparseable output yields the
// neutral fallback, not an error.
func parseFeedback(raw string) entities.Feedback {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end <= start {
		return fallbackFeedback()
	}

	var fb entities.Feedback
	if err := json.Unmarshal([]byte(raw[start:end+1]), &fb); err != nil {
		return fallbackFeedback()
	}
	if fb.Strengths == "" && fb.Improvements == "" {
		return fallbackFeedback()
	}
	return fb
}
