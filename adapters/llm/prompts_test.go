package llm

import "testing"

func TestParseFeedbackPlainJSON(t *testing.T) {
	fb := parseFeedback(`{"score": 7.5, "strengths": "Concrete examples", "improvements": "Slow down"}`)
	if fb.Score != 7.5 {
		t.Errorf("expected score 7.5, got %v", fb.Score)
	}
	if fb.Strengths != "Concrete examples" {
		t.Errorf("unexpected strengths %q", fb.Strengths)
	}
}

func TestParseFeedbackFencedJSON(t *testing.T) {
	raw := "```json\n{\"score\": 6, \"strengths\": \"Good pacing\", \"improvements\": \"More detail\"}\n```"
	fb := parseFeedback(raw)
	if fb.Score != 6 || fb.Strengths != "Good pacing" {
		t.Errorf("expected fenced JSON to parse, got %+v", fb)
	}
}

func TestParseFeedbackGarbage(t *testing.T) {
	for _, raw := range []string{"", "no json here", "{broken", "{}"} {
		fb := parseFeedback(raw)
		if fb.Score != 5 || fb.Strengths != "Good effort" || fb.Improvements != "Keep practicing" {
			t.Errorf("input %q: expected fallback, got %+v", raw, fb)
		}
	}
}
