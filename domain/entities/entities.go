package entities

import (
	"errors"
	"time"
)

// Interview difficulty levels offered by the setup form.
const (
	DifficultyEasy   = "Easy"
	DifficultyMedium = "Medium"
	DifficultyHard   = "Hard"
)

// Interview question types offered by the setup form.
const (
	TypeBehavioral = "Behavioral"
	TypeTechnical  = "Technical"
	TypeCaseStudy  = "Case-study"
)

// Interview represents one mock-interview configuration created by a user.
type Interview struct {
	ID         string    `json:"id" db:"id"`
	UserID     string    `json:"user_id" db:"user_id"`
	Role       string    `json:"role" db:"role"`
	Difficulty string    `json:"difficulty" db:"difficulty"`
	Type       string    `json:"type" db:"type"`
	ResumeURL  string    `json:"resume_url,omitempty" db:"resume_url"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

// Answer represents one evaluated answer within an interview.
type Answer struct {
	ID          string    `json:"id" db:"id"`
	InterviewID string    `json:"interview_id" db:"interview_id"`
	UserID      string    `json:"user_id" db:"user_id"`
	Question    string    `json:"question" db:"question"`
	Answer      string    `json:"answer" db:"answer"`
	Score       float64   `json:"score" db:"score"`
	Feedback    string    `json:"feedback" db:"feedback"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// Feedback is the structured evaluation produced by the AI gateway for a
// (question, answer) pair. Score is passed through exactly as the model
// returned it; the 0-10 range is asserted in the prompt, not validated here.
type Feedback struct {
	Score        float64 `json:"score"`
	Strengths    string  `json:"strengths"`
	Improvements string  `json:"improvements"`
}

// Domain validation methods
func (i *Interview) Validate() error {
	if i.UserID == "" {
		return errors.New("user_id is required")
	}
	if i.Role == "" {
		return errors.New("role is required")
	}
	switch i.Difficulty {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
	default:
		return errors.New("difficulty must be Easy, Medium or Hard")
	}
	switch i.Type {
	case TypeBehavioral, TypeTechnical, TypeCaseStudy:
	default:
		return errors.New("type must be Behavioral, Technical or Case-study")
	}
	return nil
}

func (a *Answer) Validate() error {
	if a.InterviewID == "" {
		return errors.New("interview_id is required")
	}
	if a.UserID == "" {
		return errors.New("user_id is required")
	}
	if a.Question == "" {
		return errors.New("question is required")
	}
	return nil
}
