package api

// TokenResponse carries a freshly issued user token.
type TokenResponse struct {
	Token  string `json:"token"`
	UserID string `json:"user_id"`
}

// LoginRequest identifies the user asking for a token.
type LoginRequest struct {
	UserID string `json:"user_id"`
}

// QuestionResponse carries a generated interview question.
type QuestionResponse struct {
	Question string `json:"question"`
}

// EvaluateRequest carries one answered question for scoring.
type EvaluateRequest struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// AnswerRequest persists an already-evaluated answer.
type AnswerRequest struct {
	InterviewID string  `json:"interviewId"`
	Question    string  `json:"question"`
	Answer      string  `json:"answer"`
	Score       float64 `json:"score"`
	Feedback    string  `json:"feedback"`
}

// SuccessResponse is the save-answer acknowledgement envelope.
type SuccessResponse struct {
	Success bool `json:"success"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
