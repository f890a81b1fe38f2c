package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/prepwise/server/domain/entities"
	"github.com/prepwise/server/domain/repositories"
)

const fallbackOpeningQuestion = "Tell me about yourself."

// InterviewService orchestrates interview setup, question generation, and
// answer evaluation.
type InterviewService struct {
	interviews repositories.InterviewRepository
	answers    repositories.AnswerRepository
	blob       repositories.BlobStorage // nil when storage is not configured
	ai         repositories.Interviewer
	logger     *zap.Logger
}

func NewInterviewService(
	interviews repositories.InterviewRepository,
	answers repositories.AnswerRepository,
	blob repositories.BlobStorage,
	ai repositories.Interviewer,
	logger *zap.Logger,
) *InterviewService {
	return &InterviewService{
		interviews: interviews,
		answers:    answers,
		blob:       blob,
		ai:         ai,
		logger:     logger,
	}
}

// ResumeUpload is an optional resume attached to a new interview.
type ResumeUpload struct {
	FileName    string
	ContentType string
	Data        []byte
}

// CreateInterviewInput carries the setup form fields.
type CreateInterviewInput struct {
	Role       string
	Difficulty string
	Type       string
	Resume     *ResumeUpload
}

// CreateInterview validates and persists a new interview. A resume upload
// failure degrades to an interview without a resume URL; it never blocks
// creation.
func (s *InterviewService) CreateInterview(ctx context.Context, userID string, input CreateInterviewInput) (*entities.Interview, error) {
	interview := &entities.Interview{
		ID:         uuid.NewString(),
		UserID:     userID,
		Role:       input.Role,
		Difficulty: input.Difficulty,
		Type:       input.Type,
		CreatedAt:  time.Now(),
	}
	if err := interview.Validate(); err != nil {
		return nil, err
	}

	if input.Resume != nil && len(input.Resume.Data) > 0 {
		interview.ResumeURL = s.uploadResume(ctx, interview.ID, input.Resume)
	}

	if err := s.interviews.Create(ctx, interview); err != nil {
		return nil, fmt.Errorf("persist interview: %w", err)
	}

	s.logger.Info("Interview created",
		zap.String("interview_id", interview.ID),
		zap.String("role", interview.Role),
		zap.Bool("has_resume", interview.ResumeURL != ""))

	return interview, nil
}

func (s *InterviewService) uploadResume(ctx context.Context, interviewID string, resume *ResumeUpload) string {
	if s.blob == nil {
		s.logger.Warn("Resume upload skipped, blob storage not configured")
		return ""
	}

	key := fmt.Sprintf("%s-%s", interviewID, resume.FileName)
	url, err := s.blob.Upload(ctx, key, resume.ContentType, resume.Data)
	if err != nil {
		s.logger.Warn("Resume upload failed, continuing without resume",
			zap.String("interview_id", interviewID),
			zap.Error(err))
		return ""
	}
	return url
}

// ListInterviews returns the user's interviews, newest first.
func (s *InterviewService) ListInterviews(ctx context.Context, userID string) ([]*entities.Interview, error) {
	return s.interviews.ListByUser(ctx, userID)
}

// GetInterview fetches one interview owned by the user.
func (s *InterviewService) GetInterview(ctx context.Context, id, userID string) (*entities.Interview, error) {
	return s.interviews.GetByID(ctx, id, userID)
}

// DeleteInterview removes an interview owned by the user.
func (s *InterviewService) DeleteInterview(ctx context.Context, id, userID string) error {
	return s.interviews.Delete(ctx, id, userID)
}

// NextQuestion generates the opening question for an interview. Generation
// failures degrade to a generic opener so the interview can always begin.
func (s *InterviewService) NextQuestion(ctx context.Context, id, userID string) (string, error) {
	interview, err := s.interviews.GetByID(ctx, id, userID)
	if err != nil {
		return "", err
	}

	question, err := s.ai.GenerateQuestion(ctx, repositories.InterviewBrief{
		Role:       interview.Role,
		Difficulty: interview.Difficulty,
		Type:       interview.Type,
	})
	if err != nil {
		s.logger.Warn("Question generation failed, using fallback",
			zap.String("interview_id", id),
			zap.Error(err))
		return fallbackOpeningQuestion, nil
	}
	return question, nil
}

// EvaluateAnswer scores an answer and persists it in the background. The
// caller gets feedback immediately; a failed save is logged, not surfaced.
func (s *InterviewService) EvaluateAnswer(ctx context.Context, interviewID, userID, question, answer string) (entities.Feedback, error) {
	feedback, err := s.ai.EvaluateAnswer(ctx, question, answer)
	if err != nil {
		s.logger.Warn("Evaluation failed, using neutral feedback",
			zap.String("interview_id", interviewID),
			zap.Error(err))
		feedback = entities.Feedback{
			Score:        5,
			Strengths:    "Good effort",
			Improvements: "Keep practicing",
		}
	}

	record := &entities.Answer{
		ID:          uuid.NewString(),
		InterviewID: interviewID,
		UserID:      userID,
		Question:    question,
		Answer:      answer,
		Score:       feedback.Score,
		Feedback:    fmt.Sprintf("%s | %s", feedback.Strengths, feedback.Improvements),
		CreatedAt:   time.Now(),
	}

	go func() {
		saveCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.answers.Create(saveCtx, record); err != nil {
			s.logger.Error("Failed to save evaluated answer",
				zap.String("interview_id", interviewID),
				zap.Error(err))
		}
	}()

	return feedback, nil
}

// SaveAnswer persists an answer record directly.
func (s *InterviewService) SaveAnswer(ctx context.Context, answer *entities.Answer) error {
	if answer.ID == "" {
		answer.ID = uuid.NewString()
	}
	if answer.CreatedAt.IsZero() {
		answer.CreatedAt = time.Now()
	}
	if err := answer.Validate(); err != nil {
		return err
	}
	return s.answers.Create(ctx, answer)
}

// Progress returns the user's evaluated answers, newest first.
func (s *InterviewService) Progress(ctx context.Context, userID string) ([]*entities.Answer, error) {
	return s.answers.ListByUser(ctx, userID)
}
