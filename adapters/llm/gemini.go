package llm

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/prepwise/server/domain/entities"
	"github.com/prepwise/server/domain/repositories"
)

// GeminiInterviewer implements the Interviewer interface using Google's
// Gemini API.
type GeminiInterviewer struct {
	client *genai.Client
	logger *zap.Logger
	model  string
}

// GeminiConfig configures the Gemini interviewer.
type GeminiConfig struct {
	APIKey string
	Model  string
}

// NewGeminiInterviewer creates a new Gemini-backed interviewer.
func NewGeminiInterviewer(ctx context.Context, config GeminiConfig, logger *zap.Logger) (*GeminiInterviewer, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("Gemini API key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  config.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := config.Model
	if model == "" {
		model = "gemini-2.0-flash"
	}

	return &GeminiInterviewer{
		client: client,
		logger: logger,
		model:  model,
	}, nil
}

func (g *GeminiInterviewer) generate(ctx context.Context, prompt string, maxTokens int) (string, error) {
	contents := []*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)}
	config := &genai.GenerateContentConfig{
		MaxOutputTokens: int32(maxTokens),
	}

	response, err := g.client.Models.GenerateContent(ctx, g.model, contents, config)
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}
	if len(response.Candidates) == 0 || response.Candidates[0].Content == nil {
		return "", nil
	}

	var text string
	for _, part := range response.Candidates[0].Content.Parts {
		if part.Text != "" {
			text += part.Text
		}
	}
	return strings.TrimSpace(text), nil
}

// GenerateQuestion produces the opening question for an interview brief.
func (g *GeminiInterviewer) GenerateQuestion(ctx context.Context, brief repositories.InterviewBrief) (string, error) {
	text, err := g.generate(ctx, questionPrompt(brief), questionMaxTokens)
	if err != nil {
		return "", err
	}
	if text == "" {
		g.logger.Warn("Empty question from model, using fallback")
		return FallbackQuestion, nil
	}
	return text, nil
}

// GenerateFollowUp produces the next question given the candidate's last answer.
func (g *GeminiInterviewer) GenerateFollowUp(ctx context.Context, lastAnswer string) (string, error) {
	text, err := g.generate(ctx, followUpPrompt(lastAnswer), questionMaxTokens)
	if err != nil {
		return "", err
	}
	if text == "" {
		g.logger.Warn("Empty follow-up from model, using fallback")
		return FallbackFollowUp, nil
	}
	return text, nil
}

// EvaluateAnswer scores an answer against its question.
func (g *GeminiInterviewer) EvaluateAnswer(ctx context.Context, question, answer string) (entities.Feedback, error) {
	text, err := g.generate(ctx, evaluationPrompt(question, answer), evaluationMaxTokens)
	if err != nil {
		return entities.Feedback{}, err
	}
	return parseFeedback(text), nil
}
