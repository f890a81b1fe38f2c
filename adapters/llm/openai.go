package llm

import (
	"context"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/prepwise/server/domain/entities"
	"github.com/prepwise/server/domain/repositories"
)

// OpenAIInterviewer implements the Interviewer interface using OpenAI chat
// completions.
type OpenAIInterviewer struct {
	client *openai.Client
	logger *zap.Logger
	model  string
}

// OpenAIConfig configures the OpenAI interviewer.
type OpenAIConfig struct {
	APIKey  string
	Model   string
	BaseURL string // override for tests
}

// NewOpenAIInterviewer creates a new OpenAI-backed interviewer.
func NewOpenAIInterviewer(config OpenAIConfig, logger *zap.Logger) (*OpenAIInterviewer, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}

	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}

	model := config.Model
	if model == "" {
		model = openai.GPT4
	}

	return &OpenAIInterviewer{
		client: openai.NewClientWithConfig(clientConfig),
		logger: logger,
		model:  model,
	}, nil
}

func (o *OpenAIInterviewer) complete(ctx context.Context, prompt string, maxTokens int) (string, error) {
	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     o.model,
		MaxTokens: maxTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("openai completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai: no choices in response")
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// GenerateQuestion produces the opening question for an interview brief.
func (o *OpenAIInterviewer) GenerateQuestion(ctx context.Context, brief repositories.InterviewBrief) (string, error) {
	text, err := o.complete(ctx, questionPrompt(brief), questionMaxTokens)
	if err != nil {
		return "", err
	}
	if text == "" {
		o.logger.Warn("Empty question from model, using fallback")
		return FallbackQuestion, nil
	}
	return text, nil
}

// GenerateFollowUp produces the next question given the candidate's last answer.
func (o *OpenAIInterviewer) GenerateFollowUp(ctx context.Context, lastAnswer string) (string, error) {
	text, err := o.complete(ctx, followUpPrompt(lastAnswer), questionMaxTokens)
	if err != nil {
		return "", err
	}
	if text == "" {
		o.logger.Warn("Empty follow-up from model, using fallback")
		return FallbackFollowUp, nil
	}
	return text, nil
}

// EvaluateAnswer scores an answer against its question. Output the model
// cannot express as valid JSON degrades to a neutral score rather than an
// error so a flaky model never blocks the interview.
func (o *OpenAIInterviewer) EvaluateAnswer(ctx context.Context, question, answer string) (entities.Feedback, error) {
	text, err := o.complete(ctx, evaluationPrompt(question, answer), evaluationMaxTokens)
	if err != nil {
		return entities.Feedback{}, err
	}
	return parseFeedback(text), nil
}
