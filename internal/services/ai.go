package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
	"github.com/taskr/taskr-api/internal/constants"
	"github.com/taskr/taskr-api/internal/models"
)

var (
	ErrAIServiceNotConfigured = errors.New("AI service is not configured")
	ErrAINoTasksGenerated     = errors.New("AI did not generate any tasks")
	ErrAINoValidTasks         = errors.New("no valid tasks could be created from AI output")
)

// chatCompleter is the part of the OpenAI client the service uses.
type chatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

type AIService struct {
	client chatCompleter
}

// TaskDraft is a task proposed from free text. Drafts are not stored;
// clients submit the ones they keep through the regular create endpoint.
type TaskDraft struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Priority    models.Priority `json:"priority"`
}

func NewAIService(apiKey string) *AIService {
	return &AIService{
		client: openai.NewClient(apiKey),
	}
}

const draftPrompt = `You extract actionable tasks from text.

Text:
%s

Return a JSON array of tasks in this shape:
[
  {
    "name": "short task name",
    "description": "task details",
    "priority": 3
  }
]

Rules:
- priority is an integer from 1 (lowest) to 5 (highest); use 3 when unsure
- return [] when the text contains no tasks
- return JSON only, without any explanation`

// GenerateDrafts asks the model for task drafts found in text
func (s *AIService) GenerateDrafts(ctx context.Context, text string) ([]TaskDraft, error) {
	if s == nil || s.client == nil {
		return nil, ErrAIServiceNotConfigured
	}

	resp, err := s.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: openai.GPT4o,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleUser,
					Content: fmt.Sprintf(draftPrompt, text),
				},
			},
			Temperature: 0.3,
		},
	)
	if err != nil {
		return nil, fmt.Errorf("OpenAI API error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no response from OpenAI")
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimSuffix(strings.TrimPrefix(content, "```"), "```")

	var drafts []TaskDraft
	if err := json.Unmarshal([]byte(content), &drafts); err != nil {
		return nil, fmt.Errorf("failed to parse AI response: %w (response: %s)", err, content)
	}

	return sanitizeDrafts(drafts)
}

func sanitizeDrafts(drafts []TaskDraft) ([]TaskDraft, error) {
	if len(drafts) == 0 {
		return nil, ErrAINoTasksGenerated
	}
	if len(drafts) > constants.MaxAIGeneratedTasks {
		return nil, fmt.Errorf("AI generated too many tasks (max %d)", constants.MaxAIGeneratedTasks)
	}

	valid := make([]TaskDraft, 0, len(drafts))
	for _, d := range drafts {
		d.Name = strings.TrimSpace(d.Name)
		if d.Name == "" {
			continue
		}
		if !d.Priority.Valid() {
			d.Priority = models.PriorityMedium
		}
		valid = append(valid, d)
	}

	if len(valid) == 0 {
		return nil, ErrAINoValidTasks
	}

	return valid, nil
}
