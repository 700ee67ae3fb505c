package services

import (
	"context"
	"errors"
	"testing"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taskr/taskr-api/internal/models"
)

type fakeChat struct {
	content string
	err     error
}

func (f fakeChat) CreateChatCompletion(_ context.Context, _ openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	if f.err != nil {
		return openai.ChatCompletionResponse{}, f.err
	}
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Content: f.content}},
		},
	}, nil
}

func TestAIService_GenerateDrafts(t *testing.T) {
	tests := []struct {
		name    string
		chat    fakeChat
		want    []TaskDraft
		wantErr error
	}{
		{
			name: "drafts with priority fallback",
			chat: fakeChat{content: "```json\n[{\"name\":\"Write report\",\"description\":\"Q3\",\"priority\":5},{\"name\":\"Call Bob\",\"priority\":0},{\"name\":\"  \"}]\n```"},
			want: []TaskDraft{
				{Name: "Write report", Description: "Q3", Priority: models.PriorityHighest},
				{Name: "Call Bob", Priority: models.PriorityMedium},
			},
		},
		{
			name:    "empty array",
			chat:    fakeChat{content: "[]"},
			wantErr: ErrAINoTasksGenerated,
		},
		{
			name:    "only blank names",
			chat:    fakeChat{content: `[{"name":""}]`},
			wantErr: ErrAINoValidTasks,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &AIService{client: tt.chat}
			drafts, err := svc.GenerateDrafts(context.Background(), "some text")
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, drafts)
		})
	}
}

func TestAIService_Errors(t *testing.T) {
	var unconfigured *AIService
	_, err := unconfigured.GenerateDrafts(context.Background(), "text")
	assert.ErrorIs(t, err, ErrAIServiceNotConfigured)

	svc := &AIService{client: fakeChat{err: errors.New("boom")}}
	_, err = svc.GenerateDrafts(context.Background(), "text")
	assert.Error(t, err)

	svc = &AIService{client: fakeChat{content: "not json"}}
	_, err = svc.GenerateDrafts(context.Background(), "text")
	assert.Error(t, err)
}
