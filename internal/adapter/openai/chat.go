package openai

import (
	"context"
	"fmt"
	"math"

	openai "github.com/sashabaranov/go-openai"
)

type ChatClient struct {
	client *openai.Client
	model  string
}

// NewChatClient creates an OpenAI chat completion client. baseURL may be
// empty to use the default API endpoint.
func NewChatClient(apiKey, baseURL, model string) *ChatClient {
	return &ChatClient{
		client: newClient(apiKey, baseURL),
		model:  model,
	}
}

// GenerateAnswer answers the question using only the retrieved document
// context. Temperature is zero so the same question against the same
// index produces the same answer.
func (c *ChatClient) GenerateAnswer(ctx context.Context, question, docContext string) (string, error) {
	systemPrompt := `You are an assistant that answers questions about an uploaded document.

Instructions:
1. Answer ONLY from the provided context.
2. If the context does not contain the answer, say you could not find it in the document.
3. Keep answers clear and concise.`

	userPrompt := fmt.Sprintf("Context from the document:\n%s\n\nQuestion: %s\n\nAnswer:", docContext, question)

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: systemPrompt,
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: userPrompt,
			},
		},
		// the client omits a literal zero temperature from the request,
		// so send the smallest representable value instead
		Temperature: math.SmallestNonzeroFloat32,
		MaxTokens:   700,
	})
	if err != nil {
		return "", fmt.Errorf("failed to generate answer: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response from OpenAI")
	}

	return resp.Choices[0].Message.Content, nil
}
