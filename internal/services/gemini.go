package services

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

type GeminiService interface {
	GenerateText(ctx context.Context, prompt string, temperature float32) (string, error)
	GenerateTextStream(ctx context.Context, prompt string, temperature float32, onDelta func(chunk string)) (string, error)
}

type geminiService struct {
	client    *genai.Client
	modelName string
}

func NewGeminiService(apiKey, modelName string) (GeminiService, error) {
	ctx := context.Background()

	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	if modelName = strings.TrimSpace(modelName); modelName == "" {
		modelName = "gemini-2.5-flash"
	}

	return &geminiService{
		client:    client,
		modelName: modelName,
	}, nil
}

// GenerateText implements GeminiService.
func (g *geminiService) GenerateText(ctx context.Context, prompt string, temperature float32) (string, error) {
	config := &genai.GenerateContentConfig{
		Temperature:     &temperature,
		MaxOutputTokens: 4096,
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.modelName, genai.Text(prompt), config)
	if err != nil {
		return "", fmt.Errorf("failed to generate text: %w", err)
	}

	if resp == nil {
		return "", fmt.Errorf("no response generated (nil response)")
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("no text content in response")
	}

	return text, nil
}

// GenerateTextStream implements GeminiService. The onDelta callback receives
// each text chunk as it arrives; the accumulated output is returned once the
// stream ends.
func (g *geminiService) GenerateTextStream(ctx context.Context, prompt string, temperature float32, onDelta func(chunk string)) (string, error) {
	config := &genai.GenerateContentConfig{
		Temperature:     &temperature,
		MaxOutputTokens: 8192,
	}

	var builder strings.Builder
	for chunk, err := range g.client.Models.GenerateContentStream(ctx, g.modelName, genai.Text(prompt), config) {
		if err != nil {
			return "", fmt.Errorf("failed to stream text: %w", err)
		}

		text := chunk.Text()
		if text == "" {
			continue
		}

		builder.WriteString(text)
		if onDelta != nil {
			onDelta(text)
		}
	}

	output := builder.String()
	if strings.TrimSpace(output) == "" {
		return "", fmt.Errorf("no text content in response")
	}

	return output, nil
}
