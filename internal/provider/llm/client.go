// Package llm talks to an OpenAI-compatible chat-completions endpoint to
// estimate the nutrition of a described or photographed meal.
package llm

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	DefaultBaseURL = "https://api.openai.com/v1"
	DefaultModel   = "gpt-4o-mini"
)

var ErrMissingAPIKey = errors.New("llm: api key is not configured")

const systemPrompt = `You are a nutrition estimator. Given a meal description and/or a photo, estimate the nutrition of the whole meal as eaten.
Respond with a single JSON object and nothing else:
{"name": string, "calories": number, "protein_g": number, "carbs_g": number, "fat_g": number, "confidence": number between 0 and 1}`

// Estimate is the model's reading of one meal.
type Estimate struct {
	Name       string  `json:"name"`
	Calories   float64 `json:"calories"`
	ProteinG   float64 `json:"protein_g"`
	CarbsG     float64 `json:"carbs_g"`
	FatG       float64 `json:"fat_g"`
	Confidence float64 `json:"confidence"`
}

// Image is an optional photo sent inline as a data URL.
type Image struct {
	MIMEType string
	Data     []byte
}

type Client struct {
	BaseURL    string
	APIKey     string
	Model      string
	HTTPClient *http.Client
}

type message struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

type contentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageURL `json:"image_url,omitempty"`
}

type imageURL struct {
	URL string `json:"url"`
}

type chatRequest struct {
	Model          string            `json:"model"`
	Messages       []message         `json:"messages"`
	ResponseFormat map[string]string `json:"response_format"`
	Temperature    float64           `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func (c *Client) ModelName() string {
	if strings.TrimSpace(c.Model) == "" {
		return DefaultModel
	}
	return c.Model
}

func (c *Client) EstimateNutrition(ctx context.Context, prompt string, image *Image) (Estimate, error) {
	if strings.TrimSpace(c.APIKey) == "" {
		return Estimate{}, ErrMissingAPIKey
	}
	prompt = strings.TrimSpace(prompt)
	if prompt == "" && image == nil {
		return Estimate{}, fmt.Errorf("llm: a description or an image is required")
	}
	base := strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	if base == "" {
		base = DefaultBaseURL
	}
	httpClient := c.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 60 * time.Second}
	}

	userText := prompt
	if userText == "" {
		userText = "Estimate the nutrition of the meal in this photo."
	}
	var content any = userText
	if image != nil {
		mime := image.MIMEType
		if mime == "" {
			mime = "image/jpeg"
		}
		content = []contentPart{
			{Type: "text", Text: userText},
			{Type: "image_url", ImageURL: &imageURL{URL: "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(image.Data)}},
		}
	}

	body, err := json.Marshal(chatRequest{
		Model: c.ModelName(),
		Messages: []message{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: content},
		},
		ResponseFormat: map[string]string{"type": "json_object"},
		Temperature:    0.2,
	})
	if err != nil {
		return Estimate{}, fmt.Errorf("encode llm request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, base+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return Estimate{}, fmt.Errorf("create llm request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.APIKey)

	resp, err := httpClient.Do(req)
	if err != nil {
		return Estimate{}, fmt.Errorf("execute llm request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return Estimate{}, fmt.Errorf("read llm response: %w", err)
	}
	var parsed chatResponse
	decodeErr := json.Unmarshal(raw, &parsed)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if decodeErr == nil && parsed.Error != nil && parsed.Error.Message != "" {
			return Estimate{}, fmt.Errorf("llm request failed with status %d: %s", resp.StatusCode, parsed.Error.Message)
		}
		return Estimate{}, fmt.Errorf("llm request failed with status %d", resp.StatusCode)
	}
	if decodeErr != nil {
		return Estimate{}, fmt.Errorf("decode llm response: %w", decodeErr)
	}
	if len(parsed.Choices) == 0 {
		return Estimate{}, fmt.Errorf("llm response has no choices")
	}
	return ParseEstimate(parsed.Choices[0].Message.Content)
}

// ParseEstimate decodes the model's JSON answer. Unknown fields and negative
// values are rejected.
func ParseEstimate(content string) (Estimate, error) {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")

	dec := json.NewDecoder(strings.NewReader(content))
	dec.DisallowUnknownFields()
	var e Estimate
	if err := dec.Decode(&e); err != nil {
		return Estimate{}, fmt.Errorf("decode llm estimate: %w", err)
	}
	e.Name = strings.TrimSpace(e.Name)
	if e.Name == "" {
		return Estimate{}, fmt.Errorf("llm estimate has no name")
	}
	if e.Calories < 0 || e.ProteinG < 0 || e.CarbsG < 0 || e.FatG < 0 {
		return Estimate{}, fmt.Errorf("llm estimate has negative values")
	}
	if e.Confidence < 0 {
		e.Confidence = 0
	}
	if e.Confidence > 1 {
		e.Confidence = 1
	}
	return e, nil
}
