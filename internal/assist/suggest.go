// Package assist proposes corrections for low-confidence extracted values
// using ChatGPT. Suggestions are advisory: the operator reviews and applies
// them, the pipeline never writes a suggested value back on its own.
package assist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/sashabaranov/go-openai"

	"fieldsheet/internal/logger"
	"fieldsheet/pkg/models"
)

// ErrMissingAPIKey is returned when no OpenAI API key is configured.
var ErrMissingAPIKey = errors.New("missing OpenAI API key: set OPENAI_API_KEY environment variable")

// Suggestion is one proposed correction for a low-confidence cell.
type Suggestion struct {
	Parameter      string  `json:"parameter"`
	CurrentValue   string  `json:"current_value"`
	SuggestedValue string  `json:"suggested_value"`
	Confidence     float64 `json:"confidence"`
	Reason         string  `json:"reason"`
}

// Service wraps the OpenAI client for correction suggestions.
type Service struct {
	openaiClient *openai.Client
	log          zerolog.Logger
}

// NewService creates a suggestion service from an API key.
func NewService(apiKey string) (*Service, error) {
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	return &Service{
		openaiClient: openai.NewClient(apiKey),
		log:          logger.WithComponent("assist"),
	}, nil
}

// NewServiceWithClient creates a suggestion service with an explicit client (for testing).
func NewServiceWithClient(client *openai.Client) *Service {
	return &Service{
		openaiClient: client,
		log:          logger.WithComponent("assist"),
	}
}

// SuggestCorrections asks ChatGPT to sanity-check the low-confidence values
// of one reading against the rest of the row. threshold selects which cells
// are submitted; cells at or above it are sent only as context.
func (s *Service) SuggestCorrections(ctx context.Context, reading models.ReadingPayload, threshold float64) ([]Suggestion, error) {
	const op = "SuggestCorrections"

	var doubtful []models.ParameterPayload
	for _, param := range reading.Parameters {
		if param.ConfidenceScore < threshold {
			doubtful = append(doubtful, param)
		}
	}
	if len(doubtful) == 0 {
		return nil, nil
	}

	rowJSON, err := json.MarshalIndent(reading, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("%s: failed to marshal reading JSON: %w", op, err)
	}
	doubtfulJSON, err := json.MarshalIndent(doubtful, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("%s: failed to marshal doubtful cells JSON: %w", op, err)
	}

	prompt := fmt.Sprintf(`This row was digitized by OCR from a handwritten oilfield production log. Some values were read with low confidence and may be misread digits (common confusions: 1/7, 0/8, 5/6, decimal point dropped).

FULL ROW:
%s

LOW-CONFIDENCE VALUES TO CHECK:
%s

For each low-confidence value, judge whether it is plausible for its parameter given the other values in the row and typical operating ranges. If a misread is likely, suggest the corrected value.

Respond only with a JSON array in the following format:
[
  {
    "parameter": "Frame Lube Oil - Press",
    "current_value": "21",
    "suggested_value": "2.1",
    "confidence": 0.8,
    "reason": "Lube oil pressure of 21 Kg/cm2 is implausible; a dropped decimal point is likely"
  }
]

Only include entries where you suggest a change. If every value is plausible as-is, respond with [].`, string(rowJSON), string(doubtfulJSON))

	s.log.Debug().
		Str("row", reading.RowIdentifier).
		Int("doubtful_cells", len(doubtful)).
		Msg("Sending correction request to ChatGPT")

	resp, err := s.openaiClient.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: openai.GPT4oMini,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
		Temperature: 0.1,
		MaxTokens:   1000,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: ChatGPT request failed: %w", op, err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("%s: no response choices from ChatGPT", op)
	}

	cleaned := strings.TrimSpace(resp.Choices[0].Message.Content)

	// Handle case where ChatGPT returns response wrapped in markdown code blocks
	if strings.HasPrefix(cleaned, "```json") {
		cleaned = strings.TrimPrefix(cleaned, "```json")
		cleaned = strings.TrimSuffix(cleaned, "```")
		cleaned = strings.TrimSpace(cleaned)
	} else if strings.HasPrefix(cleaned, "```") {
		cleaned = strings.TrimPrefix(cleaned, "```")
		cleaned = strings.TrimSuffix(cleaned, "```")
		cleaned = strings.TrimSpace(cleaned)
	}

	var suggestions []Suggestion
	if err := json.Unmarshal([]byte(cleaned), &suggestions); err != nil {
		s.log.Warn().
			Err(err).
			Str("response", cleaned).
			Str("row", reading.RowIdentifier).
			Msg("Failed to parse ChatGPT response as JSON")
		return nil, nil
	}

	s.log.Debug().
		Str("row", reading.RowIdentifier).
		Int("suggestions", len(suggestions)).
		Msg("Received ChatGPT correction suggestions")

	return suggestions, nil
}
