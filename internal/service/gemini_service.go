package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"partyrooms/internal/config"
	"partyrooms/internal/model"
)

// ErrGenerationUnavailable is returned when the Gemini API is not
// configured or did not produce usable text. Callers fall back to the
// preloaded pools; it never reaches a client as a failure.
var ErrGenerationUnavailable = errors.New("question generation unavailable")

// ModerationVerdict is the moderation capability's answer for one text.
type ModerationVerdict struct {
	Flagged bool   `json:"flagged"`
	Reason  string `json:"reason"`
}

// GeminiService talks to the Gemini API for question generation and chat
// moderation. Both calls are bounded by the configured timeout and
// treated as untrusted text sources.
type GeminiService struct {
	config *config.AIConfig
	client *http.Client
}

// NewGeminiService creates a new Gemini service.
func NewGeminiService() *GeminiService {
	cfg := config.DefaultAIConfig()
	return &GeminiService{
		config: cfg,
		client: &http.Client{
			Timeout: time.Duration(cfg.TimeoutMS) * time.Millisecond,
		},
	}
}

// Enabled reports whether an API key is configured.
func (s *GeminiService) Enabled() bool {
	return s.config.IsEnabled()
}

// GenerateQuestion asks Gemini for a fresh prompt for one player,
// excluding everything that player has already seen for the type.
func (s *GeminiService) GenerateQuestion(ctx context.Context, mode model.GameMode, qType model.QuestionType, nickname string, asked []string) (string, error) {
	if !s.config.IsEnabled() {
		return "", ErrGenerationUnavailable
	}

	prompt := s.buildGenerationPrompt(mode, qType, nickname, asked)
	response, err := s.callGemini(ctx, s.config.Models.Generate, prompt)
	if err != nil {
		return "", fmt.Errorf("generate question: %w", err)
	}

	var result struct {
		QuestionText string `json:"questionText"`
	}
	if err := json.Unmarshal([]byte(response), &result); err != nil {
		return "", fmt.Errorf("parse generation response: %w", err)
	}
	if strings.TrimSpace(result.QuestionText) == "" {
		return "", ErrGenerationUnavailable
	}

	return strings.TrimSpace(result.QuestionText), nil
}

// ModerateMessage asks Gemini whether a chat message violates the
// community guidelines. An error here means "unknown", never "flagged".
func (s *GeminiService) ModerateMessage(ctx context.Context, text string) (*ModerationVerdict, error) {
	if !s.config.IsEnabled() {
		// No moderation capability configured: nothing to flag against.
		return &ModerationVerdict{Flagged: false, Reason: "moderation disabled"}, nil
	}

	prompt := s.buildModerationPrompt(text)
	response, err := s.callGemini(ctx, s.config.Models.Moderate, prompt)
	if err != nil {
		return nil, fmt.Errorf("moderate message: %w", err)
	}

	var verdict ModerationVerdict
	if err := json.Unmarshal([]byte(response), &verdict); err != nil {
		return nil, fmt.Errorf("parse moderation response: %w", err)
	}
	return &verdict, nil
}

// callGemini makes a request to the Gemini API
func (s *GeminiService) callGemini(ctx context.Context, modelName, prompt string) (string, error) {
	reqBody := map[string]interface{}{
		"contents": []map[string]interface{}{
			{
				"parts": []map[string]string{
					{"text": prompt},
				},
			},
		},
		"generationConfig": map[string]interface{}{
			"responseMimeType": "application/json",
		},
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf("%s?key=%s", s.config.ModelEndpoint(modelName), s.config.APIKey)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonBody))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("gemini API error %d: %s", resp.StatusCode, string(body))
	}

	// Parse Gemini response structure
	var geminiResp struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
	}

	if err := json.Unmarshal(body, &geminiResp); err != nil {
		return "", err
	}

	if len(geminiResp.Candidates) > 0 && len(geminiResp.Candidates[0].Content.Parts) > 0 {
		return geminiResp.Candidates[0].Content.Parts[0].Text, nil
	}

	return "", fmt.Errorf("empty response from Gemini")
}

// Prompt builders
func (s *GeminiService) buildGenerationPrompt(mode model.GameMode, qType model.QuestionType, nickname string, asked []string) string {
	intensity := "lighthearted and safe for a mixed group"
	if mode == model.ModeModerate {
		intensity = "a bit more personal and daring, but still suitable for a party of adults"
	}

	askedBlock := "(No questions have been asked to this player yet.)"
	if len(asked) > 0 {
		var sb strings.Builder
		for _, q := range asked {
			sb.WriteString(fmt.Sprintf("- %q\n", q))
		}
		askedBlock = sb.String()
	}

	return fmt.Sprintf(`You are the host of a party game of truth or dare. Return ONLY valid JSON matching this schema:
{"questionText": "the generated question or dare"}

Generate a single, unique '%s' for a player named '%s'.
The tone should be %s. Keep it to one or two sentences, playful and creative.

Do NOT generate any of the following, as they have already been asked to this player:
%s
The new %s must be clearly different from everything in that list.`,
		qType, nickname, intensity, askedBlock, qType)
}

func (s *GeminiService) buildModerationPrompt(text string) string {
	return fmt.Sprintf(`You are a content moderator for a party game chat. Return ONLY valid JSON matching this schema:
{"flagged": true or false, "reason": "short explanation"}

Flag the message ONLY if it contains one of:
1. Hate speech or discrimination against a person or group.
2. Harassment or bullying targeted at an individual player.
3. Encouragement of illegal or dangerous real-world acts.

Playful teasing, crude humor, and party-game banter are all permitted and must NOT be flagged.

Message to analyze: %q

If flagged, the reason must name which rule was violated. If not flagged, the reason must be "message is within game guidelines".`, text)
}
