package dialogue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const geminiProposerPrompt = `You extract structured cleaning-job details from a phone caller's words.
Given the current partly-filled record and the caller's latest utterance, return the complete
updated record as strict JSON with exactly these fields and no others:
service_category, domestic_service_type, commercial_service_type, domestic_property_type,
commercial_property_type, job_type, bedrooms, bathrooms, toilets, kitchens, postcode,
preferred_hours, visit_frequency_per_week, areas_scope, extras (array of {name, quantity}), notes.
Copy fields you are not changing verbatim from the current record. Leave fields you cannot
infer empty or zero. Never guess a visit frequency from vague words. Respond with JSON only.`

// GeminiProposer implements DraftProposer using Google's Gemini API. It is
// strictly best-effort: the engine absorbs every error it returns.
type GeminiProposer struct {
	client  *genai.Client
	modelID string
	timeout time.Duration
}

// NewGeminiProposer creates a Gemini-backed draft proposer.
func NewGeminiProposer(ctx context.Context, apiKey, modelID string, timeout time.Duration) (*GeminiProposer, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("dialogue: gemini api key is required")
	}
	if strings.TrimSpace(modelID) == "" {
		modelID = "gemini-2.5-flash"
	}
	if timeout <= 0 {
		timeout = 4 * time.Second
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("dialogue: failed to create gemini client: %w", err)
	}

	return &GeminiProposer{
		client:  client,
		modelID: modelID,
		timeout: timeout,
	}, nil
}

// Propose asks Gemini for a full updated QuoteDraft. The response is
// schema-validated before anything is decoded from it.
func (p *GeminiProposer) Propose(ctx context.Context, current QuoteDraft, utterance string) (QuoteDraft, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	currentJSON, err := json.Marshal(current)
	if err != nil {
		return QuoteDraft{}, fmt.Errorf("dialogue: encode current draft: %w", err)
	}

	model := p.client.GenerativeModel(p.modelID)
	model.SetTemperature(0)
	model.ResponseMIMEType = "application/json"
	model.SystemInstruction = genai.NewUserContent(genai.Text(geminiProposerPrompt))

	prompt := fmt.Sprintf("Current record:\n%s\n\nCaller said:\n%q", currentJSON, utterance)
	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return QuoteDraft{}, fmt.Errorf("dialogue: gemini proposal failed: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return QuoteDraft{}, errors.New("dialogue: gemini returned empty content")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}

	raw := strings.TrimSpace(sb.String())
	raw = strings.TrimPrefix(raw, "```json")
	raw = strings.TrimPrefix(raw, "```")
	raw = strings.TrimSuffix(raw, "```")

	return ParseProposedDraft([]byte(strings.TrimSpace(raw)))
}
