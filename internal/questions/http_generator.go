package questions

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"millionaire-service/internal/domain"
)

const promptTemplate = `Generate a "Who Wants to be a Millionaire?" style trivia question for a %d-year-old with a prize value of $%d. ` +
	`The question should have four distinct options (A, B, C, D) and specify which one is correct. ` +
	`Ensure the question is age-appropriate and has a clear correct answer. ` +
	`The question should not be too easy or too hard for the prize level. ` +
	`Provide the output in JSON format with 'question', 'options' (an array of strings), and 'correctAnswerIndex' (0-3).`

// HTTPGenerator calls a generateContent style LLM endpoint and parses the JSON answer
// embedded in the first candidate.
type HTTPGenerator struct {
	endpoint string
	apiKey   string
	client   *http.Client
}

func NewHTTPGenerator(endpoint, apiKey string, timeout time.Duration) *HTTPGenerator {
	return &HTTPGenerator{
		endpoint: endpoint,
		apiKey:   apiKey,
		client:   &http.Client{Timeout: timeout},
	}
}

type generateRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generationConfig struct {
	ResponseMimeType string         `json:"responseMimeType"`
	ResponseSchema   map[string]any `json:"responseSchema"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

var questionSchema = map[string]any{
	"type": "OBJECT",
	"properties": map[string]any{
		"question":           map[string]any{"type": "STRING"},
		"options":            map[string]any{"type": "ARRAY", "items": map[string]any{"type": "STRING"}},
		"correctAnswerIndex": map[string]any{"type": "NUMBER"},
	},
	"propertyOrdering": []string{"question", "options", "correctAnswerIndex"},
}

func (g *HTTPGenerator) Generate(ctx context.Context, age, prize, _ int) (domain.GameQuestion, error) {
	body, err := json.Marshal(generateRequest{
		Contents: []content{{Role: "user", Parts: []part{{Text: fmt.Sprintf(promptTemplate, age, prize)}}}},
		GenerationConfig: generationConfig{
			ResponseMimeType: "application/json",
			ResponseSchema:   questionSchema,
		},
	})
	if err != nil {
		return domain.GameQuestion{}, fmt.Errorf("%w: encode request: %v", domain.ErrProvisioning, err)
	}

	endpoint := g.endpoint
	if g.apiKey != "" {
		u, err := url.Parse(endpoint)
		if err != nil {
			return domain.GameQuestion{}, fmt.Errorf("%w: bad endpoint: %v", domain.ErrProvisioning, err)
		}
		q := u.Query()
		q.Set("key", g.apiKey)
		u.RawQuery = q.Encode()
		endpoint = u.String()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return domain.GameQuestion{}, fmt.Errorf("%w: %v", domain.ErrProvisioning, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return domain.GameQuestion{}, fmt.Errorf("%w: %v", domain.ErrProvisioning, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return domain.GameQuestion{}, fmt.Errorf("%w: status %d: %s", domain.ErrProvisioning, resp.StatusCode, snippet)
	}

	var out generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return domain.GameQuestion{}, fmt.Errorf("%w: decode response: %v", domain.ErrProvisioning, err)
	}
	if len(out.Candidates) == 0 || len(out.Candidates[0].Content.Parts) == 0 {
		return domain.GameQuestion{}, fmt.Errorf("%w: empty response", domain.ErrProvisioning)
	}

	var q domain.GameQuestion
	if err := json.Unmarshal([]byte(out.Candidates[0].Content.Parts[0].Text), &q); err != nil {
		return domain.GameQuestion{}, fmt.Errorf("%w: malformed question: %v", domain.ErrProvisioning, err)
	}
	q.QuestionIndex = nil
	if err := Validate(q); err != nil {
		return domain.GameQuestion{}, err
	}
	return q, nil
}
