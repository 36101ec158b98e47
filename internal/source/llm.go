package source

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/trip-planner/internal/model"
	"github.com/sells-group/trip-planner/pkg/anthropic"
)

const (
	defaultLLMModel     = "claude-haiku-4-5-20251001"
	defaultLLMMaxTokens = 2048
	defaultLLMLimit     = 10
)

const llmSystemPrompt = `You recommend options for a group trip. Reply with a JSON array only.
Each element is an object with keys: name (required), description, price_estimate,
rating (0-5), location, tags (array of short lowercase strings).
Use "Free" or "Varies" for price_estimate when no amount applies.`

// LLMSource generates candidates by asking Claude for a JSON list.
type LLMSource struct {
	client    anthropic.Client
	model     string
	maxTokens int64
}

// LLMOption configures an LLMSource.
type LLMOption func(*LLMSource)

// WithModel overrides the Claude model.
func WithModel(m string) LLMOption {
	return func(s *LLMSource) {
		if m != "" {
			s.model = m
		}
	}
}

// WithMaxTokens overrides the response token cap.
func WithMaxTokens(n int64) LLMOption {
	return func(s *LLMSource) {
		if n > 0 {
			s.maxTokens = n
		}
	}
}

// NewLLMSource creates an LLMSource backed by client.
func NewLLMSource(client anthropic.Client, opts ...LLMOption) *LLMSource {
	s := &LLMSource{
		client:    client,
		model:     defaultLLMModel,
		maxTokens: defaultLLMMaxTokens,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Name implements Source.
func (s *LLMSource) Name() string { return "llm" }

// Fetch implements Source.
func (s *LLMSource) Fetch(ctx context.Context, req Request) ([]model.Candidate, error) {
	resp, err := s.client.CreateMessage(ctx, anthropic.MessageRequest{
		Model:     s.model,
		MaxTokens: s.maxTokens,
		System: []anthropic.SystemBlock{
			{Text: llmSystemPrompt, CacheControl: &anthropic.CacheControl{}},
		},
		Messages: []anthropic.Message{{Role: "user", Content: llmPrompt(req)}},
	})
	if err != nil {
		return nil, eris.Wrap(err, "source: llm generate")
	}
	resp.Usage.LogCost(s.model, string(req.Category))

	var raws []RawCandidate
	if err := json.Unmarshal([]byte(extractJSONArray(resp.Text())), &raws); err != nil {
		return nil, eris.Wrap(err, "source: parse llm response")
	}

	out := NormalizeAll(raws)
	zap.L().Debug("llm candidates generated",
		zap.String("category", string(req.Category)),
		zap.Int("raw", len(raws)),
		zap.Int("count", len(out)),
	)
	return out, nil
}

func llmPrompt(req Request) string {
	limit := req.Limit
	if limit <= 0 {
		limit = defaultLLMLimit
	}
	profile := model.Profile(req.Category)

	var b strings.Builder
	fmt.Fprintf(&b, "Suggest up to %d %s", limit, profile.SearchNoun)
	if d := strings.TrimSpace(req.Destination); d != "" {
		fmt.Fprintf(&b, " in %s", d)
	}
	b.WriteString(".\n")

	p := req.Prefs
	if p.Budget != nil {
		fmt.Fprintf(&b, "Budget: %g to %g.\n", p.Budget.Min, p.Budget.Max)
	}
	for _, f := range p.SetFields() {
		if f == model.FieldBudget {
			continue
		}
		fmt.Fprintf(&b, "Preferred %s: %s.\n", f, strings.Join(p.Values(f), ", "))
	}
	return b.String()
}

// extractJSONArray strips code fences and surrounding prose from a model
// reply, returning the outermost JSON array.
func extractJSONArray(text string) string {
	text = strings.TrimSpace(text)

	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```json")
		text = strings.TrimPrefix(text, "```")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
	}

	start := strings.Index(text, "[")
	end := strings.LastIndex(text, "]")
	if start >= 0 && end > start {
		text = text[start : end+1]
	}
	return strings.TrimSpace(text)
}
