// Package advisor assembles the analysis prompt for a symbol and sends
// it to the configured generation backend.
package advisor

import (
	"context"
	"errors"
	"fmt"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/dvega/stockboard/config"
	"github.com/dvega/stockboard/internal/dataflows"
	"github.com/dvega/stockboard/internal/summary"
)

// ErrMissingCredential is returned when no generation credential is
// configured. No network call is attempted in that case.
var ErrMissingCredential = errors.New("LLM_API_KEY is not configured")

// GenerationError wraps a backend or transport failure. It is returned
// as data for the caller to display, never raised as a fatal condition.
type GenerationError struct {
	Err error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("analysis generation failed: %v", e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

const maxOutputTokens = 600

const systemPrompt = "You are a helpful, concise and analytical financial assistant."

// promptTemplate is the structural contract of the output: the response
// must open with the recommendation tag and carry the three labeled
// sections, which downstream display relies on.
const promptTemplate = `Act as an expert financial analyst. Analyze the situation of the stock %s.

--- TECHNICAL DATA (last 30 sessions) ---
%s

--- RECENT NEWS (fundamental context) ---
%s

Your answer must be strict and direct. Start IMMEDIATELY with the final decision.

Follow this exact format:

### RECOMMENDATION: [BUY | SELL | HOLD]

**Technical Analysis:**
(brief summary)

**Fundamental Context:**
(news impact)

**Justification:**
(explanation)`

// Advisor turns a data bundle into a narrative recommendation.
type Advisor struct {
	cfg *config.Config

	// chat overrides the backend-built model when set; tests inject a
	// fake here.
	chat model.BaseChatModel
}

func New(cfg *config.Config) *Advisor {
	return &Advisor{cfg: cfg}
}

// BuildPrompt assembles the fixed-template user prompt for a symbol.
func BuildPrompt(symbol string, digest summary.Digest) string {
	return fmt.Sprintf(promptTemplate, symbol, digest.PriceTable, digest.Headlines)
}

// Analyze summarizes the bundle and requests one narrative completion.
// It fails fast with ErrMissingCredential when no credential is set and
// returns a *GenerationError on any backend failure.
func (a *Advisor) Analyze(ctx context.Context, symbol string, bundle *dataflows.DataBundle) (string, error) {
	if a.cfg.LLMAPIKey == "" {
		return "", ErrMissingCredential
	}

	chat := a.chat
	if chat == nil {
		built, err := a.buildChatModel(ctx)
		if err != nil {
			return "", &GenerationError{Err: err}
		}
		chat = built
	}

	digest := summary.Build(bundle)
	messages := []*schema.Message{
		schema.SystemMessage(systemPrompt),
		schema.UserMessage(BuildPrompt(symbol, digest)),
	}

	out, err := chat.Generate(ctx, messages)
	if err != nil {
		return "", &GenerationError{Err: err}
	}
	return out.Content, nil
}

func (a *Advisor) buildChatModel(ctx context.Context) (model.BaseChatModel, error) {
	maxTokens := maxOutputTokens
	return openai.NewChatModel(ctx, &openai.ChatModelConfig{
		BaseURL:   a.cfg.LLMBaseURL,
		APIKey:    a.cfg.LLMAPIKey,
		Model:     a.cfg.LLMModel,
		MaxTokens: &maxTokens,
	})
}
