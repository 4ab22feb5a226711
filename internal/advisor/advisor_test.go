package advisor

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/shopspring/decimal"

	"github.com/dvega/stockboard/config"
	"github.com/dvega/stockboard/internal/dataflows"
	"github.com/dvega/stockboard/internal/summary"
)

type fakeChatModel struct {
	calls    int
	lastMsgs []*schema.Message
	reply    string
	err      error
}

func (f *fakeChatModel) Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error) {
	f.calls++
	f.lastMsgs = input
	if f.err != nil {
		return nil, f.err
	}
	return schema.AssistantMessage(f.reply, nil), nil
}

func (f *fakeChatModel) Stream(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, errors.New("stream not supported")
}

func testBundle() *dataflows.DataBundle {
	return &dataflows.DataBundle{
		Symbol: "NVDA",
		History: []dataflows.PricePoint{
			{Date: time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC), Close: decimal.NewFromInt(100)},
			{Date: time.Date(2026, 8, 2, 0, 0, 0, 0, time.UTC), Close: decimal.NewFromInt(110)},
		},
		News: []dataflows.NewsItem{{Title: "Nvidia beats", Link: "https://example.com/n"}},
	}
}

func TestAnalyzeMissingCredential(t *testing.T) {
	fake := &fakeChatModel{reply: "should not be called"}
	adv := New(&config.Config{})
	adv.chat = fake

	_, err := adv.Analyze(context.Background(), "NVDA", testBundle())
	if !errors.Is(err, ErrMissingCredential) {
		t.Fatalf("expected ErrMissingCredential, got %v", err)
	}
	if fake.calls != 0 {
		t.Fatal("no backend call may happen without a credential")
	}
}

func TestAnalyzeReturnsCompletion(t *testing.T) {
	fake := &fakeChatModel{reply: "### RECOMMENDATION: [HOLD]"}
	adv := New(&config.Config{LLMAPIKey: "sk-test", LLMModel: "test-model"})
	adv.chat = fake

	text, err := adv.Analyze(context.Background(), "NVDA", testBundle())
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if text != "### RECOMMENDATION: [HOLD]" {
		t.Fatalf("unexpected completion: %q", text)
	}
	if fake.calls != 1 {
		t.Fatalf("expected one backend call, got %d", fake.calls)
	}
	if len(fake.lastMsgs) != 2 || fake.lastMsgs[0].Role != schema.System {
		t.Fatalf("expected system + user message, got %v", fake.lastMsgs)
	}
}

func TestAnalyzeWrapsBackendFailure(t *testing.T) {
	fake := &fakeChatModel{err: errors.New("connection refused")}
	adv := New(&config.Config{LLMAPIKey: "sk-test"})
	adv.chat = fake

	_, err := adv.Analyze(context.Background(), "NVDA", testBundle())

	var genErr *GenerationError
	if !errors.As(err, &genErr) {
		t.Fatalf("expected *GenerationError, got %v", err)
	}
	if !strings.Contains(genErr.Error(), "connection refused") {
		t.Fatalf("expected underlying cause in error text, got %q", genErr.Error())
	}
}

func TestBuildPromptStructuralContract(t *testing.T) {
	digest := summary.Build(testBundle())
	prompt := BuildPrompt("NVDA", digest)

	for _, required := range []string{
		"NVDA",
		"### RECOMMENDATION: [BUY | SELL | HOLD]",
		"**Technical Analysis:**",
		"**Fundamental Context:**",
		"**Justification:**",
		digest.PriceTable,
		digest.Headlines,
	} {
		if !strings.Contains(prompt, required) {
			t.Fatalf("prompt missing %q:\n%s", required, prompt)
		}
	}
}

func TestBuildPromptEmptyNews(t *testing.T) {
	bundle := testBundle()
	bundle.News = nil

	prompt := BuildPrompt("NVDA", summary.Build(bundle))
	if !strings.Contains(prompt, summary.NoNewsMarker) {
		t.Fatal("prompt must carry the explicit no-news marker")
	}
}
