package shopsearch

import (
	"context"
	"strings"

	"github.com/kailas-cloud/shopsearch/internal/domain/search/outcome"
	"github.com/kailas-cloud/shopsearch/internal/domain/search/query"
	chatuc "github.com/kailas-cloud/shopsearch/internal/usecase/chat"
	healthuc "github.com/kailas-cloud/shopsearch/internal/usecase/health"
)

// --- searchUseCase mock ---

type mockSearchUC struct {
	searchFn func(ctx context.Context, q query.Query) (outcome.Outcome, error)
}

func (m *mockSearchUC) SearchCached(ctx context.Context, q query.Query) (outcome.Outcome, error) {
	return m.searchFn(ctx, q)
}

func (m *mockSearchUC) DefaultLimit() int { return 8 }

// --- chatUseCase mock ---

type mockChatUC struct {
	sendFn func(ctx context.Context, text string, profile chatuc.Profile) (chatuc.Reply, error)
}

func (m *mockChatUC) SendMessage(ctx context.Context, text string, profile chatuc.Profile) (chatuc.Reply, error) {
	return m.sendFn(ctx, text, profile)
}

// --- healthUseCase mock ---

type mockHealthUC struct {
	report healthuc.Report
}

func (m *mockHealthUC) Check(context.Context) healthuc.Report { return m.report }

// --- Embedder mock ---

type mockEmbedder struct {
	fn func(ctx context.Context, text string) (EmbeddingResult, error)
}

func (m *mockEmbedder) Embed(ctx context.Context, text string) (EmbeddingResult, error) {
	return m.fn(ctx, text)
}

// axisEmbedder puts bag texts on the first axis and shoe texts on the second.
func axisEmbedder() *mockEmbedder {
	return &mockEmbedder{fn: func(_ context.Context, text string) (EmbeddingResult, error) {
		lower := strings.ToLower(text)
		vec := []float32{0.1, 0.1}
		if strings.Contains(lower, "sac") {
			vec[0] = 1
		}
		if strings.Contains(lower, "basket") {
			vec[1] = 1
		}
		return EmbeddingResult{Embedding: vec, PromptTokens: 2, TotalTokens: 2}, nil
	}}
}

// --- helpers ---

func testClient(searchSvc searchUseCase, chatSvc chatUseCase, healthSvc healthUseCase) *Client {
	return &Client{
		searchSvc: searchSvc,
		chatSvc:   chatSvc,
		healthSvc: healthSvc,
	}
}
