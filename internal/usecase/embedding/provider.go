package embedding

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/shopsearch/internal/domain"
	"github.com/kailas-cloud/shopsearch/internal/metrics"
)

// Provider defaults.
const (
	DefaultLoadTimeout = 5 * time.Second
	DefaultRetryAfter  = 30 * time.Second
)

// errProviderClosed is returned to callers after Shutdown.
var errProviderClosed = errors.New("embedding provider shut down")

// Loader builds the embedding model. It must honor ctx for cancellation.
type Loader func(ctx context.Context) (domain.Embedder, error)

// ProviderConfig tunes model loading.
type ProviderConfig struct {
	// Dimensions is the expected vector length. Zero disables the check.
	Dimensions  int
	LoadTimeout time.Duration
	// RetryAfter is how long a failed load is reported before another attempt.
	RetryAfter time.Duration
}

type loadCall struct {
	done  chan struct{}
	model domain.Embedder
	err   error
}

// Provider turns text into unit-length query vectors.
//
// The model is loaded lazily on first use or eagerly by Init. Concurrent callers
// arriving during a load wait for the same load. Compute never returns an error:
// a missing vector means semantic search is unavailable for this request.
type Provider struct {
	load   Loader
	cfg    ProviderConfig
	logger *zap.Logger
	now    func() time.Time

	mu       sync.Mutex
	model    domain.Embedder
	inflight *loadCall
	lastErr  error
	failedAt time.Time
	closed   bool
}

// NewProvider creates a provider. The model is not loaded until Init or the first Compute.
func NewProvider(load Loader, cfg ProviderConfig, logger *zap.Logger) *Provider {
	if cfg.LoadTimeout <= 0 {
		cfg.LoadTimeout = DefaultLoadTimeout
	}
	if cfg.RetryAfter < 0 {
		cfg.RetryAfter = DefaultRetryAfter
	}
	return &Provider{
		load:   load,
		cfg:    cfg,
		logger: logger,
		now:    time.Now,
	}
}

// Init loads the model and checks its output dimension with a sample embedding.
// A dimension mismatch is a configuration error and is returned wrapped in
// domain.ErrDimensionMismatch.
func (p *Provider) Init(ctx context.Context) error {
	model, err := p.acquire(ctx)
	if err != nil {
		return fmt.Errorf("load embedding model: %w", err)
	}
	if _, err := p.embed(ctx, model, "sac"); err != nil {
		return fmt.Errorf("check embedding model: %w", err)
	}
	return nil
}

// Shutdown releases the model. Later calls to Compute return no vector.
func (p *Provider) Shutdown() {
	p.mu.Lock()
	model := p.model
	p.model = nil
	p.closed = true
	p.mu.Unlock()

	if c, ok := model.(io.Closer); ok {
		if err := c.Close(); err != nil {
			p.logger.Warn("Embedding model close failed", zap.Error(err))
		}
	}
}

// Ready reports whether a model is loaded.
func (p *Provider) Ready() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.model != nil
}

// HealthCheck reports the last load failure while it is still remembered.
func (p *Provider) HealthCheck(ctx context.Context) error {
	p.mu.Lock()
	model, lastErr, closed := p.model, p.lastErr, p.closed
	p.mu.Unlock()

	switch {
	case closed:
		return errProviderClosed
	case model != nil:
		if hc, ok := model.(domain.HealthChecker); ok {
			return hc.HealthCheck(ctx) //nolint:wrapcheck // transparent
		}
		return nil
	case lastErr != nil:
		return fmt.Errorf("%w: %w", domain.ErrModelNotLoaded, lastErr)
	default:
		// Not loaded yet; first Compute loads it.
		return nil
	}
}

// Compute returns the normalized vector for text, or (nil, false) when the
// text is empty or the embedding could not be produced. Failures are logged.
func (p *Provider) Compute(ctx context.Context, text string) ([]float32, bool) {
	if strings.TrimSpace(text) == "" {
		return nil, false
	}
	vec, err := p.Vector(ctx, text)
	if err != nil {
		reason := "inference"
		switch {
		case errors.Is(err, domain.ErrDimensionMismatch):
			reason = "dimension"
			p.logger.Error("Embedding dimension does not match configuration", zap.Error(err))
		case errors.Is(err, domain.ErrModelNotLoaded), errors.Is(err, errProviderClosed):
			reason = "load"
			p.logger.Warn("Embedding model unavailable", zap.Error(err))
		case ctx.Err() != nil:
			reason = "canceled"
			p.logger.Debug("Embedding canceled", zap.Error(err))
		default:
			p.logger.Warn("Embedding failed", zap.Error(err))
		}
		metrics.ProviderUnavailableTotal.WithLabelValues(reason).Inc()
		return nil, false
	}
	return vec, true
}

// Vector is Compute with the failure reason kept. Errors wrap domain.ErrEmbeddingUnavailable.
func (p *Provider) Vector(ctx context.Context, text string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("empty text: %w", domain.ErrEmbeddingUnavailable)
	}
	model, err := p.acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrEmbeddingUnavailable, err)
	}
	vec, err := p.embed(ctx, model, text)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrEmbeddingUnavailable, err)
	}
	return vec, nil
}

func (p *Provider) embed(ctx context.Context, model domain.Embedder, text string) ([]float32, error) {
	res, err := model.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embed: %w", err)
	}
	vec, err := Pool(res)
	if err != nil {
		return nil, fmt.Errorf("pool: %w", err)
	}
	if p.cfg.Dimensions > 0 && len(vec) != p.cfg.Dimensions {
		return nil, fmt.Errorf("got %d, want %d: %w", len(vec), p.cfg.Dimensions, domain.ErrDimensionMismatch)
	}
	domain.UsageFromContext(ctx).AddTokens(res.TotalTokens)
	return vec, nil
}

// acquire returns the loaded model, starting or joining a load as needed.
func (p *Provider) acquire(ctx context.Context) (domain.Embedder, error) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil, errProviderClosed
	}
	if p.model != nil {
		m := p.model
		p.mu.Unlock()
		return m, nil
	}
	if p.inflight == nil {
		if p.lastErr != nil && p.now().Sub(p.failedAt) < p.cfg.RetryAfter {
			err := p.lastErr
			p.mu.Unlock()
			return nil, fmt.Errorf("%w: recent load failure: %w", domain.ErrModelNotLoaded, err)
		}
		p.inflight = &loadCall{done: make(chan struct{})}
		go p.runLoad(p.inflight)
	}
	call := p.inflight
	p.mu.Unlock()

	select {
	case <-call.done:
		if call.err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrModelNotLoaded, call.err)
		}
		return call.model, nil
	case <-ctx.Done():
		return nil, fmt.Errorf("wait for model load: %w", ctx.Err())
	}
}

// runLoad runs detached from any caller so one canceled request does not
// abort a load other requests are waiting on.
func (p *Provider) runLoad(call *loadCall) {
	ctx, cancel := context.WithTimeout(context.Background(), p.cfg.LoadTimeout)
	defer cancel()

	start := time.Now()
	type result struct {
		model domain.Embedder
		err   error
	}
	ch := make(chan result, 1)
	go func() {
		m, err := p.load(ctx)
		ch <- result{m, err}
	}()

	var model domain.Embedder
	var err error
	status := "ok"
	select {
	case r := <-ch:
		model, err = r.model, r.err
		if err == nil && model == nil {
			err = errors.New("loader returned no model")
		}
		if err != nil {
			status = "error"
		}
	case <-ctx.Done():
		err = fmt.Errorf("load timed out after %s: %w", p.cfg.LoadTimeout, ctx.Err())
		status = "timeout"
	}
	duration := time.Since(start)
	metrics.ModelLoadsTotal.WithLabelValues(status).Inc()
	metrics.ModelLoadDuration.Observe(duration.Seconds())

	p.mu.Lock()
	p.inflight = nil
	switch {
	case err != nil:
		p.lastErr = err
		p.failedAt = p.now()
		p.logger.Error("Embedding model load failed", zap.Duration("duration", duration), zap.Error(err))
	case p.closed:
		err = errProviderClosed
	default:
		p.model = model
		p.lastErr = nil
		p.logger.Info("Embedding model loaded", zap.Duration("duration", duration))
	}
	call.model, call.err = model, err
	p.mu.Unlock()

	close(call.done)
}
