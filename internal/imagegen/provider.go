// Package imagegen defines the image generation providers and the priority
// chain that tries them in order.
package imagegen

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// Provider turns a prompt into raw image bytes.
type Provider interface {
	// Name identifies the provider in logs and per-run results.
	Name() string
	// Generate produces a single image for the prompt.
	Generate(ctx context.Context, prompt string) ([]byte, error)
}

// ErrAllProvidersFailed is returned when every provider in a chain failed.
var ErrAllProvidersFailed = errors.New("all image providers failed")

// Chain tries providers in order and returns the first success. The list is
// bounded and each provider is attempted exactly once per call.
type Chain struct {
	providers []Provider
	logger    *zap.Logger
}

// NewChain constructs a fallback chain. Nil providers are skipped.
func NewChain(logger *zap.Logger, providers ...Provider) *Chain {
	if logger == nil {
		logger = zap.NewNop()
	}
	kept := make([]Provider, 0, len(providers))
	for _, p := range providers {
		if p != nil {
			kept = append(kept, p)
		}
	}
	return &Chain{providers: kept, logger: logger}
}

// Name implements Provider so a chain can stand in for a single provider.
func (c *Chain) Name() string { return "chain" }

// Generate walks the provider list once. A provider failure is logged and the
// next provider is attempted with the same prompt; context cancellation stops
// the walk immediately.
func (c *Chain) Generate(ctx context.Context, prompt string) ([]byte, error) {
	if len(c.providers) == 0 {
		return nil, fmt.Errorf("%w: no providers configured", ErrAllProvidersFailed)
	}
	var lastErr error
	for _, p := range c.providers {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("image generation canceled: %w", ctx.Err())
		}
		data, err := p.Generate(ctx, prompt)
		if err == nil {
			return data, nil
		}
		lastErr = err
		c.logger.Warn("image provider failed, trying next",
			zap.String("provider", p.Name()),
			zap.Error(err),
		)
	}
	return nil, fmt.Errorf("%w: last error: %v", ErrAllProvidersFailed, lastErr)
}
