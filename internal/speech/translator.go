package speech

import (
	"context"
	"strings"

	"voicebridge/internal/service/ai"
)

// ProviderTranslator translates through a chat-completion provider.
type ProviderTranslator struct {
	provider ai.Provider
	limiter  *ai.RateLimiter
}

func NewProviderTranslator(provider ai.Provider, limiter *ai.RateLimiter) *ProviderTranslator {
	return &ProviderTranslator{provider: provider, limiter: limiter}
}

func (t *ProviderTranslator) Translate(ctx context.Context, text, source, target, tone string) (string, error) {
	if err := t.limiter.Wait(ctx); err != nil {
		return "", err
	}

	prompt := ai.GetTranslateAnnouncementPrompt(source, target, tone)
	out, err := t.provider.Complete(ctx, prompt, ai.WrapInput(text))
	if err != nil {
		return "", err
	}

	out = strings.TrimSpace(out)
	if out == "" {
		return "", ErrEmptyResult
	}
	return out, nil
}
