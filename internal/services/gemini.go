package services

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"
	"google.golang.org/genai"

	"alfredoptarigan/resume-screener/internal/config"
	"alfredoptarigan/resume-screener/internal/metrics"
)

// GenerateRequest is one structured call to the model.
type GenerateRequest struct {
	Operation string
	Prompt    Prompt
	Schema    *genai.Schema
}

type LLMService interface {
	// GenerateJSON returns the raw JSON text of the reply. It never retries.
	GenerateJSON(ctx context.Context, req GenerateRequest) (string, error)
}

type geminiService struct {
	client    *genai.Client
	modelName string
	timeout   time.Duration
	limiter   *rate.Limiter
	breaker   *gobreaker.CircuitBreaker[string]
	recorder  *metrics.Recorder
}

func NewGeminiService(ctx context.Context, cfg config.GeminiConfig, recorder *metrics.Recorder) (LLMService, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("gemini API key is required")
	}

	clientConfig := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		clientConfig.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	client, err := genai.NewClient(ctx, clientConfig)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create gemini client")
	}

	limit := rate.Inf
	if cfg.RatePerMinute > 0 {
		limit = rate.Every(time.Minute / time.Duration(cfg.RatePerMinute))
	}

	g := &geminiService{
		client:    client,
		modelName: cfg.Model,
		timeout:   cfg.Timeout,
		limiter:   rate.NewLimiter(limit, 1),
		recorder:  recorder,
	}
	if cfg.BreakerEnabled {
		g.breaker = newProviderBreaker(cfg)
	}
	return g, nil
}

func newProviderBreaker(cfg config.GeminiConfig) *gobreaker.CircuitBreaker[string] {
	return gobreaker.NewCircuitBreaker[string](gobreaker.Settings{
		Name:        "gemini",
		MaxRequests: 1,
		Timeout:     cfg.BreakerOpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.BreakerMinRequests {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= cfg.BreakerFailureRatio
		},
		IsSuccessful: func(err error) bool {
			// a caller giving up is not a provider failure
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			log.WithFields(log.Fields{"breaker": name, "from": from.String(), "to": to.String()}).
				Warn("⚠️ Circuit breaker state changed")
		},
	})
}

// GenerateJSON implements LLMService.
func (g *geminiService) GenerateJSON(ctx context.Context, req GenerateRequest) (string, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("%w: %s: rate limiter: %w", ErrProvider, req.Operation, err)
	}

	start := time.Now()
	var (
		text string
		err  error
	)
	if g.breaker != nil {
		text, err = g.breaker.Execute(func() (string, error) {
			return g.generate(ctx, req)
		})
	} else {
		text, err = g.generate(ctx, req)
	}
	elapsed := time.Since(start)

	entry := log.WithFields(log.Fields{
		"operation":   req.Operation,
		"duration_ms": elapsed.Milliseconds(),
	})
	if err != nil {
		g.recorder.ObserveLLMCall(req.Operation, "error", elapsed)
		entry.WithError(err).Error("❌ Gemini API error")
		return "", classifyProviderError(req.Operation, err)
	}

	g.recorder.ObserveLLMCall(req.Operation, "ok", elapsed)
	entry.WithField("reply_chars", len(text)).Debug("📊 Gemini response received")
	return text, nil
}

func (g *geminiService) generate(ctx context.Context, req GenerateRequest) (string, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	temperature := float32(0)
	genConfig := &genai.GenerateContentConfig{
		Temperature:      &temperature,
		MaxOutputTokens:  4096,
		ResponseMIMEType: "application/json",
		ResponseSchema:   req.Schema,
	}
	if req.Prompt.System != "" {
		genConfig.SystemInstruction = genai.NewContentFromText(req.Prompt.System, genai.RoleUser)
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.modelName, genai.Text(req.Prompt.User), genConfig)
	if err != nil {
		return "", err
	}
	if resp == nil {
		return "", errors.New("no response generated (nil response)")
	}

	if usage := resp.UsageMetadata; usage != nil {
		g.recorder.AddTokens("prompt", int(usage.PromptTokenCount))
		g.recorder.AddTokens("completion", int(usage.CandidatesTokenCount))
	}

	if feedback := resp.PromptFeedback; feedback != nil && feedback.BlockReason != "" {
		return "", errors.Errorf("prompt blocked by provider: %s", feedback.BlockReason)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", errors.New("no text content in response")
	}
	return text, nil
}

func classifyProviderError(operation string, err error) error {
	if isAuthFailure(err) {
		return fmt.Errorf("%w: %s: %w", ErrProviderAuth, operation, err)
	}
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%w: %s: provider temporarily unavailable: %w", ErrProvider, operation, err)
	}
	return fmt.Errorf("%w: %s: %w", ErrProvider, operation, err)
}

func isAuthFailure(err error) bool {
	code := 0
	var apiErr genai.APIError
	var apiErrPtr *genai.APIError
	switch {
	case errors.As(err, &apiErr):
		code = apiErr.Code
	case errors.As(err, &apiErrPtr):
		code = apiErrPtr.Code
	}
	return code == http.StatusUnauthorized || code == http.StatusForbidden
}
