package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/MegaGrindStone/asisten-kepsek/internal/metrics"
	"github.com/MegaGrindStone/asisten-kepsek/internal/models"
	"github.com/google/uuid"
)

const errLoggerKey = "err"

// Completer is implemented by every provider in this package.
type Completer interface {
	Complete(ctx context.Context, req models.CompletionRequest) (string, error)
}

// CallLog stores call records.
type CallLog interface {
	AddCall(ctx context.Context, rec models.CallRecord) (string, error)
}

// Instrumented wraps a provider, recording metrics, a call log entry and a log line for every call. The
// result of the wrapped provider is returned unchanged.
type Instrumented struct {
	provider string
	next     Completer
	callLog  CallLog

	now    func() time.Time
	logger *slog.Logger
}

// NewInstrumented wraps next, labelling its calls with provider. callLog may be nil.
func NewInstrumented(provider string, next Completer, callLog CallLog, logger *slog.Logger) Instrumented {
	return Instrumented{
		provider: provider,
		next:     next,
		callLog:  callLog,
		now:      time.Now,
		logger:   logger.With(slog.String("module", "gateway"), slog.String("provider", provider)),
	}
}

// Complete calls the wrapped provider.
func (i Instrumented) Complete(ctx context.Context, req models.CompletionRequest) (string, error) {
	start := i.now()
	reply, err := i.next.Complete(ctx, req)
	elapsed := i.now().Sub(start)

	metrics.GatewayCallsTotal.WithLabelValues(i.provider, req.Model, metrics.Status(err)).Inc()
	metrics.GatewayCallDuration.WithLabelValues(i.provider, req.Model).Observe(elapsed.Seconds())

	rec := models.CallRecord{
		ID:          uuid.New().String(),
		Provider:    i.provider,
		Model:       req.Model,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
		PromptChars: req.PromptChars(),
		ReplyChars:  len([]rune(reply)),
		Duration:    elapsed,
		Timestamp:   start,
	}
	if err != nil {
		rec.Error = err.Error()
		i.logger.Error("Model call failed",
			slog.String("model", req.Model),
			slog.Duration("duration", elapsed),
			slog.String(errLoggerKey, err.Error()))
	} else {
		i.logger.Info("Model call completed",
			slog.String("model", req.Model),
			slog.Duration("duration", elapsed),
			slog.Int("replyChars", rec.ReplyChars))
	}

	if i.callLog != nil {
		if _, lerr := i.callLog.AddCall(context.WithoutCancel(ctx), rec); lerr != nil {
			i.logger.Warn("Failed to record call", slog.String(errLoggerKey, lerr.Error()))
		}
	}

	return reply, err
}
