// Package upvote records at most one upvote per (tool, fingerprint) and keeps
// the tool's denormalized counter in step with the ledger.
package upvote

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/iecho/tooldir/internal/metrics"
	"github.com/iecho/tooldir/internal/models"
	"github.com/iecho/tooldir/internal/repository"
)

// Outcome is the result of Register. Tool is nil when the tool does not
// exist; otherwise it is the snapshot after the operation.
type Outcome struct {
	Added bool
	Tool  *models.Tool
}

// Ledger coordinates the upvote and tool repositories.
type Ledger struct {
	tools   repository.ToolRepository
	upvotes repository.UpvoteRepository
	logger  *slog.Logger
}

// NewLedger creates a Ledger.
func NewLedger(tools repository.ToolRepository, upvotes repository.UpvoteRepository, logger *slog.Logger) *Ledger {
	if logger == nil {
		logger = slog.Default()
	}
	return &Ledger{tools: tools, upvotes: upvotes, logger: logger}
}

// Register adds an upvote from fingerprint to toolID. Repeat calls for the same
// pair report Added=false and leave the counter alone, including calls that
// race each other: the storage uniqueness constraint picks the single winner.
func (l *Ledger) Register(ctx context.Context, toolID, fingerprint string) (*Outcome, error) {
	tool, err := l.tools.GetByID(ctx, toolID)
	if errors.Is(err, repository.ErrNotFound) {
		metrics.UpvotesTotal.WithLabelValues("not_found").Inc()
		return &Outcome{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load tool: %w", err)
	}

	exists, err := l.upvotes.Exists(ctx, toolID, fingerprint)
	if err != nil {
		return nil, fmt.Errorf("failed to check upvote: %w", err)
	}
	if exists {
		metrics.UpvotesTotal.WithLabelValues("duplicate").Inc()
		return &Outcome{Tool: tool}, nil
	}

	if err := l.upvotes.Create(ctx, toolID, fingerprint); err != nil {
		if !repository.IsConstraintViolation(err) {
			return nil, fmt.Errorf("failed to record upvote: %w", err)
		}
		// Lost the race to a concurrent request for the same pair.
		metrics.UpvotesTotal.WithLabelValues("duplicate").Inc()
		return l.snapshot(ctx, toolID, false)
	}

	if err := l.tools.IncrementUpvotes(ctx, toolID); err != nil {
		l.logger.Error("upvote recorded but counter not incremented",
			"tool_id", toolID,
			"error", err,
		)
		return nil, fmt.Errorf("failed to increment upvotes: %w", err)
	}

	metrics.UpvotesTotal.WithLabelValues("added").Inc()
	return l.snapshot(ctx, toolID, true)
}

func (l *Ledger) snapshot(ctx context.Context, toolID string, added bool) (*Outcome, error) {
	tool, err := l.tools.GetByID(ctx, toolID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload tool: %w", err)
	}
	return &Outcome{Added: added, Tool: tool}, nil
}
