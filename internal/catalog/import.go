package catalog

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/iecho/tooldir/internal/models"
	"github.com/iecho/tooldir/internal/repository"
)

// Mode selects how Import treats tools already in the repository.
type Mode string

const (
	// ModeSync upserts every entry and keeps existing upvote counts.
	ModeSync Mode = "sync"
	// ModeFresh deletes every tool (and its upvotes) before inserting.
	ModeFresh Mode = "fresh"
)

// ParseMode validates a mode name.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeSync, ModeFresh:
		return Mode(s), nil
	}
	return "", fmt.Errorf("unknown import mode %q (want sync or fresh)", s)
}

// Result summarizes an import.
type Result struct {
	Mode     Mode   `json:"mode"`
	DryRun   bool   `json:"dry_run"`
	Tools    int    `json:"tools"`
	Upserted int    `json:"upserted"`
	Deleted  int64  `json:"deleted"`
	Failed   string `json:"failed,omitempty"`
}

// Import writes tools into repo. With dryRun set nothing is written and the
// result reports what would have been.
func Import(ctx context.Context, repo repository.ToolRepository, tools []*models.Tool, mode Mode, dryRun bool) (*Result, error) {
	res := &Result{Mode: mode, DryRun: dryRun, Tools: len(tools)}
	if dryRun {
		return res, nil
	}

	if mode == ModeFresh {
		deleted, err := repo.DeleteAll(ctx)
		if err != nil {
			return res, fmt.Errorf("failed to clear catalog: %w", err)
		}
		res.Deleted = deleted
		slog.Info("catalog cleared", "deleted", deleted)
	}

	preserve := mode == ModeSync
	for _, tool := range tools {
		if err := repo.Upsert(ctx, tool, preserve); err != nil {
			res.Failed = tool.ID
			return res, fmt.Errorf("failed to upsert tool %s: %w", tool.ID, err)
		}
		res.Upserted++
	}

	slog.Info("catalog imported",
		"mode", mode,
		"tools", res.Upserted,
		"deleted", res.Deleted,
	)
	return res, nil
}
