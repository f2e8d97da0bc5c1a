package repository

import "context"

// UpvoteRepository records upvotes. (tool_id, fingerprint) is unique.
type UpvoteRepository interface {
	// Exists reports whether fingerprint already upvoted toolID.
	Exists(ctx context.Context, toolID, fingerprint string) (bool, error)

	// Create inserts an upvote. A duplicate pair returns *ConstraintViolation.
	Create(ctx context.Context, toolID, fingerprint string) error

	// CountByTool returns the number of upvote rows for a tool.
	CountByTool(ctx context.Context, toolID string) (int64, error)
}
