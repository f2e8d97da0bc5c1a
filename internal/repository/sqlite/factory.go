package sqlite

import (
	"database/sql"

	"github.com/iecho/tooldir/internal/config"
	"github.com/iecho/tooldir/internal/repository"
)

// NewRepositories creates all SQLite repository implementations.
// The cfg parameter is included for consistency with other database backends.
// The db parameter must be a valid, open database connection.
//
// Returns the repositories struct with DatabaseType set to "sqlite" and
// a Cleanup function that closes the database connection.
func NewRepositories(cfg *config.Config, db *sql.DB) (*repository.Repositories, error) {
	if db == nil {
		return nil, repository.ErrNilDatabase
	}

	return &repository.Repositories{
		Tools:             NewToolRepository(db),
		Upvotes:           NewUpvoteRepository(db),
		Collections:       NewCollectionRepository(db),
		SharedCollections: NewSharedCollectionRepository(db),
		Contacts:          NewContactRepository(db),
		RateLimits:        NewRateLimitRepository(db),
		Health:            NewHealthRepository(db),
		DatabaseType:      config.DBTypeSQLite,
		Cleanup: func() {
			db.Close()
		},
	}, nil
}
