package mock

import "github.com/iecho/tooldir/internal/repository"

// Repositories bundles the mocks with concrete types so tests can reach the
// error injection fields.
type Repositories struct {
	Tools             *ToolRepository
	Upvotes           *UpvoteRepository
	Collections       *CollectionRepository
	SharedCollections *SharedCollectionRepository
	Contacts          *ContactRepository
	RateLimits        *RateLimitRepository
	Health            *HealthRepository
}

// NewRepositories creates a fresh set of in-memory repositories.
func NewRepositories() *Repositories {
	return &Repositories{
		Tools:             NewToolRepository(),
		Upvotes:           NewUpvoteRepository(),
		Collections:       NewCollectionRepository(),
		SharedCollections: NewSharedCollectionRepository(),
		Contacts:          NewContactRepository(),
		RateLimits:        NewRateLimitRepository(),
		Health:            &HealthRepository{},
	}
}

// AsRepositories exposes the mocks through the repository interfaces.
func (m *Repositories) AsRepositories() *repository.Repositories {
	return &repository.Repositories{
		Tools:             m.Tools,
		Upvotes:           m.Upvotes,
		Collections:       m.Collections,
		SharedCollections: m.SharedCollections,
		Contacts:          m.Contacts,
		RateLimits:        m.RateLimits,
		Health:            m.Health,
		DatabaseType:      "mock",
		Cleanup:           func() {},
	}
}
