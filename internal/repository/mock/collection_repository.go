package mock

import (
	"context"
	"sync"
	"time"

	"github.com/iecho/tooldir/internal/models"
	"github.com/iecho/tooldir/internal/repository"
)

// CollectionRepository is an in-memory repository.CollectionRepository.
type CollectionRepository struct {
	mu     sync.Mutex
	byFP   map[string]*models.Collection
	nextID int64

	GetError  error
	SaveError error
}

// NewCollectionRepository creates an empty mock CollectionRepository.
func NewCollectionRepository() *CollectionRepository {
	return &CollectionRepository{byFP: make(map[string]*models.Collection), nextID: 1}
}

var _ repository.CollectionRepository = (*CollectionRepository)(nil)

func (r *CollectionRepository) GetByFingerprint(ctx context.Context, fingerprint string) (*models.Collection, error) {
	if r.GetError != nil {
		return nil, r.GetError
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.byFP[fingerprint]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *c
	copied.ToolIDs = append([]string{}, c.ToolIDs...)
	return &copied, nil
}

func (r *CollectionRepository) Save(ctx context.Context, fingerprint string, toolIDs []string) (*models.Collection, error) {
	if r.SaveError != nil {
		return nil, r.SaveError
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.byFP[fingerprint]
	if !ok {
		c = &models.Collection{ID: r.nextID, Fingerprint: fingerprint}
		r.nextID++
		r.byFP[fingerprint] = c
	}
	c.ToolIDs = append([]string{}, toolIDs...)
	c.CreatedAt = time.Now().UTC()
	copied := *c
	return &copied, nil
}

// SharedCollectionRepository is an in-memory repository.SharedCollectionRepository
// with a unique hash index.
type SharedCollectionRepository struct {
	mu     sync.Mutex
	byID   map[string]*models.SharedCollection
	byHash map[string]string

	GetByHashError error
	CreateError    error
	UpdateError    error

	// OnCreate runs before the insert; use it to simulate a concurrent writer.
	OnCreate func(ctx context.Context, sc *models.SharedCollection) error

	CreateCalls int
	UpdateCalls int
}

// NewSharedCollectionRepository creates an empty mock SharedCollectionRepository.
func NewSharedCollectionRepository() *SharedCollectionRepository {
	return &SharedCollectionRepository{
		byID:   make(map[string]*models.SharedCollection),
		byHash: make(map[string]string),
	}
}

var _ repository.SharedCollectionRepository = (*SharedCollectionRepository)(nil)

func (r *SharedCollectionRepository) get(id string) (*models.SharedCollection, error) {
	sc, ok := r.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *sc
	copied.ToolIDs = append([]string{}, sc.ToolIDs...)
	return &copied, nil
}

func (r *SharedCollectionRepository) GetByID(ctx context.Context, id string) (*models.SharedCollection, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.get(id)
}

func (r *SharedCollectionRepository) GetByHash(ctx context.Context, hash string) (*models.SharedCollection, error) {
	if r.GetByHashError != nil {
		return nil, r.GetByHashError
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	id, ok := r.byHash[hash]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return r.get(id)
}

// Insert stores a collection directly, bypassing hooks and error injection.
func (r *SharedCollectionRepository) Insert(sc *models.SharedCollection) {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *sc
	copied.ToolIDs = append([]string{}, sc.ToolIDs...)
	r.byID[sc.ID] = &copied
	r.byHash[sc.ToolHash] = sc.ID
}

func (r *SharedCollectionRepository) Create(ctx context.Context, sc *models.SharedCollection) error {
	if r.CreateError != nil {
		return r.CreateError
	}
	if r.OnCreate != nil {
		if err := r.OnCreate(ctx, sc); err != nil {
			return err
		}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.CreateCalls++
	if _, dup := r.byHash[sc.ToolHash]; dup {
		return &repository.ConstraintViolation{Constraint: "shared_collections_tool_hash_key"}
	}
	if _, dup := r.byID[sc.ID]; dup {
		return &repository.ConstraintViolation{Constraint: "shared_collections_pkey"}
	}
	if sc.CreatedAt.IsZero() {
		sc.CreatedAt = time.Now().UTC()
	}
	copied := *sc
	copied.ToolIDs = append([]string{}, sc.ToolIDs...)
	r.byID[sc.ID] = &copied
	r.byHash[sc.ToolHash] = sc.ID
	return nil
}

func (r *SharedCollectionRepository) UpdateToolIDs(ctx context.Context, id string, toolIDs []string) error {
	if r.UpdateError != nil {
		return r.UpdateError
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.UpdateCalls++
	sc, ok := r.byID[id]
	if !ok {
		return repository.ErrNotFound
	}
	sc.ToolIDs = append([]string{}, toolIDs...)
	return nil
}

// ContactRepository is an in-memory repository.ContactRepository.
type ContactRepository struct {
	mu       sync.Mutex
	Contacts []models.Contact

	CreateError error
}

// NewContactRepository creates an empty mock ContactRepository.
func NewContactRepository() *ContactRepository {
	return &ContactRepository{}
}

var _ repository.ContactRepository = (*ContactRepository)(nil)

func (r *ContactRepository) Create(ctx context.Context, c *models.Contact) error {
	if r.CreateError != nil {
		return r.CreateError
	}
	if c == nil || c.ID == "" {
		return repository.ErrInvalidInput
	}
	if c.Status == "" {
		c.Status = models.ContactStatusNew
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Contacts = append(r.Contacts, *c)
	return nil
}
