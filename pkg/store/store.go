// Package store persists plans: a named, ordered selection of node IDs plus
// the category last viewed.
//
// Backends implement [Store]:
//   - [FileStore]: one JSON file per plan, for the CLI
//   - [MemoryStore]: process-local, for tests and ephemeral servers
//   - [RedisStore]: shared storage for multi-instance servers
//   - [MongoStore]: document storage
//   - [SQLiteStore]: single-file embedded database
//
// [Open] builds a backend from [Options].
//
// A store treats the selection as opaque: it saves and returns the list
// exactly as given. Filtering unknown IDs is the planner's job on load.
package store

import (
	"context"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/hexplanner/pkg/errors"
)

// Plan is one saved selection.
type Plan struct {
	ID        string    `json:"id" bson:"_id"`
	Name      string    `json:"name,omitempty" bson:"name,omitempty"`
	Category  string    `json:"category" bson:"category"`
	Selected  []string  `json:"selected" bson:"selected"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

// now returns the current time at the precision every backend preserves.
func now() time.Time { return time.Now().UTC().Truncate(time.Millisecond) }

// NewPlan returns an empty plan with a fresh ID.
func NewPlan(name, category string) *Plan {
	t := now()
	return &Plan{
		ID:        uuid.NewString(),
		Name:      name,
		Category:  category,
		Selected:  []string{},
		CreatedAt: t,
		UpdatedAt: t,
	}
}

// Update records a new planner state on p.
func (p *Plan) Update(category string, selected []string) {
	p.Category = category
	p.Selected = slices.Clone(selected)
	if p.Selected == nil {
		p.Selected = []string{}
	}
	p.UpdatedAt = now()
}

// Clone returns a deep copy of p.
func (p *Plan) Clone() *Plan {
	c := *p
	c.Selected = slices.Clone(p.Selected)
	return &c
}

// Store is the interface for plan storage backends.
type Store interface {
	// Get retrieves a plan by ID.
	// Returns nil, nil if the plan doesn't exist.
	Get(ctx context.Context, id string) (*Plan, error)

	// Set creates or replaces a plan.
	Set(ctx context.Context, p *Plan) error

	// Delete removes a plan. Deleting a missing plan is not an error.
	Delete(ctx context.Context, id string) error

	// List returns every plan ordered by ID.
	List(ctx context.Context) ([]*Plan, error)

	// Close releases the backend's resources.
	Close() error
}

func sortPlans(plans []*Plan) {
	slices.SortFunc(plans, func(a, b *Plan) int {
		switch {
		case a.ID < b.ID:
			return -1
		case a.ID > b.ID:
			return 1
		}
		return 0
	})
}

func validate(p *Plan) error {
	if p == nil {
		return errors.New(errors.ErrCodeInvalidInput, "nil plan")
	}
	return errors.ValidatePlanID(p.ID)
}
