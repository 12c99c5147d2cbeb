package shared

import (
	"github.com/google/uuid"
)

// AggregateRoot is the base interface for all aggregate roots
type AggregateRoot interface {
	Entity
	GetVersion() int
	IncrementVersion()
}

// BaseAggregateRoot provides common fields for aggregate roots.
// The Version column backs optimistic concurrency control: every state
// change increments it, and repositories compare-and-swap on it when saving.
type BaseAggregateRoot struct {
	BaseEntity
	Version int `gorm:"not null;default:1"`
}

// GetVersion returns the aggregate version for optimistic locking
func (a *BaseAggregateRoot) GetVersion() int {
	return a.Version
}

// IncrementVersion increments the version number
func (a *BaseAggregateRoot) IncrementVersion() {
	a.Version++
}

// NewBaseAggregateRoot creates a new base aggregate root
func NewBaseAggregateRoot() BaseAggregateRoot {
	return BaseAggregateRoot{
		BaseEntity: NewBaseEntity(),
		Version:    1,
	}
}

// AuditedAggregateRoot extends BaseAggregateRoot with the identity of the
// user who created the record. The user itself is managed by an external
// identity service; only the ID is recorded here.
type AuditedAggregateRoot struct {
	BaseAggregateRoot
	CreatedBy *uuid.UUID `gorm:"type:uuid;index"`
}

// NewAuditedAggregateRoot creates a new aggregate root with creator info
func NewAuditedAggregateRoot(createdBy uuid.UUID) AuditedAggregateRoot {
	root := AuditedAggregateRoot{
		BaseAggregateRoot: NewBaseAggregateRoot(),
	}
	if createdBy != uuid.Nil {
		root.CreatedBy = &createdBy
	}
	return root
}

// GetCreatedBy returns the creator user ID
func (a *AuditedAggregateRoot) GetCreatedBy() *uuid.UUID {
	return a.CreatedBy
}
