package shared

import (
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Auditable is the identity and audit capability shared by every persisted entity.
// Persistence and transport code operate on entities through this interface.
type Auditable interface {
	GetID() uuid.UUID
	GetCreatedAt() time.Time
	GetUpdatedAt() time.Time
	GetTags() []string
	SetTags(tags []string)
	HasTag(tag string) bool
	Touch(at time.Time)
}

// AuditableEntity carries the identifier, timestamps and tag set of an entity.
// Entities embed it rather than inheriting behaviour from a common base type.
type AuditableEntity struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
	Tags      []string  `gorm:"serializer:json;type:text;not null"`
}

// NewAuditableEntity creates an auditable entity with a generated ID
func NewAuditableEntity() AuditableEntity {
	now := time.Now()
	return AuditableEntity{
		ID:        uuid.New(),
		CreatedAt: now,
		UpdatedAt: now,
		Tags:      []string{},
	}
}

// GetID returns the entity ID
func (e *AuditableEntity) GetID() uuid.UUID {
	return e.ID
}

// GetCreatedAt returns the creation timestamp
func (e *AuditableEntity) GetCreatedAt() time.Time {
	return e.CreatedAt
}

// GetUpdatedAt returns the last update timestamp
func (e *AuditableEntity) GetUpdatedAt() time.Time {
	return e.UpdatedAt
}

// GetTags returns the normalized tag set
func (e *AuditableEntity) GetTags() []string {
	return e.Tags
}

// SetTags replaces the tag set
func (e *AuditableEntity) SetTags(tags []string) {
	e.Tags = NormalizeTags(tags)
}

// HasTag reports whether the entity carries the tag
func (e *AuditableEntity) HasTag(tag string) bool {
	tag = strings.ToLower(strings.TrimSpace(tag))
	for _, t := range e.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// Touch sets the modification timestamp
func (e *AuditableEntity) Touch(at time.Time) {
	e.UpdatedAt = at
}

// NormalizeTags trims, lower-cases, dedupes and sorts tags.
// The result is never nil.
func NormalizeTags(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}
