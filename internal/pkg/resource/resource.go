// Package resource implements the list/create/update/delete surface shared by
// every admin collection. One Config per entity; DAO, Service and Handler are
// generic over the entity type.
package resource

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

var (
	ErrNotFound = errors.New("not found")
	ErrInvalid  = errors.New("invalid")
	ErrConflict = errors.New("conflict")
)

// Invalidf wraps ErrInvalid with a message for the client.
func Invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalid, fmt.Sprintf(format, args...))
}

// Conflictf wraps ErrConflict with a message for the client.
func Conflictf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrConflict, fmt.Sprintf(format, args...))
}

// Model is satisfied by a pointer to an entity embedding model.Base.
type Model[T any] interface {
	*T
	EntityID() int64
	SetEntityID(int64)
}

// Config describes one admin collection.
type Config[T any] struct {
	// Name is the cache/metrics label and the URL segment, e.g. "groups".
	Name string
	// Order is the SQL ORDER BY for lists; defaults to insertion order.
	Order string
	// Scope adjusts every read query (preloads, joins).
	Scope func(*gorm.DB) *gorm.DB
	// ReadOnly lists JSON keys a PATCH may not change. id, created_at and
	// updated_at are always read-only.
	ReadOnly []string
	// Search returns the fields a free-text query is matched against.
	Search func(*T) []string
	// Normalize runs before every write (defaults, NULL for blank optionals).
	Normalize func(*T)
	// BeforeCreate / BeforeUpdate run after Normalize and validation.
	BeforeCreate func(ctx context.Context, item *T) error
	BeforeUpdate func(ctx context.Context, old, item *T) error
	// AfterSave runs once a create or update is committed.
	AfterSave func(ctx context.Context, item *T)
	// AfterDelete runs once a row is removed (dependent rows, files).
	AfterDelete func(ctx context.Context, id int64)
	// Decorate fills derived, non-persisted fields on every item handed out.
	Decorate func(*T)
}

func (c Config[T]) order() string {
	if c.Order == "" {
		return "id ASC"
	}
	return c.Order
}

func (c Config[T]) readOnly() map[string]struct{} {
	ro := map[string]struct{}{"id": {}, "created_at": {}, "updated_at": {}}
	for _, k := range c.ReadOnly {
		ro[k] = struct{}{}
	}
	return ro
}
