package adminclient

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"go-studioadmin/internal/pkg/resource"
)

// Resource describes one admin collection: where it lives and how to read
// identity and search text from its rows.
type Resource[T any] struct {
	Client       *Client
	Path         string
	ID           func(*T) int64
	Normalize    func(*T)
	SearchFields func(*T) []string
	// Prepend puts created rows first (collections listed newest first).
	Prepend bool
}

type searchable interface{ SearchFields() []string }

// For builds a Resource over an entity type from the domain model.
func For[T any, PT resource.Model[T]](c *Client, path string) *Resource[T] {
	return &Resource[T]{
		Client: c,
		Path:   strings.Trim(path, "/"),
		ID:     func(v *T) int64 { return PT(v).EntityID() },
		SearchFields: func(v *T) []string {
			if s, ok := any(PT(v)).(searchable); ok {
				return s.SearchFields()
			}
			return nil
		},
	}
}

func (r *Resource[T]) itemPath(id int64) string { return r.Path + "/" + strconv.FormatInt(id, 10) }

func (r *Resource[T]) normalize(v *T) {
	if r.Normalize != nil {
		r.Normalize(v)
	}
}

func (r *Resource[T]) List(ctx context.Context) ([]T, error) {
	res, err := Get[ListResponse[T]](ctx, r.Client, r.Path)
	if err != nil {
		return nil, err
	}
	for i := range res.Items {
		r.normalize(&res.Items[i])
	}
	return res.Items, nil
}

func (r *Resource[T]) Create(ctx context.Context, payload any) (T, error) {
	res, err := Post[ItemResponse[T]](ctx, r.Client, r.Path, payload)
	if err != nil {
		return res.Item, err
	}
	r.normalize(&res.Item)
	return res.Item, nil
}

func (r *Resource[T]) Update(ctx context.Context, id int64, payload any) (T, error) {
	res, err := Patch[ItemResponse[T]](ctx, r.Client, r.itemPath(id), payload)
	if err != nil {
		return res.Item, err
	}
	r.normalize(&res.Item)
	return res.Item, nil
}

func (r *Resource[T]) Delete(ctx context.Context, id int64) error {
	_, err := Delete[ItemResponse[json.RawMessage]](ctx, r.Client, r.itemPath(id))
	return err
}

// NullifyEmpty encodes v as a JSON object with blank top-level strings
// turned into null. Create payloads go through it.
func NullifyEmpty(v any) (map[string]any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("payload is not an object: %w", err)
	}
	for k, val := range m {
		if s, ok := val.(string); ok && strings.TrimSpace(s) == "" {
			m[k] = nil
		}
	}
	return m, nil
}

// Record is an untyped row, for collections addressed only by path.
type Record map[string]any

// RecordID reads the numeric id of a decoded row.
func RecordID(r *Record) int64 {
	switch v := (*r)["id"].(type) {
	case float64:
		return int64(v)
	case json.Number:
		n, _ := v.Int64()
		return n
	case int64:
		return v
	case int:
		return int64(v)
	}
	return 0
}

// Records builds a Resource over untyped rows matching on the named fields.
func Records(c *Client, path string, search ...string) *Resource[Record] {
	return &Resource[Record]{
		Client: c,
		Path:   strings.Trim(path, "/"),
		ID:     RecordID,
		SearchFields: func(r *Record) []string {
			out := make([]string, 0, len(search))
			for _, f := range search {
				if v, ok := (*r)[f]; ok && v != nil {
					out = append(out, fmt.Sprint(v))
				}
			}
			return out
		},
	}
}
