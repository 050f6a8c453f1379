package adminclient

import (
	"context"
	"errors"
	"sync"

	"go-studioadmin/internal/pkg/resource"
)

var (
	ErrUnknownRow = errors.New("row not in collection")
	// ErrSuperseded is returned when a newer request for the same row was
	// issued before this one answered; its response is discarded.
	ErrSuperseded = errors.New("superseded by a newer request")
)

// Collection is the local state of one admin list. Network calls run outside
// the lock, so saves of different rows overlap freely.
type Collection[T any] struct {
	res      *Resource[T]
	defaults func() T

	mu       sync.Mutex
	items    []T
	form     T
	version  uint64
	seq      map[int64]uint64
	saving   map[int64]int
	creating int
	counts   map[string]countMemo
	notice   Notice
}

type countMemo struct {
	version uint64
	n       int
}

// NewCollection seeds the list with initial rows; defaults builds the empty
// create form and may be nil.
func NewCollection[T any](res *Resource[T], initial []T, defaults func() T) *Collection[T] {
	if defaults == nil {
		defaults = func() T { var zero T; return zero }
	}
	c := &Collection[T]{
		res:      res,
		defaults: defaults,
		items:    append([]T(nil), initial...),
		form:     defaults(),
		seq:      make(map[int64]uint64),
		saving:   make(map[int64]int),
		counts:   make(map[string]countMemo),
	}
	for i := range c.items {
		res.normalize(&c.items[i])
	}
	return c
}

func (c *Collection[T]) Resource() *Resource[T] { return c.res }

// Load replaces the local rows with the server list. Unsaved edits are lost.
func (c *Collection[T]) Load(ctx context.Context) error {
	items, err := c.res.List(ctx)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.items = items
	c.version++
	c.mu.Unlock()
	return nil
}

func (c *Collection[T]) Items() []T {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]T(nil), c.items...)
}

func (c *Collection[T]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

func (c *Collection[T]) Row(id int64) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if i := c.indexOf(id); i >= 0 {
		return c.items[i], true
	}
	var zero T
	return zero, false
}

// Edit applies an unsaved local change to one row.
func (c *Collection[T]) Edit(id int64, fn func(*T)) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	i := c.indexOf(id)
	if i < 0 {
		return false
	}
	fn(&c.items[i])
	c.version++
	return true
}

func (c *Collection[T]) Form() T {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.form
}

func (c *Collection[T]) EditForm(fn func(*T)) {
	c.mu.Lock()
	fn(&c.form)
	c.mu.Unlock()
}

// Create submits the form with blank optionals as null. On success the
// returned row is added exactly once and the form resets; on failure the
// form is kept.
func (c *Collection[T]) Create(ctx context.Context) (T, error) {
	c.mu.Lock()
	form := c.form
	c.creating++
	c.mu.Unlock()

	var item T
	payload, err := NullifyEmpty(form)
	if err == nil {
		item, err = c.res.Create(ctx, payload)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.creating--
	if err != nil {
		c.notice = failure(err)
		var zero T
		return zero, err
	}
	if i := c.indexOf(c.res.ID(&item)); i >= 0 {
		c.items[i] = item
	} else if c.res.Prepend {
		c.items = append([]T{item}, c.items...)
	} else {
		c.items = append(c.items, item)
	}
	c.version++
	c.form = c.defaults()
	c.notice = success(textCreated)
	return item, nil
}

// Save PATCHes the local row and replaces exactly that row with the answer.
// On failure the local edits stay in place.
func (c *Collection[T]) Save(ctx context.Context, id int64) (T, error) {
	c.mu.Lock()
	i := c.indexOf(id)
	if i < 0 {
		c.mu.Unlock()
		var zero T
		return zero, ErrUnknownRow
	}
	row := c.items[i]
	seq := c.begin(id)
	c.mu.Unlock()

	item, err := c.res.Update(ctx, id, row)
	return c.finish(id, seq, item, err, textSaved)
}

// Apply runs a server action that answers with the updated row (for example
// auto-assign) under the same sequencing as Save.
func (c *Collection[T]) Apply(ctx context.Context, id int64, text string, call func(ctx context.Context) (T, error)) (T, error) {
	c.mu.Lock()
	if c.indexOf(id) < 0 {
		c.mu.Unlock()
		var zero T
		return zero, ErrUnknownRow
	}
	seq := c.begin(id)
	c.mu.Unlock()

	item, err := call(ctx)
	return c.finish(id, seq, item, err, text)
}

// Delete removes the row only once the server confirms.
func (c *Collection[T]) Delete(ctx context.Context, id int64) error {
	c.mu.Lock()
	if c.indexOf(id) < 0 {
		c.mu.Unlock()
		return ErrUnknownRow
	}
	seq := c.begin(id)
	c.mu.Unlock()

	err := c.res.Delete(ctx, id)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.end(id)
	if err != nil {
		if c.seq[id] != seq {
			return ErrSuperseded
		}
		c.notice = failure(err)
		return err
	}
	if i := c.indexOf(id); i >= 0 {
		c.items = append(c.items[:i], c.items[i+1:]...)
		c.version++
	}
	c.notice = success(textDeleted)
	return nil
}

// Filter returns the rows whose search fields contain q, case-insensitively.
func (c *Collection[T]) Filter(q string) []T {
	return resource.Filter(c.Items(), q, c.res.SearchFields)
}

// Count returns how many rows satisfy pred, memoized under key until the
// list changes.
func (c *Collection[T]) Count(key string, pred func(*T) bool) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if m, ok := c.counts[key]; ok && m.version == c.version {
		return m.n
	}
	n := 0
	for i := range c.items {
		if pred(&c.items[i]) {
			n++
		}
	}
	c.counts[key] = countMemo{version: c.version, n: n}
	return n
}

// Saving reports whether a Save, Delete or Apply for the row is in flight.
func (c *Collection[T]) Saving(id int64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.saving[id] > 0
}

func (c *Collection[T]) Creating() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.creating > 0
}

func (c *Collection[T]) Notice() Notice {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.notice
}

func (c *Collection[T]) setNotice(n Notice) {
	c.mu.Lock()
	c.notice = n
	c.mu.Unlock()
}

func (c *Collection[T]) finish(id int64, seq uint64, item T, err error, text string) (T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.end(id)
	var zero T
	if c.seq[id] != seq {
		return zero, ErrSuperseded
	}
	if err != nil {
		c.notice = failure(err)
		return zero, err
	}
	if i := c.indexOf(id); i >= 0 {
		c.items[i] = item
		c.version++
	}
	c.notice = success(text)
	return item, nil
}

// begin and end must be called with mu held.
func (c *Collection[T]) begin(id int64) uint64 {
	c.seq[id]++
	c.saving[id]++
	return c.seq[id]
}

func (c *Collection[T]) end(id int64) {
	if c.saving[id]--; c.saving[id] <= 0 {
		delete(c.saving, id)
	}
}

func (c *Collection[T]) indexOf(id int64) int {
	for i := range c.items {
		if c.res.ID(&c.items[i]) == id {
			return i
		}
	}
	return -1
}
