package memstore

import (
	"context"
	"fmt"
	"sync"

	"github.com/pershin-daniil/bsa-site/pkg/models"
)

// Collection is an ordered, process-lifetime list of records. Everything is
// lost on restart.
type Collection[T models.Entity[T]] struct {
	mu    sync.RWMutex
	items []T
}

func NewCollection[T models.Entity[T]]() *Collection[T] {
	return &Collection[T]{}
}

func (c *Collection[T]) List(_ context.Context) ([]T, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]T(nil), c.items...), nil
}

func (c *Collection[T]) Insert(_ context.Context, item T) (T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := item.EntityID()
	if id == "" {
		var zero T
		return zero, fmt.Errorf("err inserting record: empty id")
	}
	for _, existing := range c.items {
		if existing.EntityID() == id {
			var zero T
			return zero, fmt.Errorf("err inserting record %s: %w", id, models.ErrDuplicateID)
		}
	}
	c.items = append(c.items, item)
	return item, nil
}

// Delete removes the record with id and keeps the others in order.
func (c *Collection[T]) Delete(_ context.Context, id string) (T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, existing := range c.items {
		if existing.EntityID() != id {
			continue
		}
		rest := make([]T, 0, len(c.items)-1)
		rest = append(rest, c.items[:i]...)
		rest = append(rest, c.items[i+1:]...)
		c.items = rest
		return existing, nil
	}
	var zero T
	return zero, fmt.Errorf("err deleting record %s: %w", id, models.ErrNotFound)
}
