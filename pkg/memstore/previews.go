package memstore

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

type Preview struct {
	ContentType string
	Data        []byte
	ExpiresAt   time.Time
}

// Previews keeps uploaded images just long enough to show them back in a
// form. Nothing here is ever written to disk.
type Previews struct {
	mu    sync.Mutex
	ttl   time.Duration
	now   func() time.Time
	items map[string]Preview
}

func NewPreviews(ttl time.Duration) *Previews {
	return &Previews{
		ttl:   ttl,
		now:   time.Now,
		items: make(map[string]Preview),
	}
}

func (p *Previews) Put(contentType string, data []byte) string {
	p.mu.Lock()
	defer p.mu.Unlock()
	id := uuid.NewString()
	p.items[id] = Preview{
		ContentType: contentType,
		Data:        data,
		ExpiresAt:   p.now().Add(p.ttl),
	}
	return id
}

func (p *Previews) Get(id string) (Preview, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	preview, ok := p.items[id]
	if !ok || !p.now().Before(preview.ExpiresAt) {
		return Preview{}, false
	}
	return preview, true
}

// Sweep drops expired previews and reports how many went.
func (p *Previews) Sweep(now time.Time) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	var n int
	for id, preview := range p.items {
		if !now.Before(preview.ExpiresAt) {
			delete(p.items, id)
			n++
		}
	}
	return n
}
