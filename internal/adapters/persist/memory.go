package persist

import (
	"context"
	"errors"
	"sync"
)

// ErrNoDocument is returned by LoadLatest when no document has been
// saved yet, whichever persister backs it.
var ErrNoDocument = errors.New("no deployment document saved")

// MemoryPersister keeps the latest document in memory. Tests use it to
// observe autosave behavior without touching the filesystem.
type MemoryPersister struct {
	mu    sync.Mutex
	doc   []byte
	saves int
}

// NewMemoryPersister creates an empty in-memory persister.
func NewMemoryPersister() *MemoryPersister {
	return &MemoryPersister{}
}

// Save implements session.Persister.
func (p *MemoryPersister) Save(ctx context.Context, doc []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.doc = append([]byte(nil), doc...)
	p.saves++
	return nil
}

// LoadLatest implements session.Persister.
func (p *MemoryPersister) LoadLatest(ctx context.Context) ([]byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.doc == nil {
		return nil, ErrNoDocument
	}
	return append([]byte(nil), p.doc...), nil
}

// Saves returns how many times Save has been called.
func (p *MemoryPersister) Saves() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.saves
}

// Latest returns the current document without copying semantics concerns.
func (p *MemoryPersister) Latest() []byte {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]byte(nil), p.doc...)
}
