package snapshot

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	solanago "github.com/gagliardetto/solana-go"
)

var ErrPoolNotFound = errors.New("pool not found")

// Provider yields the state a quote is computed against. Fetching it from
// the ledger is left to implementations outside this module.
type Provider interface {
	Snapshot(ctx context.Context, pool solanago.PublicKey) (*Snapshot, error)
}

// MemoryProvider serves snapshots put into it. It is safe for concurrent use.
type MemoryProvider struct {
	mu    sync.RWMutex
	pools map[solanago.PublicKey]*Snapshot
}

func NewMemoryProvider(snapshots ...*Snapshot) *MemoryProvider {
	p := &MemoryProvider{pools: make(map[solanago.PublicKey]*Snapshot, len(snapshots))}
	for _, s := range snapshots {
		p.Put(s)
	}
	return p
}

// Put replaces the snapshot stored for s.Pool.Pool.
func (p *MemoryProvider) Put(s *Snapshot) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pools[s.Pool.Pool] = s
}

func (p *MemoryProvider) Snapshot(ctx context.Context, pool solanago.PublicKey) (*Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	s, ok := p.pools[pool]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrPoolNotFound, pool)
	}
	return s, nil
}

// FileProvider reads a JSON file holding one snapshot or an array of them on
// every call. A zero pool key selects the only snapshot of the file.
type FileProvider struct {
	Path string
}

func (p FileProvider) Snapshot(ctx context.Context, pool solanago.PublicKey) (*Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(p.Path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	snapshots, err := DecodeAll(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", p.Path, err)
	}
	if pool.IsZero() {
		if len(snapshots) != 1 {
			return nil, fmt.Errorf("%s holds %d pools, a pool address is required", p.Path, len(snapshots))
		}
		return snapshots[0], nil
	}
	for _, s := range snapshots {
		if s.Pool.Pool.Equals(pool) {
			return s, nil
		}
	}
	return nil, fmt.Errorf("%w: %s in %s", ErrPoolNotFound, pool, p.Path)
}
