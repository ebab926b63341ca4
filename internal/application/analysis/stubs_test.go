package analysis

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/bryanwahyu/codereview/internal/domain/ai"
	domain "github.com/bryanwahyu/codereview/internal/domain/analysis"
)

type stubClient struct {
	ready    error
	reply    string
	err      error
	calls    atomic.Int32
	prompts  []string
	mu       sync.Mutex
	complete func(ctx context.Context, prompt string) (string, error)
}

func (c *stubClient) Ready() error { return c.ready }

func (c *stubClient) Complete(ctx context.Context, prompt string) (string, error) {
	c.calls.Add(1)
	c.mu.Lock()
	c.prompts = append(c.prompts, prompt)
	c.mu.Unlock()
	if c.complete != nil {
		return c.complete(ctx, prompt)
	}
	return c.reply, c.err
}

var _ ai.Client = (*stubClient)(nil)

type memRepo struct {
	mu      sync.Mutex
	records []*domain.Record
	saveErr error
}

func (r *memRepo) Save(_ context.Context, rec *domain.Record) error {
	if r.saveErr != nil {
		return r.saveErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, ex := range r.records {
		if ex.ID == rec.ID {
			return errors.New("duplicate id")
		}
	}
	cp := *rec
	r.records = append(r.records, &cp)
	return nil
}

func (r *memRepo) Get(_ context.Context, id string) (*domain.Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rec := range r.records {
		if rec.ID == id {
			return rec, nil
		}
	}
	return nil, nil
}

func (r *memRepo) ListByOwner(_ context.Context, owner string, page, pageSize int) ([]*domain.Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Record
	for i := len(r.records) - 1; i >= 0; i-- {
		if r.records[i].OwnerID == owner {
			out = append(out, r.records[i])
		}
	}
	start := (page - 1) * pageSize
	if start >= len(out) {
		return nil, nil
	}
	end := min(start+pageSize, len(out))
	return out[start:end], nil
}

type stubArchive struct {
	puts atomic.Int32
	err  error
}

func (a *stubArchive) Put(_ context.Context, rec *domain.Record) (string, error) {
	a.puts.Add(1)
	return "mem://" + rec.ID, a.err
}
