package ingest

import (
	"context"
	"errors"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/medibridge/carepipe/internal/domain/records"
)

type memRepo struct {
	mu      sync.Mutex
	rows    []*records.Record
	err     error
	ctxErrs []error
}

func (m *memRepo) Create(ctx context.Context, r *records.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ctxErrs = append(m.ctxErrs, ctx.Err())
	if m.err != nil {
		return m.err
	}
	cp := *r
	m.rows = append(m.rows, &cp)
	return nil
}

func (m *memRepo) Get(_ context.Context, owner string, id records.RecordID) (*records.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.rows {
		if r.OwnerID == owner && r.ID == id {
			return r, nil
		}
	}
	return nil, records.ErrNotFound
}

func (m *memRepo) FindByOwner(_ context.Context, owner string) ([]*records.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*records.Record
	for _, r := range m.rows {
		if r.OwnerID == owner {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

type fakeStore struct {
	url   string
	err   error
	panic bool
	calls atomic.Int32
	key   string
	ctype string
	// block until ctx is done, then fail
	block bool
}

func (f *fakeStore) Put(ctx context.Context, key string, _ []byte, contentType string) (string, error) {
	f.calls.Add(1)
	f.key, f.ctype = key, contentType
	if f.panic {
		panic("storage exploded")
	}
	if f.block {
		<-ctx.Done()
		return "", errors.Join(records.ErrStorageUnavailable, ctx.Err())
	}
	return f.url, f.err
}

type fakeExtractor struct {
	text  string
	err   error
	calls atomic.Int32
}

func (f *fakeExtractor) Extract(_ context.Context, _ string, _ []byte) (string, error) {
	f.calls.Add(1)
	return f.text, f.err
}

type recorder struct {
	mu       sync.Mutex
	degraded [][]string
}

func (r *recorder) Ingested(d []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.degraded = append(r.degraded, d)
}

func (r *recorder) Analyzed(string, string) {}

type fakePayload struct {
	data     []byte
	readErr  error
	released atomic.Int32
}

func (p *fakePayload) Bytes() ([]byte, error) { return p.data, p.readErr }
func (p *fakePayload) Size() int64            { return int64(len(p.data)) }
func (p *fakePayload) Release() error {
	p.released.Add(1)
	return nil
}
