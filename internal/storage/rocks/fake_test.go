package rocks

import (
	"errors"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/yndnr/cfkv/internal/storage/kv"
)

// fakeEngine is an in-memory kv.Engine with hooks for injecting faults.
type fakeEngine struct {
	mu  sync.Mutex
	cfs map[string]*fakeCF

	closes   atomic.Int32
	closeErr error
}

func newFakeEngine(names ...string) *fakeEngine {
	e := &fakeEngine{cfs: make(map[string]*fakeCF)}
	for _, n := range names {
		e.cfs[n] = &fakeCF{name: n, data: make(map[string][]byte)}
	}
	return e
}

func (e *fakeEngine) cf(name string) *fakeCF {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cfs[name]
}

func (e *fakeEngine) ColumnFamily(name string) (kv.ColumnFamily, bool) {
	cf := e.cf(name)
	if cf == nil {
		return nil, false
	}
	return cf, true
}

func (e *fakeEngine) ColumnFamilies() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	names := make([]string, 0, len(e.cfs))
	for n := range e.cfs {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func (e *fakeEngine) Close() error {
	e.closes.Add(1)
	return e.closeErr
}

type fakeCF struct {
	name string

	mu   sync.Mutex
	data map[string][]byte

	// failKeys makes lookups of these keys fail.
	failKeys map[string]error
	// onCall runs before every operation.
	onCall func()
}

func (c *fakeCF) Name() string { return c.name }

func (c *fakeCF) hook() {
	if c.onCall != nil {
		c.onCall()
	}
}

func (c *fakeCF) Put(key, value []byte) error {
	c.hook()
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[string(key)] = append([]byte(nil), value...)
	return nil
}

func (c *fakeCF) Merge(key, value []byte) error {
	c.hook()
	return kv.ErrMergeNotSupported
}

func (c *fakeCF) Get(key []byte) ([]byte, bool, error) {
	c.hook()
	if err, ok := c.failKeys[string(key)]; ok {
		return nil, false, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.data[string(key)]
	return v, ok, nil
}

func (c *fakeCF) MultiGet(keys [][]byte) []kv.Lookup {
	out := make([]kv.Lookup, len(keys))
	for i, k := range keys {
		v, found, err := c.Get(k)
		out[i] = kv.Lookup{Value: v, Found: found, Err: err}
	}
	return out
}

func (c *fakeCF) Delete(key []byte) error {
	c.hook()
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, string(key))
	return nil
}

var errDisk = errors.New("disk failure")
