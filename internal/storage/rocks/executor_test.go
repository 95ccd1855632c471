package rocks

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aalhour/rockyardkv"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/yndnr/cfkv/internal/infra/blocking"
	"github.com/yndnr/cfkv/internal/storage/kv"
	"github.com/yndnr/cfkv/internal/telemetry/metric"
)

func newTestExecutor(t *testing.T, opts *Options, execOpts ...ExecutorOption) *Executor {
	t.Helper()
	_, h := buildTestDB(t, opts)
	exec := NewExecutor(h, opts.ColumnFamilyName(), execOpts...)
	t.Cleanup(func() { _ = exec.Close() })
	return exec
}

func mustExec(t *testing.T, exec *Executor, ins Instruction) Outcome {
	t.Helper()
	out, err := exec.Exec(context.Background(), ins)
	if err != nil {
		t.Fatalf("Exec(%s) error = %v", ins.Name(), err)
	}
	return out
}

func TestExecutor_SaveGet(t *testing.T) {
	exec := newTestExecutor(t, newTestOptions(t, "cf"))

	out := mustExec(t, exec, SaveCf{Key: "a", Value: []byte{1}})
	if _, ok := out.(None); !ok {
		t.Fatalf("save outcome = %T, want None", out)
	}

	out = mustExec(t, exec, GetCf{Key: "a"})
	got, ok := out.(SingleByte)
	if !ok {
		t.Fatalf("get outcome = %T, want SingleByte", out)
	}
	if !got.Found || string(got.Value) != "\x01" {
		t.Errorf("get = %+v, want [1]", got)
	}
}

func TestExecutor_GetMissing(t *testing.T) {
	exec := newTestExecutor(t, newTestOptions(t, "cf"))

	got := mustExec(t, exec, GetCf{Key: "nope"}).(SingleByte)
	if got.Found || got.Value != nil {
		t.Errorf("get missing = %+v, want absent", got)
	}
}

func TestExecutor_Remove(t *testing.T) {
	exec := newTestExecutor(t, newTestOptions(t, "cf"))

	mustExec(t, exec, SaveCf{Key: "a", Value: []byte{1}})
	out := mustExec(t, exec, RemoveCf{Key: "a"})
	if _, ok := out.(None); !ok {
		t.Fatalf("remove outcome = %T, want None", out)
	}

	if got := mustExec(t, exec, GetCf{Key: "a"}).(SingleByte); got.Found {
		t.Errorf("get after remove = %+v, want absent", got)
	}

	// Removing a missing key is not an error.
	mustExec(t, exec, RemoveCf{Key: "a"})
}

func TestExecutor_SaveOverwrites(t *testing.T) {
	exec := newTestExecutor(t, newTestOptions(t, "cf"))

	mustExec(t, exec, SaveCf{Key: "a", Value: []byte("old")})
	mustExec(t, exec, SaveCf{Key: "a", Value: []byte("new")})

	if got := mustExec(t, exec, GetCf{Key: "a"}).(SingleByte); string(got.Value) != "new" {
		t.Errorf("get = %q, want new", got.Value)
	}
}

func TestExecutor_MultiGetOrder(t *testing.T) {
	for _, cf := range []string{"cf", rockyardkv.DefaultColumnFamilyName} {
		t.Run(cf, func(t *testing.T) {
			exec := newTestExecutor(t, newTestOptions(t, cf))

			mustExec(t, exec, SaveCf{Key: "a", Value: []byte{1}})
			mustExec(t, exec, SaveCf{Key: "c", Value: []byte{3}})

			out := mustExec(t, exec, MultiGetCf{Keys: []string{"a", "b", "c"}})
			got, ok := out.(MultiBytes)
			if !ok {
				t.Fatalf("multi get outcome = %T, want MultiBytes", out)
			}
			if len(got.Values) != 3 {
				t.Fatalf("len(Values) = %d, want 3", len(got.Values))
			}

			want := []Result{
				{Value: []byte{1}, Found: true},
				{},
				{Value: []byte{3}, Found: true},
			}
			for i, w := range want {
				g := got.Values[i]
				if g.Err != nil {
					t.Errorf("Values[%d].Err = %v", i, g.Err)
				}
				if g.Found != w.Found || string(g.Value) != string(w.Value) {
					t.Errorf("Values[%d] = %+v, want %+v", i, g, w)
				}
			}
		})
	}
}

func TestExecutor_MultiGetEmpty(t *testing.T) {
	exec := newTestExecutor(t, newTestOptions(t, "cf"))

	got := mustExec(t, exec, MultiGetCf{}).(MultiBytes)
	if len(got.Values) != 0 {
		t.Errorf("len(Values) = %d, want 0", len(got.Values))
	}
}

func TestExecutor_MultiGetPerKeyError(t *testing.T) {
	engine := newFakeEngine("cf")
	engine.cf("cf").failKeys = map[string]error{"b": errDisk}
	exec := NewExecutor(NewSharedHandle(engine), "cf")
	defer exec.Close()

	mustExec(t, exec, SaveCf{Key: "a", Value: []byte{1}})

	got := mustExec(t, exec, MultiGetCf{Keys: []string{"a", "b"}}).(MultiBytes)
	if got.Values[0].Err != nil || !got.Values[0].Found {
		t.Errorf("Values[0] = %+v, want found", got.Values[0])
	}
	if !errors.Is(got.Values[1].Err, ErrExecutor) {
		t.Errorf("Values[1].Err = %v, want ErrExecutor", got.Values[1].Err)
	}
	if !errors.Is(got.Values[1].Err, errDisk) {
		t.Errorf("Values[1].Err = %v, want errDisk in chain", got.Values[1].Err)
	}
}

func TestExecutor_Merge(t *testing.T) {
	opts := newTestOptions(t, "cf")
	opts.SetDBOpts(func(o *rockyardkv.Options) {
		o.MergeOperator = &rockyardkv.StringAppendOperator{Delimiter: ","}
	})
	exec := newTestExecutor(t, opts)

	mustExec(t, exec, SaveCf{Key: "tags", Value: []byte("a")})
	if out := mustExec(t, exec, MergeCf{Key: "tags", Value: []byte("b")}); out != (None{}) {
		t.Fatalf("merge outcome = %T, want None", out)
	}
	mustExec(t, exec, MergeCf{Key: "tags", Value: []byte("c")})

	got := mustExec(t, exec, GetCf{Key: "tags"}).(SingleByte)
	if string(got.Value) != "a,b,c" {
		t.Errorf("get = %q, want a,b,c", got.Value)
	}
}

func TestExecutor_MergeWithoutOperator(t *testing.T) {
	exec := newTestExecutor(t, newTestOptions(t, "cf"))

	for i := 0; i < 2; i++ {
		_, err := exec.Exec(context.Background(), MergeCf{Key: "k", Value: []byte("v")})
		if !errors.Is(err, ErrExecutor) {
			t.Fatalf("merge error = %v, want ErrExecutor", err)
		}
		if !errors.Is(err, kv.ErrMergeNotSupported) {
			t.Errorf("merge error = %v, want ErrMergeNotSupported in chain", err)
		}
	}

	// Other instructions keep working.
	mustExec(t, exec, SaveCf{Key: "k", Value: []byte("v")})
}

func TestExecutor_UnbuiltDB(t *testing.T) {
	db, err := New(newTestOptions(t, "cf"))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	exec := NewExecutor(db.Handle(), "cf")
	defer exec.Close()

	_, err = exec.Exec(context.Background(), GetCf{Key: "a"})
	if !errors.Is(err, ErrExecutor) {
		t.Fatalf("Exec() error = %v, want ErrExecutor", err)
	}
	if err.Error() != "executor error: missing database instance" {
		t.Errorf("Error() = %q", err.Error())
	}
}

func TestExecutor_MissingColumnFamily(t *testing.T) {
	_, h := buildTestDB(t, newTestOptions(t, "cf"))
	exec := NewExecutor(h, "other")
	defer exec.Close()

	_, err := exec.Exec(context.Background(), SaveCf{Key: "a", Value: []byte{1}})
	if !errors.Is(err, ErrExecutor) {
		t.Fatalf("Exec() error = %v, want ErrExecutor", err)
	}
	if err.Error() != "executor error: cf handler failed" {
		t.Errorf("Error() = %q", err.Error())
	}
}

func TestExecutor_NilInstruction(t *testing.T) {
	exec := NewExecutor(NewSharedHandle(newFakeEngine("cf")), "cf")
	defer exec.Close()

	if _, err := exec.Exec(context.Background(), nil); !errors.Is(err, ErrExecutor) {
		t.Errorf("Exec(nil) error = %v, want ErrExecutor", err)
	}
}

func TestExecutor_PanicContained(t *testing.T) {
	engine := newFakeEngine("cf")
	engine.cf("cf").onCall = func() { panic("boom") }
	pool := blocking.New(1)
	exec := NewExecutor(NewSharedHandle(engine), "cf", WithPool(pool))
	defer exec.Close()

	_, err := exec.Exec(context.Background(), GetCf{Key: "a"})
	if !errors.Is(err, ErrExecutor) {
		t.Fatalf("Exec() error = %v, want ErrExecutor", err)
	}
	var pe *blocking.PanicError
	if !errors.As(err, &pe) {
		t.Fatalf("Exec() error = %v, want PanicError in chain", err)
	}

	// The slot is released and the executor stays usable.
	engine.cf("cf").onCall = nil
	mustExec(t, exec, GetCf{Key: "a"})
}

func TestExecutor_CancelInFlight(t *testing.T) {
	engine := newFakeEngine("cf")
	started := make(chan struct{})
	unblock := make(chan struct{})
	var first atomic.Bool
	engine.cf("cf").onCall = func() {
		if first.CompareAndSwap(false, true) {
			close(started)
			<-unblock
		}
	}
	exec := NewExecutor(NewSharedHandle(engine), "cf", WithPool(blocking.New(1)))
	defer exec.Close()

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() {
		_, err := exec.Exec(ctx, SaveCf{Key: "a", Value: []byte{1}})
		errc <- err
	}()

	<-started
	cancel()

	select {
	case err := <-errc:
		if !errors.Is(err, ErrExecutor) || !errors.Is(err, context.Canceled) {
			t.Errorf("Exec() error = %v, want cancelled executor error", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Exec did not return after cancel")
	}

	// The engine call still completes.
	close(unblock)
	deadline := time.Now().Add(5 * time.Second)
	for {
		got := mustExec(t, exec, GetCf{Key: "a"}).(SingleByte)
		if got.Found {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("cancelled save never completed")
		}
		time.Sleep(time.Millisecond)
	}
}

func TestExecutor_CancelBeforeStart(t *testing.T) {
	engine := newFakeEngine("cf")
	calls := 0
	engine.cf("cf").onCall = func() { calls++ }
	exec := NewExecutor(NewSharedHandle(engine), "cf")
	defer exec.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := exec.Exec(ctx, SaveCf{Key: "a", Value: []byte{1}})
	if !errors.Is(err, ErrExecutor) || !errors.Is(err, context.Canceled) {
		t.Fatalf("Exec() error = %v, want cancelled executor error", err)
	}
	if calls != 0 {
		t.Errorf("engine called %d times, want 0", calls)
	}
}

func TestExecutor_Concurrent(t *testing.T) {
	_, h := buildTestDB(t, newTestOptions(t, "cf"))
	pool := blocking.New(4)

	const workers = 8
	const perWorker = 25

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()

			exec := NewExecutor(h, "cf", WithPool(pool))
			defer exec.Close()

			for i := 0; i < perWorker; i++ {
				key := fmt.Sprintf("w%d-%d", w, i)
				if _, err := exec.Exec(context.Background(), SaveCf{Key: key, Value: []byte(key)}); err != nil {
					t.Errorf("save %s: %v", key, err)
					return
				}
			}
		}(w)
	}
	wg.Wait()

	exec := NewExecutor(h, "cf")
	defer exec.Close()

	keys := make([]string, 0, workers*perWorker)
	for w := 0; w < workers; w++ {
		for i := 0; i < perWorker; i++ {
			keys = append(keys, fmt.Sprintf("w%d-%d", w, i))
		}
	}
	got := mustExec(t, exec, MultiGetCf{Keys: keys}).(MultiBytes)
	for i, r := range got.Values {
		if !r.Found || string(r.Value) != keys[i] {
			t.Errorf("%s = %+v", keys[i], r)
		}
	}
}

func TestExecutor_CloseReleasesOnce(t *testing.T) {
	engine := newFakeEngine("cf")
	h := NewSharedHandle(engine)
	exec := NewExecutor(h, "cf")

	if h.Refs() != 2 {
		t.Fatalf("Refs() = %d, want 2", h.Refs())
	}
	_ = exec.Close()
	_ = exec.Close()
	if h.Refs() != 1 {
		t.Fatalf("Refs() after Close = %d, want 1", h.Refs())
	}

	if _, err := exec.Exec(context.Background(), GetCf{Key: "a"}); !errors.Is(err, ErrExecutor) {
		t.Errorf("Exec() after Close error = %v, want ErrExecutor", err)
	}

	_ = h.Release()
	if engine.closes.Load() != 1 {
		t.Errorf("closes = %d, want 1", engine.closes.Load())
	}
}

// blockingEngine returns an engine whose first call on cf blocks until
// unblock is closed, and a channel closed once that call has started.
func blockingEngine() (engine *fakeEngine, started, unblock chan struct{}) {
	engine = newFakeEngine("cf")
	started = make(chan struct{})
	unblock = make(chan struct{})
	var first atomic.Bool
	engine.cf("cf").onCall = func() {
		if first.CompareAndSwap(false, true) {
			close(started)
			<-unblock
		}
	}
	return engine, started, unblock
}

func TestExecutor_CloseWaitsForInFlight(t *testing.T) {
	engine, started, unblock := blockingEngine()
	h := NewSharedHandle(engine)
	exec := NewExecutor(h, "cf")
	_ = h.Release()

	errc := make(chan error, 1)
	go func() {
		_, err := exec.Exec(context.Background(), SaveCf{Key: "a", Value: []byte{1}})
		errc <- err
	}()
	<-started

	closed := make(chan error, 1)
	go func() { closed <- exec.Close() }()

	select {
	case <-closed:
		t.Fatal("Close returned while an engine call was running")
	case <-time.After(50 * time.Millisecond):
	}
	if engine.closes.Load() != 0 {
		t.Fatal("engine closed under a running call")
	}

	close(unblock)
	if err := <-errc; err != nil {
		t.Errorf("Exec() error = %v", err)
	}
	select {
	case err := <-closed:
		if err != nil {
			t.Errorf("Close() error = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Close did not return after the call finished")
	}
	if engine.closes.Load() != 1 {
		t.Errorf("closes = %d, want 1", engine.closes.Load())
	}
}

func TestExecutor_CloseWaitsForAbandonedCall(t *testing.T) {
	engine, started, unblock := blockingEngine()
	h := NewSharedHandle(engine)
	exec := NewExecutor(h, "cf")
	_ = h.Release()

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() {
		_, err := exec.Exec(ctx, SaveCf{Key: "a", Value: []byte{1}})
		errc <- err
	}()
	<-started
	cancel()
	if err := <-errc; !errors.Is(err, context.Canceled) {
		t.Fatalf("Exec() error = %v, want context.Canceled", err)
	}

	closed := make(chan error, 1)
	go func() { closed <- exec.Close() }()

	select {
	case <-closed:
		t.Fatal("Close returned while the abandoned call was still running")
	case <-time.After(50 * time.Millisecond):
	}

	close(unblock)
	select {
	case <-closed:
	case <-time.After(5 * time.Second):
		t.Fatal("Close did not return after the call finished")
	}
	if engine.closes.Load() != 1 {
		t.Errorf("closes = %d, want 1", engine.closes.Load())
	}
}

func TestExecutor_ReleasedHandle(t *testing.T) {
	h := NewSharedHandle(newFakeEngine("cf"))
	_ = h.Release()

	exec := NewExecutor(h, "cf")
	_, err := exec.Exec(context.Background(), GetCf{Key: "a"})
	if !errors.Is(err, ErrExecutor) || !errors.Is(err, ErrHandleReleased) {
		t.Errorf("Exec() error = %v, want released handle error", err)
	}
	if err := exec.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}

func TestExecutor_Metrics(t *testing.T) {
	reg := metric.NewRegistry()
	exec := NewExecutor(NewSharedHandle(newFakeEngine("cf")), "cf", WithMetrics(reg))
	defer exec.Close()

	mustExec(t, exec, SaveCf{Key: "a", Value: []byte{1}})
	mustExec(t, exec, MultiGetCf{Keys: []string{"a", "b"}})
	_, _ = exec.Exec(context.Background(), MergeCf{Key: "a", Value: []byte{2}})

	if got := testutil.ToFloat64(reg.InstructionsTotal.WithLabelValues("save", metric.ResultOK)); got != 1 {
		t.Errorf("save/ok = %v, want 1", got)
	}
	if got := testutil.ToFloat64(reg.InstructionsTotal.WithLabelValues("merge", metric.ResultError)); got != 1 {
		t.Errorf("merge/error = %v, want 1", got)
	}
	if got := testutil.ToFloat64(reg.InstructionsInFlight); got != 0 {
		t.Errorf("in flight = %v, want 0", got)
	}
}

func TestExecutor_ColumnFamily(t *testing.T) {
	exec := NewExecutor(nil, "users")
	if exec.ColumnFamily() != "users" {
		t.Errorf("ColumnFamily() = %q", exec.ColumnFamily())
	}
	if err := exec.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}
