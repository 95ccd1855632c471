package repl

import (
	"bytes"
	"context"
	"errors"
	"io"
	"reflect"
	"strings"
	"testing"
	"time"
)

type recorder struct {
	calls [][]string
	err   error
}

func (r *recorder) Execute(_ context.Context, args []string) error {
	r.calls = append(r.calls, args)
	return r.err
}

func newTestREPL(input string, exec Executor) (*REPL, *bytes.Buffer) {
	out := &bytes.Buffer{}
	r := New(exec,
		WithIO(strings.NewReader(input), out),
		WithCompleter(NewCompleter("get", "put", "cf list")),
	)
	return r, out
}

func TestNew(t *testing.T) {
	r := New(&recorder{})
	if r.completer == nil {
		t.Error("completer should be initialized")
	}
	if r.history == nil {
		t.Error("history should be initialized")
	}
	if r.prompt != DefaultPrompt {
		t.Errorf("prompt = %q, want %q", r.prompt, DefaultPrompt)
	}
}

func TestREPL_Run_Exit(t *testing.T) {
	for _, input := range []string{"exit\n", "quit\n", ""} {
		rec := &recorder{}
		r, _ := newTestREPL(input, rec)

		if err := r.Run(context.Background()); err != nil {
			t.Errorf("Run(%q) error = %v", input, err)
		}
		if len(rec.calls) != 0 {
			t.Errorf("Run(%q) executed %v", input, rec.calls)
		}
	}
}

func TestREPL_Run_StopsAtExit(t *testing.T) {
	rec := &recorder{}
	r, _ := newTestREPL("get a\nexit\nget b\n", rec)

	if err := r.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(rec.calls) != 1 {
		t.Errorf("executed %d lines, want 1", len(rec.calls))
	}
}

func TestREPL_Run_Dispatch(t *testing.T) {
	rec := &recorder{}
	r, out := newTestREPL("\n\nput user:1 'hello world'\n  get user:1  \n", rec)

	if err := r.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	want := [][]string{{"put", "user:1", "hello world"}, {"get", "user:1"}}
	if !reflect.DeepEqual(rec.calls, want) {
		t.Errorf("calls = %v, want %v", rec.calls, want)
	}
	if got := strings.Count(out.String(), DefaultPrompt); got != 5 {
		t.Errorf("printed %d prompts, want 5", got)
	}
	if r.History().Get(0) != "get user:1" {
		t.Errorf("history not trimmed: %q", r.History().Get(0))
	}
}

func TestREPL_Run_ErrorsPrinted(t *testing.T) {
	rec := &recorder{err: errors.New("executor error: cf handler failed")}
	r, out := newTestREPL("get a\nget b\n", rec)

	if err := r.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(rec.calls) != 2 {
		t.Errorf("loop stopped after an executor error")
	}
	if !strings.Contains(out.String(), "error: executor error: cf handler failed") {
		t.Errorf("error not printed:\n%s", out.String())
	}
}

func TestREPL_Run_BadQuoting(t *testing.T) {
	rec := &recorder{}
	r, out := newTestREPL("put k \"unterminated\n", rec)

	if err := r.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(rec.calls) != 0 {
		t.Errorf("malformed line was executed: %v", rec.calls)
	}
	if !strings.Contains(out.String(), "unterminated") {
		t.Errorf("quoting error not printed:\n%s", out.String())
	}
}

func TestREPL_Run_Completion(t *testing.T) {
	rec := &recorder{}
	r, out := newTestREPL("c?\n", rec)

	if err := r.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !strings.Contains(out.String(), "cf list\n") {
		t.Errorf("completion missing:\n%s", out.String())
	}
	if len(rec.calls) != 0 {
		t.Error("completion request should not reach the executor")
	}
}

func TestREPL_Run_HistoryBuiltin(t *testing.T) {
	rec := &recorder{}
	r, out := newTestREPL("get a\nhistory\n", rec)

	if err := r.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !strings.Contains(out.String(), "   1  get a\n") {
		t.Errorf("history output missing:\n%s", out.String())
	}
}

func TestREPL_Run_ContextCancel(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()

	r := New(&recorder{}, WithIO(pr, io.Discard))
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- r.Run(ctx) }()
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run() error = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run() did not return after cancel")
	}
}

func TestExecutorFunc(t *testing.T) {
	var got []string
	f := ExecutorFunc(func(_ context.Context, args []string) error {
		got = args
		return nil
	})
	if err := f.Execute(context.Background(), []string{"get", "k"}); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if !reflect.DeepEqual(got, []string{"get", "k"}) {
		t.Errorf("args = %v", got)
	}
}

func TestSplit(t *testing.T) {
	tests := []struct {
		in      string
		want    []string
		wantErr bool
	}{
		{"get k", []string{"get", "k"}, false},
		{"  mget  a   b\tc ", []string{"mget", "a", "b", "c"}, false},
		{`put k "a b"`, []string{"put", "k", "a b"}, false},
		{`put k 'a "b"'`, []string{"put", "k", `a "b"`}, false},
		{`put k "say \"hi\""`, []string{"put", "k", `say "hi"`}, false},
		{`put k a\ b`, []string{"put", "k", "a b"}, false},
		{`put k ""`, []string{"put", "k", ""}, false},
		{"", nil, false},
		{`put k 'open`, nil, true},
		{`put k \`, nil, true},
	}
	for _, tt := range tests {
		got, err := Split(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("Split(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("Split(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
