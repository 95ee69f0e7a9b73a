package llm

import (
	"context"
	"sync"
)

// FakeCompleter returns scripted responses in order, repeating the last one once
// the script is exhausted. It records every request it receives.
type FakeCompleter struct {
	err       error
	responses []string
	calls     []Request
	mu        sync.Mutex
}

// NewFakeCompleter creates a fake that replies with the given responses.
func NewFakeCompleter(responses ...string) *FakeCompleter {
	return &FakeCompleter{responses: responses}
}

// WithError makes every subsequent call fail with err.
func (f *FakeCompleter) WithError(err error) *FakeCompleter {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
	return f
}

// Complete implements Completer.
func (f *FakeCompleter) Complete(ctx context.Context, r Request) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, r)

	if err := ctx.Err(); err != nil {
		return "", err
	}
	if f.err != nil {
		return "", f.err
	}
	if len(f.responses) == 0 {
		return "", ErrEmptyResponse
	}

	idx := len(f.calls) - 1
	if idx >= len(f.responses) {
		idx = len(f.responses) - 1
	}
	return f.responses[idx], nil
}

// Calls returns a copy of the recorded requests.
func (f *FakeCompleter) Calls() []Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Request, len(f.calls))
	copy(out, f.calls)
	return out
}
