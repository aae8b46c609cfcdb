package export_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"tapeshelf/internal/audio"
	"tapeshelf/internal/failures"
)

// events is a shared, ordered trace of loader and writer calls.
type events struct {
	mu  sync.Mutex
	log []string
}

func (e *events) add(format string, args ...any) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.log = append(e.log, fmt.Sprintf(format, args...))
}

func (e *events) list() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.log...)
}

type fakeLoader struct {
	mu     sync.Mutex
	errs   map[string]error
	loads  map[string]int
	events *events
}

func newFakeLoader(ev *events) *fakeLoader {
	return &fakeLoader{errs: map[string]error{}, loads: map[string]int{}, events: ev}
}

// Load returns ten seconds of 1 kHz mono audio whose samples count upward.
func (f *fakeLoader) Load(_ context.Context, path string) (*audio.Buffer, error) {
	f.mu.Lock()
	f.loads[path]++
	err := f.errs[path]
	f.mu.Unlock()
	if f.events != nil {
		f.events.add("load %s", filepath.Base(path))
	}
	if err != nil {
		return nil, err
	}
	buf := audio.NewBuffer(1000, 1)
	for i := 0; i < 10_000; i++ {
		buf.Data = append(buf.Data, byte(i), byte(i>>8))
	}
	return buf, nil
}

func (f *fakeLoader) totalLoads() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	total := 0
	for _, n := range f.loads {
		total += n
	}
	return total
}

func (f *fakeLoader) loadsOf(path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.loads[path]
}

type writeCall struct {
	Path  string
	Bytes int
	Tags  *audio.Tags
}

type fakeWriter struct {
	mu        sync.Mutex
	calls     []writeCall
	fail      map[string]bool
	delay     time.Duration
	active    int
	maxActive int
	events    *events
}

func newFakeWriter(ev *events) *fakeWriter {
	return &fakeWriter{fail: map[string]bool{}, events: ev}
}

func (w *fakeWriter) Write(_ context.Context, buf *audio.Buffer, path string, tags *audio.Tags) error {
	w.mu.Lock()
	w.active++
	w.maxActive = max(w.maxActive, w.active)
	fail := w.fail[path]
	w.mu.Unlock()
	defer func() {
		w.mu.Lock()
		w.active--
		w.mu.Unlock()
	}()

	if w.delay > 0 {
		time.Sleep(w.delay)
	}
	if w.events != nil {
		w.events.add("write %s", filepath.Base(path))
	}
	if fail {
		return failures.Wrap(failures.ErrExportWrite, "fake", "write", path, nil)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Data, 0o644); err != nil {
		return err
	}
	w.mu.Lock()
	w.calls = append(w.calls, writeCall{Path: path, Bytes: len(buf.Data), Tags: tags})
	w.mu.Unlock()
	return nil
}

func (w *fakeWriter) written() []writeCall {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]writeCall(nil), w.calls...)
}
