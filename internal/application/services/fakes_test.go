package services

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"
	"sync/atomic"

	"github.com/jessica-dev/jessica/internal/application/ports"
	"github.com/jessica-dev/jessica/internal/domain/execution"
	"github.com/jessica-dev/jessica/internal/domain/values"
)

// fakeProcess emulates a child process with an in-memory output pipe.
type fakeProcess struct {
	pr         *io.PipeReader
	pw         *io.PipeWriter
	exited     chan struct{}
	once       sync.Once
	code       int
	terms      atomic.Int32
	kills      atomic.Int32
	ignoreTerm bool
	// lastWords are printed on the termination request before exiting
	lastWords []string
}

func newFakeProcess(ignoreTerm bool, lastWords []string) *fakeProcess {
	pr, pw := io.Pipe()
	return &fakeProcess{pr: pr, pw: pw, exited: make(chan struct{}), ignoreTerm: ignoreTerm, lastWords: lastWords}
}

func (p *fakeProcess) PID() int          { return 4242 }
func (p *fakeProcess) Output() io.Reader { return p.pr }

func (p *fakeProcess) Wait() (int, error) {
	<-p.exited
	return p.code, nil
}

func (p *fakeProcess) exit(code int) {
	p.once.Do(func() {
		p.code = code
		_ = p.pw.Close()
		close(p.exited)
	})
}

func (p *fakeProcess) print(lines ...string) {
	for _, l := range lines {
		if _, err := io.WriteString(p.pw, l+"\n"); err != nil {
			return
		}
	}
}

func (p *fakeProcess) Terminate() error {
	p.terms.Add(1)
	if !p.ignoreTerm {
		p.print(p.lastWords...)
		p.exit(-1)
	}
	return nil
}

func (p *fakeProcess) Kill() error {
	p.kills.Add(1)
	p.exit(-1)
	return nil
}

// fakeRunner hands out one scripted process per Start call.
type fakeRunner struct {
	script     func(p *fakeProcess)
	err        error
	started    chan *fakeProcess
	mu         sync.Mutex
	specs      []ports.ProcessSpec
	lastWords  []string
	ignoreTerm bool
}

func newFakeRunner(script func(p *fakeProcess)) *fakeRunner {
	return &fakeRunner{script: script, started: make(chan *fakeProcess, 8)}
}

func (r *fakeRunner) Start(_ context.Context, spec ports.ProcessSpec) (ports.Process, error) {
	r.mu.Lock()
	r.specs = append(r.specs, spec)
	r.mu.Unlock()

	if r.err != nil {
		return nil, r.err
	}
	p := newFakeProcess(r.ignoreTerm, r.lastWords)
	r.started <- p
	go r.script(p)
	return p, nil
}

func (r *fakeRunner) spawned() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.specs)
}

// blockingRunner holds every spawn until release is closed.
type blockingRunner struct {
	*fakeRunner
	entered chan struct{}
	release chan struct{}
}

func newBlockingRunner(script func(p *fakeProcess)) *blockingRunner {
	return &blockingRunner{
		fakeRunner: newFakeRunner(script),
		entered:    make(chan struct{}, 8),
		release:    make(chan struct{}),
	}
}

func (r *blockingRunner) Start(ctx context.Context, spec ports.ProcessSpec) (ports.Process, error) {
	r.entered <- struct{}{}
	<-r.release
	return r.fakeRunner.Start(ctx, spec)
}

// lockedBuffer is a bytes.Buffer safe for a log handler and a test reading it.
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// fakeFiles answers existence checks from fixed sets.
type fakeFiles struct {
	dirs  map[string]bool
	files map[string]bool
}

func (f fakeFiles) IsDir(path string) bool  { return f.dirs[path] }
func (f fakeFiles) IsFile(path string) bool { return f.files[path] }

type fakeCatalog struct {
	sheets []string
	err    error
}

func (c fakeCatalog) Sheets(context.Context, string) ([]string, error) { return c.sheets, c.err }

type fakeHistory struct {
	mu      sync.Mutex
	records map[values.RunID]*execution.JobRecord
}

func (h *fakeHistory) Save(_ context.Context, r *execution.JobRecord) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.records == nil {
		h.records = make(map[values.RunID]*execution.JobRecord)
	}
	h.records[r.Summary.RunID] = r
	return nil
}

func (h *fakeHistory) FindByID(_ context.Context, id values.RunID) (*execution.JobRecord, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	r, ok := h.records[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return r, nil
}

func (h *fakeHistory) FindByProfile(context.Context, string, int) ([]*execution.JobRecord, error) {
	return nil, nil
}

// eventLog records controller events.
type eventLog struct {
	mu     sync.Mutex
	events []ports.Event
}

func (l *eventLog) OnEvent(e ports.Event) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, e)
}

func (l *eventLog) snapshot() []ports.Event {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]ports.Event(nil), l.events...)
}

func (l *eventLog) ofType(t ports.EventType) []ports.Event {
	var out []ports.Event
	for _, e := range l.snapshot() {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}
