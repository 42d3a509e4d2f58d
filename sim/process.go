package sim

import (
	"context"
	"log"
	"reflect"
	"sync"
)

type processState int

const (
	processCreated processState = iota
	processWaiting
	processRunning
	processDone
)

func (s processState) String() string {
	switch s {
	case processCreated:
		return "created"
	case processWaiting:
		return "waiting"
	case processRunning:
		return "running"
	case processDone:
		return "done"
	}

	return "unknown"
}

// processResumeEvent hands control back to a suspended process.
type processResumeEvent struct {
	*EventBase
}

// A Process is a simulated thread of control. Its body runs on a dedicated
// goroutine, but only while the engine is handling one of the process's
// resume events; the engine waits until the body suspends again. At most one
// process therefore runs at any time, and a process only loses control at
// explicit suspension points (Wait and WaitSignal).
type Process struct {
	name   string
	engine Engine
	body   func(ctx context.Context)

	lock    sync.Mutex
	state   processState
	started bool
	resume  chan struct{}
	yield   chan struct{}
}

// NewProcess creates a process that runs body once started. The context
// passed to body carries the process, see ProcessFromContext.
func NewProcess(
	name string,
	engine Engine,
	body func(ctx context.Context),
) *Process {
	NameMustBeValid(name)

	return &Process{
		name:   name,
		engine: engine,
		body:   body,
		resume: make(chan struct{}),
		yield:  make(chan struct{}),
	}
}

// Name returns the name of the process.
func (p *Process) Name() string {
	return p.name
}

// Start schedules the process to begin at the current time.
func (p *Process) Start() {
	p.StartAt(p.engine.CurrentTime())
}

// StartAt schedules the process to begin at the given time.
func (p *Process) StartAt(t VTimeInSec) {
	p.lock.Lock()
	started := p.started
	p.started = true
	p.lock.Unlock()

	if started {
		log.Panicf("process %s is already started", p.name)
	}

	p.engine.Schedule(processResumeEvent{NewEventBase(t, p)})
}

// Done returns true once the body has returned.
func (p *Process) Done() bool {
	p.lock.Lock()
	defer p.lock.Unlock()

	return p.state == processDone
}

// Now returns the current engine time.
func (p *Process) Now() VTimeInSec {
	return p.engine.CurrentTime()
}

// Handle resumes the process. It returns after the process suspends or
// finishes.
func (p *Process) Handle(e Event) error {
	if _, ok := e.(processResumeEvent); !ok {
		log.Panicf("process %s cannot handle event of %s",
			p.name, reflect.TypeOf(e))
	}

	p.lock.Lock()
	switch p.state {
	case processCreated:
		p.state = processRunning
		p.lock.Unlock()

		go p.main()
	case processWaiting:
		p.state = processRunning
		p.lock.Unlock()

		p.resume <- struct{}{}
	default:
		state := p.state
		p.lock.Unlock()

		log.Panicf("process %s resumed while %s", p.name, state)
	}

	<-p.yield

	return nil
}

func (p *Process) main() {
	ctx := WithProcess(context.Background(), p)
	p.body(ctx)

	p.lock.Lock()
	p.state = processDone
	p.lock.Unlock()

	p.yield <- struct{}{}
}

// Wait suspends the process for d seconds of simulated time. It must be
// called from the body of the process.
func (p *Process) Wait(d VTimeInSec) {
	if d < 0 {
		log.Panicf("process %s cannot wait for a negative time", p.name)
	}

	p.engine.Schedule(
		processResumeEvent{NewEventBase(p.engine.CurrentTime()+d, p)})
	p.suspend()
}

// WaitSignal suspends the process until the signal is notified.
func (p *Process) WaitSignal(s *Signal) {
	s.addWaiter(p)
	p.suspend()
}

func (p *Process) suspend() {
	p.lock.Lock()
	if p.state != processRunning {
		state := p.state
		p.lock.Unlock()
		log.Panicf("process %s suspends while %s", p.name, state)
	}
	p.state = processWaiting
	p.lock.Unlock()

	p.yield <- struct{}{}
	<-p.resume
}

type processKey struct{}

// WithProcess returns a context that carries the process.
func WithProcess(ctx context.Context, p *Process) context.Context {
	return context.WithValue(ctx, processKey{}, p)
}

// ProcessFromContext returns the process that is running the code that
// received ctx. It returns false when the caller is not a process.
func ProcessFromContext(ctx context.Context) (*Process, bool) {
	if ctx == nil {
		return nil, false
	}

	p, ok := ctx.Value(processKey{}).(*Process)

	return p, ok
}
