package sim

import "sync"

// A Signal wakes up the processes that wait on it.
type Signal struct {
	lock    sync.Mutex
	engine  EventScheduler
	waiters []*Process
}

// NewSignal creates a signal whose waiters are resumed through the given
// engine.
func NewSignal(engine EventScheduler) *Signal {
	return &Signal{engine: engine}
}

func (s *Signal) addWaiter(p *Process) {
	s.lock.Lock()
	s.waiters = append(s.waiters, p)
	s.lock.Unlock()
}

// NumWaiters returns the number of processes waiting on the signal.
func (s *Signal) NumWaiters() int {
	s.lock.Lock()
	defer s.lock.Unlock()

	return len(s.waiters)
}

// Notify schedules every waiting process to resume at the current time.
func (s *Signal) Notify() {
	s.lock.Lock()
	waiters := s.waiters
	s.waiters = nil
	s.lock.Unlock()

	if s.engine == nil {
		return
	}

	now := s.engine.CurrentTime()
	for _, p := range waiters {
		s.engine.Schedule(processResumeEvent{NewEventBase(now, p)})
	}
}
