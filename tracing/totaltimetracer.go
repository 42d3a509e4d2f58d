package tracing

import (
	"sync"

	"github.com/sarchlab/vplat/sim"
)

// TotalTimeTracer can collect the total time of executing a certain type of
// task. If the execution of two tasks overlaps, this tracer will simply add
// the two task processing time together.
type TotalTimeTracer struct {
	filter        TaskFilter
	lock          sync.Mutex
	totalTime     sim.VTimeInSec
	count         uint64
	inflightTasks map[string]Task
}

// NewTotalTimeTracer creates a new TotalTimeTracer. A nil filter accepts
// every task.
func NewTotalTimeTracer(filter TaskFilter) *TotalTimeTracer {
	if filter == nil {
		filter = AllTasks
	}

	return &TotalTimeTracer{
		filter:        filter,
		inflightTasks: make(map[string]Task),
	}
}

// TotalTime returns the total time has been spent on a certain type of
// tasks.
func (t *TotalTimeTracer) TotalTime() sim.VTimeInSec {
	t.lock.Lock()
	defer t.lock.Unlock()

	return t.totalTime
}

// Count returns the number of tasks that have completed.
func (t *TotalTimeTracer) Count() uint64 {
	t.lock.Lock()
	defer t.lock.Unlock()

	return t.count
}

// AverageTime returns the average duration of the completed tasks.
func (t *TotalTimeTracer) AverageTime() sim.VTimeInSec {
	t.lock.Lock()
	defer t.lock.Unlock()

	if t.count == 0 {
		return 0
	}

	return t.totalTime / sim.VTimeInSec(t.count)
}

// StartTask records the task start time.
func (t *TotalTimeTracer) StartTask(task Task) {
	if !t.filter(task) {
		return
	}

	t.lock.Lock()
	t.inflightTasks[task.ID] = task
	t.lock.Unlock()
}

// StepTask does nothing.
func (t *TotalTimeTracer) StepTask(_ Task) {
	// Do nothing
}

// EndTask records the end of the task.
func (t *TotalTimeTracer) EndTask(task Task) {
	t.lock.Lock()
	defer t.lock.Unlock()

	originalTask, ok := t.inflightTasks[task.ID]
	if !ok {
		return
	}

	t.totalTime += task.EndTime - originalTask.StartTime
	t.count++
	delete(t.inflightTasks, task.ID)
}
