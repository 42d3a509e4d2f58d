package tracing

import (
	"sync"

	"github.com/sarchlab/vplat/datarecording"
	"github.com/sarchlab/vplat/sim"
	"github.com/tebeka/atexit"
)

// TraceTable is the table that a DBTracer writes into.
const TraceTable = "trace"

type taskTableEntry struct {
	ID        string
	ParentID  string
	Kind      string
	What      string
	Location  string
	Status    string
	StartTime float64
	EndTime   float64
}

// DBTracer is a tracer that stores the completed tasks into a database
// through a DataRecorder.
type DBTracer struct {
	mu      sync.Mutex
	backend datarecording.DataRecorder

	startTime, endTime sim.VTimeInSec

	tracingTasks map[string]Task
}

// NewDBTracer creates a new DBTracer and the trace table.
func NewDBTracer(dataRecorder datarecording.DataRecorder) *DBTracer {
	dataRecorder.CreateTable(TraceTable, taskTableEntry{})

	t := &DBTracer{
		backend:      dataRecorder,
		tracingTasks: make(map[string]Task),
	}

	atexit.Register(t.Terminate)

	return t
}

// SetTimeRange limits the tracer to the tasks that overlap with the
// interval. A zero bound is open.
func (t *DBTracer) SetTimeRange(startTime, endTime sim.VTimeInSec) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.startTime = startTime
	t.endTime = endTime
}

// StartTask marks the start of a task.
func (t *DBTracer) StartTask(task Task) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if task.ID == "" {
		panic("task ID must be set")
	}

	if t.endTime > 0 && task.StartTime > t.endTime {
		return
	}

	t.tracingTasks[task.ID] = task
}

// StepTask does nothing. The final step is recorded as the status.
func (t *DBTracer) StepTask(_ Task) {
	// Do nothing
}

// EndTask writes the task into the database.
func (t *DBTracer) EndTask(task Task) {
	t.mu.Lock()
	defer t.mu.Unlock()

	originalTask, ok := t.tracingTasks[task.ID]
	if !ok {
		return
	}

	delete(t.tracingTasks, task.ID)

	if t.startTime > 0 && task.EndTime < t.startTime {
		return
	}

	status := ""
	if n := len(task.Steps); n > 0 {
		status = task.Steps[n-1].What
	}

	t.backend.InsertData(TraceTable, taskTableEntry{
		ID:        originalTask.ID,
		ParentID:  originalTask.ParentID,
		Kind:      originalTask.Kind,
		What:      originalTask.What,
		Location:  originalTask.Where,
		Status:    status,
		StartTime: float64(originalTask.StartTime),
		EndTime:   float64(task.EndTime),
	})
}

// Terminate drops the unfinished tasks and flushes the recorder.
func (t *DBTracer) Terminate() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.tracingTasks = make(map[string]Task)
	t.backend.Flush()
}
