// Package tracing turns the transactions observed at targets into tasks and
// forwards them to tracers.
package tracing

import "github.com/sarchlab/vplat/sim"

// A TaskStep represents a milestone in the processing of a task.
type TaskStep struct {
	Time sim.VTimeInSec `json:"time"`
	What string         `json:"what"`
}

// A Task is a transaction serviced by one target.
type Task struct {
	ID        string         `json:"id"`
	ParentID  string         `json:"parent_id"`
	Kind      string         `json:"kind"`
	What      string         `json:"what"`
	Where     string         `json:"where"`
	StartTime sim.VTimeInSec `json:"start_time"`
	EndTime   sim.VTimeInSec `json:"end_time"`
	Steps     []TaskStep     `json:"steps"`
	Detail    interface{}    `json:"-"`
}

// Duration returns how long the task took.
func (t Task) Duration() sim.VTimeInSec {
	return t.EndTime - t.StartTime
}

// TaskFilter is a function that can filter interesting tasks. If this
// function returns true, the task is considered useful.
type TaskFilter func(t Task) bool

// AllTasks is a filter that accepts every task.
func AllTasks(Task) bool {
	return true
}

// KindIs returns a filter that accepts the tasks of the given kind.
func KindIs(kind string) TaskFilter {
	return func(t Task) bool {
		return t.Kind == kind
	}
}
