package tracing

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/sarchlab/vplat/mem/endpoint"
	"github.com/sarchlab/vplat/mem/txn"
	"github.com/sarchlab/vplat/sim"
)

// Task kinds produced from transactions.
const (
	KindRead  = "read"
	KindWrite = "write"
	KindOther = "other"
)

// CollectTrace lets the tracer collect the transactions serviced by a
// domain, usually an endpoint.Target. A tracer can only be attached to a
// domain once.
func CollectTrace(domain sim.Component, tracer Tracer) {
	attached := domain.HasHook(func(hook sim.Hook) bool {
		h, ok := hook.(*txnHook)
		return ok && h.tracer == tracer
	})
	if attached {
		panic(fmt.Sprintf(
			"domain %s already has tracer %s",
			domain.Name(), reflect.TypeOf(tracer)))
	}

	domain.AcceptHook(&txnHook{
		where:    domain.Name(),
		tracer:   tracer,
		idGen:    sim.NewSequentialIDGenerator(),
		inflight: make(map[*txn.Transaction]Task),
	})
}

// A txnHook converts transaction hooks into tasks.
type txnHook struct {
	where  string
	tracer Tracer
	idGen  sim.IDGenerator

	lock     sync.Mutex
	inflight map[*txn.Transaction]Task
}

// Func calls the tracer when a transaction starts or ends.
func (h *txnHook) Func(ctx sim.HookCtx) {
	tx, ok := ctx.Item.(*txn.Transaction)
	if !ok {
		return
	}

	detail, _ := ctx.Detail.(endpoint.TxnHookDetail)

	switch ctx.Pos {
	case endpoint.HookPosTxnStart:
		h.start(tx, detail)
	case endpoint.HookPosTxnEnd:
		h.end(tx, detail)
	}
}

func (h *txnHook) start(tx *txn.Transaction, detail endpoint.TxnHookDetail) {
	parent := tx.ID
	if parent == "" {
		parent = h.idGen.Generate()
	}

	task := Task{
		ID:        parent + "@" + h.where,
		ParentID:  parent,
		Kind:      kindOf(tx.Command),
		What:      fmt.Sprintf("0x%08x+%d", tx.Address, tx.Length()),
		Where:     h.where,
		StartTime: detail.Time,
		Detail:    tx,
	}

	h.lock.Lock()
	h.inflight[tx] = task
	h.lock.Unlock()

	h.tracer.StartTask(task)
}

func (h *txnHook) end(tx *txn.Transaction, detail endpoint.TxnHookDetail) {
	h.lock.Lock()
	task, ok := h.inflight[tx]
	delete(h.inflight, tx)
	h.lock.Unlock()

	if !ok {
		return
	}

	task.EndTime = detail.Time
	task.Steps = append(task.Steps, TaskStep{
		Time: detail.Time,
		What: tx.Status.String(),
	})

	h.tracer.StepTask(task)
	h.tracer.EndTask(task)
}

func kindOf(cmd txn.Command) string {
	switch cmd {
	case txn.CommandRead:
		return KindRead
	case txn.CommandWrite:
		return KindWrite
	}

	return KindOther
}
