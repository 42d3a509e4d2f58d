package tracing

import (
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"

	"github.com/sarchlab/vplat/datarecording"
)

var _ = Describe("DBTracer", func() {
	var (
		mockCtrl *gomock.Controller
		recorder *MockDataRecorder
		tracer   *DBTracer
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		recorder = NewMockDataRecorder(mockCtrl)
		recorder.EXPECT().CreateTable(TraceTable, gomock.Any())
		tracer = NewDBTracer(recorder)
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	task := func(id string) Task {
		return Task{
			ID:       id,
			ParentID: "p",
			Kind:     KindRead,
			What:     "0x00000000+4",
			Where:    "RAM",
			Steps:    []TaskStep{{What: "ok"}},
		}
	}

	It("should write completed tasks", func() {
		t := task("1")
		t.StartTime = 1
		tracer.StartTask(t)

		t.EndTime = 4
		recorder.EXPECT().InsertData(TraceTable, taskTableEntry{
			ID:        "1",
			ParentID:  "p",
			Kind:      KindRead,
			What:      "0x00000000+4",
			Location:  "RAM",
			Status:    "ok",
			StartTime: 1,
			EndTime:   4,
		})
		tracer.EndTask(t)
	})

	It("should ignore tasks that never started", func() {
		tracer.EndTask(task("2"))
	})

	It("should drop tasks outside of the time range", func() {
		tracer.SetTimeRange(10, 20)

		late := task("late")
		late.StartTime = 25
		tracer.StartTask(late)
		late.EndTime = 26
		tracer.EndTask(late)

		early := task("early")
		early.StartTime = 1
		tracer.StartTask(early)
		early.EndTime = 2
		tracer.EndTask(early)
	})

	It("should panic on tasks without ID", func() {
		Expect(func() { tracer.StartTask(Task{}) }).To(Panic())
	})

	It("should flush on terminate", func() {
		tracer.StartTask(task("3"))
		recorder.EXPECT().Flush()

		tracer.Terminate()

		tracer.EndTask(task("3"))
	})
})

var _ = Describe("DBTracer with SQLite", func() {
	It("should store the trace of a transaction", func() {
		w, err := datarecording.NewSQLiteWriter(
			filepath.Join(GinkgoT().TempDir(), "trace"))
		Expect(err).NotTo(HaveOccurred())
		defer w.Close()

		tracer := NewDBTracer(w)
		t := Task{ID: "1@RAM", ParentID: "1", Kind: KindWrite, Where: "RAM",
			StartTime: 2, EndTime: 5}
		tracer.StartTask(t)
		tracer.EndTask(t)
		w.Flush()

		var location string
		var start, end float64
		Expect(w.QueryRow(
			"SELECT Location, StartTime, EndTime FROM trace WHERE ID = ?",
			"1@RAM").Scan(&location, &start, &end)).To(Succeed())
		Expect(location).To(Equal("RAM"))
		Expect(start).To(Equal(2.0))
		Expect(end).To(Equal(5.0))
	})
})
