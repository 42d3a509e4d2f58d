package monitoring

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/vplat/mem/dmi"
	"github.com/sarchlab/vplat/mem/endpoint"
	"github.com/sarchlab/vplat/mem/ram"
	"github.com/sarchlab/vplat/mem/router"
	"github.com/sarchlab/vplat/mem/trafficgen"
	"github.com/sarchlab/vplat/mem/txn"
	"github.com/sarchlab/vplat/sim"
)

type sampleComponent struct {
	*sim.ComponentBase

	Count int
}

var _ = Describe("Monitor", func() {
	var (
		engine *sim.SerialEngine
		mem    *ram.Comp
		bus    *router.Router
		gen    *trafficgen.Comp
		m      *Monitor
	)

	get := func(path string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, path, nil)
		m.Handler().ServeHTTP(rec, req)

		return rec
	}

	BeforeEach(func() {
		engine = sim.NewSerialEngine()
		mem = ram.MakeBuilder().
			WithEngine(engine).
			WithNewStorage(0x100).
			Build("RAM")
		bus = router.MakeBuilder().WithEngine(engine).Build("Bus")
		endpoint.Connect(bus.OutPort(0), mem.Target)
		bus.Map(0, dmi.MakeRange(0x1000, 0x10ff), 0, "")
		gen = trafficgen.MakeBuilder().
			WithEngine(engine).
			WithRequests([]trafficgen.Request{
				{Command: txn.CommandWrite, Address: 0x1000, Size: 4},
			}).
			Build("Gen")
		endpoint.Connect(gen.Initiator(), bus.InPort(0))

		m = NewMonitor()
		m.RegisterEngine(engine)
		m.RegisterComponent(mem)
		m.RegisterComponent(bus)
		m.RegisterComponent(gen)
	})

	It("should report the time", func() {
		rec := get("/api/now")

		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(Equal(`{"now":0.0000000000}`))
	})

	It("should list components", func() {
		var names []string
		Expect(json.Unmarshal(get("/api/list_components").Body.Bytes(), &names)).
			To(Succeed())

		Expect(names).To(Equal([]string{"RAM", "Bus", "Gen"}))
	})

	It("should answer 404 for unknown components", func() {
		Expect(get("/api/dump/Nope").Code).To(Equal(http.StatusNotFound))
	})

	It("should dump router mappings", func() {
		rec := get("/api/dump/Bus")

		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(Equal(
			"0: 00001000..000010ff -> [00000000..000000ff] RAM\n"))
		Expect(get("/api/dump/RAM").Code).
			To(Equal(http.StatusMethodNotAllowed))
	})

	It("should list DMI regions", func() {
		init := endpoint.MakeInitiatorBuilder().Build("CPU")
		endpoint.Connect(init, mem.Target)
		init.Read(context.Background(), 0x10, make([]byte, 4), txn.SidebandNone)

		var regions []regionRsp
		rec := get("/api/dmi/RAM")
		Expect(json.Unmarshal(rec.Body.Bytes(), &regions)).To(Succeed())

		Expect(regions).To(HaveLen(1))
		Expect(regions[0].Start).To(Equal(uint64(0)))
		Expect(regions[0].End).To(Equal(uint64(0xff)))
		Expect(regions[0].Access).To(Equal("rw"))
		Expect(get("/api/dmi/Bus").Code).To(Equal(http.StatusMethodNotAllowed))
	})

	It("should report generator statistics", func() {
		gen.Start()
		Expect(engine.Run()).To(Succeed())

		var stats trafficgen.Stats
		Expect(json.Unmarshal(get("/api/stats/Gen").Body.Bytes(), &stats)).
			To(Succeed())

		Expect(stats.Writes).To(Equal(uint64(1)))
		Expect(stats.Bytes).To(Equal(uint64(4)))
	})

	It("should pause and continue the engine", func() {
		Expect(get("/api/pause").Code).To(Equal(http.StatusOK))
		Expect(engine.CriticalSection().Owner()).To(Equal("pause"))

		Expect(get("/api/continue").Code).To(Equal(http.StatusOK))
		Expect(engine.CriticalSection().Owner()).To(BeEmpty())
	})

	It("should serialize a component", func() {
		c := &sampleComponent{
			ComponentBase: sim.NewComponentBase("Sample"),
			Count:         3,
		}
		m.RegisterComponent(c)

		rec := get("/api/component/Sample")
		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(ContainSubstring("Count"))

		rec = get("/api/field/" + url.PathEscape("not json"))
		Expect(rec.Code).To(Equal(http.StatusBadRequest))
	})

	It("should serve over HTTP", func() {
		base := m.WithPortNumber(0).StartServer()
		defer m.StopServer()

		rsp, err := http.Get(base + "/api/now")
		Expect(err).NotTo(HaveOccurred())
		defer rsp.Body.Close()

		body, err := io.ReadAll(rsp.Body)
		Expect(err).NotTo(HaveOccurred())
		Expect(string(body)).To(ContainSubstring(`"now"`))
	})
})
