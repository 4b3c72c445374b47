package monitoring

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sarchlab/dmcache/cache"
)

func get(h http.Handler, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	return rec
}

var _ = Describe("Monitor", func() {
	var (
		m *Monitor
		c *cache.Cache
		h http.Handler
	)

	BeforeEach(func() {
		m = NewMonitor()

		var err error
		c, err = cache.MakeBuilder().WithNumLines(4).Build("L1")
		Expect(err).NotTo(HaveOccurred())
		c.AcceptHook(m)

		h = m.Handler()
	})

	It("should fall back to a random port for reserved ports", func() {
		m.WithPortNumber(80)
		Expect(m.portNumber).To(Equal(0))

		m.WithPortNumber(8080)
		Expect(m.portNumber).To(Equal(8080))
	})

	It("should listen on every port it accepts", func() {
		Expect(m.listenAddr()).To(Equal(":0"))

		m.WithPortNumber(999)
		Expect(m.listenAddr()).To(Equal(":0"))

		m.WithPortNumber(1000)
		Expect(m.listenAddr()).To(Equal(":1000"))

		m.WithPortNumber(1001)
		Expect(m.listenAddr()).To(Equal(":1001"))
	})

	It("should snapshot the cache after each access", func() {
		_, err := c.Access(6)
		Expect(err).NotTo(HaveOccurred())

		s := m.Snapshot()
		Expect(s.Name).To(Equal("L1"))
		Expect(s.NumLines).To(Equal(4))
		Expect(s.Lines[2]).To(Equal(cache.Line{Valid: true, Tag: 6}))
		Expect(s.Stats).To(Equal(cache.Stats{TotalAccesses: 1, Misses: 1}))
		Expect(s.LastEvent).NotTo(BeNil())
		Expect(s.LastEvent.Block).To(Equal(6))
	})

	It("should clear the last event on reset", func() {
		_, err := c.Access(1)
		Expect(err).NotTo(HaveOccurred())

		Expect(c.Reset(4)).To(Succeed())

		s := m.Snapshot()
		Expect(s.LastEvent).To(BeNil())
		Expect(s.Stats).To(Equal(cache.Stats{}))
	})

	It("should serve stats", func() {
		for _, b := range []int{0, 1, 2, 3, 0, 1, 2, 3} {
			_, err := c.Access(b)
			Expect(err).NotTo(HaveOccurred())
		}

		rec := get(h, "/api/stats")
		Expect(rec.Code).To(Equal(http.StatusOK))

		var rsp statsRsp
		Expect(json.Unmarshal(rec.Body.Bytes(), &rsp)).To(Succeed())
		Expect(rsp.Stats).To(Equal(cache.Stats{
			TotalAccesses: 8, Hits: 4, Misses: 4,
		}))
		Expect(rsp.Metrics.HitRate).To(BeNumerically("~", 50.0, 1e-9))
		Expect(rsp.LastEvent).NotTo(BeNil())
		Expect(rsp.LastEvent.Text).To(Equal(
			"Hit: Memory Block 3 found in Cache Block 3"))
		Expect(rsp.LastEvent.Hit).To(BeTrue())
	})

	It("should serve the monitor page", func() {
		rec := get(h, "/")

		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(HavePrefix("<!DOCTYPE html>"))
	})

	It("should serve lines", func() {
		_, err := c.Access(7)
		Expect(err).NotTo(HaveOccurred())

		rec := get(h, "/api/lines")
		Expect(rec.Code).To(Equal(http.StatusOK))

		var lines []cache.Line
		Expect(json.Unmarshal(rec.Body.Bytes(), &lines)).To(Succeed())
		Expect(lines).To(HaveLen(4))
		Expect(lines[3]).To(Equal(cache.Line{Valid: true, Tag: 7}))

		rec = get(h, "/api/lines/3")
		Expect(rec.Code).To(Equal(http.StatusOK))

		rec = get(h, "/api/lines/9")
		Expect(rec.Code).To(Equal(http.StatusNotFound))

		rec = get(h, "/api/lines/abc")
		Expect(rec.Code).To(Equal(http.StatusBadRequest))
	})

	It("should serialize the cache snapshot", func() {
		_, err := c.Access(2)
		Expect(err).NotTo(HaveOccurred())

		rec := get(h, "/api/cache")

		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.Len()).To(BeNumerically(">", 0))
	})

	It("should track progress bars", func() {
		bar := m.CreateProgressBar("sequential", 32)
		bar.IncrementInProgress(2)
		bar.MoveInProgressToFinished(1)

		rec := get(h, "/api/progress")
		Expect(rec.Code).To(Equal(http.StatusOK))

		var bars []progressBarStatus
		Expect(json.Unmarshal(rec.Body.Bytes(), &bars)).To(Succeed())
		Expect(bars).To(HaveLen(1))
		Expect(bars[0].Name).To(Equal("sequential"))
		Expect(bars[0].Total).To(Equal(uint64(32)))
		Expect(bars[0].Finished).To(Equal(uint64(1)))
		Expect(bars[0].InProgress).To(Equal(uint64(1)))

		m.CompleteProgressBar(bar)

		rec = get(h, "/api/progress")
		Expect(json.Unmarshal(rec.Body.Bytes(), &bars)).To(Succeed())
		Expect(bars).To(BeEmpty())
	})

	It("should report process resources", func() {
		rec := get(h, "/api/resource")
		Expect(rec.Code).To(Equal(http.StatusOK))

		var rsp resourceRsp
		Expect(json.Unmarshal(rec.Body.Bytes(), &rsp)).To(Succeed())
		Expect(rsp.MemorySize).To(BeNumerically(">", 0))
	})

	It("should reject unsupported methods", func() {
		req := httptest.NewRequest(http.MethodPost, "/api/stats", nil)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		Expect(rec.Code).To(Equal(http.StatusMethodNotAllowed))
	})
})
