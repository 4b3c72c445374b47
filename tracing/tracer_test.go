package tracing

import (
	"bytes"
	"fmt"
	"log"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sarchlab/dmcache/cache"
)

func newTestCache() *cache.Cache {
	c, err := cache.MakeBuilder().WithNumLines(4).Build("Cache")
	Expect(err).NotTo(HaveOccurred())

	return c
}

var _ = Describe("LogTracer", func() {
	var (
		buf    *bytes.Buffer
		c      *cache.Cache
		tracer *LogTracer
	)

	BeforeEach(func() {
		buf = new(bytes.Buffer)
		tracer = NewLogTracer(log.New(buf, "", 0))
		c = newTestCache()
		c.AcceptHook(tracer)
	})

	It("should log hits and misses", func() {
		for _, b := range []int{0, 4, 4} {
			_, err := c.Access(b)
			Expect(err).NotTo(HaveOccurred())
		}

		Expect(buf.String()).To(Equal(
			"Miss: Memory Block 0 loaded into Cache Block 0\n" +
				"Miss: Memory Block 4 loaded into Cache Block 0\n" +
				"Hit: Memory Block 4 found in Cache Block 0\n"))
	})

	It("should log resets", func() {
		Expect(c.Reset(4)).To(Succeed())

		Expect(buf.String()).To(Equal("Reset: 4 cache blocks emptied\n"))
	})

	It("should render accesses with the formatter", func() {
		tracer.WithFormatter(func(e cache.AccessEvent) string {
			return fmt.Sprintf("[%s] %d", e.Outcome, e.Block)
		})

		for _, b := range []int{3, 3} {
			_, err := c.Access(b)
			Expect(err).NotTo(HaveOccurred())
		}

		Expect(buf.String()).To(Equal("[Miss] 3\n[Hit] 3\n"))
	})
})

var _ = Describe("CountTracer", func() {
	var (
		c      *cache.Cache
		tracer *CountTracer
	)

	BeforeEach(func() {
		tracer = NewCountTracer()
		c = newTestCache()
		c.AcceptHook(tracer)
	})

	It("should count outcomes per line", func() {
		for _, b := range []int{0, 0, 4, 1, 1, 1} {
			_, err := c.Access(b)
			Expect(err).NotTo(HaveOccurred())
		}

		counts := tracer.Counts()
		Expect(counts).To(HaveLen(2))
		Expect(counts[0]).To(Equal(LineCount{Hits: 1, Misses: 2, Evictions: 1}))
		Expect(counts[1]).To(Equal(LineCount{Hits: 2, Misses: 1}))
	})

	It("should restart on reset", func() {
		_, err := c.Access(3)
		Expect(err).NotTo(HaveOccurred())

		Expect(c.Reset(4)).To(Succeed())

		Expect(tracer.Counts()).To(Equal(make([]LineCount, 4)))
	})
})
