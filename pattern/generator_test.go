package pattern

import (
	"math/rand"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sarchlab/dmcache/cache"
)

var _ = Describe("Generator", func() {
	var g *Generator

	BeforeEach(func() {
		g = NewSeededGenerator(1)
	})

	Context("sequential", func() {
		It("should repeat 0 to 2N-1 four times", func() {
			blocks, err := g.Generate(Sequential, 4, 1024)

			Expect(err).NotTo(HaveOccurred())
			Expect(blocks).To(HaveLen(32))

			pass := []int{0, 1, 2, 3, 4, 5, 6, 7}
			for r := 0; r < 4; r++ {
				Expect(blocks[r*8 : (r+1)*8]).To(Equal(pass))
			}
		})

		It("should have length 8N", func() {
			for n := 1; n <= 16; n++ {
				blocks, err := g.Generate(Sequential, n, 0)

				Expect(err).NotTo(HaveOccurred())
				Expect(blocks).To(HaveLen(8 * n))
				Expect(Sequential.Length(n)).To(Equal(8 * n))
			}
		})
	})

	Context("mid-repeat", func() {
		It("should interleave repeated and unique blocks", func() {
			blocks, err := g.Generate(MidRepeat, 4, 1024)

			Expect(err).NotTo(HaveOccurred())

			onePass := []int{
				0, 1, 2, 3,
				1, 2, 3,
				1, 2, 3,
				4, 5, 6, 7,
			}
			Expect(blocks).To(HaveLen(4 * len(onePass)))
			for r := 0; r < 4; r++ {
				start := r * len(onePass)
				Expect(blocks[start : start+len(onePass)]).To(Equal(onePass))
			}
		})

		It("should have length 16N-8", func() {
			for n := 1; n <= 16; n++ {
				blocks, err := g.Generate(MidRepeat, n, 0)

				Expect(err).NotTo(HaveOccurred())
				Expect(blocks).To(HaveLen(16*n - 8))
				Expect(MidRepeat.Length(n)).To(Equal(16*n - 8))
			}
		})

		It("should not repeat the middle when there is one line", func() {
			blocks, err := g.Generate(MidRepeat, 1, 0)

			Expect(err).NotTo(HaveOccurred())
			Expect(blocks).To(Equal([]int{0, 1, 0, 1, 0, 1, 0, 1}))
		})
	})

	Context("random", func() {
		It("should draw 4N blocks below the bound", func() {
			blocks, err := g.Generate(Random, 4, 1024)

			Expect(err).NotTo(HaveOccurred())
			Expect(blocks).To(HaveLen(16))
			for _, b := range blocks {
				Expect(b).To(BeNumerically(">=", 0))
				Expect(b).To(BeNumerically("<", 1024))
			}
		})

		It("should be reproducible with the same seed", func() {
			a, err := NewSeededGenerator(42).Generate(Random, 8, 5000)
			Expect(err).NotTo(HaveOccurred())

			b, err := NewSeededGenerator(42).Generate(Random, 8, 5000)
			Expect(err).NotTo(HaveOccurred())

			Expect(a).To(Equal(b))
		})

		It("should use the injected source", func() {
			expected := rand.New(rand.NewSource(3))

			blocks, err := NewGenerator(rand.NewSource(3)).
				Generate(Random, 2, 100)
			Expect(err).NotTo(HaveOccurred())

			for _, b := range blocks {
				Expect(b).To(Equal(expected.Intn(100)))
			}
		})

		It("should only ever return 0 when the bound is 1", func() {
			blocks, err := g.Generate(Random, 4, 1)

			Expect(err).NotTo(HaveOccurred())
			Expect(blocks).To(HaveEach(0))
		})

		It("should reject a bound below 1", func() {
			_, err := g.Generate(Random, 4, 0)

			Expect(err).To(MatchError(cache.ErrInvalidArgument))
		})

		It("should work with a time-seeded source", func() {
			blocks, err := NewGenerator(nil).Generate(Random, 4, 10)

			Expect(err).NotTo(HaveOccurred())
			Expect(blocks).To(HaveLen(16))
		})
	})

	It("should reject non-positive line counts", func() {
		for _, p := range All() {
			_, err := g.Generate(p, 0, 1024)
			Expect(err).To(MatchError(cache.ErrInvalidArgument))
		}
	})

	It("should reject unknown patterns", func() {
		_, err := g.Generate(Pattern(99), 4, 1024)

		Expect(err).To(MatchError(cache.ErrInvalidArgument))
	})

	It("should ignore the bound for deterministic patterns", func() {
		_, err := g.Generate(Sequential, 4, 0)
		Expect(err).NotTo(HaveOccurred())

		_, err = g.Generate(MidRepeat, 4, -5)
		Expect(err).NotTo(HaveOccurred())
	})
})

var _ = Describe("Pattern", func() {
	It("should parse names", func() {
		cases := map[string]Pattern{
			"sequential": Sequential,
			"Random":     Random,
			"mid-repeat": MidRepeat,
			"MIDREPEAT":  MidRepeat,
			" seq ":      Sequential,
		}

		for name, want := range cases {
			p, err := ParsePattern(name)
			Expect(err).NotTo(HaveOccurred())
			Expect(p).To(Equal(want))
		}
	})

	It("should reject unknown names", func() {
		_, err := ParsePattern("zigzag")

		Expect(err).To(MatchError(cache.ErrInvalidArgument))
	})

	It("should round trip names", func() {
		for _, p := range All() {
			parsed, err := ParsePattern(p.String())
			Expect(err).NotTo(HaveOccurred())
			Expect(parsed).To(Equal(p))
		}
	})

	It("should list patterns in menu order", func() {
		Expect(All()).To(Equal([]Pattern{Sequential, Random, MidRepeat}))
	})
})
