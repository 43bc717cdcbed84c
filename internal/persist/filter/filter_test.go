package filter

import (
	"testing"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

func TestFilter(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "echo filter")
}

var _ = Describe("echoes", func() {
	var f *Echoes[string]
	BeforeEach(func() {
		f = NewEchoes[string]()
	})

	It("should pass changes not expected", func() {
		Expect(f.Echo("insert b")).To(BeFalse())
	})

	It("should consume every expected change once", func() {
		f.Expect("insert b")
		f.Expect("insert b")
		Expect(f.Pending()).To(Equal(2))

		Expect(f.Echo("insert b")).To(BeTrue())
		Expect(f.Echo("insert b")).To(BeTrue())
		Expect(f.Echo("insert b")).To(BeFalse())
		Expect(f.Pending()).To(BeZero())
	})

	It("should forget cancelled changes", func() {
		f.Expect("delete b")
		f.Cancel("delete b")
		Expect(f.Echo("delete b")).To(BeFalse())
	})
})
