package pages_test

import (
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"takeoff/internal/annotation/models"
	"takeoff/internal/documents/pages"
)

var _ = Describe("Read", func() {
	It("converts media boxes to whole-inch viewports", func() {
		path := writePDF([2]float64{2592, 1728}, [2]float64{612, 792})

		all, err := pages.Read(path)
		Expect(err).NotTo(HaveOccurred())
		Expect(all).To(HaveLen(2))

		Expect(all[0].Number).To(Equal(1))
		Expect(all[0].Viewport).To(Equal(models.Viewport{Width: 36, Height: 24}))
		Expect(all[0].Calibrated).To(BeTrue())

		Expect(all[1].WidthPt).To(Equal(612.0))
		Expect(all[1].Viewport).To(Equal(models.Viewport{Width: 9, Height: 11}))
		Expect(all[1].Calibrated).To(BeTrue())
	})

	It("counts pages", func() {
		n, err := pages.Count(writePDF([2]float64{2592, 1728}, [2]float64{2592, 1728}, [2]float64{612, 792}))
		Expect(err).NotTo(HaveOccurred())
		Expect(n).To(Equal(3))
	})

	It("returns one page's viewport and rejects out-of-range pages", func() {
		path := writePDF([2]float64{3024, 2160})

		v, err := pages.Viewport(path, 1)
		Expect(err).NotTo(HaveOccurred())
		Expect(v).To(Equal(models.Viewport{Width: 42, Height: 30}))

		_, err = pages.Viewport(path, 2)
		Expect(err).To(MatchError(ContainSubstring("invalid page number: 2 (total pages: 1)")))
		_, err = pages.Viewport(path, 0)
		Expect(err).To(MatchError(ContainSubstring("invalid page number")))
	})

	It("fails on a missing file", func() {
		_, err := pages.Read(filepath.Join(GinkgoT().TempDir(), "none.pdf"))
		Expect(err).To(HaveOccurred())
	})
})
