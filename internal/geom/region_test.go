package geom_test

import (
	"math/rand"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/nuclab/mcell/internal/geom"
)

func samplePoints(n int, seed int64) []geom.Point {
	rng := rand.New(rand.NewSource(seed))
	box := geom.NewBox(geom.Point{X: -3, Y: -3, Z: -3}, geom.Point{X: 3, Y: 3, Z: 3})
	pts := make([]geom.Point, n)
	for i := range pts {
		pts[i] = box.Sample(rng)
	}
	return pts
}

var _ = Describe("Region algebra", func() {
	var (
		sphere *geom.Sphere
		cyl    *geom.ZCylinder
		plane  *geom.ZPlane
		points []geom.Point
	)

	BeforeEach(func() {
		sphere = geom.NewSphere(1, 0, 0, 0, 1.5, geom.BoundaryNone)
		cyl = geom.NewZCylinder(2, 0.5, 0, 1.0, geom.BoundaryNone)
		plane = geom.NewZPlane(3, 0.25, geom.BoundaryNone)
		points = samplePoints(2000, 42)
	})

	It("satisfies De Morgan for intersections", func() {
		lhs := geom.Not(geom.Intersect(geom.Neg(sphere), geom.Neg(cyl)))
		rhs := geom.Unite(geom.Not(geom.Neg(sphere)), geom.Not(geom.Neg(cyl)))
		for _, p := range points {
			Expect(lhs.Contains(p)).To(Equal(rhs.Contains(p)))
		}
	})

	It("satisfies De Morgan for unions", func() {
		lhs := geom.Not(geom.Unite(geom.Neg(sphere), geom.Pos(plane)))
		rhs := geom.Intersect(geom.Not(geom.Neg(sphere)), geom.Not(geom.Pos(plane)))
		for _, p := range points {
			Expect(lhs.Contains(p)).To(Equal(rhs.Contains(p)))
		}
	})

	It("is associative", func() {
		a, b, c := geom.Neg(sphere), geom.Neg(cyl), geom.Neg(plane)
		left := geom.Intersect(geom.Intersect(a, b), c)
		right := geom.Intersect(a, geom.Intersect(b, c))
		flat := geom.Intersect(a, b, c)
		for _, p := range points {
			Expect(left.Contains(p)).To(Equal(right.Contains(p)))
			Expect(left.Contains(p)).To(Equal(flat.Contains(p)))
		}
	})

	It("is idempotent", func() {
		a := geom.Neg(sphere)
		for _, p := range points {
			Expect(geom.Intersect(a, a).Contains(p)).To(Equal(a.Contains(p)))
			Expect(geom.Unite(a, a).Contains(p)).To(Equal(a.Contains(p)))
		}
	})

	It("double complement is identity", func() {
		a := geom.Intersect(geom.Neg(sphere), geom.Pos(plane))
		nn := geom.Not(geom.Not(a))
		for _, p := range points {
			Expect(nn.Contains(p)).To(Equal(a.Contains(p)))
		}
	})

	It("complement of a half-space flips the side", func() {
		neg := geom.Neg(sphere)
		pos := geom.Pos(sphere)
		for _, p := range points {
			Expect(geom.Not(neg).Contains(p)).To(Equal(pos.Contains(p)))
		}
	})

	It("collects referenced surfaces from the whole tree", func() {
		r := geom.Unite(
			geom.Intersect(geom.Neg(sphere), geom.Pos(plane)),
			geom.Not(geom.Neg(cyl)),
		)
		ids := map[int]bool{}
		for _, s := range r.Surfaces() {
			ids[s.ID()] = true
		}
		Expect(ids).To(HaveLen(3))
		Expect(ids).To(HaveKey(1))
		Expect(ids).To(HaveKey(2))
		Expect(ids).To(HaveKey(3))
	})
})

var _ = Describe("Zero policy", func() {
	It("resolves a point exactly on a surface to the positive side", func() {
		plane := geom.NewZPlane(7, 1.0, geom.BoundaryNone)
		on := geom.Point{X: 0, Y: 0, Z: 1.0}

		Expect(geom.SideOf(plane.Evaluate(on))).To(Equal(geom.Positive))
		Expect(geom.Pos(plane).Contains(on)).To(BeTrue())
		Expect(geom.Neg(plane).Contains(on)).To(BeFalse())
	})

	It("assigns shared boundaries to exactly one half-space", func() {
		cyl := geom.NewZCylinder(8, 0, 0, 1.0, geom.BoundaryNone)
		on := geom.Point{X: 1.0, Y: 0, Z: 0}

		inside := geom.Neg(cyl).Contains(on)
		outside := geom.Pos(cyl).Contains(on)
		Expect(inside != outside).To(BeTrue())
		Expect(outside).To(BeTrue())
	})
})
