package shape

import "github.com/golang/geo/s2"

// union is the region covered by any of its members. It backs multi-point
// and multi-line geometries, which have no S2 region of their own.
type union struct {
	regions []s2.Region
	bound   s2.Rect
}

func newUnion(regions []s2.Region) *union {
	u := &union{regions: regions, bound: s2.EmptyRect()}
	for _, r := range regions {
		u.bound = u.bound.Union(r.RectBound())
	}
	return u
}

func (u *union) CapBound() s2.Cap { return u.bound.CapBound() }

func (u *union) RectBound() s2.Rect { return u.bound }

func (u *union) ContainsCell(c s2.Cell) bool {
	for _, r := range u.regions {
		if r.ContainsCell(c) {
			return true
		}
	}
	return false
}

func (u *union) IntersectsCell(c s2.Cell) bool {
	for _, r := range u.regions {
		if r.IntersectsCell(c) {
			return true
		}
	}
	return false
}

func (u *union) ContainsPoint(p s2.Point) bool {
	for _, r := range u.regions {
		if r.ContainsPoint(p) {
			return true
		}
	}
	return false
}

func (u *union) CellUnionBound() []s2.CellID { return u.CapBound().CellUnionBound() }
