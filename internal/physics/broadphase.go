package physics

import (
	"cmp"
	"math"
	"slices"
)

type cell struct{ x, y, z int }

type pair struct{ i, j int }

// spatialGrid is a uniform hash grid over body centers. The cell size must be at least the
// largest bounding diameter so that overlapping spheres always sit in neighbouring cells.
type spatialGrid struct {
	cells map[cell][]int
	size  float64
	pairs []pair
}

func newSpatialGrid() *spatialGrid {
	return &spatialGrid{cells: make(map[cell][]int)}
}

func (g *spatialGrid) cellOf(b *Body) cell {
	p := b.Position
	return cell{
		x: int(math.Floor(p[0] / g.size)),
		y: int(math.Floor(p[1] / g.size)),
		z: int(math.Floor(p[2] / g.size)),
	}
}

// candidates returns index pairs (i < j, sorted) of bodies whose bounding spheres overlap and of
// which at least one is dynamic. The returned slice is reused by the next call.
func (g *spatialGrid) candidates(bodies []*Body) []pair {
	g.pairs = g.pairs[:0]
	if len(bodies) < 2 {
		return g.pairs
	}
	g.size = 0
	for _, b := range bodies {
		g.size = math.Max(g.size, 2*b.BoundingRadius())
	}
	for k, v := range g.cells {
		if len(v) == 0 {
			delete(g.cells, k)
			continue
		}
		g.cells[k] = v[:0]
	}
	for i, b := range bodies {
		c := g.cellOf(b)
		g.cells[c] = append(g.cells[c], i)
	}

	for i, a := range bodies {
		c := g.cellOf(a)
		for dx := -1; dx <= 1; dx++ {
			for dy := -1; dy <= 1; dy++ {
				for dz := -1; dz <= 1; dz++ {
					for _, j := range g.cells[cell{c.x + dx, c.y + dy, c.z + dz}] {
						if j <= i {
							continue
						}
						b := bodies[j]
						if !a.IsDynamic() && !b.IsDynamic() {
							continue
						}
						reach := a.BoundingRadius() + b.BoundingRadius()
						if b.Position.Sub(a.Position).LenSqr() < reach*reach {
							g.pairs = append(g.pairs, pair{i, j})
						}
					}
				}
			}
		}
	}
	slices.SortFunc(g.pairs, func(p, q pair) int {
		if c := cmp.Compare(p.i, q.i); c != 0 {
			return c
		}
		return cmp.Compare(p.j, q.j)
	})
	return g.pairs
}
