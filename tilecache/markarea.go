package tilecache

import (
	"github.com/arl/gogeo/f32/d3"
	"github.com/arl/math32"
)

func clampCellRange(minx, maxx, minz, maxz, w, h int) (int, int, int, int, bool) {
	if maxx < 0 || minx >= w || maxz < 0 || minz >= h {
		return 0, 0, 0, 0, false
	}
	if minx < 0 {
		minx = 0
	}
	if maxx >= w {
		maxx = w - 1
	}
	if minz < 0 {
		minz = 0
	}
	if maxz >= h {
		maxz = h - 1
	}
	return minx, maxx, minz, maxz, true
}

// MarkCylinderArea carves a vertical cylinder into layer's area ids,
// leaving any cell outside the cylinder (by radius and by height band)
// unchanged.
func MarkCylinderArea(layer *Layer, orig d3.Vec3, cs, ch float32, pos d3.Vec3, radius, height float32, areaID uint8) {
	w, h := int(layer.Header.Width), int(layer.Header.Height)
	ics, ich := 1/cs, 1/ch

	bminX, bminZ := pos[0]-radius, pos[2]-radius
	bmaxX, bmaxZ := pos[0]+radius, pos[2]+radius
	r2 := math32.Sqr(radius/cs + 0.5)

	px := (pos[0] - orig[0]) * ics
	pz := (pos[2] - orig[2]) * ics

	minx := int(math32.Floor((bminX - orig[0]) * ics))
	minz := int(math32.Floor((bminZ - orig[2]) * ics))
	maxx := int(math32.Floor((bmaxX - orig[0]) * ics))
	maxz := int(math32.Floor((bmaxZ - orig[2]) * ics))
	miny := int(math32.Floor((pos[1] - orig[1]) * ich))
	maxy := int(math32.Floor((pos[1] + height - orig[1]) * ich))

	minx, maxx, minz, maxz, ok := clampCellRange(minx, maxx, minz, maxz, w, h)
	if !ok {
		return
	}

	for z := minz; z <= maxz; z++ {
		for x := minx; x <= maxx; x++ {
			dx := float32(x) + 0.5 - px
			dz := float32(z) + 0.5 - pz
			if dx*dx+dz*dz > r2 {
				continue
			}
			idx := x + z*w
			y := int(layer.Heights[idx])
			if y < miny || y > maxy {
				continue
			}
			layer.Areas[idx] = areaID
		}
	}
}

// MarkBoxArea carves an axis-aligned box into layer's area ids.
func MarkBoxArea(layer *Layer, orig d3.Vec3, cs, ch float32, bmin, bmax d3.Vec3, areaID uint8) {
	w, h := int(layer.Header.Width), int(layer.Header.Height)
	ics, ich := 1/cs, 1/ch

	minx := int(math32.Floor((bmin[0] - orig[0]) * ics))
	minz := int(math32.Floor((bmin[2] - orig[2]) * ics))
	maxx := int(math32.Floor((bmax[0] - orig[0]) * ics))
	maxz := int(math32.Floor((bmax[2] - orig[2]) * ics))
	miny := int(math32.Floor((bmin[1] - orig[1]) * ich))
	maxy := int(math32.Floor((bmax[1] - orig[1]) * ich))

	minx, maxx, minz, maxz, ok := clampCellRange(minx, maxx, minz, maxz, w, h)
	if !ok {
		return
	}

	for z := minz; z <= maxz; z++ {
		for x := minx; x <= maxx; x++ {
			idx := x + z*w
			y := int(layer.Heights[idx])
			if y < miny || y > maxy {
				continue
			}
			layer.Areas[idx] = areaID
		}
	}
}

// MarkOrientedBoxArea carves a box rotated around Y into layer's area
// ids. rotAux is ObstacleOrientedBox.RotAux, precomputed once per
// obstacle rather than re-derived from an angle on every cell.
func MarkOrientedBoxArea(layer *Layer, orig d3.Vec3, cs, ch float32, center, halfExtents d3.Vec3, rotAux [2]float32, areaID uint8) {
	w, h := int(layer.Header.Width), int(layer.Header.Height)
	ics, ich := 1/cs, 1/ch

	cx := (center[0] - orig[0]) * ics
	cz := (center[2] - orig[2]) * ics

	maxr := 1.41 * math32.Max(halfExtents[0], halfExtents[2])
	minx := int(math32.Floor(cx - maxr*ics))
	maxx := int(math32.Floor(cx + maxr*ics))
	minz := int(math32.Floor(cz - maxr*ics))
	maxz := int(math32.Floor(cz + maxr*ics))
	miny := int(math32.Floor((center[1] - halfExtents[1] - orig[1]) * ich))
	maxy := int(math32.Floor((center[1] + halfExtents[1] - orig[1]) * ich))

	minx, maxx, minz, maxz, ok := clampCellRange(minx, maxx, minz, maxz, w, h)
	if !ok {
		return
	}

	xhalf := halfExtents[0]*ics + 0.5
	zhalf := halfExtents[2]*ics + 0.5

	for z := minz; z <= maxz; z++ {
		for x := minx; x <= maxx; x++ {
			x2 := 2 * (float32(x) - cx)
			z2 := 2 * (float32(z) - cz)
			xrot := rotAux[1]*x2 + rotAux[0]*z2
			if xrot > xhalf || xrot < -xhalf {
				continue
			}
			zrot := rotAux[1]*z2 - rotAux[0]*x2
			if zrot > zhalf || zrot < -zhalf {
				continue
			}
			idx := x + z*w
			y := int(layer.Heights[idx])
			if y < miny || y > maxy {
				continue
			}
			layer.Areas[idx] = areaID
		}
	}
}
