package tilecache

// Contour is one region's simplified boundary: vertices carry the grid
// height and, in their low nibble, either 0xf (no portal), or the
// direction of the tile-edge portal they sit on.
type Contour struct {
	Verts []uint8 // x,y,z,r quads; r packs portal dir / removal flag
	Reg   uint8
	Area  uint8
}

func (c *Contour) NVerts() int { return len(c.Verts) / 4 }

// ContourSet holds one Contour per region found by BuildTileCacheRegions,
// indexed by region id.
type ContourSet struct {
	Conts []Contour
}

// tempContour is scratch state for walkContour/simplifyContour, mirroring
// dtTempContour: raw boundary vertices are collected first, then reduced
// to a subset (indices into verts, in poly) within maxError.
type tempContour struct {
	verts []uint8
	poly  []int
}

func appendVertex(cont *tempContour, x, y, z int, r uint8) {
	n := len(cont.verts) / 4
	if n > 1 {
		pa := cont.verts[(n-2)*4 : (n-2)*4+4]
		pb := cont.verts[(n-1)*4 : (n-1)*4+4]
		if pb[3] == r {
			if pa[0] == pb[0] && int(pb[0]) == x {
				// Aligned along x-axis, update z.
				pb[1] = uint8(y)
				pb[2] = uint8(z)
				return
			}
			if pa[2] == pb[2] && int(pb[2]) == z {
				// Aligned along z-axis, update x.
				pb[0] = uint8(x)
				pb[1] = uint8(y)
				return
			}
		}
	}
	cont.verts = append(cont.verts, uint8(x), uint8(y), uint8(z), r)
}

func getNeighbourReg(layer *Layer, ax, ay, dir int) uint8 {
	w := int(layer.Header.Width)
	ia := ax + ay*w

	con := layer.Cons[ia] & 0xf
	portal := layer.Cons[ia] >> 4
	mask := uint8(1 << uint(dir))

	if con&mask == 0 {
		if portal&mask != 0 {
			return 0xf8 + uint8(dir)
		}
		return 0xff
	}

	bx := ax + dirOffsetX[dir]
	by := ay + dirOffsetY[dir]
	ib := bx + by*w
	return layer.Regs[ib]
}

func walkContour(layer *Layer, x, y int, cont *tempContour) {
	w := int(layer.Header.Width)
	h := int(layer.Header.Height)
	cont.verts = cont.verts[:0]

	startX, startY := x, y
	startDir := -1

	for i := 0; i < 4; i++ {
		dir := (i + 3) & 3
		if getNeighbourReg(layer, x, y, dir) != layer.Regs[x+y*w] {
			startDir = dir
			break
		}
	}
	if startDir == -1 {
		return
	}

	dir := startDir
	maxIter := w * h
	iter := 0

	for iter < maxIter {
		rn := getNeighbourReg(layer, x, y, dir)

		nx, ny := x, y
		var ndir int

		if rn != layer.Regs[x+y*w] {
			px, pz := x, y
			switch dir {
			case 0:
				pz++
			case 1:
				px++
				pz++
			case 2:
				px++
			}
			appendVertex(cont, px, int(layer.Heights[x+y*w]), pz, rn)
			ndir = (dir + 1) & 0x3
		} else {
			nx = x + dirOffsetX[dir]
			ny = y + dirOffsetY[dir]
			ndir = (dir + 3) & 0x3
		}

		if iter > 0 && x == startX && y == startY && dir == startDir {
			break
		}

		x, y, dir = nx, ny, ndir
		iter++
	}

	n := len(cont.verts) / 4
	if n > 1 {
		pa := cont.verts[(n-1)*4:]
		pb := cont.verts[0:4]
		if pa[0] == pb[0] && pa[2] == pb[2] {
			cont.verts = cont.verts[:(n-1)*4]
		}
	}
}

func distancePtSeg(x, z, px, pz, qx, qz int) float32 {
	pqx := float32(qx - px)
	pqz := float32(qz - pz)
	dx := float32(x - px)
	dz := float32(z - pz)
	d := pqx*pqx + pqz*pqz
	t := pqx*dx + pqz*dz
	if d > 0 {
		t /= d
	}
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	dx = float32(px) + t*pqx - float32(x)
	dz = float32(pz) + t*pqz - float32(z)
	return dx*dx + dz*dz
}

// simplifyContour reduces cont.verts to the subset of vertices (recorded
// as indices in cont.poly) needed to stay within maxError of the raw
// boundary walkContour traced: vertices where the neighbouring region or
// portal changes are kept unconditionally, then more are added wherever the straight segment
// between two kept vertices deviates from the raw boundary by more than
// maxError.
func simplifyContour(cont *tempContour, maxError float32) {
	nverts := len(cont.verts) / 4
	cont.poly = cont.poly[:0]

	for i := 0; i < nverts; i++ {
		j := (i + 1) % nverts
		if cont.verts[i*4+3] != cont.verts[j*4+3] {
			cont.poly = append(cont.poly, i)
		}
	}
	if len(cont.poly) < 2 {
		llx, llz, lli := int(cont.verts[0]), int(cont.verts[2]), 0
		urx, urz, uri := llx, llz, 0
		for i := 1; i < nverts; i++ {
			x := int(cont.verts[i*4+0])
			z := int(cont.verts[i*4+2])
			if x < llx || (x == llx && z < llz) {
				llx, llz, lli = x, z, i
			}
			if x > urx || (x == urx && z > urz) {
				urx, urz, uri = x, z, i
			}
		}
		cont.poly = cont.poly[:0]
		cont.poly = append(cont.poly, lli, uri)
	}

	maxErrorSqr := maxError * maxError
	for i := 0; i < len(cont.poly); {
		ii := (i + 1) % len(cont.poly)

		ai := cont.poly[i]
		ax := int(cont.verts[ai*4+0])
		az := int(cont.verts[ai*4+2])

		bi := cont.poly[ii]
		bx := int(cont.verts[bi*4+0])
		bz := int(cont.verts[bi*4+2])

		maxd := float32(0)
		maxi := -1
		var ci, cinc, endi int

		if bx > ax || (bx == ax && bz > az) {
			cinc = 1
			ci = (ai + cinc) % nverts
			endi = bi
		} else {
			cinc = nverts - 1
			ci = (bi + cinc) % nverts
			endi = ai
		}

		for ci != endi {
			d := distancePtSeg(int(cont.verts[ci*4+0]), int(cont.verts[ci*4+2]), ax, az, bx, bz)
			if d > maxd {
				maxd = d
				maxi = ci
			}
			ci = (ci + cinc) % nverts
		}

		if maxi != -1 && maxd > maxErrorSqr {
			cont.poly = append(cont.poly, 0)
			copy(cont.poly[i+2:], cont.poly[i+1:len(cont.poly)-1])
			cont.poly[i+1] = maxi
		} else {
			i++
		}
	}

	start := 0
	for i := 1; i < len(cont.poly); i++ {
		if cont.poly[i] < cont.poly[start] {
			start = i
		}
	}

	simplified := make([]uint8, 0, len(cont.poly)*4)
	for i := 0; i < len(cont.poly); i++ {
		j := (start + i) % len(cont.poly)
		src := cont.verts[cont.poly[j]*4 : cont.poly[j]*4+4]
		simplified = append(simplified, src...)
	}
	cont.verts = simplified
}

func dtAbs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// getCornerHeight returns the height to store for a contour vertex, and
// whether that vertex sits in the interior of a straight boundary run
// (one portal direction, one neighbouring region on all four surrounding
// cells) and so can be dropped by the polymesh builder without changing
// the boundary's shape.
func getCornerHeight(layer *Layer, x, y, z, walkableClimb int) (height uint8, shouldRemove bool) {
	w := int(layer.Header.Width)
	h := int(layer.Header.Height)

	n := 0
	portal := uint8(0xf)
	preg := uint8(0xff)
	allSameReg := true

	for dz := -1; dz <= 0; dz++ {
		for dx := -1; dx <= 0; dx++ {
			px := x + dx
			pz := z + dz
			if px >= 0 && pz >= 0 && px < w && pz < h {
				idx := px + pz*w
				lh := int(layer.Heights[idx])
				if dtAbs(lh-y) <= walkableClimb && layer.Areas[idx] != TileCacheNullArea {
					if uint8(lh) > height {
						height = uint8(lh)
					}
					portal &= layer.Cons[idx] >> 4
					if preg != 0xff && preg != layer.Regs[idx] {
						allSameReg = false
					}
					preg = layer.Regs[idx]
					n++
				}
			}
		}
	}

	portalCount := 0
	for dir := 0; dir < 4; dir++ {
		if portal&(1<<uint(dir)) != 0 {
			portalCount++
		}
	}

	shouldRemove = n > 1 && portalCount == 1 && allSameReg
	return height, shouldRemove
}

// BuildTileCacheContours traces and simplifies the boundary of every
// region BuildTileCacheRegions produced.
func BuildTileCacheContours(layer *Layer, walkableClimb int, maxError float32) *ContourSet {
	w, h := int(layer.Header.Width), int(layer.Header.Height)

	lcset := &ContourSet{Conts: make([]Contour, layer.RegCount+1)}
	temp := &tempContour{}

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			idx := x + y*w
			ri := layer.Regs[idx]
			if ri == 0 || ri == 0xff {
				continue
			}

			cont := &lcset.Conts[ri]
			if len(cont.Verts) > 0 {
				continue
			}
			cont.Reg = ri
			cont.Area = layer.Areas[idx]

			walkContour(layer, x, y, temp)
			simplifyContour(temp, maxError)

			nverts := len(temp.verts) / 4
			if nverts == 0 {
				continue
			}
			cont.Verts = make([]uint8, nverts*4)
			for i, j := 0, nverts-1; i < nverts; j, i = i, i+1 {
				dst := cont.Verts[j*4 : j*4+4]
				v := temp.verts[j*4 : j*4+4]
				vn := temp.verts[i*4 : i*4+4]
				nei := vn[3]

				lh, shouldRemove := getCornerHeight(layer, int(v[0]), int(v[1]), int(v[2]), walkableClimb)

				dst[0] = v[0]
				dst[1] = lh
				dst[2] = v[2]

				dst[3] = 0x0f
				if nei != 0xff && nei >= 0xf8 {
					dst[3] = nei - 0xf8
				}
				if shouldRemove {
					dst[3] |= 0x80
				}
			}
		}
	}

	return lcset
}
