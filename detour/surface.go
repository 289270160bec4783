package detour

import (
	"unsafe"

	"github.com/arl/gogeo/f32/d3"
	"github.com/arl/math32"
)

// ClosestPointOnPoly is the exported form of closestPointOnPoly: it finds
// the closest point on the specified polygon, using the detail mesh to
// recover an accurate surface height.
//
// pos does not have to lie within the bounds of the polygon or the
// navigation mesh.
//
// Note: this method may be used by multiple clients without side effects.
func (q *NavMeshQuery) ClosestPointOnPoly(ref PolyRef, pos, closest d3.Vec3, posOverPoly *bool) Status {
	return q.closestPointOnPoly(ref, pos, closest, posOverPoly)
}

// PolyHeight finds the height at the given position on the specified
// polygon, using the detail mesh. pos must be within the xz-bounds of
// the polygon.
//
//  Arguments:
//   ref   The reference id of the polygon.
//   pos   A position within the xz-bounds of the polygon. [(x, y, z)]
//
// Returns the surface height at pos and the status of the query.
//
// Note: this method may be used by multiple clients without side effects.
func (q *NavMeshQuery) PolyHeight(ref PolyRef, pos d3.Vec3) (float32, Status) {
	var (
		tile *MeshTile
		poly *Poly
	)
	if StatusFailed(q.nav.TileAndPolyByRef(ref, &tile, &poly)) {
		return 0, Failure | InvalidParam
	}

	if poly.Type() == polyTypeOffMeshConnection {
		v0idx := poly.Verts[0] * 3
		v1idx := poly.Verts[1] * 3
		v0 := tile.Verts[v0idx : v0idx+3]
		v1 := tile.Verts[v1idx : v1idx+3]
		d0 := math32.Sqrt(math32.Sqr(pos[0]-v0[0]) + math32.Sqr(pos[2]-v0[2]))
		d1 := math32.Sqrt(math32.Sqr(pos[0]-v1[0]) + math32.Sqr(pos[2]-v1[2]))
		u := d0 / (d0 + d1)
		return v0[1] + (v1[1]-v0[1])*u, Success
	}

	ip := (uintptr(unsafe.Pointer(poly)) - uintptr(unsafe.Pointer(&tile.Polys[0]))) / unsafe.Sizeof(*poly)
	pd := &tile.DetailMeshes[uint32(ip)]

	for j := uint8(0); j < pd.TriCount; j++ {
		idx := int((pd.TriBase + uint32(j)) * 4)
		t := tile.DetailTris[idx : idx+3]
		var v [3]d3.Vec3
		for k := 0; k < 3; k++ {
			if t[k] < poly.VertCount {
				vidx := int(poly.Verts[t[k]] * 3)
				v[k] = tile.Verts[vidx : vidx+3]
			} else {
				vidx := int((pd.VertBase + uint32(t[k]-poly.VertCount)) * 3)
				v[k] = tile.DetailVerts[vidx : vidx+3]
			}
		}
		var h float32
		if closestHeightPointTriangle(pos, v[0], v[1], v[2], &h) {
			return h, Success
		}
	}

	return 0, Failure | InvalidParam
}

// MoveAlongSurface moves from the start to the end position constrained to
// the navigation mesh, stopping at polygon boundaries and stepping across
// shared edges that lie on the way toward the target.
//
//  Arguments:
//   startRef  The reference id of the start polygon.
//   startPos  A position within the start polygon. [(x, y, z)]
//   endPos    The position to move toward. [(x, y, z)]
//   filter    The polygon filter to apply to the query.
//   visited   Array that will be filled with the polygons visited. (in order)
//   maxVisited The maximum number of polygons the visited array can hold.
//
//  Returns:
//   resultPos  The position after the move, constrained to the mesh.
//   nvisited   The number of polygons in the visited array.
//   st         The status flags for the query.
//
// This method is optimized for small delta movement and a small number of
// polygons. If used for too great a distance, the result set will form an
// incomplete path.
//
// resultPos will equal the original startPos if the start is deeper than
// the first wall hit, or equal endPos if the path reaches it unobstructed.
//
// Note: this method may be used by multiple clients without side effects.
func (q *NavMeshQuery) MoveAlongSurface(
	startRef PolyRef,
	startPos, endPos d3.Vec3,
	filter QueryFilter,
	resultPos d3.Vec3,
	visited []PolyRef,
	maxVisited int) (nvisited int, st Status) {

	if startRef == 0 || !q.nav.IsValidPolyRef(startRef) {
		return 0, Failure | InvalidParam
	}

	const maxStack = 48
	var stack [maxStack]*Node
	nstack := 0

	q.tinyNodePool.Clear()

	startNode := q.tinyNodePool.Node(startRef, 0)
	startNode.PIdx = 0
	startNode.Cost = 0
	startNode.Total = 0
	startNode.ID = startRef
	startNode.Flags = nodeClosed
	stack[nstack] = startNode
	nstack++

	bestPos := d3.NewVec3From(startPos)
	bestDist := math32.MaxFloat32
	var bestNode *Node

	searchPos := d3.NewVec3()
	d3.Vec3Lerp(searchPos, startPos, endPos, 0.5)
	searchRadSqr := math32.Sqr(startPos.Dist(endPos)/2.0 + 0.001)

	var verts [VertsPerPolygon * 3]float32

	st = Success

	for nstack > 0 {
		// Pop front (FIFO order, as in the reference algorithm).
		curNode := stack[0]
		for i := 0; i < nstack-1; i++ {
			stack[i] = stack[i+1]
		}
		nstack--

		curRef := curNode.ID
		var (
			curTile *MeshTile
			curPoly *Poly
		)
		q.nav.TileAndPolyByRefUnsafe(curRef, &curTile, &curPoly)

		nverts := int(curPoly.VertCount)
		for i := 0; i < nverts; i++ {
			vidx := curPoly.Verts[i] * 3
			copy(verts[i*3:i*3+3], curTile.Verts[vidx:vidx+3])
		}

		if pointInPolygon(endPos, verts[:nverts*3], nverts) {
			bestNode = curNode
			bestPos.Assign(endPos)
			break
		}

		for i, j := 0, nverts-1; i < nverts; j, i = i, i+1 {
			const maxNeis = 8
			var neis [maxNeis]PolyRef
			nneis := 0

			if curPoly.Neis[j]&extLink != 0 {
				for k := curPoly.FirstLink; k != nullLink; k = curTile.Links[k].Next {
					link := &curTile.Links[k]
					if int(link.Edge) == j && link.Ref != 0 {
						var (
							neiTile *MeshTile
							neiPoly *Poly
						)
						q.nav.TileAndPolyByRefUnsafe(link.Ref, &neiTile, &neiPoly)
						if filter.PassFilter(link.Ref, neiTile, neiPoly) && nneis < maxNeis {
							neis[nneis] = link.Ref
							nneis++
						}
					}
				}
			} else if curPoly.Neis[j] != 0 {
				idx := uint32(curPoly.Neis[j] - 1)
				ref := q.nav.polyRefBase(curTile) | PolyRef(idx)
				if filter.PassFilter(ref, curTile, &curTile.Polys[idx]) {
					neis[nneis] = ref
					nneis++
				}
			}

			vj := d3.Vec3(verts[j*3 : j*3+3])
			vi := d3.Vec3(verts[i*3 : i*3+3])

			if nneis == 0 {
				// Wall edge, calc distance.
				var tseg float32
				distSqr := distancePtSegSqr2D(endPos, vj, vi, &tseg)
				if distSqr < bestDist {
					d3.Vec3Lerp(bestPos, vj, vi, tseg)
					bestDist = distSqr
					bestNode = curNode
				}
			} else {
				for k := 0; k < nneis; k++ {
					neighbourNode := q.tinyNodePool.Node(neis[k], 0)
					if neighbourNode == nil {
						continue
					}
					if neighbourNode.Flags&nodeClosed != 0 {
						continue
					}

					var tseg float32
					distSqr := distancePtSegSqr2D(searchPos, vj, vi, &tseg)
					if distSqr > searchRadSqr {
						continue
					}

					if nstack < maxStack {
						neighbourNode.PIdx = q.tinyNodePool.NodeIdx(curNode)
						neighbourNode.Flags |= nodeClosed
						stack[nstack] = neighbourNode
						nstack++
					}
				}
			}
		}
	}

	nvisited = 0
	if bestNode != nil {
		// Reverse the parent chain.
		var prev *Node
		node := bestNode
		for {
			next := q.tinyNodePool.NodeAtIdx(int32(node.PIdx))
			node.PIdx = q.tinyNodePool.NodeIdx(prev)
			prev = node
			node = next
			if node == nil {
				break
			}
		}

		node = prev
		for node != nil {
			if nvisited >= maxVisited {
				st |= BufferTooSmall
				break
			}
			visited[nvisited] = node.ID
			nvisited++
			node = q.tinyNodePool.NodeAtIdx(int32(node.PIdx))
		}
	}

	resultPos.Assign(bestPos)
	return nvisited, st
}

// pointInPolygon returns true if pt lies inside the xz-projection of the
// convex polygon described by verts.
func pointInPolygon(pt d3.Vec3, verts []float32, nverts int) bool {
	c := false
	for i, j := 0, nverts-1; i < nverts; j, i = i, i+1 {
		vi := verts[i*3 : i*3+3]
		vj := verts[j*3 : j*3+3]
		if ((vi[2] > pt[2]) != (vj[2] > pt[2])) &&
			(pt[0] < (vj[0]-vi[0])*(pt[2]-vi[2])/(vj[2]-vi[2])+vi[0]) {
			c = !c
		}
	}
	return c
}

// randomPointInConvexPoly picks a point inside the convex polygon pts
// (npts verts, xz-projected), weighted uniformly by area, given two
// independent random samples s and t in [0,1).
func randomPointInConvexPoly(pts []float32, npts int, s, t float32) d3.Vec3 {
	areas := make([]float32, npts)
	var areaSum float32
	for i := 2; i < npts; i++ {
		a := TriArea2D(d3.Vec3(pts[0:3]), d3.Vec3(pts[(i-1)*3:(i-1)*3+3]), d3.Vec3(pts[i*3:i*3+3]))
		areas[i] = a
		areaSum += math32.Max(0.001, a)
	}

	thr := s * areaSum
	var acc float32
	u := float32(1.0)
	tri := npts - 1
	for i := 2; i < npts; i++ {
		dacc := areas[i]
		if thr >= acc && thr < acc+dacc {
			u = (thr - acc) / dacc
			tri = i
			break
		}
		acc += dacc
	}

	v := math32.Sqrt(t)
	a := 1 - v
	b := (1 - u) * v
	c := u * v

	pa := pts[0:3]
	pb := pts[(tri-1)*3 : (tri-1)*3+3]
	pc := pts[tri*3 : tri*3+3]

	out := d3.NewVec3()
	out[0] = a*pa[0] + b*pb[0] + c*pc[0]
	out[1] = a*pa[1] + b*pb[1] + c*pc[1]
	out[2] = a*pa[2] + b*pb[2] + c*pc[2]
	return out
}

// RandomPoint returns a random point on a random polygon of the navigation
// mesh that passes the given filter.
//
// All tiles and, within the chosen tile, all polygons are weighted
// uniformly by xz-plane area.
//
// Note: this method may be used by multiple clients without side effects.
func (q *NavMeshQuery) RandomPoint(filter QueryFilter, rnd func() float32) (PolyRef, d3.Vec3, Status) {
	if filter == nil || rnd == nil {
		return 0, nil, Failure | InvalidParam
	}

	var tile *MeshTile
	var tsum float32
	for i := int32(0); i < q.nav.MaxTiles; i++ {
		t := &q.nav.Tiles[i]
		if t.Header == nil {
			continue
		}
		const area = 1.0
		tsum += area
		u := rnd()
		if u*tsum <= area {
			tile = t
		}
	}
	if tile == nil {
		return 0, nil, Failure
	}

	var (
		poly    *Poly
		polyRef PolyRef
	)
	base := q.nav.polyRefBase(tile)
	var areaSum float32
	for i := int32(0); i < tile.Header.PolyCount; i++ {
		p := &tile.Polys[i]
		if p.Type() != polyTypeGround {
			continue
		}
		ref := base | PolyRef(i)
		if !filter.PassFilter(ref, tile, p) {
			continue
		}
		var polyArea float32
		va := tile.Verts[p.Verts[0]*3 : p.Verts[0]*3+3]
		for j := uint8(2); j < p.VertCount; j++ {
			vb := tile.Verts[p.Verts[j-1]*3 : p.Verts[j-1]*3+3]
			vc := tile.Verts[p.Verts[j]*3 : p.Verts[j]*3+3]
			polyArea += TriArea2D(va, vb, vc)
		}
		areaSum += polyArea
		u := rnd()
		if u*areaSum <= polyArea {
			polyRef = ref
			poly = p
		}
	}
	if poly == nil {
		return 0, nil, Failure
	}

	verts := make([]float32, int(poly.VertCount)*3)
	for j := uint8(0); j < poly.VertCount; j++ {
		vidx := poly.Verts[j] * 3
		copy(verts[int(j)*3:int(j)*3+3], tile.Verts[vidx:vidx+3])
	}

	pt := randomPointInConvexPoly(verts, int(poly.VertCount), rnd(), rnd())

	h, status := q.PolyHeight(polyRef, pt)
	if StatusFailed(status) {
		return 0, nil, status
	}
	pt[1] = h

	return polyRef, pt, Success
}
