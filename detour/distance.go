package detour

import (
	"github.com/arl/gogeo/f32/d3"
	"github.com/arl/math32"
)

// PolyWallSegments returns the wall segments for the specified polygon,
// including portal segments that lead to other polygons when segmentRefs is
// not nil.
//
//  Arguments:
//   ref            The reference id of the polygon.
//   filter         The polygon filter to apply to the query.
//   segmentVerts   Will be filled with segment start/end pairs.
//                  [(ax,ay,az,bx,by,bz) * segmentCount]
//   segmentRefs    Will be filled, per segment, with the neighbour polygon
//                  reference, or zero if the segment is a solid wall. [opt]
//                  When nil, only wall segments are stored.
//   maxSegments    The maximum number of segments the result arrays can hold.
//
// A segment that is normally a portal but which has been blocked by an
// extra filter restriction becomes a wall segment instead.
//
// Note: this method may be used by multiple clients without side effects.
func (q *NavMeshQuery) PolyWallSegments(
	ref PolyRef,
	filter QueryFilter,
	segmentVerts []float32,
	segmentRefs []PolyRef,
	maxSegments int) (n int, st Status) {

	var (
		tile *MeshTile
		poly *Poly
	)
	if StatusFailed(q.nav.TileAndPolyByRef(ref, &tile, &poly)) {
		return 0, Failure | InvalidParam
	}

	st = Success
	nverts := int(poly.VertCount)

	for i, j := 0, nverts-1; i < nverts; j, i = i, i+1 {
		var neiRef PolyRef

		if poly.Neis[j]&extLink != 0 {
			for k := poly.FirstLink; k != nullLink; k = tile.Links[k].Next {
				link := &tile.Links[k]
				if int(link.Edge) != j {
					continue
				}
				if link.Ref == 0 {
					continue
				}
				var (
					neiTile *MeshTile
					neiPoly *Poly
				)
				q.nav.TileAndPolyByRefUnsafe(link.Ref, &neiTile, &neiPoly)
				if filter.PassFilter(link.Ref, neiTile, neiPoly) {
					neiRef = link.Ref
					break
				}
			}
		} else if poly.Neis[j] != 0 {
			idx := uint32(poly.Neis[j] - 1)
			candidate := q.nav.polyRefBase(tile) | PolyRef(idx)
			if filter.PassFilter(candidate, tile, &tile.Polys[idx]) {
				neiRef = candidate
			}
		}

		if segmentRefs == nil && neiRef != 0 {
			// Portal, only stored along with its neighbour reference.
			continue
		}

		if n >= maxSegments {
			st |= BufferTooSmall
			break
		}

		vj := poly.Verts[j] * 3
		vi := poly.Verts[i] * 3
		base := n * 6
		copy(segmentVerts[base:base+3], tile.Verts[vj:vj+3])
		copy(segmentVerts[base+3:base+6], tile.Verts[vi:vi+3])
		if segmentRefs != nil {
			segmentRefs[n] = neiRef
		}
		n++
	}

	return n, st
}

// FindDistanceToWall finds the distance from centerPos to the nearest wall,
// within the reach of maxRadius.
//
//  Arguments:
//   startRef  The reference id of the polygon to start the search at.
//   centerPos The center of the search circle. [(x, y, z)]
//   maxRadius The radius of the search circle.
//   filter    The polygon filter to apply to the query.
//
//  Returns:
//   hitDist   The distance to the nearest wall.
//   hitPos    The surface point closest to the wall. [(x, y, z)]
//   hitNormal The normalized ray formed from the wall point to the
//             source point. [(x, y, z)]
//   st        The status flags for the query.
//
// This method uses the validated polygons from the navigation mesh as the
// source of wall segments, expanding the search outward with a Dijkstra-like
// walk until the frontier exceeds maxRadius.
//
// Note: this method may be used by multiple clients without side effects.
func (q *NavMeshQuery) FindDistanceToWall(
	startRef PolyRef,
	centerPos d3.Vec3,
	maxRadius float32,
	filter QueryFilter) (hitDist float32, hitPos, hitNormal d3.Vec3, st Status) {

	hitPos = d3.NewVec3()
	hitNormal = d3.NewVec3()

	if startRef == 0 || !q.nav.IsValidPolyRef(startRef) {
		return 0, hitPos, hitNormal, Failure | InvalidParam
	}

	q.nodePool.Clear()
	q.openList.clear()

	startNode := q.nodePool.Node(startRef, 0)
	startNode.Pos.Assign(centerPos)
	startNode.PIdx = 0
	startNode.Cost = 0
	startNode.Total = 0
	startNode.ID = startRef
	startNode.Flags = nodeOpen
	q.openList.push(startNode)

	radiusSqr := math32.Sqr(maxRadius)
	bestDistSqr := radiusSqr

	st = Success

	const maxSegs = int(VertsPerPolygon)
	segVerts := make([]float32, maxSegs*6)
	segRefs := make([]PolyRef, maxSegs)

	for !q.openList.empty() {
		bestNode := q.openList.pop()
		bestNode.Flags &= ^nodeOpen
		bestNode.Flags |= nodeClosed

		var (
			bestTile *MeshTile
			bestPoly *Poly
		)
		q.nav.TileAndPolyByRefUnsafe(bestNode.ID, &bestTile, &bestPoly)

		var parentRef PolyRef
		if bestNode.PIdx != 0 {
			parentRef = q.nodePool.NodeAtIdx(int32(bestNode.PIdx)).ID
		}

		nsegs, _ := q.PolyWallSegments(bestNode.ID, filter, segVerts, segRefs, maxSegs)
		for j := 0; j < nsegs; j++ {
			if segRefs[j] != 0 {
				// Not a wall, an open (filter-passing) edge.
				continue
			}
			s0 := d3.Vec3(segVerts[j*6 : j*6+3])
			s1 := d3.Vec3(segVerts[j*6+3 : j*6+6])
			var tseg float32
			distSqr := distancePtSegSqr2D(centerPos, s0, s1, &tseg)
			if distSqr < bestDistSqr {
				d3.Vec3Lerp(hitPos, s0, s1, tseg)
				bestDistSqr = distSqr
			}
		}

		for i := bestPoly.FirstLink; i != nullLink; i = bestTile.Links[i].Next {
			link := &bestTile.Links[i]
			neighbourRef := link.Ref
			if neighbourRef == 0 || neighbourRef == parentRef {
				continue
			}

			var (
				neighbourTile *MeshTile
				neighbourPoly *Poly
			)
			q.nav.TileAndPolyByRefUnsafe(neighbourRef, &neighbourTile, &neighbourPoly)

			if !filter.PassFilter(neighbourRef, neighbourTile, neighbourPoly) {
				continue
			}

			vj := bestPoly.Verts[link.Edge] * 3
			vi := bestPoly.Verts[(link.Edge+1)%bestPoly.VertCount] * 3
			va := d3.Vec3(bestTile.Verts[vj : vj+3])
			vb := d3.Vec3(bestTile.Verts[vi : vi+3])

			var tseg float32
			distSqr := distancePtSegSqr2D(centerPos, va, vb, &tseg)
			if distSqr > radiusSqr {
				continue
			}

			neighbourNode := q.nodePool.Node(neighbourRef, 0)
			if neighbourNode == nil {
				st |= OutOfNodes
				continue
			}
			if neighbourNode.Flags&nodeClosed != 0 {
				continue
			}

			if neighbourNode.Flags == 0 {
				status := q.edgeMidPoint(bestNode.ID, bestPoly, bestTile,
					neighbourRef, neighbourPoly, neighbourTile, neighbourNode.Pos[:])
				if StatusFailed(status) {
					continue
				}
			}

			total := bestNode.Total + bestNode.Pos.Dist(neighbourNode.Pos)
			if (neighbourNode.Flags&nodeOpen != 0 || neighbourNode.Flags&nodeClosed != 0) &&
				total >= neighbourNode.Total {
				continue
			}

			neighbourNode.ID = neighbourRef
			neighbourNode.Flags &= ^NodeFlags(nodeClosed)
			neighbourNode.PIdx = q.nodePool.NodeIdx(bestNode)
			neighbourNode.Total = total

			if neighbourNode.Flags&nodeOpen != 0 {
				q.openList.modify(neighbourNode)
			} else {
				neighbourNode.Flags |= nodeOpen
				q.openList.push(neighbourNode)
			}
		}
	}

	d3.Vec3Sub(hitNormal, centerPos, hitPos)
	hitNormal.Normalize()

	hitDist = math32.Sqrt(bestDistSqr)

	return hitDist, hitPos, hitNormal, st
}
