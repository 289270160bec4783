package detour

import (
	"github.com/arl/gogeo/f32/d3"
	"github.com/arl/math32"
)

// FindPolysAroundCircle finds the polygons along the navigation graph that
// touch the specified circle, expanding outward from startRef in cost order.
//
//  Arguments:
//   startRef    The reference id of the polygon where the search starts.
//   centerPos   The center of the search circle. [(x, y, z)]
//   radius      The radius of the search circle.
//   filter      The polygon filter to apply to the query.
//   resultRef   Array to hold the search result polygon references. [opt]
//   resultParent Array to hold the parent of each result polygon. [opt]
//   resultCost  Array to hold the search cost of each result polygon. [opt]
//   maxResult   The maximum number of polygons the result arrays can hold.
//
// At least one of the result pointer arrays must be non-nil.
//
// The order of the result set is from least to highest cost to reach the
// polygon.
//
// A common use case for this method is to perform a Dijkstra search over
// the navigation graph to find the cost to reach a target polygon.
//
// Note: this method may be used by multiple clients without side effects.
func (q *NavMeshQuery) FindPolysAroundCircle(
	startRef PolyRef,
	centerPos d3.Vec3,
	radius float32,
	filter QueryFilter,
	resultRef, resultParent []PolyRef,
	resultCost []float32,
	maxResult int) (resultCount int, st Status) {

	if startRef == 0 || !q.nav.IsValidPolyRef(startRef) {
		return 0, Failure | InvalidParam
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

	st = Success
	n := 0

	radiusSqr := math32.Sqr(radius)

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

		if n < maxResult {
			if resultRef != nil {
				resultRef[n] = bestNode.ID
			}
			if resultParent != nil {
				resultParent[n] = parentRef
			}
			if resultCost != nil {
				resultCost[n] = bestNode.Total
			}
			n++
		} else {
			st |= BufferTooSmall
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

			va, vb := d3.NewVec3(), d3.NewVec3()
			if StatusFailed(q.portalPoints8(bestNode.ID, bestPoly, bestTile, neighbourRef, neighbourPoly, neighbourTile, va, vb)) {
				continue
			}

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
				d3.Vec3Lerp(neighbourNode.Pos, va, vb, 0.5)
			}

			cost := filter.Cost(bestNode.Pos, neighbourNode.Pos, parentRef, bestTile, bestPoly, bestNode.ID, bestTile, bestPoly, neighbourRef, neighbourTile, neighbourPoly)
			total := bestNode.Total + cost

			if neighbourNode.Flags&(nodeOpen|nodeClosed) != 0 && total >= neighbourNode.Total {
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

	return n, st
}

// FindPolysAroundShape finds the polygons along the naviation graph that
// touch the specified convex polygon, expanding outward from startRef in
// cost order. verts describes a convex polygon with nverts vertices,
// projected onto the xz-plane, given in (x, y, z) triples.
//
// See FindPolysAroundCircle for a description of the result arrays and
// further details; the behaviour is identical aside from the shape used
// to bound the search.
//
// Note: this method may be used by multiple clients without side effects.
func (q *NavMeshQuery) FindPolysAroundShape(
	startRef PolyRef,
	verts []float32,
	nverts int,
	filter QueryFilter,
	resultRef, resultParent []PolyRef,
	resultCost []float32,
	maxResult int) (resultCount int, st Status) {

	if startRef == 0 || !q.nav.IsValidPolyRef(startRef) || nverts < 3 {
		return 0, Failure | InvalidParam
	}

	q.nodePool.Clear()
	q.openList.clear()

	centerPos := d3.NewVec3()
	for i := 0; i < nverts; i++ {
		centerPos[0] += verts[i*3+0]
		centerPos[1] += verts[i*3+1]
		centerPos[2] += verts[i*3+2]
	}
	scale := 1.0 / float32(nverts)
	centerPos[0] *= scale
	centerPos[1] *= scale
	centerPos[2] *= scale

	startNode := q.nodePool.Node(startRef, 0)
	startNode.Pos.Assign(centerPos)
	startNode.PIdx = 0
	startNode.Cost = 0
	startNode.Total = 0
	startNode.ID = startRef
	startNode.Flags = nodeOpen
	q.openList.push(startNode)

	st = Success
	n := 0

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

		if n < maxResult {
			if resultRef != nil {
				resultRef[n] = bestNode.ID
			}
			if resultParent != nil {
				resultParent[n] = parentRef
			}
			if resultCost != nil {
				resultCost[n] = bestNode.Total
			}
			n++
		} else {
			st |= BufferTooSmall
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

			va, vb := d3.NewVec3(), d3.NewVec3()
			if StatusFailed(q.portalPoints8(bestNode.ID, bestPoly, bestTile, neighbourRef, neighbourPoly, neighbourTile, va, vb)) {
				continue
			}

			_, _, _, _, intersects := IntersectSegmentPoly2D(va, vb, verts, nverts)
			if !intersects {
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
				d3.Vec3Lerp(neighbourNode.Pos, va, vb, 0.5)
			}

			cost := filter.Cost(bestNode.Pos, neighbourNode.Pos, parentRef, bestTile, bestPoly, bestNode.ID, bestTile, bestPoly, neighbourRef, neighbourTile, neighbourPoly)
			total := bestNode.Total + cost

			if neighbourNode.Flags&(nodeOpen|nodeClosed) != 0 && total >= neighbourNode.Total {
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

	return n, st
}

// FindLocalNeighbourhood finds the navigation polygons connected to startRef
// and touching a circle centered at centerPos, without crossing any wall
// (an edge whose neighbouring polygon fails the given filter). The polygons
// found are not tested for overlap with one another. Unlike
// FindPolysAroundCircle this is a pure breadth-first flood fill, the
// result is unordered by cost and only free of duplicates, not ordered.
//
//  Arguments:
//   startRef    The reference id of the polygon where the search starts.
//   centerPos   The center of the query circle. [(x, y, z)]
//   radius      The radius of the query circle.
//   filter      The polygon filter to apply to the query.
//   resultRef   Array to hold the search result polygon references.
//   resultParent Array to hold the parent of each result polygon. [opt]
//   maxResult   The maximum number of polygons the result arrays can hold.
//
// This method is essentially a loose surface flood fill that also
// offers several suggestions on how to limit the size of the result set.
//
// Note: this method may be used by multiple clients without side effects.
func (q *NavMeshQuery) FindLocalNeighbourhood(
	startRef PolyRef,
	centerPos d3.Vec3,
	radius float32,
	filter QueryFilter,
	resultRef, resultParent []PolyRef,
	maxResult int) (resultCount int, st Status) {

	if startRef == 0 || !q.nav.IsValidPolyRef(startRef) {
		return 0, Failure | InvalidParam
	}

	q.tinyNodePool.Clear()

	startNode := q.tinyNodePool.Node(startRef, 0)
	startNode.PIdx = 0
	startNode.ID = startRef
	startNode.Flags = nodeClosed

	const maxStack = 48
	var stack [maxStack]*Node
	nstack := 0
	stack[nstack] = startNode
	nstack++

	n := 0
	if n < maxResult {
		resultRef[n] = startNode.ID
		if resultParent != nil {
			resultParent[n] = 0
		}
		n++
	}

	radiusSqr := math32.Sqr(radius)
	st = Success

	for nstack > 0 {
		curNode := stack[0]
		for i := 0; i < nstack-1; i++ {
			stack[i] = stack[i+1]
		}
		nstack--

		var (
			curTile *MeshTile
			curPoly *Poly
		)
		q.nav.TileAndPolyByRefUnsafe(curNode.ID, &curTile, &curPoly)

		for i := curPoly.FirstLink; i != nullLink; i = curTile.Links[i].Next {
			link := &curTile.Links[i]
			neighbourRef := link.Ref
			if neighbourRef == 0 {
				continue
			}

			neighbourNode := q.tinyNodePool.Node(neighbourRef, 0)
			if neighbourNode == nil {
				continue
			}
			if neighbourNode.Flags&nodeClosed != 0 {
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

			va, vb := d3.NewVec3(), d3.NewVec3()
			if StatusFailed(q.portalPoints8(curNode.ID, curPoly, curTile, neighbourRef, neighbourPoly, neighbourTile, va, vb)) {
				continue
			}

			var tseg float32
			distSqr := distancePtSegSqr2D(centerPos, va, vb, &tseg)
			if distSqr > radiusSqr {
				continue
			}

			neighbourNode.Flags |= nodeClosed
			neighbourNode.PIdx = q.tinyNodePool.NodeIdx(curNode)
			neighbourNode.ID = neighbourRef

			if n < maxResult {
				resultRef[n] = neighbourRef
				if resultParent != nil {
					resultParent[n] = curNode.ID
				}
				n++
			} else {
				st |= BufferTooSmall
			}

			if nstack < maxStack {
				stack[nstack] = neighbourNode
				nstack++
			}
		}
	}

	return n, st
}
