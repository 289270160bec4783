package detour

import (
	"github.com/arl/gogeo/f32/d3"
)

// Options for InitSlicedFindPath.
const (
	// FindPathAnyAngle uses a raycast during the search to give straighter
	// paths, and shortcuts found path.
	FindPathAnyAngle uint32 = 0x02
)

// InitSlicedFindPath initializes a sliced path query, suitable for small
// searches spread across several frames, or for good compromise between
// size and performance.
//
//  Arguments:
//   startRef  The reference id of the start polygon.
//   endRef    The reference id of the end polygon.
//   startPos  A position within the start polygon. [(x, y, z)]
//   endPos    A position within the end polygon. [(x, y, z)]
//   filter    The polygon filter to apply to the query.
//   options   Query options. (see: FindPathAnyAngle)
//
// Returns the status flags for the query.
//
// Call UpdateSlicedFindPath to advance the search, and either
// FinalizeSlicedFindPath or FinalizeSlicedFindPathPartial to retrieve the
// result once the search has ended, in success or failure.
func (q *NavMeshQuery) InitSlicedFindPath(
	startRef, endRef PolyRef,
	startPos, endPos d3.Vec3,
	filter QueryFilter,
	options uint32) Status {

	q.query = queryData{}
	q.query.status = Failure
	q.query.startRef = startRef
	q.query.endRef = endRef
	q.query.startPos = d3.NewVec3From(startPos)
	q.query.endPos = d3.NewVec3From(endPos)
	q.query.filter = filter
	q.query.options = options
	q.query.raycastLimitSqr = 0

	if startRef == 0 || endRef == 0 ||
		!q.nav.IsValidPolyRef(startRef) || !q.nav.IsValidPolyRef(endRef) ||
		startPos == nil || endPos == nil || filter == nil {
		return Failure | InvalidParam
	}

	if startRef == endRef {
		q.query.status = Success
		return Success
	}

	q.nodePool.Clear()
	q.openList.clear()

	startNode := q.nodePool.Node(startRef, 0)
	startNode.Pos.Assign(startPos)
	startNode.PIdx = 0
	startNode.Cost = 0
	startNode.Total = startPos.Dist(endPos) * HScale
	startNode.ID = startRef
	startNode.Flags = nodeOpen
	q.openList.push(startNode)

	q.query.status = InProgress
	q.query.lastBestNode = startNode
	q.query.lastBestNodeCost = startNode.Total

	return q.query.status
}

// UpdateSlicedFindPath advances a sliced path query, begun with
// InitSlicedFindPath, for up to maxIter iterations.
//
// Stores the number of iterations actually performed in doneIters, when it
// is not nil, and returns the status of the query. Multiple calls may be
// needed to complete the search.
func (q *NavMeshQuery) UpdateSlicedFindPath(maxIter int, doneIters *int) Status {
	n, st := q.updateSlicedFindPath(maxIter)
	if doneIters != nil {
		*doneIters = n
	}
	return st
}

func (q *NavMeshQuery) updateSlicedFindPath(maxIter int) (doneIters int, st Status) {
	if !StatusInProgress(q.query.status) {
		return 0, q.query.status
	}

	// Make sure the request is still valid.
	if !q.nav.IsValidPolyRef(q.query.startRef) || !q.nav.IsValidPolyRef(q.query.endRef) {
		q.query.status = Failure
		return 0, q.query.status
	}

	iter := 0
	for iter < maxIter && !q.openList.empty() {
		iter++

		bestNode := q.openList.pop()
		bestNode.Flags &= ^nodeOpen
		bestNode.Flags |= nodeClosed

		if bestNode.ID == q.query.endRef {
			q.query.lastBestNode = bestNode
			q.query.status = Success
			return iter, q.query.status
		}

		var (
			bestRef  = bestNode.ID
			bestTile *MeshTile
			bestPoly *Poly
		)
		q.nav.TileAndPolyByRefUnsafe(bestRef, &bestTile, &bestPoly)

		var (
			parentRef  PolyRef
			parentTile *MeshTile
			parentPoly *Poly
		)
		if bestNode.PIdx != 0 {
			parentRef = q.nodePool.NodeAtIdx(int32(bestNode.PIdx)).ID
		}
		if parentRef != 0 {
			q.nav.TileAndPolyByRefUnsafe(parentRef, &parentTile, &parentPoly)
		}

		for i := bestPoly.FirstLink; i != nullLink; i = bestTile.Links[i].Next {
			neighbourRef := bestTile.Links[i].Ref
			if neighbourRef == 0 || neighbourRef == parentRef {
				continue
			}

			var (
				neighbourTile *MeshTile
				neighbourPoly *Poly
			)
			q.nav.TileAndPolyByRefUnsafe(neighbourRef, &neighbourTile, &neighbourPoly)

			if !q.query.filter.PassFilter(neighbourRef, neighbourTile, neighbourPoly) {
				continue
			}

			var crossSide uint8
			if bestTile.Links[i].Side != 0xff {
				crossSide = bestTile.Links[i].Side >> 1
			}

			neighbourNode := q.nodePool.Node(neighbourRef, crossSide)
			if neighbourNode == nil {
				continue
			}

			if neighbourNode.Flags == 0 {
				q.edgeMidPoint(bestRef, bestPoly, bestTile,
					neighbourRef, neighbourPoly, neighbourTile,
					neighbourNode.Pos[:])
			}

			var cost, heuristic float32
			if neighbourRef == q.query.endRef {
				curCost := q.query.filter.Cost(bestNode.Pos, neighbourNode.Pos,
					parentRef, parentTile, parentPoly,
					bestRef, bestTile, bestPoly,
					neighbourRef, neighbourTile, neighbourPoly)
				endCost := q.query.filter.Cost(neighbourNode.Pos, q.query.endPos,
					bestRef, bestTile, bestPoly,
					neighbourRef, neighbourTile, neighbourPoly,
					0, nil, nil)
				cost = bestNode.Cost + curCost + endCost
				heuristic = 0
			} else {
				curCost := q.query.filter.Cost(bestNode.Pos, neighbourNode.Pos,
					parentRef, parentTile, parentPoly,
					bestRef, bestTile, bestPoly,
					neighbourRef, neighbourTile, neighbourPoly)
				cost = bestNode.Cost + curCost
				heuristic = neighbourNode.Pos.Dist(q.query.endPos) * HScale
			}

			total := cost + heuristic

			if neighbourNode.Flags&(nodeOpen|nodeClosed) != 0 && total >= neighbourNode.Total {
				continue
			}

			neighbourNode.PIdx = q.nodePool.NodeIdx(bestNode)
			neighbourNode.ID = neighbourRef
			neighbourNode.Flags &= ^NodeFlags(nodeClosed)
			neighbourNode.Cost = cost
			neighbourNode.Total = total

			if neighbourNode.Flags&nodeOpen != 0 {
				q.openList.modify(neighbourNode)
			} else {
				neighbourNode.Flags |= nodeOpen
				q.openList.push(neighbourNode)
			}

			if heuristic < q.query.lastBestNodeCost {
				q.query.lastBestNodeCost = heuristic
				q.query.lastBestNode = neighbourNode
			}
		}
	}

	if q.openList.empty() {
		q.query.status = Success | PartialResult
	}

	return iter, q.query.status
}

// FinalizeSlicedFindPath retrieves the path computed by a sliced path
// query, once it has ended with either success or partial success. At most
// maxPath references are written to path.
func (q *NavMeshQuery) FinalizeSlicedFindPath(path []PolyRef, maxPath int) (pathCount int, st Status) {
	pathCount = 0
	if maxPath < len(path) {
		path = path[:maxPath]
	}

	if StatusFailed(q.query.status) {
		q.query = queryData{}
		return 0, Failure
	}

	if q.query.startRef == q.query.endRef {
		// Special case: the search start and end polygons are the same.
		if len(path) > 0 {
			path[0] = q.query.startRef
			pathCount = 1
		}
		q.query = queryData{}
		return pathCount, Success
	}

	if q.query.lastBestNode == nil {
		q.query = queryData{}
		return 0, Failure
	}

	n, status := q.pathToNode(q.query.lastBestNode, path)

	if q.query.lastBestNode.ID != q.query.endRef {
		status |= PartialResult
	}

	q.query = queryData{}
	return n, status
}

// FinalizeSlicedFindPathPartial retrieves the path computed so far by a
// sliced path query whose result must be constrained to the last existing
// slice of polygon references passed in existing (in general, the path
// corridor the caller already committed to).
//
// Of the nodes visited during the search, the closest to the end of the
// existing corridor is used as the finalized path's last node. Only the
// first existingSize references of existing are considered, and at most
// maxPath references are written to path.
func (q *NavMeshQuery) FinalizeSlicedFindPathPartial(existing []PolyRef, existingSize int, path []PolyRef, maxPath int) (pathCount int, st Status) {
	pathCount = 0
	if existingSize < len(existing) {
		existing = existing[:existingSize]
	}
	if maxPath < len(path) {
		path = path[:maxPath]
	}

	if len(existing) == 0 {
		q.query = queryData{}
		return 0, Failure | InvalidParam
	}

	if StatusFailed(q.query.status) {
		q.query = queryData{}
		return 0, Failure
	}

	if q.query.startRef == q.query.endRef {
		if len(path) > 0 {
			path[0] = q.query.startRef
			pathCount = 1
		}
		q.query = queryData{}
		return pathCount, Success
	}

	// Find the node that corresponds to the furthest point on 'existing'
	// that was actually visited by the search.
	var node *Node
	for i := len(existing) - 1; i >= 0; i-- {
		node = q.nodePool.FindNode(existing[i], 0)
		if node != nil {
			break
		}
	}

	if node == nil {
		node = q.query.lastBestNode
	}
	if node == nil {
		q.query = queryData{}
		return 0, Failure
	}

	n, status := q.pathToNode(node, path)

	q.query = queryData{}
	return n, status | PartialResult
}
