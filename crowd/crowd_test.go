package crowd

import (
	"testing"

	"github.com/arl/gogeo/f32/d3"
	"github.com/meshkit/navcore/detour"
)

// buildThreeQuadMesh constructs a single-tile navmesh made of three unit
// quads laid out in a row and sharing edges (A-B, B-C), entirely by hand
// instead of running the recast rasterization pipeline. It exists so the
// corridor/local-boundary integration test below does not depend on the
// testdata fixtures the rest of this repo's tests expect but which were
// never retrieved (see DESIGN.md).
func buildThreeQuadMesh(t *testing.T) (*detour.NavMesh, *detour.NavMeshQuery) {
	t.Helper()

	const nullIdx = 0x800f // border edge, no portal

	verts := []uint16{
		0, 0, 0, // v0
		1, 0, 0, // v1
		1, 0, 1, // v2
		0, 0, 1, // v3
		2, 0, 0, // v4
		2, 0, 1, // v5
		3, 0, 0, // v6
		3, 0, 1, // v7
	}

	const nvp = 4
	polys := []uint16{
		// poly 0 (A): v0,v1,v2,v3 -- edge1 (v1-v2) borders poly 1 (B)
		0, 1, 2, 3,
		nullIdx, 1, nullIdx, nullIdx,
		// poly 1 (B): v1,v4,v5,v2 -- edge1 (v4-v5) borders poly 2 (C), edge3 (v2-v1) borders poly 0 (A)
		1, 4, 5, 2,
		nullIdx, 2, nullIdx, 0,
		// poly 2 (C): v4,v6,v7,v5 -- edge3 (v5-v4) borders poly 1 (B)
		4, 6, 7, 5,
		nullIdx, nullIdx, nullIdx, 1,
	}

	params := detour.NavMeshCreateParams{
		Verts:          verts,
		VertCount:      8,
		Polys:          polys,
		PolyFlags:      []uint16{1, 1, 1},
		PolyAreas:      []uint8{0, 0, 0},
		PolyCount:      3,
		Nvp:            nvp,
		WalkableHeight: 2.0,
		WalkableRadius: 0.3,
		WalkableClimb:  0.9,
		BMin:           [3]float32{0, 0, 0},
		BMax:           [3]float32{4, 1, 2},
		Cs:             1,
		Ch:             1,
		BuildBvTree:    false,
	}

	data, err := detour.CreateNavMeshData(&params)
	if err != nil {
		t.Fatalf("CreateNavMeshData failed: %v", err)
	}

	var nav detour.NavMesh
	if st := nav.InitForSingleTile(data, 0); detour.StatusFailed(st) {
		t.Fatalf("InitForSingleTile failed with status 0x%x", st)
	}

	st, query := detour.NewNavMeshQuery(&nav, 64)
	if detour.StatusFailed(st) {
		t.Fatalf("NewNavMeshQuery failed with status 0x%x", st)
	}

	return &nav, query
}

// TestPathCorridorIntegration exercises MoveAlongSurface, Raycast2, and the
// sliced A* trio (InitSlicedFindPath/UpdateSlicedFindPath/
// FinalizeSlicedFindPathPartial) through PathCorridor's own corridor-repair
// logic, and FindLocalNeighbourhood through LocalBoundary, rather than
// calling those detour.NavMeshQuery methods directly.
func TestPathCorridorIntegration(t *testing.T) {
	_, query := buildThreeQuadMesh(t)
	filter := detour.NewStandardQueryFilter()

	extents := d3.Vec3{0.5, 1, 0.5}
	startPt := d3.Vec3{0.5, 0, 0.5}
	endPt := d3.Vec3{3.5, 0, 0.5}

	st, startRef, startNearest := query.FindNearestPoly(startPt, extents, filter)
	if detour.StatusFailed(st) || startRef == 0 {
		t.Fatalf("FindNearestPoly(start) failed, status 0x%x ref %d", st, startRef)
	}
	st, endRef, endNearest := query.FindNearestPoly(endPt, extents, filter)
	if detour.StatusFailed(st) || endRef == 0 {
		t.Fatalf("FindNearestPoly(end) failed, status 0x%x ref %d", st, endRef)
	}

	path := make([]detour.PolyRef, 16)
	npath, st := query.FindPath(startRef, endRef, startNearest, endNearest, filter, path)
	if detour.StatusFailed(st) {
		t.Fatalf("FindPath failed with status 0x%x", st)
	}
	if npath < 3 {
		t.Fatalf("expected a 3-poly path across the three quads, got %d", npath)
	}
	path = path[:npath]

	var pc PathCorridor
	if !pc.init(16) {
		t.Fatal("PathCorridor.init failed")
	}
	pc.Reset(startRef, startNearest)
	pc.SetCorridor(endNearest, path, npath)

	// MoveAlongSurface, via MovePosition.
	moveTo := d3.Vec3{1.0, 0, 0.5}
	if !pc.MovePosition(moveTo, query, filter) {
		t.Error("MovePosition failed to move along the corridor")
	}

	// Raycast2, via OptimizePathVisibility.
	pc.OptimizePathVisibility(endNearest, 10, query, filter)

	// The sliced A* trio, via OptimizePathTopology.
	pc.OptimizePathTopology(query, filter)

	if pc.PathCount() == 0 {
		t.Error("expected a non-empty corridor path after optimization")
	}

	// FindLocalNeighbourhood, via LocalBoundary.update.
	lb := NewLocalBoundary()
	lb.update(pc.FirstPoly(), pc.Pos(), 2.5, query, filter)
	if lb.npolys == 0 {
		t.Error("expected LocalBoundary to find at least the current polygon's neighbourhood")
	}
}
