package tilecache

import (
	"testing"

	"github.com/arl/gogeo/f32/d3"
	"github.com/meshkit/navcore/detour"
)

// buildFlatTileData synthesizes a single flat, fully walkable layer of
// size w x h cells, the same fixture shape the tilecache CLI demo command
// builds, since nothing in this package turns raw rasterized geometry
// into layer arrays.
func buildFlatTileData(t *testing.T, w, h int32) []byte {
	t.Helper()

	header := &LayerHeader{
		Magic:   tileCacheMagic,
		Version: tileCacheVersion,
		TX:      0, TY: 0, TLayer: 0,
		BMin: [3]float32{0, 0, 0},
		BMax: [3]float32{float32(w) * 0.3, 2, float32(h) * 0.3},
		HMin: 0, HMax: 1,
		Width: uint8(w), Height: uint8(h),
		MinX: 0, MaxX: uint8(w - 1), MinY: 0, MaxY: uint8(h - 1),
	}

	n := int(w * h)
	heights := make([]uint8, n)
	areas := make([]uint8, n)
	cons := make([]uint8, n)
	for i := range heights {
		heights[i] = 1
		areas[i] = TileCacheWalkableArea
	}

	data, status := BuildTileCacheLayer(Lz4Compressor{}, header, heights, areas, cons)
	if detour.StatusFailed(status) {
		t.Fatalf("BuildTileCacheLayer failed with status 0x%x", status)
	}
	return data
}

func newTestCache(t *testing.T, w, h int32) (*TileCache, *detour.NavMesh) {
	t.Helper()

	params := Params{
		Orig:                   d3.Vec3{0, 0, 0},
		CellSize:               0.3,
		CellHeight:             0.2,
		Width:                  w,
		Height:                 h,
		WalkableHeight:         2.0,
		WalkableRadius:         0.6,
		WalkableClimb:          0.9,
		MaxSimplificationError: 1.1,
		MaxTiles:               1,
		MaxObstacles:           8,
	}

	tc := New(params, ArenaAllocator{}, Lz4Compressor{}, nil)

	navParams := &detour.NavMeshParams{
		TileWidth:  float32(w) * params.CellSize,
		TileHeight: float32(h) * params.CellSize,
		MaxTiles:   1,
		MaxPolys:   4096,
	}
	var nav detour.NavMesh
	if st := nav.Init(navParams); detour.StatusFailed(st) {
		t.Fatalf("NavMesh.Init failed with status 0x%x", st)
	}
	return tc, &nav
}

func countTilePolys(nav *detour.NavMesh) int32 {
	var n int32
	for i := int32(0); i < nav.MaxTiles; i++ {
		tile := &nav.Tiles[i]
		if tile.Header == nil {
			continue
		}
		n += tile.Header.PolyCount
	}
	return n
}

func TestAddTileBuildsWalkablePolygons(t *testing.T) {
	tc, nav := newTestCache(t, 32, 32)
	data := buildFlatTileData(t, 32, 32)

	ref, status := tc.AddTile(data, CompressedTileFreeData)
	if detour.StatusFailed(status) {
		t.Fatalf("AddTile failed with status 0x%x", status)
	}
	if ref == 0 {
		t.Fatal("AddTile returned a zero CompressedTileRef")
	}

	if st := tc.BuildNavMeshTile(ref, nav); detour.StatusFailed(st) {
		t.Fatalf("BuildNavMeshTile failed with status 0x%x", st)
	}

	if got := countTilePolys(nav); got == 0 {
		t.Error("expected at least one walkable polygon in the flat tile, got 0")
	}
}

func TestObstacleLifecycleChangesPolyCount(t *testing.T) {
	tc, nav := newTestCache(t, 32, 32)
	data := buildFlatTileData(t, 32, 32)

	ref, status := tc.AddTile(data, CompressedTileFreeData)
	if detour.StatusFailed(status) {
		t.Fatalf("AddTile failed with status 0x%x", status)
	}
	if st := tc.BuildNavMeshTile(ref, nav); detour.StatusFailed(st) {
		t.Fatalf("BuildNavMeshTile failed with status 0x%x", st)
	}
	before := countTilePolys(nav)

	center := d3.Vec3{32 * 0.3 / 2, 0, 32 * 0.3 / 2}
	obRef, status := tc.AddObstacle(center, 3, 2.0)
	if detour.StatusFailed(status) {
		t.Fatalf("AddObstacle failed with status 0x%x", status)
	}
	if obRef == 0 {
		t.Fatal("AddObstacle returned a zero ObstacleRef")
	}

	drainUpdates(t, tc, nav)
	withObstacle := countTilePolys(nav)
	if withObstacle <= before {
		t.Errorf("expected obstacle to add carve polygons, got %d before, %d after", before, withObstacle)
	}

	if st := tc.RemoveObstacle(obRef); detour.StatusFailed(st) {
		t.Fatalf("RemoveObstacle failed with status 0x%x", st)
	}
	drainUpdates(t, tc, nav)
	after := countTilePolys(nav)
	if after != before {
		t.Errorf("expected polygon count to return to %d after obstacle removal, got %d", before, after)
	}
}

func drainUpdates(t *testing.T, tc *TileCache, nav *detour.NavMesh) {
	t.Helper()
	for i := 0; i < 100; i++ {
		upToDate, st := tc.Update(1.0/60.0, nav)
		if detour.StatusFailed(st) {
			t.Fatalf("Update failed with status 0x%x", st)
		}
		if upToDate {
			return
		}
	}
	t.Fatal("tile cache never reached up-to-date state")
}
