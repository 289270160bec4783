package cmd

import (
	"fmt"

	"github.com/arl/gogeo/f32/d3"
	"github.com/meshkit/navcore/detour"
	"github.com/meshkit/navcore/tilecache"
	"github.com/spf13/cobra"
)

var (
	tcWidth, tcHeight int
	tcCellSize        float32
	tcObstacleRadius  float32
)

// tilecacheCmd demonstrates the dynamic obstacle cycle (spec §8 scenario
// 5): a single flat tile is cached, an obstacle is carved into it and the
// tile rebuilt, then the obstacle is removed and the tile rebuilt again.
var tilecacheCmd = &cobra.Command{
	Use:   "tilecache",
	Short: "demonstrate the tile cache obstacle add/remove/update cycle",
	Long: `Build a single flat walkable tile, cache it, then run it through
one obstacle add/update/remove/update cycle, printing the resulting
polygon count of the navmesh tile before and after each step.`,
	Run: doTileCache,
}

func init() {
	RootCmd.AddCommand(tilecacheCmd)

	tilecacheCmd.Flags().IntVar(&tcWidth, "width", 64, "tile width, in cells")
	tilecacheCmd.Flags().IntVar(&tcHeight, "height", 64, "tile height, in cells")
	tilecacheCmd.Flags().Float32Var(&tcCellSize, "cellsize", 0.3, "cell size, in world units")
	tilecacheCmd.Flags().Float32Var(&tcObstacleRadius, "obstacle-radius", 3, "radius of the demo cylinder obstacle, in world units")
}

func doTileCache(cmd *cobra.Command, args []string) {
	const cellHeight = float32(0.2)
	const walkableHeight = float32(2.0)
	const walkableRadius = float32(0.6)
	const walkableClimb = float32(0.9)

	w, h := tcWidth, tcHeight
	orig := d3.Vec3{0, 0, 0}

	params := tilecache.Params{
		Orig:                   orig,
		CellSize:               tcCellSize,
		CellHeight:             cellHeight,
		Width:                  int32(w),
		Height:                 int32(h),
		WalkableHeight:         walkableHeight,
		WalkableRadius:         walkableRadius,
		WalkableClimb:          walkableClimb,
		MaxSimplificationError: 1.1,
		MaxTiles:               1,
		MaxObstacles:           8,
	}

	tc := tilecache.New(params, tilecache.ArenaAllocator{}, tilecache.Lz4Compressor{}, nil)

	header := &tilecache.LayerHeader{
		Magic:   tilecacheMagic(),
		Version: 1,
		TX:      0, TY: 0, TLayer: 0,
		BMin: [3]float32{orig[0], 0, orig[2]},
		BMax: [3]float32{
			orig[0] + float32(w)*tcCellSize,
			float32(walkableHeight),
			orig[2] + float32(h)*tcCellSize,
		},
		HMin: 0, HMax: 1,
		Width: uint8(w), Height: uint8(h),
		MinX: 0, MaxX: uint8(w - 1), MinY: 0, MaxY: uint8(h - 1),
	}

	gridSize := w * h
	heights := make([]uint8, gridSize)
	areas := make([]uint8, gridSize)
	cons := make([]uint8, gridSize)
	for i := range heights {
		heights[i] = 1
		areas[i] = tilecache.TileCacheWalkableArea
	}

	data, status := tilecache.BuildTileCacheLayer(tilecache.Lz4Compressor{}, header, heights, areas, cons)
	if detour.StatusFailed(status) {
		fmt.Println("error, could not build tile cache layer")
		return
	}

	ref, status := tc.AddTile(data, tilecache.CompressedTileFreeData)
	if detour.StatusFailed(status) {
		fmt.Println("error, could not add tile to cache")
		return
	}

	navParams := &detour.NavMeshParams{
		Orig:       [3]float32{orig[0], orig[1], orig[2]},
		TileWidth:  float32(w) * tcCellSize,
		TileHeight: float32(h) * tcCellSize,
		MaxTiles:   1,
		MaxPolys:   4096,
	}
	var nav detour.NavMesh
	if st := nav.Init(navParams); detour.StatusFailed(st) {
		fmt.Println("error, could not init navmesh")
		return
	}

	if st := tc.BuildNavMeshTile(ref, &nav); detour.StatusFailed(st) {
		fmt.Println("error, could not build initial navmesh tile")
		return
	}
	fmt.Printf("initial tile: %d polys\n", countPolys(&nav))

	center := d3.Vec3{
		orig[0] + float32(w)*tcCellSize/2,
		0,
		orig[2] + float32(h)*tcCellSize/2,
	}
	obRef, status := tc.AddObstacle(center, tcObstacleRadius, walkableHeight)
	if detour.StatusFailed(status) {
		fmt.Println("error, could not add obstacle")
		return
	}
	for {
		upToDate, st := tc.Update(1.0/60.0, &nav)
		if detour.StatusFailed(st) {
			fmt.Println("error, update failed")
			return
		}
		if upToDate {
			break
		}
	}
	fmt.Printf("after adding obstacle: %d polys\n", countPolys(&nav))

	if st := tc.RemoveObstacle(obRef); detour.StatusFailed(st) {
		fmt.Println("error, could not remove obstacle")
		return
	}
	for {
		upToDate, st := tc.Update(1.0/60.0, &nav)
		if detour.StatusFailed(st) {
			fmt.Println("error, update failed")
			return
		}
		if upToDate {
			break
		}
	}
	fmt.Printf("after removing obstacle: %d polys\n", countPolys(&nav))
}

func countPolys(nav *detour.NavMesh) int32 {
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

func tilecacheMagic() int32 {
	return int32('D')<<24 | int32('T')<<16 | int32('L')<<8 | int32('R')
}
