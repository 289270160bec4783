// Package tilecache implements a layered, obstacle-aware navigation mesh
// cache: compressed height layers per tile, cheap-to-rebuild regions and
// polygon meshes, and dynamic cylinder/box obstacles that trigger partial
// tile rebuilds without touching the rest of the navigation mesh.
package tilecache

import "github.com/arl/gogeo/f32/d3"

// Params describes the fixed configuration of a TileCache: grid geometry
// shared with the owning navigation mesh, agent dimensions used when
// carving obstacles into the height layers, and capacity limits.
type Params struct {
	Orig                   d3.Vec3 // Origin of the tile cache grid.
	CellSize               float32 // Width/depth of a grid cell.
	CellHeight             float32 // Height of a grid cell.
	Width, Height          int32   // Tile dimensions, in cells.
	WalkableHeight         float32
	WalkableRadius         float32
	WalkableClimb          float32
	MaxSimplificationError float32
	MaxTiles               int32
	MaxObstacles           int32
}
