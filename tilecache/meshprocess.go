package tilecache

import "github.com/meshkit/navcore/detour"

// MeshProcess lets a caller assign per-polygon flags and areas right
// before a rebuilt tile's polygon mesh is turned into navmesh tile data,
// the same hook point dtTileCacheMeshProcess::process occupies: it runs
// once per tile rebuild, after the polygon mesh exists but before
// detour.CreateNavMeshData is called.
type MeshProcess interface {
	Process(params *detour.NavMeshCreateParams, polyAreas []uint8, polyFlags []uint16)
}

// MeshProcessFunc adapts a plain function to MeshProcess.
type MeshProcessFunc func(params *detour.NavMeshCreateParams, polyAreas []uint8, polyFlags []uint16)

// Process calls f.
func (f MeshProcessFunc) Process(params *detour.NavMeshCreateParams, polyAreas []uint8, polyFlags []uint16) {
	f(params, polyAreas, polyFlags)
}
