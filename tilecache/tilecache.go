package tilecache

import (
	"unsafe"

	"github.com/arl/gogeo/f32/d3"
	"github.com/arl/math32"
	"github.com/meshkit/navcore/detour"
)

// MaxRequests bounds how many add/remove obstacle requests TileCache
// queues before Update has a chance to drain them.
const MaxRequests = 64

// MaxUpdate bounds how many touched tiles get rebuilt per Update call,
// so a burst of obstacle changes spreads its cost over several frames
// instead of stalling the caller.
const MaxUpdate = 64

type requestAction uint8

const (
	requestAdd requestAction = iota
	requestRemove
)

type obstacleRequest struct {
	action requestAction
	ref    ObstacleRef
}

// TileCache owns a set of compressed height-field layers and the
// obstacles carved into them. Obstacle changes are queued by AddObstacle/
// RemoveObstacle and drained by Update, which rebuilds every tile an
// obstacle touches into real navmesh tile data and swaps it into the
// given detour.NavMesh.
type TileCache struct {
	params Params
	talloc Allocator
	tcomp  Compressor
	tmproc MeshProcess

	tileLUTSize int32
	tileLUTMask int32
	posLookup   []*CompressedTile
	nextFree    *CompressedTile
	tiles       []CompressedTile
	saltBits    uint32
	tileBits    uint32

	obstacles        []Obstacle
	nextFreeObstacle *Obstacle
	obstacleSaltBits uint32

	reqs []obstacleRequest
}

// New builds a TileCache with the given fixed configuration. tmproc may
// be nil, in which case rebuilt polygons keep whatever area id the
// layers already carry, and every polygon whose area is not
// TileCacheNullArea gets flags 1.
func New(params Params, talloc Allocator, tcomp Compressor, tmproc MeshProcess) *TileCache {
	tc := &TileCache{
		params: params,
		talloc: talloc,
		tcomp:  tcomp,
		tmproc: tmproc,
	}

	tc.tileLUTSize = int32(math32.NextPow2(uint32(params.MaxTiles / 4)))
	if tc.tileLUTSize == 0 {
		tc.tileLUTSize = 1
	}
	tc.tileLUTMask = tc.tileLUTSize - 1

	tc.tiles = make([]CompressedTile, params.MaxTiles)
	tc.posLookup = make([]*CompressedTile, tc.tileLUTSize)
	for i := int32(len(tc.tiles)) - 1; i >= 0; i-- {
		tc.tiles[i].Salt = 1
		tc.tiles[i].next = tc.nextFree
		tc.nextFree = &tc.tiles[i]
	}

	tc.tileBits = math32.Ilog2(math32.NextPow2(uint32(params.MaxTiles)))
	tc.saltBits = 32 - tc.tileBits
	if tc.saltBits > 31 {
		tc.saltBits = 31
	}

	tc.obstacles = make([]Obstacle, params.MaxObstacles)
	for i := int32(len(tc.obstacles)) - 1; i >= 0; i-- {
		tc.obstacles[i].Salt = 1
		tc.obstacles[i].next = tc.nextFreeObstacle
		tc.nextFreeObstacle = &tc.obstacles[i]
	}
	obstacleTileBits := math32.Ilog2(math32.NextPow2(uint32(params.MaxObstacles)))
	tc.obstacleSaltBits = 32 - obstacleTileBits
	if tc.obstacleSaltBits > 31 {
		tc.obstacleSaltBits = 31
	}

	return tc
}

func (tc *TileCache) encodeTileID(salt uint32, it int32) CompressedTileRef {
	return CompressedTileRef(salt<<tc.tileBits | uint32(it))
}

func (tc *TileCache) decodeTileIDSalt(ref CompressedTileRef) uint32 {
	saltMask := uint32(1)<<tc.saltBits - 1
	return uint32(ref>>tc.tileBits) & saltMask
}

func (tc *TileCache) decodeTileIDTile(ref CompressedTileRef) int32 {
	tileMask := uint32(1)<<tc.tileBits - 1
	return int32(uint32(ref) & tileMask)
}

func tilePosHash(tx, ty, mask int32) int32 {
	const h1 int64 = 0x8da6b343
	const h2 int64 = 0xd8163841
	n := h1*int64(tx) + h2*int64(ty)
	return int32(n) & mask
}

// GetTilesAt returns every compressed tile stored at grid coordinates
// (tx, ty), across all its layers.
func (tc *TileCache) GetTilesAt(tx, ty int32) []CompressedTileRef {
	var refs []CompressedTileRef
	h := tilePosHash(tx, ty, tc.tileLUTMask)
	for t := tc.posLookup[h]; t != nil; t = t.next {
		if t.Header != nil && t.Header.TX == tx && t.Header.TY == ty {
			refs = append(refs, tc.tileRef(t))
		}
	}
	return refs
}

func (tc *TileCache) tileRef(t *CompressedTile) CompressedTileRef {
	if t == nil {
		return 0
	}
	it := (uintptr(unsafe.Pointer(t)) - uintptr(unsafe.Pointer(&tc.tiles[0]))) / unsafe.Sizeof(*t)
	return tc.encodeTileID(t.Salt, int32(it))
}

// GetTileByRef returns the tile ref identifies, or nil if it is stale or
// out of range.
func (tc *TileCache) GetTileByRef(ref CompressedTileRef) *CompressedTile {
	if ref == 0 {
		return nil
	}
	idx := tc.decodeTileIDTile(ref)
	if idx >= int32(len(tc.tiles)) {
		return nil
	}
	t := &tc.tiles[idx]
	if t.Salt != tc.decodeTileIDSalt(ref) {
		return nil
	}
	return t
}

// AddTile stores data (produced by BuildTileCacheLayer) as a new
// compressed tile and returns its ref.
func (tc *TileCache) AddTile(data []byte, flags uint32) (CompressedTileRef, detour.Status) {
	if len(data) < layerHeaderSize {
		return 0, detour.Failure | detour.InvalidParam
	}
	header := unmarshalLayerHeader(data[:layerHeaderSize])
	if header.Magic != tileCacheMagic {
		return 0, detour.Failure | detour.WrongMagic
	}

	if tc.nextFree == nil {
		return 0, detour.Failure | detour.OutOfMemory
	}
	tile := tc.nextFree
	tc.nextFree = tile.next
	tile.next = nil

	h := tilePosHash(header.TX, header.TY, tc.tileLUTMask)
	tile.next = tc.posLookup[h]
	tc.posLookup[h] = tile

	tile.Header = header
	tile.Data = data
	tile.Flags = flags

	return tc.tileRef(tile), detour.Success
}

// RemoveTile frees tile ref's slot and returns its raw data, letting a
// caller persist or discard it. The returned data is nil when the tile was
// added with CompressedTileFreeData.
func (tc *TileCache) RemoveTile(ref CompressedTileRef) ([]byte, detour.Status) {
	tile := tc.GetTileByRef(ref)
	if tile == nil {
		return nil, detour.Failure | detour.InvalidParam
	}

	h := tilePosHash(tile.Header.TX, tile.Header.TY, tc.tileLUTMask)
	var prev *CompressedTile
	cur := tc.posLookup[h]
	for cur != nil && cur != tile {
		prev = cur
		cur = cur.next
	}
	if cur == tile {
		if prev == nil {
			tc.posLookup[h] = tile.next
		} else {
			prev.next = tile.next
		}
	}

	data := tile.Data
	if tile.Flags&CompressedTileFreeData != 0 {
		data = nil
	}
	tile.Header = nil
	tile.Data = nil
	tile.Flags = 0
	tile.Salt++
	if tile.Salt == 0 {
		tile.Salt++
	}

	tile.next = tc.nextFree
	tc.nextFree = tile

	return data, detour.Success
}

// QueryTiles returns the tiles whose world-space bounds overlap
// [bmin, bmax].
func (tc *TileCache) QueryTiles(bmin, bmax d3.Vec3) []CompressedTileRef {
	const maxTiles = 32
	var results []CompressedTileRef

	tw := tc.params.CellSize * float32(tc.params.Width)
	th := tc.params.CellSize * float32(tc.params.Height)
	tx0 := int32(math32.Floor((bmin[0] - tc.params.Orig[0]) / tw))
	tx1 := int32(math32.Floor((bmax[0] - tc.params.Orig[0]) / tw))
	ty0 := int32(math32.Floor((bmin[2] - tc.params.Orig[2]) / th))
	ty1 := int32(math32.Floor((bmax[2] - tc.params.Orig[2]) / th))

	for ty := ty0; ty <= ty1; ty++ {
		for tx := tx0; tx <= tx1; tx++ {
			for _, ref := range tc.GetTilesAt(tx, ty) {
				t := tc.GetTileByRef(ref)
				if t == nil || t.Header == nil {
					continue
				}
				overlaps := t.Header.BMin[0] <= bmax[0] && t.Header.BMax[0] >= bmin[0] &&
					t.Header.BMin[1] <= bmax[1] && t.Header.BMax[1] >= bmin[1] &&
					t.Header.BMin[2] <= bmax[2] && t.Header.BMax[2] >= bmin[2]
				if !overlaps {
					continue
				}
				if len(results) >= maxTiles {
					return results
				}
				results = append(results, ref)
			}
		}
	}
	return results
}

func (tc *TileCache) obstacleRef(ob *Obstacle) ObstacleRef {
	if ob == nil {
		return 0
	}
	idx := (uintptr(unsafe.Pointer(ob)) - uintptr(unsafe.Pointer(&tc.obstacles[0]))) / unsafe.Sizeof(*ob)
	return encodeObstacleID(ob.Salt, int(idx))
}

// GetObstacleByRef returns the obstacle ref identifies, or nil if it is
// stale or out of range.
func (tc *TileCache) GetObstacleByRef(ref ObstacleRef) *Obstacle {
	if ref == 0 {
		return nil
	}
	idx := decodeObstacleIDIndex(ref)
	if idx >= len(tc.obstacles) {
		return nil
	}
	ob := &tc.obstacles[idx]
	if ob.Salt != decodeObstacleIDSalt(ref) {
		return nil
	}
	return ob
}

func (tc *TileCache) allocObstacle() (*Obstacle, detour.Status) {
	if tc.nextFreeObstacle == nil {
		return nil, detour.Failure | detour.OutOfMemory
	}
	ob := tc.nextFreeObstacle
	tc.nextFreeObstacle = ob.next
	ob.next = nil
	ob.NTouched = 0
	ob.NPending = 0
	return ob, detour.Success
}

func (tc *TileCache) queueRequest(action requestAction, ref ObstacleRef) detour.Status {
	if len(tc.reqs) >= MaxRequests {
		return detour.Failure | detour.BufferTooSmall
	}
	tc.reqs = append(tc.reqs, obstacleRequest{action: action, ref: ref})
	return detour.Success
}

// AddObstacle queues a cylinder obstacle for insertion; it only starts
// narrowing the navigation mesh once Update rebuilds the tiles it
// touches.
func (tc *TileCache) AddObstacle(pos d3.Vec3, radius, height float32) (ObstacleRef, detour.Status) {
	ob, status := tc.allocObstacle()
	if detour.StatusFailed(status) {
		return 0, status
	}
	ob.Type = ObstacleCylinder
	ob.Cylinder = ObstacleCylinder{Pos: d3.NewVec3From(pos), Radius: radius, Height: height}
	ob.State = ObstacleProcessing

	ref := tc.obstacleRef(ob)
	if st := tc.queueRequest(requestAdd, ref); detour.StatusFailed(st) {
		ob.next = tc.nextFreeObstacle
		tc.nextFreeObstacle = ob
		return 0, st
	}
	return ref, detour.Success
}

// AddBoxObstacle queues an axis-aligned box obstacle for insertion.
func (tc *TileCache) AddBoxObstacle(bmin, bmax d3.Vec3) (ObstacleRef, detour.Status) {
	ob, status := tc.allocObstacle()
	if detour.StatusFailed(status) {
		return 0, status
	}
	ob.Type = ObstacleBox
	ob.Box = ObstacleBox{BMin: d3.NewVec3From(bmin), BMax: d3.NewVec3From(bmax)}
	ob.State = ObstacleProcessing

	ref := tc.obstacleRef(ob)
	if st := tc.queueRequest(requestAdd, ref); detour.StatusFailed(st) {
		ob.next = tc.nextFreeObstacle
		tc.nextFreeObstacle = ob
		return 0, st
	}
	return ref, detour.Success
}

// AddOrientedBoxObstacle queues a box obstacle rotated yRadians around
// the Y axis for insertion.
func (tc *TileCache) AddOrientedBoxObstacle(center, halfExtents d3.Vec3, yRadians float32) (ObstacleRef, detour.Status) {
	ob, status := tc.allocObstacle()
	if detour.StatusFailed(status) {
		return 0, status
	}
	coshalf := math32.Cos(0.5 * yRadians)
	sinhalf := math32.Sin(-0.5 * yRadians)
	ob.Type = ObstacleOrientedBox
	ob.OrientedBox = ObstacleOrientedBox{
		Center:      d3.NewVec3From(center),
		HalfExtents: d3.NewVec3From(halfExtents),
		RotAux:      [2]float32{coshalf * sinhalf, coshalf*coshalf - 0.5},
	}
	ob.State = ObstacleProcessing

	ref := tc.obstacleRef(ob)
	if st := tc.queueRequest(requestAdd, ref); detour.StatusFailed(st) {
		ob.next = tc.nextFreeObstacle
		tc.nextFreeObstacle = ob
		return 0, st
	}
	return ref, detour.Success
}

// RemoveObstacle queues ref's removal; it stays carved into the
// navigation mesh until Update rebuilds the tiles it touches.
func (tc *TileCache) RemoveObstacle(ref ObstacleRef) detour.Status {
	if ref == 0 {
		return detour.Success
	}
	ob := tc.GetObstacleByRef(ref)
	if ob == nil {
		return detour.Failure | detour.InvalidParam
	}
	ob.State = ObstacleRemoving
	return tc.queueRequest(requestRemove, ref)
}

func removeTileFromSet(arr *[MaxTouchedTiles]CompressedTileRef, n *int, ref CompressedTileRef) {
	for i := 0; i < *n; i++ {
		if arr[i] == ref {
			arr[i] = arr[*n-1]
			*n--
			return
		}
	}
}

// Update drains queued obstacle requests and rebuilds up to MaxUpdate
// affected tiles into nav, returning upToDate=true once every obstacle
// has finished processing. Call it every frame with the frame's delta
// time; dt is currently unused (rebuild cost is bounded by tile count,
// not by a time budget) but kept so callers can rate-limit on it later.
func (tc *TileCache) Update(dt float32, nav *detour.NavMesh) (upToDate bool, status detour.Status) {
	_ = dt

	for _, req := range tc.reqs {
		ob := tc.GetObstacleByRef(req.ref)
		if ob == nil {
			continue
		}
		switch req.action {
		case requestAdd:
			bmin, bmax := GetObstacleBounds(ob)
			touched := tc.QueryTiles(bmin, bmax)
			ob.NTouched = 0
			for _, t := range touched {
				if ob.NTouched >= MaxTouchedTiles {
					break
				}
				ob.Touched[ob.NTouched] = t
				ob.NTouched++
			}
			ob.NPending = ob.NTouched
			copy(ob.Pending[:], ob.Touched[:ob.NTouched])
		case requestRemove:
			ob.NPending = ob.NTouched
			copy(ob.Pending[:], ob.Touched[:ob.NTouched])
		}
	}
	tc.reqs = tc.reqs[:0]

	dirty := make([]CompressedTileRef, 0, MaxUpdate)
	seen := make(map[CompressedTileRef]bool)
	for i := range tc.obstacles {
		ob := &tc.obstacles[i]
		if ob.State != ObstacleProcessing && ob.State != ObstacleRemoving {
			continue
		}
		for j := 0; j < ob.NPending; j++ {
			ref := ob.Pending[j]
			if !seen[ref] {
				if len(dirty) >= MaxUpdate {
					continue
				}
				seen[ref] = true
				dirty = append(dirty, ref)
			}
		}
	}

	for _, ref := range dirty {
		if st := tc.BuildNavMeshTile(ref, nav); detour.StatusFailed(st) {
			return false, st
		}
	}

	allDone := true
	for i := range tc.obstacles {
		ob := &tc.obstacles[i]
		switch ob.State {
		case ObstacleProcessing, ObstacleRemoving:
			for _, ref := range dirty {
				removeTileFromSet(&ob.Pending, &ob.NPending, ref)
				if ob.State == ObstacleRemoving {
					removeTileFromSet(&ob.Touched, &ob.NTouched, ref)
				}
			}
			if ob.NPending == 0 {
				if ob.State == ObstacleRemoving {
					ob.State = ObstacleEmpty
					ob.Salt++
					if ob.Salt == 0 {
						ob.Salt++
					}
					ob.next = tc.nextFreeObstacle
					tc.nextFreeObstacle = ob
				} else {
					ob.State = ObstacleProcessed
				}
			} else {
				allDone = false
			}
		}
	}

	return allDone, detour.Success
}

// BuildNavMeshTilesAt rebuilds every layer stored at grid coordinates
// (tx, ty) into nav.
func (tc *TileCache) BuildNavMeshTilesAt(tx, ty int32, nav *detour.NavMesh) detour.Status {
	for _, ref := range tc.GetTilesAt(tx, ty) {
		if st := tc.BuildNavMeshTile(ref, nav); detour.StatusFailed(st) {
			return st
		}
	}
	return detour.Success
}

// BuildNavMeshTile decompresses ref's layer, reruns the region/contour/
// polymesh pipeline over it (so any newly carved obstacle area takes
// effect), and swaps the resulting navmesh tile into nav.
func (tc *TileCache) BuildNavMeshTile(ref CompressedTileRef, nav *detour.NavMesh) detour.Status {
	tile := tc.GetTileByRef(ref)
	if tile == nil || tile.Header == nil {
		return detour.Failure | detour.InvalidParam
	}

	tc.talloc.Reset()

	layer, status := DecompressTileCacheLayer(tc.tcomp, tile.Data)
	if detour.StatusFailed(status) {
		return status
	}

	for i := range tc.obstacles {
		ob := &tc.obstacles[i]
		if ob.State != ObstacleProcessing && ob.State != ObstacleProcessed {
			continue
		}
		touches := false
		for j := 0; j < ob.NTouched; j++ {
			if ob.Touched[j] == ref {
				touches = true
				break
			}
		}
		if !touches {
			continue
		}
		switch ob.Type {
		case ObstacleCylinder:
			c := ob.Cylinder
			MarkCylinderArea(layer, tc.params.Orig, tc.params.CellSize, tc.params.CellHeight, c.Pos, c.Radius, c.Height, TileCacheNullArea)
		case ObstacleBox:
			MarkBoxArea(layer, tc.params.Orig, tc.params.CellSize, tc.params.CellHeight, ob.Box.BMin, ob.Box.BMax, TileCacheNullArea)
		case ObstacleOrientedBox:
			ob2 := ob.OrientedBox
			MarkOrientedBoxArea(layer, tc.params.Orig, tc.params.CellSize, tc.params.CellHeight, ob2.Center, ob2.HalfExtents, ob2.RotAux, TileCacheNullArea)
		}
	}

	BuildTileCacheRegions(layer)

	walkableClimb := int(tc.params.WalkableClimb / tc.params.CellHeight)
	lcset := BuildTileCacheContours(layer, walkableClimb, tc.params.MaxSimplificationError)

	mesh := BuildTileCachePolyMesh(lcset)

	polyFlags := make([]uint16, mesh.NPolys)
	for i := range polyFlags {
		if mesh.Areas[i] != TileCacheNullArea {
			polyFlags[i] = 1
		}
	}

	params := &detour.NavMeshCreateParams{
		Verts:           mesh.Verts,
		VertCount:       mesh.NVerts,
		Polys:           mesh.Polys,
		PolyAreas:       mesh.Areas,
		PolyFlags:       polyFlags,
		PolyCount:       mesh.NPolys,
		Nvp:             mesh.NVP,
		WalkableHeight:  tc.params.WalkableHeight,
		WalkableRadius:  tc.params.WalkableRadius,
		WalkableClimb:   tc.params.WalkableClimb,
		TileX:           layer.Header.TX,
		TileY:           layer.Header.TY,
		TileLayer:       layer.Header.TLayer,
		BMin:            layer.Header.BMin,
		BMax:            layer.Header.BMax,
		Cs:              tc.params.CellSize,
		Ch:              tc.params.CellHeight,
		BuildBvTree:     false,
	}

	if tc.tmproc != nil {
		tc.tmproc.Process(params, mesh.Areas, polyFlags)
	}

	data, err := detour.CreateNavMeshData(params)
	if err != nil {
		return detour.Failure
	}

	if old := nav.TileRefAt(layer.Header.TX, layer.Header.TY, layer.Header.TLayer); old != 0 {
		if _, st := nav.RemoveTile(old); detour.StatusFailed(st) {
			return st
		}
	}

	if len(data) == 0 {
		return detour.Success
	}
	st, _ := nav.AddTile(data, 0)
	return st
}
