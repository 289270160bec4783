package tilecache

import (
	"encoding/binary"
	"math"

	"github.com/meshkit/navcore/detour"
)

const (
	tileCacheMagic   = int32('D')<<24 | int32('T')<<16 | int32('L')<<8 | int32('R')
	tileCacheVersion = 1
)

// Area ids used by the height layers before the region/polymesh pipeline
// assigns real area ids. NullArea cells never make it into a region;
// WalkableArea is the default passable area carved by the rasterizer
// before obstacles or MeshProcess narrow it down.
const (
	TileCacheNullArea     uint8  = 0
	TileCacheWalkableArea uint8  = 63
	TileCacheNullIdx      uint16 = 0xffff
)

// Flags for CompressedTile.
const (
	// CompressedTileFreeData marks a tile whose Data slice is owned by the
	// TileCache: RemoveTile drops it instead of handing it back.
	CompressedTileFreeData uint32 = 1 << 0
)

// LayerHeader describes one height-field layer: its tile coordinates, its
// world-space bounds, and the usable sub-rectangle within its width x
// height grid (the rest is padding kept only so neighbouring layers can
// agree on a shared border).
type LayerHeader struct {
	Magic, Version      int32
	TX, TY, TLayer       int32
	BMin, BMax           [3]float32
	HMin, HMax           uint16
	Width, Height        uint8
	MinX, MaxX, MinY, MaxY uint8
}

const layerHeaderSize = 4 + 4 + 4 + 4 + 4 + 12 + 12 + 2 + 2 + 1 + 1 + 1 + 1 + 1 + 1

func (h *LayerHeader) marshal() []byte {
	b := make([]byte, layerHeaderSize)
	o := 0
	put32 := func(v int32) { binary.LittleEndian.PutUint32(b[o:], uint32(v)); o += 4 }
	putf := func(v float32) { binary.LittleEndian.PutUint32(b[o:], math.Float32bits(v)); o += 4 }
	put16 := func(v uint16) { binary.LittleEndian.PutUint16(b[o:], v); o += 2 }
	put8 := func(v uint8) { b[o] = v; o++ }

	put32(h.Magic)
	put32(h.Version)
	put32(h.TX)
	put32(h.TY)
	put32(h.TLayer)
	for _, v := range h.BMin {
		putf(v)
	}
	for _, v := range h.BMax {
		putf(v)
	}
	put16(h.HMin)
	put16(h.HMax)
	put8(h.Width)
	put8(h.Height)
	put8(h.MinX)
	put8(h.MaxX)
	put8(h.MinY)
	put8(h.MaxY)
	return b
}

func unmarshalLayerHeader(b []byte) *LayerHeader {
	h := &LayerHeader{}
	o := 0
	get32 := func() int32 { v := int32(binary.LittleEndian.Uint32(b[o:])); o += 4; return v }
	getf := func() float32 { v := math.Float32frombits(binary.LittleEndian.Uint32(b[o:])); o += 4; return v }
	get16 := func() uint16 { v := binary.LittleEndian.Uint16(b[o:]); o += 2; return v }
	get8 := func() uint8 { v := b[o]; o++; return v }

	h.Magic = get32()
	h.Version = get32()
	h.TX = get32()
	h.TY = get32()
	h.TLayer = get32()
	for i := range h.BMin {
		h.BMin[i] = getf()
	}
	for i := range h.BMax {
		h.BMax[i] = getf()
	}
	h.HMin = get16()
	h.HMax = get16()
	h.Width = get8()
	h.Height = get8()
	h.MinX = get8()
	h.MaxX = get8()
	h.MinY = get8()
	h.MaxY = get8()
	return h
}

// Layer is the uncompressed, in-memory form of one tile's height layer:
// per-cell height, area id, inter-cell connection flags and, once
// BuildTileCacheRegions has run, a region id.
type Layer struct {
	Header   *LayerHeader
	RegCount uint8
	Heights  []uint8
	Areas    []uint8
	Cons     []uint8
	Regs     []uint8
}

func (l *Layer) idx(x, y int) int { return x + y*int(l.Header.Width) }

// CompressedTileRef uniquely identifies a CompressedTile slot across
// reuse: the salt changes every time the slot is freed and reassigned.
type CompressedTileRef uint32

// CompressedTile is one stored, compressed height layer, addressable by a
// CompressedTileRef and chained into TileCache's position-hash and
// freelist via next.
type CompressedTile struct {
	Salt          uint32
	Header        *LayerHeader
	Data          []byte // compressed payload, as produced by BuildTileCacheLayer
	Flags         uint32
	next          *CompressedTile
}

// BuildTileCacheLayer compresses a layer's heights/areas/cons arrays
// (RegCount and Regs are rebuild-only state, not persisted) behind a
// plain, uncompressed LayerHeader, so TileCache can inspect tx/ty/tlayer
// and bounds without decompressing.
func BuildTileCacheLayer(
	comp Compressor,
	header *LayerHeader,
	heights, areas, cons []uint8) (data []byte, st detour.Status) {

	gridSize := int(header.Width) * int(header.Height)
	raw := make([]byte, gridSize*3)
	copy(raw[0:gridSize], heights)
	copy(raw[gridSize:2*gridSize], areas)
	copy(raw[2*gridSize:3*gridSize], cons)

	compressed, status := comp.Compress(raw)
	if detour.StatusFailed(status) {
		return nil, status
	}

	out := append(header.marshal(), compressed...)
	return out, detour.Success
}

// DecompressTileCacheLayer reverses BuildTileCacheLayer.
func DecompressTileCacheLayer(comp Compressor, data []byte) (*Layer, detour.Status) {
	if len(data) < layerHeaderSize {
		return nil, detour.Failure | detour.InvalidParam
	}
	header := unmarshalLayerHeader(data[:layerHeaderSize])
	if header.Magic != tileCacheMagic {
		return nil, detour.Failure | detour.WrongMagic
	}
	if header.Version != tileCacheVersion {
		return nil, detour.Failure | detour.WrongVersion
	}

	gridSize := int(header.Width) * int(header.Height)
	raw, status := comp.Decompress(data[layerHeaderSize:], gridSize*3)
	if detour.StatusFailed(status) {
		return nil, status
	}

	layer := &Layer{
		Header:  header,
		Heights: raw[0:gridSize],
		Areas:   raw[gridSize : 2*gridSize],
		Cons:    raw[2*gridSize : 3*gridSize],
		Regs:    make([]uint8, gridSize),
	}
	return layer, detour.Success
}
