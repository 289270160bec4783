package detour

import (
	"reflect"
	"testing"
)

func TestMeshHeaderSerializeRoundTrip(t *testing.T) {
	hdr := MeshHeader{
		Magic:           navMeshMagic,
		Version:         navMeshVersion,
		X:               3,
		Y:               7,
		Layer:           0,
		UserID:          42,
		PolyCount:       2,
		VertCount:       4,
		MaxLinkCount:    6,
		DetailMeshCount: 2,
		DetailVertCount: 1,
		DetailTriCount:  2,
		BvNodeCount:     0,
		OffMeshConCount: 0,
		WalkableHeight:  2.0,
		WalkableRadius:  0.6,
		WalkableClimb:   0.9,
		Bmin:            [3]float32{0, 0, 0},
		Bmax:            [3]float32{10, 2, 10},
		BvQuantFactor:   1.5,
	}

	data := make([]byte, hdr.size())
	if err := hdr.serialize(data); err != nil {
		t.Fatalf("serialize failed: %v", err)
	}

	var got MeshHeader
	if err := got.unserialize(data); err != nil {
		t.Fatalf("unserialize failed: %v", err)
	}

	if got != hdr {
		t.Fatalf("round trip mismatch, got %#v, want %#v", got, hdr)
	}
}

func TestMeshTileSerializeRoundTrip(t *testing.T) {
	hdr := &MeshHeader{
		Magic:           navMeshMagic,
		Version:         navMeshVersion,
		PolyCount:       1,
		VertCount:       3,
		MaxLinkCount:    3,
		DetailMeshCount: 1,
		DetailVertCount: 0,
		DetailTriCount:  1,
		BvNodeCount:     0,
		OffMeshConCount: 1,
	}

	tile := &MeshTile{
		Header: hdr,
		Verts:  []float32{0, 0, 0, 1, 0, 0, 0, 0, 1},
		Polys: []Poly{
			{FirstLink: nullLink, VertCount: 3, Flags: 1},
		},
		DetailMeshes: []PolyDetail{
			{VertBase: 0, TriBase: 0, VertCount: 3, TriCount: 1},
		},
		DetailTris: []uint8{0, 1, 2, 0},
		OffMeshCons: []OffMeshConnection{
			{Pos: [6]float32{0, 0, 0, 1, 1, 1}, Rad: 0.5, Poly: 0},
		},
	}

	size := hdr.size()
	data := make([]byte, 4096)
	if err := tile.serialize(data[size:]); err != nil {
		t.Fatalf("serialize failed: %v", err)
	}

	var got MeshTile
	if err := got.unserialize(hdr, data[size:]); err != nil {
		t.Fatalf("unserialize failed: %v", err)
	}

	if !reflect.DeepEqual(got.Verts, tile.Verts) {
		t.Errorf("Verts mismatch: got %v, want %v", got.Verts, tile.Verts)
	}
	if !reflect.DeepEqual(got.Polys, tile.Polys) {
		t.Errorf("Polys mismatch: got %v, want %v", got.Polys, tile.Polys)
	}
	if !reflect.DeepEqual(got.DetailMeshes, tile.DetailMeshes) {
		t.Errorf("DetailMeshes mismatch: got %v, want %v", got.DetailMeshes, tile.DetailMeshes)
	}
	if !reflect.DeepEqual(got.DetailTris, tile.DetailTris) {
		t.Errorf("DetailTris mismatch: got %v, want %v", got.DetailTris, tile.DetailTris)
	}
	if !reflect.DeepEqual(got.OffMeshCons, tile.OffMeshCons) {
		t.Errorf("OffMeshCons mismatch: got %v, want %v", got.OffMeshCons, tile.OffMeshCons)
	}
}

func TestNavMeshSetHeaderWriteTo(t *testing.T) {
	hdr := navMeshSetHeader{
		Magic:    navMeshSetMagic,
		Version:  navMeshSetVersion,
		NumTiles: 1,
		Params: NavMeshParams{
			Orig:       [3]float32{0, 0, 0},
			TileWidth:  100,
			TileHeight: 100,
			MaxTiles:   1,
			MaxPolys:   4096,
		},
	}

	var buf fixedBuffer
	n, err := hdr.WriteTo(&buf)
	if err != nil {
		t.Fatalf("WriteTo failed: %v", err)
	}
	if int(n) != hdr.Size() {
		t.Errorf("WriteTo wrote %d bytes, Size() reports %d", n, hdr.Size())
	}
	if len(buf.data) != hdr.Size() {
		t.Errorf("buffer has %d bytes, want %d", len(buf.data), hdr.Size())
	}
}

func TestNavMeshTileHeaderWriteTo(t *testing.T) {
	hdr := navMeshTileHeader{TileRef: 7, DataSize: 128}

	var buf fixedBuffer
	n, err := hdr.WriteTo(&buf)
	if err != nil {
		t.Fatalf("WriteTo failed: %v", err)
	}
	if int(n) != hdr.Size() {
		t.Errorf("WriteTo wrote %d bytes, Size() reports %d", n, hdr.Size())
	}
}

// fixedBuffer is a minimal io.Writer collecting bytes, used instead of
// bytes.Buffer to keep this test file import-light.
type fixedBuffer struct {
	data []byte
}

func (b *fixedBuffer) Write(p []byte) (int, error) {
	b.data = append(b.data, p...)
	return len(p), nil
}
