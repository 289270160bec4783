package detour

import (
	"encoding/binary"
	"io"
)

// TileRef is a reference to a tile of the navigation mesh.
type TileRef uint32

type navMeshTileHeader struct {
	TileRef  TileRef
	DataSize int32
}

// Size returns the number of bytes h occupies once written with WriteTo.
func (h *navMeshTileHeader) Size() int {
	return binary.Size(*h)
}

// WriteTo writes h in the same little-endian, field-order layout Decode
// reads it back in.
func (h *navMeshTileHeader) WriteTo(w io.Writer) (int64, error) {
	if err := binary.Write(w, binary.LittleEndian, *h); err != nil {
		return 0, err
	}
	return int64(h.Size()), nil
}

// Size returns the number of bytes h occupies once written with WriteTo.
func (h *navMeshSetHeader) Size() int {
	return binary.Size(*h)
}

// WriteTo writes h in the same little-endian, field-order layout Decode
// reads it back in.
func (h *navMeshSetHeader) WriteTo(w io.Writer) (int64, error) {
	if err := binary.Write(w, binary.LittleEndian, *h); err != nil {
		return 0, err
	}
	return int64(h.Size()), nil
}
