package tilecache

import (
	"github.com/meshkit/navcore/detour"
	"github.com/pierrec/lz4/v4"
)

// Compressor compresses and decompresses the raw height/area/connection
// buffers of a tile layer. TileCache never inspects the compressed bytes
// itself; it only stores them and hands them back to the same Compressor.
type Compressor interface {
	MaxCompressedSize(bufferSize int) int
	Compress(buf []byte) (compressed []byte, status detour.Status)
	Decompress(compressed []byte, maxBufferSize int) (buf []byte, status detour.Status)
}

// Lz4Compressor is the default Compressor, backed by the LZ4 block format.
// Recast's reference implementation ships its own minimal LZ4 codec; this
// uses the equivalent well-maintained Go implementation instead of
// hand-rolling one.
type Lz4Compressor struct{}

// MaxCompressedSize returns a conservative upper bound for compressing a
// buffer of the given size.
func (Lz4Compressor) MaxCompressedSize(bufferSize int) int {
	// One leading byte tells Decompress whether the payload is stored raw.
	return lz4.CompressBlockBound(bufferSize) + 1
}

// Compress compresses buf with LZ4.
func (c Lz4Compressor) Compress(buf []byte) ([]byte, detour.Status) {
	dst := make([]byte, c.MaxCompressedSize(len(buf)))
	var compressor lz4.Compressor
	n, err := compressor.CompressBlock(buf, dst)
	if err != nil {
		return nil, detour.Failure
	}
	if n == 0 {
		// Incompressible input: lz4 returns n==0 rather than expanding it.
		// Store it verbatim; Decompress mirrors this by checking the
		// leading byte.
		return append([]byte{0}, buf...), detour.Success
	}
	return append([]byte{1}, dst[:n]...), detour.Success
}

// Decompress decompresses compressed, which must be a buffer produced by
// Compress, into a buffer of at most maxBufferSize bytes.
func (Lz4Compressor) Decompress(compressed []byte, maxBufferSize int) ([]byte, detour.Status) {
	if len(compressed) == 0 {
		return nil, detour.Failure | detour.InvalidParam
	}
	stored, payload := compressed[0], compressed[1:]
	if stored == 0 {
		buf := make([]byte, len(payload))
		copy(buf, payload)
		return buf, detour.Success
	}
	buf := make([]byte, maxBufferSize)
	n, err := lz4.UncompressBlock(payload, buf)
	if err != nil {
		return nil, detour.Failure
	}
	return buf[:n], detour.Success
}
