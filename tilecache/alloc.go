package tilecache

// Allocator supplies scratch memory for one layer-to-polymesh rebuild.
// TileCache calls Reset before every rebuild so an arena-backed
// implementation can release everything from the previous rebuild in one
// shot instead of freeing each allocation individually.
type Allocator interface {
	Reset()
}

// ArenaAllocator is the default Allocator: a no-op, since the Go
// implementation lets the garbage collector reclaim the scratch slices
// built during a rebuild instead of pooling them by hand. Kept as a named
// type (rather than dropping the interface) so callers that do want
// pooling can swap in their own Allocator without touching TileCache.
type ArenaAllocator struct{}

// Reset is a no-op for ArenaAllocator.
func (ArenaAllocator) Reset() {}
