package tilecache

// Direction offsets shared with the connection bitmask packed into
// Layer.Cons: bit `dir` of a cell's low nibble means "the neighbour in
// this direction is walkable and reachable without an elevation jump
// bigger than the build's walkable climb".
var dirOffsetX = [4]int{-1, 0, 1, 0}
var dirOffsetY = [4]int{0, 1, 0, -1}

func layerConnected(layer *Layer, idx int, dir int) bool {
	return layer.Cons[idx]&(1<<uint(dir)) != 0
}

// BuildTileCacheRegions assigns a region id to every walkable cell of
// layer by flood-filling 4-connected runs of cells that share an area id
// and are mutually connected per Cons. The reference builder instead
// sweeps monotone spans and merges small regions together in a second
// pass (dtBuildTileCacheRegions/dtLayerMonotoneRegion); this skips the
// merge pass; a rebuild can produce more, smaller regions than the
// reference, which costs a few extra portal edges in the polygon mesh
// but never an incorrect one, since region ids are only ever used to
// tell the contour tracer where a boundary is.
func BuildTileCacheRegions(layer *Layer) {
	w, h := int(layer.Header.Width), int(layer.Header.Height)
	if len(layer.Regs) != w*h {
		layer.Regs = make([]uint8, w*h)
	} else {
		for i := range layer.Regs {
			layer.Regs[i] = 0
		}
	}

	regID := uint8(0)
	stack := make([]int, 0, 256)

	minx, maxx := int(layer.Header.MinX), int(layer.Header.MaxX)
	miny, maxy := int(layer.Header.MinY), int(layer.Header.MaxY)

	for y := miny; y <= maxy; y++ {
		for x := minx; x <= maxx; x++ {
			idx := layer.idx(x, y)
			if layer.Areas[idx] == TileCacheNullArea || layer.Regs[idx] != 0 {
				continue
			}
			if regID == 255 {
				// Out of region ids: leave remaining cells unregioned rather
				// than wrapping around and colliding with region 1.
				layer.RegCount = regID
				return
			}
			regID++
			area := layer.Areas[idx]

			stack = stack[:0]
			stack = append(stack, idx)
			layer.Regs[idx] = regID

			for len(stack) > 0 {
				cur := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				cx := cur % w
				cy := cur / w

				for dir := 0; dir < 4; dir++ {
					if !layerConnected(layer, cur, dir) {
						continue
					}
					nx := cx + dirOffsetX[dir]
					ny := cy + dirOffsetY[dir]
					if nx < minx || nx > maxx || ny < miny || ny > maxy {
						continue
					}
					nidx := layer.idx(nx, ny)
					if layer.Regs[nidx] != 0 || layer.Areas[nidx] != area {
						continue
					}
					layer.Regs[nidx] = regID
					stack = append(stack, nidx)
				}
			}
		}
	}
	layer.RegCount = regID
}
