package tilecache

import "github.com/meshkit/navcore/recast"

// MaxVertsPerPoly bounds the vertex count of any polygon BuildTileCachePolyMesh
// produces, matching the tile cache's fixed-size poly record (recast's own
// polymesh uses the same constant for its own greedy merge).
const MaxVertsPerPoly = 6

// PolyMesh is the polygon mesh rebuilt from one tile's contours, in the
// layout detour.NavMeshCreateParams expects directly: Verts holds x,y,z
// triples, Polys holds NVP vertex indices per polygon followed by NVP
// neighbour-polygon indices (filled in by recast.BuildMeshAdjacency).
type PolyMesh struct {
	NVP            int32
	Verts          []uint16
	Polys          []uint16
	Flags          []uint16
	Areas          []uint8
	NVerts, NPolys int32
}

type vertexWelder struct {
	mesh   *PolyMesh
	bucket map[[2]uint16][]uint16
}

func newVertexWelder(mesh *PolyMesh) *vertexWelder {
	return &vertexWelder{mesh: mesh, bucket: make(map[[2]uint16][]uint16)}
}

func (w *vertexWelder) add(x, y, z uint16) uint16 {
	key := [2]uint16{x, z}
	for _, i := range w.bucket[key] {
		vy := w.mesh.Verts[i*3+1]
		diff := int(vy) - int(y)
		if diff < 0 {
			diff = -diff
		}
		if diff <= 2 {
			return i
		}
	}
	i := uint16(w.mesh.NVerts)
	w.mesh.Verts[i*3+0] = x
	w.mesh.Verts[i*3+1] = y
	w.mesh.Verts[i*3+2] = z
	w.mesh.NVerts++
	w.bucket[key] = append(w.bucket[key], i)
	return i
}

// BuildTileCachePolyMesh triangulates and greedily merges every region
// contour in lcset into a polygon mesh, reusing recast's ear-clip
// triangulator and convex-merge helpers (the same ones its own
// rcBuildPolyMesh equivalent uses) instead of re-deriving them.
func BuildTileCachePolyMesh(lcset *ContourSet) *PolyMesh {
	maxVertices := 0
	maxTris := 0
	maxVertsPerCont := 0
	for i := range lcset.Conts {
		nv := lcset.Conts[i].NVerts()
		if nv < 3 {
			continue
		}
		maxVertices += nv
		maxTris += nv - 2
		if nv > maxVertsPerCont {
			maxVertsPerCont = nv
		}
	}

	mesh := &PolyMesh{
		NVP:    MaxVertsPerPoly,
		Verts:  make([]uint16, maxVertices*3),
		Polys:  make([]uint16, maxTris*MaxVertsPerPoly*2),
		Flags:  make([]uint16, maxTris),
		Areas:  make([]uint8, maxTris),
	}
	for i := range mesh.Polys {
		mesh.Polys[i] = meshNullIdx
	}

	welder := newVertexWelder(mesh)

	indices := make([]int64, maxVertsPerCont)
	tris := make([]int32, maxVertsPerCont*3)
	polys := make([]uint16, maxVertsPerCont*MaxVertsPerPoly)
	vertsI32 := make([]int32, maxVertsPerCont*4)

	for i := range lcset.Conts {
		cont := &lcset.Conts[i]
		nverts := cont.NVerts()
		if nverts < 3 {
			continue
		}

		for j := 0; j < nverts; j++ {
			indices[j] = int64(j)
			vertsI32[j*4+0] = int32(cont.Verts[j*4+0])
			vertsI32[j*4+1] = int32(cont.Verts[j*4+1])
			vertsI32[j*4+2] = int32(cont.Verts[j*4+2])
		}

		ntris := recast.Triangulate(int32(nverts), vertsI32, indices[:nverts], tris)
		if ntris <= 0 {
			ntris = -ntris
		}

		vertIdx := make([]uint16, nverts)
		for j := 0; j < nverts; j++ {
			v := cont.Verts[j*4:]
			vertIdx[j] = welder.add(uint16(v[0]), uint16(v[1]), uint16(v[2]))
		}

		npolys := 0
		for j := range polys {
			polys[j] = meshNullIdx
		}
		for j := int32(0); j < ntris; j++ {
			t := tris[j*3 : j*3+3]
			if t[0] != t[1] && t[0] != t[2] && t[1] != t[2] {
				p := polys[npolys*MaxVertsPerPoly:]
				p[0] = vertIdx[t[0]]
				p[1] = vertIdx[t[1]]
				p[2] = vertIdx[t[2]]
				npolys++
			}
		}
		if npolys == 0 {
			continue
		}

		// Greedily merge adjacent polygons, same idiom as recast's own
		// polymesh builder (recast.GetPolyMergeValue/MergePolyVerts).
		for MaxVertsPerPoly > 3 {
			bestMergeVal := int32(0)
			bestPa, bestPb, bestEa, bestEb := 0, 0, int32(0), int32(0)

			for j := 0; j < npolys-1; j++ {
				pj := polys[j*MaxVertsPerPoly : j*MaxVertsPerPoly+MaxVertsPerPoly]
				for k := j + 1; k < npolys; k++ {
					pk := polys[k*MaxVertsPerPoly : k*MaxVertsPerPoly+MaxVertsPerPoly]
					var ea, eb int32
					v := recast.GetPolyMergeValue(pj, pk, mesh.Verts, &ea, &eb, MaxVertsPerPoly)
					if v > bestMergeVal {
						bestMergeVal = v
						bestPa, bestPb, bestEa, bestEb = j, k, ea, eb
					}
				}
			}

			if bestMergeVal == 0 {
				break
			}

			pa := polys[bestPa*MaxVertsPerPoly : bestPa*MaxVertsPerPoly+MaxVertsPerPoly]
			pb := polys[bestPb*MaxVertsPerPoly : bestPb*MaxVertsPerPoly+MaxVertsPerPoly]
			tmp := make([]uint16, MaxVertsPerPoly)
			recast.MergePolyVerts(pa, pb, bestEa, bestEb, tmp, MaxVertsPerPoly)
			copy(pb, polys[(npolys-1)*MaxVertsPerPoly:npolys*MaxVertsPerPoly])
			npolys--
		}

		for j := 0; j < npolys; j++ {
			dst := mesh.Polys[int(mesh.NPolys)*int(MaxVertsPerPoly)*2:]
			src := polys[j*MaxVertsPerPoly : j*MaxVertsPerPoly+MaxVertsPerPoly]
			copy(dst[:MaxVertsPerPoly], src)
			mesh.Areas[mesh.NPolys] = cont.Area
			mesh.NPolys++
		}
	}

	recast.BuildMeshAdjacency(mesh.Polys, mesh.NPolys, mesh.NVerts, MaxVertsPerPoly)

	return mesh
}

const meshNullIdx = 0xffff
