package tilecache

import (
	"github.com/arl/gogeo/f32/d3"
	"github.com/arl/math32"
)

// MaxTouchedTiles bounds the number of compressed tiles a single obstacle
// can affect, enough for an obstacle straddling a tile corner.
const MaxTouchedTiles = 8

// ObstacleState tracks an obstacle through the add/remove pipeline: a
// request is processed in the background (bounded by MaxUpdate per Update
// call) rather than synchronously, since it requires rebuilding every
// touched tile.
type ObstacleState uint8

const (
	ObstacleEmpty ObstacleState = iota
	ObstacleProcessing
	ObstacleProcessed
	ObstacleRemoving
)

// ObstacleType selects the shape carved into a tile's height layer areas.
type ObstacleType uint8

const (
	ObstacleCylinder ObstacleType = iota
	ObstacleBox                  // axis-aligned
	ObstacleOrientedBox          // rotated around Y
)

// ObstacleCylinder is a vertical cylinder obstacle.
type ObstacleCylinder struct {
	Pos           d3.Vec3
	Radius        float32
	Height        float32
}

// ObstacleBox is an axis-aligned box obstacle.
type ObstacleBox struct {
	BMin, BMax d3.Vec3
}

// ObstacleOrientedBox is a box obstacle rotated around the Y axis.
type ObstacleOrientedBox struct {
	Center      d3.Vec3
	HalfExtents d3.Vec3
	// RotAux holds {cos(0.5*angle)*sin(-0.5*angle), cos(0.5*angle)*cos(0.5*angle) - 0.5},
	// precomputed so MarkOrientedBoxArea avoids a trig call per layer cell.
	RotAux [2]float32
}

// Obstacle is one user-requested obstacle: its shape, which compressed
// tiles it has been carved into (Touched) or still needs to be carved
// into (Pending), and its lifecycle state.
type Obstacle struct {
	Cylinder    ObstacleCylinder
	Box         ObstacleBox
	OrientedBox ObstacleOrientedBox

	Touched  [MaxTouchedTiles]CompressedTileRef
	Pending  [MaxTouchedTiles]CompressedTileRef
	NTouched int
	NPending int

	Salt  uint16
	Type  ObstacleType
	State ObstacleState

	next *Obstacle
}

// ObstacleRef uniquely identifies an Obstacle across its lifetime: the top
// 16 bits are a salt incremented every time the obstacle slot is reused.
type ObstacleRef uint32

func encodeObstacleID(salt uint16, index int) ObstacleRef {
	return ObstacleRef(uint32(salt)<<16 | uint32(index))
}

func decodeObstacleIDSalt(ref ObstacleRef) uint16 {
	return uint16((ref >> 16) & 0xffff)
}

func decodeObstacleIDIndex(ref ObstacleRef) int {
	return int(ref & 0xffff)
}

// GetObstacleBounds returns the conservative world-space AABB of ob,
// regardless of its shape.
func GetObstacleBounds(ob *Obstacle) (bmin, bmax d3.Vec3) {
	switch ob.Type {
	case ObstacleCylinder:
		c := ob.Cylinder
		bmin = d3.NewVec3XYZ(c.Pos[0]-c.Radius, c.Pos[1], c.Pos[2]-c.Radius)
		bmax = d3.NewVec3XYZ(c.Pos[0]+c.Radius, c.Pos[1]+c.Height, c.Pos[2]+c.Radius)
	case ObstacleBox:
		bmin = d3.NewVec3From(ob.Box.BMin)
		bmax = d3.NewVec3From(ob.Box.BMax)
	case ObstacleOrientedBox:
		ob2 := ob.OrientedBox
		maxr := 1.41 * math32.Max(ob2.HalfExtents[0], ob2.HalfExtents[2])
		bmin = d3.NewVec3XYZ(ob2.Center[0]-maxr, ob2.Center[1]-ob2.HalfExtents[1], ob2.Center[2]-maxr)
		bmax = d3.NewVec3XYZ(ob2.Center[0]+maxr, ob2.Center[1]+ob2.HalfExtents[1], ob2.Center[2]+maxr)
	}
	return bmin, bmax
}
