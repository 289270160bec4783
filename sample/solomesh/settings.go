package solomesh

import "github.com/meshkit/navcore/recast"

// Settings contains all the settings required for a SoloMesh.
type Settings = recast.BuildSettings

// NewSettings returns a new Settings struct filled with default values.
func NewSettings() Settings {
	return Settings{
		CellSize:             float32(0.3),
		CellHeight:           float32(0.2),
		AgentHeight:          float32(2.0),
		AgentMaxClimb:        float32(0.9),
		AgentRadius:          float32(0.6),
		RegionMinSize:        float32(8),
		RegionMergeSize:      float32(20),
		EdgeMaxLen:           float32(12),
		EdgeMaxError:         float32(1.3),
		VertsPerPoly:         float32(6),
		DetailSampleDist:     float32(6),
		DetailSampleMaxError: float32(1),
		AgentMaxSlope:        float32(45),
	}
}
