package affinity_test

import (
	"testing"

	"codeberg.org/mutker/perfgov/internal/affinity"
	"codeberg.org/mutker/perfgov/internal/topology"
	"github.com/stretchr/testify/assert"
)

func recognizedTopology() topology.Topology {
	return topology.Topology{
		TotalCores: 8,
		Recognized: true,
		SoC:        "Snapdragon 8 Gen 2",
		Prime:      topology.Span{Start: 0, End: 1},
		Gold:       topology.Span{Start: 1, End: 5},
		Silver:     topology.Span{Start: 5, End: 8},
	}
}

func TestPinUnrecognizedTopologyIsNoop(t *testing.T) {
	assigner := affinity.New(topology.Topology{TotalCores: 8})

	assert.NotPanics(t, func() {
		assigner.Pin(affinity.CpuEmulation)
		assigner.Pin(affinity.GpuSubmission)
		assigner.Pin(affinity.Audio)
	})
}

func TestPinGenericIsNoop(t *testing.T) {
	assigner := affinity.New(recognizedTopology())

	assert.NotPanics(t, func() {
		assigner.Pin(affinity.Generic)
	})
}

func TestRecommendedThreadCountRecognized(t *testing.T) {
	assigner := affinity.New(recognizedTopology())

	assert.Equal(t, 4, assigner.RecommendedThreadCount(), "gold class size")
}

func TestRecommendedThreadCountUnrecognized(t *testing.T) {
	assigner := affinity.New(topology.Topology{TotalCores: 6})

	assert.Equal(t, 6, assigner.RecommendedThreadCount(), "falls back to total cores")
}

func TestRoleNames(t *testing.T) {
	assert.Equal(t, "cpu_emulation", affinity.CpuEmulation.String())
	assert.Equal(t, "gpu_submission", affinity.GpuSubmission.String())
	assert.Equal(t, "audio", affinity.Audio.String())
	assert.Equal(t, "generic", affinity.Generic.String())
}
