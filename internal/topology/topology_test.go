package topology_test

import (
	"testing"

	"codeberg.org/mutker/perfgov/internal/topology"
	"github.com/stretchr/testify/assert"
)

type fakeIdentifier struct {
	model        string
	manufacturer string
	codename     string
}

func (f fakeIdentifier) SoCModel() string        { return f.model }
func (f fakeIdentifier) SoCManufacturer() string { return f.manufacturer }
func (f fakeIdentifier) DeviceCodename() string  { return f.codename }

func TestDetectSnapdragon8Gen2(t *testing.T) {
	id := fakeIdentifier{model: "SM8550", manufacturer: "Qualcomm", codename: "kalama"}

	topo := topology.Detect(id, 8)

	assert.True(t, topo.Recognized)
	assert.Equal(t, "Snapdragon 8 Gen 2", topo.SoC)
	assert.Equal(t, []int{0}, topo.Prime.Cores())
	assert.Equal(t, []int{1, 2, 3, 4}, topo.Gold.Cores())
	assert.Equal(t, []int{5, 6, 7}, topo.Silver.Cores())
	assert.Equal(t, 8, topo.TotalCores)
}

func TestDetectByCodenameSubstring(t *testing.T) {
	id := fakeIdentifier{model: "kalama", manufacturer: "QTI"}

	topo := topology.Detect(id, 8)

	assert.True(t, topo.Recognized)
	assert.Equal(t, "Snapdragon 8 Gen 2", topo.SoC)
}

func TestDetectUnknownSoC(t *testing.T) {
	id := fakeIdentifier{model: "Tensor G3", manufacturer: "Google"}

	topo := topology.Detect(id, 9)

	assert.False(t, topo.Recognized)
	assert.Equal(t, 9, topo.TotalCores)
	assert.Zero(t, topo.Prime.Size())
	assert.Zero(t, topo.Gold.Size())
	assert.Zero(t, topo.Silver.Size())
}

func TestDetectWrongManufacturer(t *testing.T) {
	// Model string matches but the manufacturer does not
	id := fakeIdentifier{model: "SM8550", manufacturer: "SomeVendor"}

	topo := topology.Detect(id, 8)

	assert.False(t, topo.Recognized)
}

func TestDetectCoreCountDisagrees(t *testing.T) {
	id := fakeIdentifier{model: "SM8550", manufacturer: "Qualcomm"}

	topo := topology.Detect(id, 4)

	assert.False(t, topo.Recognized, "layout ranges must stay within [0, total_cores)")
	assert.Equal(t, 4, topo.TotalCores)
}

func TestDetectNilIdentifier(t *testing.T) {
	topo := topology.Detect(nil, 8)

	assert.False(t, topo.Recognized)
	assert.Equal(t, 8, topo.TotalCores)
}

func TestDetectIsDeterministic(t *testing.T) {
	id := fakeIdentifier{model: "SM8450", manufacturer: "QTI"}

	first := topology.Detect(id, 8)
	second := topology.Detect(id, 8)

	assert.Equal(t, first, second)
}

func TestSpan(t *testing.T) {
	assert.Zero(t, topology.Span{}.Size())
	assert.Empty(t, topology.Span{}.Cores())
	assert.Equal(t, 4, topology.Span{Start: 1, End: 5}.Size())
	assert.Equal(t, []int{1, 2, 3, 4}, topology.Span{Start: 1, End: 5}.Cores())
}

func TestClassRangesAreDisjoint(t *testing.T) {
	id := fakeIdentifier{model: "SM8550", manufacturer: "Qualcomm"}
	topo := topology.Detect(id, 8)

	seen := make(map[int]bool)
	for _, span := range []topology.Span{topo.Prime, topo.Gold, topo.Silver} {
		for _, core := range span.Cores() {
			assert.False(t, seen[core], "core %d assigned to two classes", core)
			assert.GreaterOrEqual(t, core, 0)
			assert.Less(t, core, topo.TotalCores)
			seen[core] = true
		}
	}
}
