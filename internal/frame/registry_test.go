package frame

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

type stubFrame struct {
	descriptor Descriptor
}

func (s stubFrame) Descriptor() Descriptor { return s.descriptor }

func (s stubFrame) Execute(ctx context.Context, file CodeFile) (FrameResult, error) {
	return NewFrameResult(s.descriptor.FrameID, s.descriptor.Name, nil, 0, 1), nil
}

func TestRegistryAllOrdersByPriorityThenID(t *testing.T) {
	r := NewRegistry()
	r.Register(stubFrame{Descriptor{FrameID: "antipattern", Name: "Antipattern", Priority: 5}})
	r.Register(stubFrame{Descriptor{FrameID: "security", Name: "Security", Priority: 10}})
	r.Register(stubFrame{Descriptor{FrameID: "resilience", Name: "Resilience", Priority: 5}})

	all := r.All()
	assert.Equal(t, "security", all[0].Descriptor().FrameID)
	assert.Equal(t, "antipattern", all[1].Descriptor().FrameID)
	assert.Equal(t, "resilience", all[2].Descriptor().FrameID)
}

func TestRegistryMatchByFrameIDNameAndSubstring(t *testing.T) {
	r := NewRegistry()
	r.Register(stubFrame{Descriptor{FrameID: "security", Name: "Security Frame", Priority: 1}})
	r.Register(stubFrame{Descriptor{FrameID: "antipattern", Name: "Antipattern Frame", Priority: 1}})

	matched, fellBack := r.Match([]string{"security-frame"})
	assert.False(t, fellBack)
	assert.Len(t, matched, 1)
	assert.Equal(t, "security", matched[0].Descriptor().FrameID)

	matched, fellBack = r.Match([]string{"pattern"})
	assert.False(t, fellBack)
	assert.Len(t, matched, 1)
	assert.Equal(t, "antipattern", matched[0].Descriptor().FrameID)
}

func TestRegistryMatchFallsBackToAllWhenNoHintMatches(t *testing.T) {
	r := NewRegistry()
	r.Register(stubFrame{Descriptor{FrameID: "security", Name: "Security Frame", Priority: 1}})

	matched, fellBack := r.Match([]string{"totally-unknown"})
	assert.True(t, fellBack)
	assert.Len(t, matched, 1)
}

func TestRegistryMatchEmptyHintsReturnsNothing(t *testing.T) {
	r := NewRegistry()
	r.Register(stubFrame{Descriptor{FrameID: "security", Name: "Security Frame", Priority: 1}})

	matched, fellBack := r.Match(nil)
	assert.Nil(t, matched)
	assert.False(t, fellBack)
}

func TestDescriptorAppliesEmptyApplicabilityMeansAll(t *testing.T) {
	d := Descriptor{}
	assert.True(t, d.Applies("python"))

	d.Applicability = []string{"go", "java"}
	assert.True(t, d.Applies("go"))
	assert.False(t, d.Applies("python"))
}
