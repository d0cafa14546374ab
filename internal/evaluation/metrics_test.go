package evaluation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRecallAtK(t *testing.T) {
	expected := []string{"cardiology", "emergency_medicine"}
	ranked := []string{"cardiology", "general_medicine", "neurology"}

	assert.InDelta(t, 0.5, RecallAtK(expected, ranked, 3), 1e-9)
}

func TestRecallAtK_AllFound(t *testing.T) {
	expected := []string{"cardiology"}
	ranked := []string{"cardiology"}

	assert.Equal(t, 1.0, RecallAtK(expected, ranked, 3))
}

func TestRecallAtK_EmptyExpected(t *testing.T) {
	assert.Equal(t, 0.0, RecallAtK(nil, []string{"cardiology"}, 3))
}

func TestRecallAtK_RespectsK(t *testing.T) {
	expected := []string{"neurology"}
	ranked := []string{"cardiology", "general_medicine", "neurology"}

	assert.Equal(t, 0.0, RecallAtK(expected, ranked, 2))
	assert.Equal(t, 1.0, RecallAtK(expected, ranked, 3))
}

func TestMRRAtK(t *testing.T) {
	expected := []string{"neurology"}
	ranked := []string{"cardiology", "neurology", "general_medicine"}

	assert.InDelta(t, 0.5, MRRAtK(expected, ranked, 3), 1e-9)
}

func TestMRRAtK_FirstRank(t *testing.T) {
	assert.Equal(t, 1.0, MRRAtK([]string{"cardiology"}, []string{"cardiology"}, 3))
}

func TestMRRAtK_NotFound(t *testing.T) {
	assert.Equal(t, 0.0, MRRAtK([]string{"dermatology"}, []string{"cardiology"}, 3))
	assert.Equal(t, 0.0, MRRAtK(nil, []string{"cardiology"}, 3))
	assert.Equal(t, 0.0, MRRAtK([]string{"cardiology"}, nil, 3))
}
