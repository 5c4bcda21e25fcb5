package fuzzy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRatio(t *testing.T) {
	assert.Equal(t, 1.0, Ratio("", ""))
	assert.Equal(t, 1.0, Ratio("Corner Adept", "corner adept "))
	assert.InDelta(t, 0.9, Ratio("Straightaway", "Straightawav"), 0.1)
	assert.Less(t, Ratio("Uma Stan", "Corner Recovery"), 0.5)
}

func TestBest(t *testing.T) {
	names := []string{"Corner Adept", "Corner Acceleration", "Uma Stan"}

	i, r := Best("Corner Adep", names, nil)
	assert.Equal(t, 0, i)
	assert.Greater(t, r, 0.9)

	i, _ = Best("Corner Adep", names, func(i int) bool { return i == 0 })
	assert.Equal(t, 1, i)

	i, r = Best("x", nil, nil)
	assert.Equal(t, -1, i)
	assert.Equal(t, 0.0, r)
}
