package dao

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDiffSizes(t *testing.T) {
	existing := []CakeSize{
		{ID: 1, CakeID: 9, Size: "S", Price: 1200, Stock: 3},
		{ID: 2, CakeID: 9, Size: "M", Price: 1500, Stock: 5},
		{ID: 3, CakeID: 9, Size: "L", Price: 2000, Stock: 1},
	}
	desired := []CakeSize{
		{Size: "S", Price: 1200, Stock: 3},
		{Size: "M", Price: 1600, Stock: 5},
		{Size: "XL", Price: 2600, Stock: 2},
	}

	diff := DiffSizes(existing, desired)

	assert.Equal(t, []CakeSize{{Size: "XL", Price: 2600, Stock: 2}}, diff.Insert)
	assert.Equal(t, []CakeSize{{ID: 2, CakeID: 9, Size: "M", Price: 1600, Stock: 5}}, diff.Update)
	assert.Equal(t, []int{3}, diff.Delete)
	assert.False(t, diff.Empty())
}

func TestDiffSizesUnchanged(t *testing.T) {
	existing := []CakeSize{{ID: 1, Size: "M", Price: 1500, Stock: 5}}
	assert.True(t, DiffSizes(existing, []CakeSize{{Size: "M", Price: 1500, Stock: 5}}).Empty())
}
