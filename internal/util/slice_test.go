package util_test

import (
	"testing"

	"github.com/robgonnella/fleetprobe/internal/util"
	"github.com/stretchr/testify/assert"
)

func TestSlice(t *testing.T) {
	t.Run("finds included values", func(st *testing.T) {
		assert.True(st, util.SliceIncludes([]string{"connect", "both"}, "both"))
		assert.False(st, util.SliceIncludes([]int{1, 2}, 3))
	})

	t.Run("removes duplicates in order", func(st *testing.T) {
		assert.Equal(st, []int{3, 1, 2}, util.Unique([]int{3, 1, 3, 2, 1}))
	})
}
