package comments_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"staybook/internal/domain/comments"
)

func TestAverage(t *testing.T) {
	tests := []struct {
		name    string
		ratings []int
		want    float64
	}{
		{"no ratings", nil, 0.0},
		{"single", []int{5}, 5.0},
		{"rounds to one decimal", []int{4, 5, 4}, 4.3},
		{"rounds up at exact half", []int{4, 4, 5, 4}, 4.3},
		{"exact tenth unchanged", []int{4, 4, 5, 4, 4}, 4.2},
		{"all same", []int{3, 3, 3}, 3.0},
		{"mixed extremes", []int{1, 5}, 3.0},
		{"two thirds", []int{1, 2}, 1.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, comments.Average(tt.ratings), 0.0001)
		})
	}
}

func TestRoundHalfUp(t *testing.T) {
	tests := []struct {
		value float64
		want  float64
	}{
		{4.26, 4.3},
		{4.25, 4.3},
		{4.24, 4.2},
		{4.0, 4.0},
		{0.0, 0.0},
		{4.999, 5.0},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, comments.RoundHalfUp(tt.value), 0.0001)
	}
}
