package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseVisibility(t *testing.T) {
	tests := []struct {
		in     string
		want   Visibility
		wantOK bool
	}{
		{"public", VisibilityPublic, true},
		{"private", VisibilityPrivate, true},
		{"", "", false},
		{"all", "", false},
		{"PUBLIC", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseVisibility(tt.in)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRatingBounds_Contains(t *testing.T) {
	b := DefaultRatingBounds

	assert.False(t, b.Contains(0))
	assert.True(t, b.Contains(1))
	assert.True(t, b.Contains(5))
	assert.False(t, b.Contains(6))

	wide := RatingBounds{Min: 1, Max: 10}
	assert.True(t, wide.Contains(10))
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "alice@example.com", NormalizeEmail("  Alice@Example.COM "))
}
