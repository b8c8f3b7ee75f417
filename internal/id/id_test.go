package id

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate_Unique(t *testing.T) {
	seen := make(map[string]struct{}, 500)
	for range 500 {
		v, err := Generate("rev")
		require.NoError(t, err)
		_, dup := seen[v]
		require.False(t, dup, "duplicate id %s", v)
		seen[v] = struct{}{}
	}
}

func TestGenerate_Prefix(t *testing.T) {
	for _, prefix := range []string{"usr", "rev"} {
		v, err := Generate(prefix)
		require.NoError(t, err)

		assert.True(t, strings.HasPrefix(v, prefix+"-"))
		assert.Len(t, v, len(prefix)+1+21)
	}
}

func TestMustGenerate(t *testing.T) {
	assert.NotPanics(t, func() {
		assert.NotEmpty(t, MustGenerate("usr"))
	})
}
