package idutil

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSnowflakeGenerator(t *testing.T) {
	g, err := NewSnowflakeGenerator(1)
	require.NoError(t, err)

	prev := g.Generate()
	for i := 0; i < 100; i++ {
		id := g.Generate()
		require.Greater(t, id, prev)
		prev = id
	}
}

func TestParseID(t *testing.T) {
	id, err := ParseID(FormatID(1234567))
	require.NoError(t, err)
	require.Equal(t, int64(1234567), id)

	_, err = ParseID("not-an-id")
	require.Error(t, err)
}

func TestSequenceGenerator(t *testing.T) {
	g := NewSequenceGenerator(10)
	require.Equal(t, int64(10), g.Generate())
	require.Equal(t, int64(11), g.Generate())
}
