package grf

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContainerRoundTrip(t *testing.T) {
	for _, version := range []int{1, 2} {
		w := NewWriter(version)
		w.AddPseudo([]byte{0x08, 0x08, 'A', 'B', 'C', 'D'})
		w.AddReal([]byte{1, 2, 3, 4, 5})
		w.AddPseudo([]byte{0x0C, 'x'})

		f, err := Parse("test.grf", w.Bytes())
		require.NoError(t, err, "version %d", version)
		assert.Equal(t, version, f.ContainerVersion)
		assert.EqualValues(t, 3, f.SpriteCount)
		require.Len(t, f.Records, 4)

		assert.True(t, f.Records[1].IsPseudo())
		assert.Equal(t, []byte{0x08, 0x08, 'A', 'B', 'C', 'D'}, f.Records[1].Data)
		assert.False(t, f.Records[2].IsPseudo())
		assert.Equal(t, 3, f.Records[3].Index)

		if version == 2 {
			id, ok := f.Records[2].SpriteRef()
			require.True(t, ok)
			require.Len(t, f.Sprites[id], 1)
			assert.Equal(t, []byte{1, 2, 3, 4, 5}, f.Sprites[id][0].Data)
		}
	}
}

func TestContainerV1CompressedSprite(t *testing.T) {
	var buf bytes.Buffer
	buf.Write([]byte{4, 0, 0xFF, 1, 0, 0, 0})
	// 8 bytes of sprite data: 3 literal bytes, a back reference of 5
	buf.Write([]byte{16, 0, 0x01, 0, 0, 0, 0, 0, 0, 0})
	buf.Write([]byte{0x03, 'a', 'b', 'c'})
	buf.Write([]byte{0xD8, 0x03})
	buf.Write([]byte{2, 0, 0xFF, 0x0C})
	buf.Write([]byte{0, 0})

	f, err := Parse("v1.grf", buf.Bytes())
	require.NoError(t, err)
	require.Len(t, f.Records, 3)
	assert.EqualValues(t, 0x01, f.Records[1].Type)
	assert.Len(t, f.Records[1].Data, 7+6)
	assert.Equal(t, []byte{0x0C}, f.Records[2].Data)
}

func TestContainerInvalid(t *testing.T) {
	_, err := Parse("empty.grf", []byte{})
	assert.Error(t, err)

	_, err = Parse("nocount.grf", []byte{2, 0, 0xFF, 1, 2, 0, 0})
	assert.Error(t, err)

	_, err = Parse("truncated.grf", []byte{4, 0, 0xFF, 1, 0, 0, 0, 9, 0, 0xFF, 1})
	assert.Error(t, err)
}
