package nfo_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mogaika/newgrf_browser/grf"
	"github.com/mogaika/newgrf_browser/nfo"
)

const sample = `// Escapes: \b \w \d
    0 * 4	 03 00 00 00
    1 * 15	 08 08 "ABCD" "Test set" 00 // info
    2 * 10	 00 00 \b1 01 \w5 09
	\b*300
    3 sprites/engine.png 8bpp 10 10 32 16 -16 -8
`

func TestParse(t *testing.T) {
	sprites, err := nfo.Parse([]byte(sample))
	require.NoError(t, err)
	require.Len(t, sprites, 4)

	info := sprites[1]
	assert.Equal(t, 1, info.Number)
	assert.Equal(t, 3, info.Line)
	assert.Equal(t, "info", info.Comment)
	assert.Equal(t, append([]byte{0x08, 0x08}, "ABCDTest set\x00"...), info.Data)

	props := sprites[2]
	assert.Equal(t, []byte{0x00, 0x00, 0x01, 0x01, 0x05, 0x00, 0x09, 0xFF, 0x2C, 0x01}, props.Data[:10])

	rs := sprites[3]
	assert.False(t, rs.IsPseudo())
	assert.Equal(t, []string{"sprites/engine.png", "8bpp", "10", "10", "32", "16", "-16", "-8"}, rs.Real)
}

func TestParseSizeMismatch(t *testing.T) {
	_, err := nfo.Parse([]byte("    1 * 3\t 08 08\n"))
	assert.Error(t, err)
}

func TestParseErrors(t *testing.T) {
	for _, text := range []string{
		"08 08\n",
		"    1 * 2\t 0G 00\n",
		"    1 * 1\t \\b300\n",
		"    1 * x\t 00\n",
		"    1 * 1\t 00 ! 00\n",
	} {
		_, err := nfo.Parse([]byte(text))
		assert.Error(t, err, "%q", text)
	}
}

func TestEscapes(t *testing.T) {
	sprites, err := nfo.Parse([]byte(`    1 * 13	 \bxFE \wx1234 \dx01020304 \d-1 \b-1 \b*5` + "\n"))
	require.NoError(t, err)
	assert.Equal(t, []byte{
		0xFE,
		0x34, 0x12,
		0x04, 0x03, 0x02, 0x01,
		0xFF, 0xFF, 0xFF, 0xFF,
		0xFF,
		0x05,
	}, sprites[0].Data[:13])
}

func TestAssembleCountsSprites(t *testing.T) {
	w, err := nfo.Assemble([]byte(sample), 2)
	require.NoError(t, err)
	// the count record is recomputed
	assert.Equal(t, 3, w.Len())

	f, err := grf.Parse("sample.grf", w.Bytes())
	require.NoError(t, err)
	require.Len(t, f.Records, 4)
	assert.Equal(t, []byte{3, 0, 0, 0}, f.Records[0].Data)
	_, isRef := f.Records[3].SpriteRef()
	assert.True(t, isRef)

	_, err = nfo.Assemble([]byte(sample), 3)
	assert.Error(t, err)
}

func TestRenderRoundTrip(t *testing.T) {
	w, err := nfo.Assemble([]byte(sample), 2)
	require.NoError(t, err)
	f, err := grf.Parse("sample.grf", w.Bytes())
	require.NoError(t, err)

	text := nfo.Render(nfo.Disassemble(f))
	again, err := nfo.Parse([]byte(text))
	require.NoError(t, err)
	require.Len(t, again, len(f.Records))
	for i, rec := range f.Records {
		if rec.IsPseudo() {
			if diff := cmp.Diff(rec.Data, again[i].Data); diff != "" {
				t.Errorf("record %d mismatch (-want +got):\n%s", i, diff)
			}
		}
	}
}

func TestRenderLongSprite(t *testing.T) {
	data := make([]byte, 100)
	for i := range data {
		data[i] = byte(i)
	}
	text := nfo.Render([]*nfo.Sprite{{Number: 1, Data: data, Size: len(data)}})
	sprites, err := nfo.Parse([]byte(text))
	require.NoError(t, err)
	require.Len(t, sprites, 1)
	assert.Equal(t, data, sprites[0].Data)
}
