package text

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"
)

func TestDecodeLegacy(t *testing.T) {
	assert.Equal(t, "Café", Decode([]byte("Caf\xe9"), charmap.ISO8859_1))
	assert.Equal(t, "Café", Decode([]byte("Caf\xe9"), nil))
	assert.Equal(t, "a\nb", Decode([]byte("a\x0db"), nil))
	assert.Equal(t, "€5", Decode([]byte("\x9e5"), nil))
	assert.Equal(t, "{RED}Stop", Decode([]byte("\x8bStop"), nil))
	assert.Equal(t, "{STRING_INLINE 1234}!", Decode([]byte("\x81\x12\x34!"), nil))
	assert.Equal(t, "{EXT 0E01}x", Decode([]byte("\x9a\x0e\x01x"), nil))
}

func TestDecodeUTF8(t *testing.T) {
	assert.Equal(t, "Zürich", Decode([]byte("Þ"+"Zürich"), nil))
	// U+E08B is the red colour code
	assert.Equal(t, "{RED}Ж {x}", Decode([]byte("Þ\uE08BЖ {x}"), nil))
}

func TestDecodeTruncatedArguments(t *testing.T) {
	assert.Equal(t, "{SETXY 05}", Decode([]byte("\x1f\x05"), nil))
}

func TestTableAdd(t *testing.T) {
	tbl := NewTable(charmap.ISO8859_1)

	id := tbl.Add(0x01020304, 0xD000, LangEnglish, true, []byte("Steam"))
	assert.Equal(t, FirstID, id)
	again := tbl.Add(0x01020304, 0xD000, LangGerman, true, []byte("Dampf"))
	assert.Equal(t, id, again)

	other := tbl.Add(0x05060708, 0xD000, LangEnglish, true, []byte("Diesel"))
	assert.NotEqual(t, id, other)

	s := tbl.Get(id)
	require.NotNil(t, s)
	assert.Equal(t, map[uint8]string{LangEnglish: "Steam", LangGerman: "Dampf"}, s.Text)
	assert.Equal(t, "Steam", tbl.Text(id))

	got, ok := tbl.Lookup(0x05060708, 0xD000)
	assert.True(t, ok)
	assert.Equal(t, other, got)

	_, ok = tbl.Lookup(0x05060708, 0xD001)
	assert.False(t, ok)
	assert.Nil(t, tbl.Get(Undefined))
}

func TestTableOldLanguageBits(t *testing.T) {
	tbl := NewTable(nil)

	id := tbl.Add(1, 5, oldLangAmerican|oldLangGerman, false, []byte("Bus"))
	assert.Equal(t, map[uint8]string{LangEnglish: "Bus"}, tbl.Get(id).Text)

	id = tbl.Add(1, 6, oldLangGerman|oldLangFrench, false, []byte("Ville"))
	assert.Equal(t, map[uint8]string{LangGerman: "Ville", LangFrench: "Ville"}, tbl.Get(id).Text)

	assert.Equal(t, Undefined, tbl.Add(1, 7, 0, false, []byte("none")))
}

func TestTableRemove(t *testing.T) {
	tbl := NewTable(nil)
	a := tbl.Add(1, 1, LangEnglish, true, []byte("a"))
	b := tbl.Add(2, 1, LangEnglish, true, []byte("b"))
	tbl.Remove(1)

	_, ok := tbl.Lookup(1, 1)
	assert.False(t, ok)
	assert.Equal(t, "", tbl.Text(a))
	assert.Equal(t, "b", tbl.Text(b))
}

func TestStringDefault(t *testing.T) {
	s := &String{Text: map[uint8]string{LangFrench: "fr", LangGerman: "de"}}
	assert.Equal(t, "de", s.Default())
	s.Text[LangUnspecified] = "any"
	assert.Equal(t, "any", s.Default())
}
