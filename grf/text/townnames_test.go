package text

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTownNameGenerate(t *testing.T) {
	tn := NewTownNames()
	g := tn.Get(0xAABBCCDD, true)
	require.Same(t, g, tn.Get(0xAABBCCDD, false))
	assert.Nil(t, tn.Get(1, false))

	require.NoError(t, g.AddList(0, TownNamePartList{
		BitStart: 0, BitCount: 1,
		Parts: []TownNamePart{{Prob: 1, Text: "North"}, {Prob: 1, Text: "South"}},
	}))
	require.NoError(t, g.AddList(1, TownNamePartList{
		BitStart: 0, BitCount: 0,
		Parts: []TownNamePart{{Prob: 0x80 | 1, Ref: 0}},
	}))
	require.NoError(t, g.AddList(1, TownNamePartList{
		BitStart: 4, BitCount: 2,
		Parts: []TownNamePart{{Prob: 3, Text: "ton"}, {Prob: 1, Text: "ville"}},
	}))
	assert.EqualValues(t, 4, g.Lists[1][1].MaxProb)

	// the last part wins the low values
	assert.Equal(t, "Southville", g.Generate(1, 0x00))
	assert.Equal(t, "Northton", g.Generate(1, 0x31))
	assert.Equal(t, "", g.Generate(5, 0))
}

func TestTownNameUndefinedReference(t *testing.T) {
	g := NewTownNames().Get(1, true)
	err := g.AddList(2, TownNamePartList{Parts: []TownNamePart{{Prob: 0x81, Ref: 9}}})
	assert.True(t, errors.Is(err, ErrUndefinedTownNameList))
	assert.False(t, g.Defined(2))
}

func TestTownNameSelfReference(t *testing.T) {
	g := NewTownNames().Get(1, true)
	require.NoError(t, g.AddList(0, TownNamePartList{Parts: []TownNamePart{{Prob: 1, Text: "a"}}}))
	require.NoError(t, g.AddList(0, TownNamePartList{Parts: []TownNamePart{{Prob: 0x81, Ref: 0}}}))
	assert.NotEmpty(t, g.Generate(0, 0))
}

func TestTownNamesDelete(t *testing.T) {
	tn := NewTownNames()
	tn.Get(1, true)
	tn.Get(2, true)
	tn.Delete(1)
	require.Len(t, tn.Generators(), 1)
	assert.EqualValues(t, 2, tn.Generators()[0].GRFID)
}
