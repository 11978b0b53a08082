package text

import (
	"sort"

	"golang.org/x/text/encoding/charmap"
)

// Language ids of the new scheme.
const (
	LangAmerican    uint8 = 0x00
	LangEnglish     uint8 = 0x01
	LangGerman      uint8 = 0x02
	LangFrench      uint8 = 0x03
	LangSpanish     uint8 = 0x04
	LangUnspecified uint8 = 0x7F
)

// Language bits of modules older than version 7.
const (
	oldLangAmerican = 0x01
	oldLangEnglish  = 0x02
	oldLangGerman   = 0x04
	oldLangFrench   = 0x08
	oldLangSpanish  = 0x10
)

// FirstID is the first global id handed out to module strings.
const FirstID uint32 = 0x10000

// Undefined marks a missing string.
const Undefined uint32 = 0xFFFFFFFF

// key ids are local string ids, with the feature in the high half for
// names of vehicles.
type key struct {
	grfid uint32
	id    uint32
}

// String is one module string with its translations.
type String struct {
	ID    uint32
	GRFID uint32
	Local uint32
	Text  map[uint8]string
}

// Default returns the translation to show when no language is preferred.
func (s *String) Default() string {
	for _, lang := range []uint8{LangUnspecified, LangEnglish, LangAmerican} {
		if t, ok := s.Text[lang]; ok {
			return t
		}
	}
	langs := make([]int, 0, len(s.Text))
	for lang := range s.Text {
		langs = append(langs, int(lang))
	}
	if len(langs) == 0 {
		return ""
	}
	sort.Ints(langs)
	return s.Text[uint8(langs[0])]
}

// Table stores the strings of every module, addressed by global id and by
// module local id.
type Table struct {
	cm      *charmap.Charmap
	byKey   map[key]*String
	strings []*String
}

func NewTable(cm *charmap.Charmap) *Table {
	return &Table{
		cm:    cm,
		byKey: make(map[key]*String),
	}
}

// Add stores a translation and returns the global id of the string. Modules
// older than version 7 pass a language bit mask, which is expanded here.
func (t *Table) Add(grfid uint32, id uint32, lang uint8, newScheme bool, raw []byte) uint32 {
	if !newScheme {
		if lang&(oldLangAmerican|oldLangEnglish) != 0 {
			lang = LangEnglish
		} else {
			ret := Undefined
			for _, m := range []struct {
				bit  uint8
				lang uint8
			}{{oldLangGerman, LangGerman}, {oldLangFrench, LangFrench}, {oldLangSpanish, LangSpanish}} {
				if lang&m.bit != 0 {
					ret = t.Add(grfid, id, m.lang, true, raw)
				}
			}
			return ret
		}
	}

	k := key{grfid, id}
	s, ok := t.byKey[k]
	if !ok {
		s = &String{
			ID:    FirstID + uint32(len(t.strings)),
			GRFID: grfid,
			Local: id,
			Text:  make(map[uint8]string),
		}
		t.byKey[k] = s
		t.strings = append(t.strings, s)
	}
	s.Text[lang] = Decode(raw, t.cm)
	return s.ID
}

// Lookup returns the global id of a module local string.
func (t *Table) Lookup(grfid uint32, id uint32) (uint32, bool) {
	if s, ok := t.byKey[key{grfid, id}]; ok {
		return s.ID, true
	}
	return Undefined, false
}

func (t *Table) Get(id uint32) *String {
	if id < FirstID || int(id-FirstID) >= len(t.strings) {
		return nil
	}
	return t.strings[id-FirstID]
}

// Text returns the default translation of a global id.
func (t *Table) Text(id uint32) string {
	if s := t.Get(id); s != nil {
		return s.Default()
	}
	return ""
}

func (t *Table) Len() int { return len(t.strings) }

func (t *Table) Strings() []*String { return t.strings }

// Remove drops every translation of a module, keeping the global ids of
// other modules stable.
func (t *Table) Remove(grfid uint32) {
	for k, s := range t.byKey {
		if k.grfid == grfid {
			s.Text = make(map[uint8]string)
			delete(t.byKey, k)
		}
	}
}
