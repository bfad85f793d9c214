// Package dna decodes token DNA into gene slots and trait names.
//
// A token's DNA is a packed unsigned integer. Each gene occupies one byte at
// a fixed slot position; slot n is read as (dna >> 8n) & 0xFF. Slots 7..12
// carry static traits resolved through per-category tables, slots 0..6 carry
// the default dynamic item ids that equipped items may later override.
package dna

import (
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/holiman/uint256"
)

// ErrInvalidDNA is returned by ParseDNA for input that is not a number.
var ErrInvalidDNA = errors.New("invalid dna")

// TokenDNA is the packed trait integer of a token.
type TokenDNA = *uint256.Int

// Gene is one 8-bit field of a DNA value.
type Gene uint8

// Slot is the byte position of a gene inside the DNA.
type Slot uint8

const (
	SlotDynamicHead       Slot = 0
	SlotMisc              Slot = 1
	SlotEyewear           Slot = 2
	SlotFaceArmor         Slot = 3
	SlotArmor             Slot = 4
	SlotWeapon            Slot = 5
	SlotDynamicBackground Slot = 6
	SlotOutfit            Slot = 7
	SlotMouth             Slot = 8
	SlotEyes              Slot = 9
	SlotHead              Slot = 10
	SlotSkin              Slot = 11
	SlotBackground        Slot = 12

	// SlotCount is the number of gene slots in use.
	SlotCount = 13
)

// Trait categories that resolve through a name table.
type Category string

const (
	CategoryBackground Category = "background"
	CategorySkin       Category = "skin"
	CategoryHead       Category = "head"
	CategoryEyes       Category = "eyes"
	CategoryMouth      Category = "mouth"
	CategoryOutfit     Category = "outfit"
)

// StaticCategories lists the named categories in slot order, highest first.
var StaticCategories = []Category{
	CategoryBackground,
	CategorySkin,
	CategoryHead,
	CategoryEyes,
	CategoryMouth,
	CategoryOutfit,
}

var categorySlots = map[Category]Slot{
	CategoryBackground: SlotBackground,
	CategorySkin:       SlotSkin,
	CategoryHead:       SlotHead,
	CategoryEyes:       SlotEyes,
	CategoryMouth:      SlotMouth,
	CategoryOutfit:     SlotOutfit,
}

var categoryTables = map[Category]TraitTable{
	CategoryBackground: backgroundTraits,
	CategorySkin:       skinTraits,
	CategoryHead:       headTraits,
	CategoryEyes:       eyesTraits,
	CategoryMouth:      mouthTraits,
	CategoryOutfit:     outfitTraits,
}

// SlotOf returns the DNA slot backing a named category.
func SlotOf(c Category) (Slot, bool) {
	s, ok := categorySlots[c]
	return s, ok
}

// TraitTable maps gene values to trait names by index.
type TraitTable []string

// Name returns the trait name for g, or "" when g is past the end of the
// table. Unknown genes are expected for traits added after this build.
func (t TraitTable) Name(g Gene) string {
	if int(g) >= len(t) {
		return ""
	}
	return t[g]
}

// Index returns the gene value of a trait name.
func (t TraitTable) Index(name string) (Gene, bool) {
	for i, n := range t {
		if n == name {
			return Gene(i), true
		}
	}
	return 0, false
}

// Table returns the name table of a category. Unknown categories return nil.
func Table(c Category) TraitTable {
	return categoryTables[c]
}

// Trait is a decoded static trait.
type Trait struct {
	Gene Gene   `json:"gene"`
	Name string `json:"name"`
}

// Dynamic holds the raw item ids of the override slots. Zero means no item.
type Dynamic struct {
	Head       uint8 `json:"head"`
	Misc       uint8 `json:"misc"`
	Eyewear    uint8 `json:"eyewear"`
	FaceArmor  uint8 `json:"faceArmor"`
	Armor      uint8 `json:"armor"`
	Weapon     uint8 `json:"weapon"`
	Background uint8 `json:"background"`
}

// TraitRecord is the decoded form of a DNA value.
type TraitRecord struct {
	Background Trait   `json:"background"`
	Skin       Trait   `json:"skin"`
	Head       Trait   `json:"head"`
	Eyes       Trait   `json:"eyes"`
	Mouth      Trait   `json:"mouth"`
	Outfit     Trait   `json:"outfit"`
	Dynamic    Dynamic `json:"dynamic"`
}

// Trait returns the static trait of a category.
func (r TraitRecord) Trait(c Category) (Trait, bool) {
	switch c {
	case CategoryBackground:
		return r.Background, true
	case CategorySkin:
		return r.Skin, true
	case CategoryHead:
		return r.Head, true
	case CategoryEyes:
		return r.Eyes, true
	case CategoryMouth:
		return r.Mouth, true
	case CategoryOutfit:
		return r.Outfit, true
	}
	return Trait{}, false
}

// GeneAt extracts the gene at slot s. A nil dna reads as zero.
func GeneAt(dna TokenDNA, s Slot) Gene {
	if dna == nil {
		return 0
	}
	var v uint256.Int
	v.Rsh(dna, uint(s)*8)
	return Gene(v.Uint64() & 0xFF)
}

// Decode unpacks every slot of dna. It never fails; bits above the highest
// slot are ignored.
func Decode(dna TokenDNA) TraitRecord {
	named := func(c Category) Trait {
		g := GeneAt(dna, categorySlots[c])
		return Trait{Gene: g, Name: categoryTables[c].Name(g)}
	}
	raw := func(s Slot) uint8 { return uint8(GeneAt(dna, s)) }
	return TraitRecord{
		Background: named(CategoryBackground),
		Skin:       named(CategorySkin),
		Head:       named(CategoryHead),
		Eyes:       named(CategoryEyes),
		Mouth:      named(CategoryMouth),
		Outfit:     named(CategoryOutfit),
		Dynamic: Dynamic{
			Head:       raw(SlotDynamicHead),
			Misc:       raw(SlotMisc),
			Eyewear:    raw(SlotEyewear),
			FaceArmor:  raw(SlotFaceArmor),
			Armor:      raw(SlotArmor),
			Weapon:     raw(SlotWeapon),
			Background: raw(SlotDynamicBackground),
		},
	}
}

// Encode packs genes into a DNA value. Slots not present are zero.
func Encode(genes map[Slot]Gene) TokenDNA {
	out := new(uint256.Int)
	for s, g := range genes {
		var v uint256.Int
		v.SetUint64(uint64(g))
		v.Lsh(&v, uint(s)*8)
		out.Or(out, &v)
	}
	return out
}

// ParseDNA parses a base-10 or 0x-prefixed hexadecimal DNA string. Values
// wider than 256 bits keep their low 256 bits.
func ParseDNA(s string) (TokenDNA, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("%w: empty", ErrInvalidDNA)
	}
	base := 10
	digits := s
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		base = 16
		digits = s[2:]
	}
	if digits == "" || strings.ContainsAny(digits, "+-_") {
		return nil, fmt.Errorf("%w: %q", ErrInvalidDNA, s)
	}
	b, ok := new(big.Int).SetString(digits, base)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidDNA, s)
	}
	// FromBig truncates to the low 256 bits on overflow.
	v, _ := uint256.FromBig(b)
	return v, nil
}
