// Package layers turns decoded avatar traits and equipped items into an
// ordered list of image layers, back to front.
package layers

import (
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/Ashenafi-pixel/nft-experience-server/dna"
)

type Category string

const (
	Background Category = "background"
	Weapon     Category = "weapon"
	Skin       Category = "skin"
	Armor      Category = "armor"
	Outfit     Category = "outfit"
	Eyes       Category = "eyes"
	Eyewear    Category = "eyewear"
	Mouth      Category = "mouth"
	FaceArmor  Category = "face_armor"
	Head       Category = "head"
	Misc       Category = "misc"
)

// drawOrder is the stacking order, furthest back first.
var drawOrder = []Category{
	Background,
	Weapon,
	Skin,
	Armor,
	Outfit,
	Eyes,
	Eyewear,
	Mouth,
	FaceArmor,
	Head,
	Misc,
}

var priority = func() map[Category]int {
	m := make(map[Category]int, len(drawOrder))
	for i, c := range drawOrder {
		m[c] = i
	}
	return m
}()

// DrawOrder returns a copy of the category stacking order.
func DrawOrder() []Category {
	return append([]Category(nil), drawOrder...)
}

// Priority returns the stacking position of c, or -1 for unknown categories.
func Priority(c Category) int {
	p, ok := priority[c]
	if !ok {
		return -1
	}
	return p
}

// Overridable reports whether players can equip items into c.
func Overridable(c Category) bool {
	switch c {
	case Background, Armor, Eyewear, FaceArmor, Head, Misc, Weapon:
		return true
	}
	return false
}

// Trait names that mean "draw nothing".
const (
	OutfitNone = "None"
	HeadNone   = "None"
)

// RenderMode selects the asset set.
type RenderMode string

const (
	Pixel RenderMode = "pixel"
	Flat  RenderMode = "flat"
)

// ParseRenderMode maps user input to a mode; anything unrecognised is Pixel.
func ParseRenderMode(s string) RenderMode {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "flat", "2d":
		return Flat
	}
	return Pixel
}

func (m RenderMode) namespace() string {
	if m == Flat {
		return "layers2d"
	}
	return "layers"
}

func (m RenderMode) ext() string {
	if m == Flat {
		return ".png"
	}
	return ".gif"
}

// ItemOverride equips a dynamic item into a category. ItemID 0 removes
// whatever the DNA would otherwise show there.
type ItemOverride struct {
	Category Category `json:"category"`
	ItemID   uint64   `json:"itemId"`
}

// LayerDescriptor is one image in a render plan. Named layers carry Trait,
// dynamic item layers carry ItemID.
type LayerDescriptor struct {
	Category  Category `json:"category"`
	ItemID    uint64   `json:"itemId,omitempty"`
	Trait     string   `json:"trait,omitempty"`
	ImagePath string   `json:"imagePath"`
}

// RenderPlan is the composed avatar. Layers are back to front with at most
// one layer per category.
type RenderPlan struct {
	Mode      RenderMode        `json:"mode"`
	Synthesis bool              `json:"synthesis"`
	Layers    []LayerDescriptor `json:"layers"`
}

// Categories returns the categories of the plan in draw order.
func (p RenderPlan) Categories() []Category {
	out := make([]Category, len(p.Layers))
	for i, l := range p.Layers {
		out[i] = l.Category
	}
	return out
}

// Composer builds render plans. AssetBase, when set, prefixes every image path.
type Composer struct {
	AssetBase string
}

// Compose builds a plan with the default composer.
func Compose(traits dna.TraitRecord, overrides []ItemOverride, mode RenderMode) RenderPlan {
	return Composer{}.Compose(traits, overrides, mode)
}

// Compose resolves traits and overrides into an ordered render plan.
func (c Composer) Compose(traits dna.TraitRecord, overrides []ItemOverride, mode RenderMode) RenderPlan {
	ids := dynamicIDs(traits.Dynamic, overrides)
	synthesis := ids[Misc] == SynthesisItemID
	if synthesis {
		mode = Flat
	}
	if mode != Flat {
		mode = Pixel
	}
	drawable := func(id uint64) bool {
		return id != 0 && (mode != Flat || HasFlatArtwork(id))
	}

	var candidates []LayerDescriptor
	addNamed := func(cat Category, name string) {
		if name == "" {
			return
		}
		candidates = append(candidates, LayerDescriptor{
			Category:  cat,
			Trait:     name,
			ImagePath: c.path(mode, string(cat), url.PathEscape(name)),
		})
	}
	addItem := func(cat Category, id uint64) {
		candidates = append(candidates, LayerDescriptor{
			Category:  cat,
			ItemID:    id,
			ImagePath: c.path(mode, "items", strconv.FormatUint(id, 10)),
		})
	}

	if id := ids[Background]; drawable(id) {
		addItem(Background, id)
	} else {
		addNamed(Background, traits.Background.Name)
	}
	addNamed(Skin, traits.Skin.Name)
	addNamed(Eyes, traits.Eyes.Name)
	addNamed(Mouth, traits.Mouth.Name)

	if traits.Outfit.Name != OutfitNone {
		addNamed(Outfit, traits.Outfit.Name)
		if id := ids[Armor]; drawable(id) {
			addItem(Armor, id)
		}
	}

	for _, cat := range []Category{Eyewear, Weapon, FaceArmor} {
		if id := ids[cat]; drawable(id) {
			addItem(cat, id)
		}
	}
	if id := ids[Misc]; !synthesis && drawable(id) {
		addItem(Misc, id)
	}

	if id := ids[Head]; drawable(id) {
		addItem(Head, id)
	} else if traits.Head.Name != HeadNone && ids[FaceArmor] == 0 {
		addNamed(Head, traits.Head.Name)
	}

	return RenderPlan{
		Mode:      mode,
		Synthesis: synthesis,
		Layers:    order(resolveConflicts(candidates)),
	}
}

// dynamicIDs merges DNA dynamic slots with overrides; the last override for
// a category wins.
func dynamicIDs(d dna.Dynamic, overrides []ItemOverride) map[Category]uint64 {
	ids := map[Category]uint64{
		Head:       uint64(d.Head),
		Misc:       uint64(d.Misc),
		Eyewear:    uint64(d.Eyewear),
		FaceArmor:  uint64(d.FaceArmor),
		Armor:      uint64(d.Armor),
		Weapon:     uint64(d.Weapon),
		Background: uint64(d.Background),
	}
	for _, o := range overrides {
		if !Overridable(o.Category) {
			continue
		}
		ids[o.Category] = o.ItemID
	}
	return ids
}

// resolveConflicts keeps one layer per category and drops Head whenever
// FaceArmor is present.
func resolveConflicts(in []LayerDescriptor) []LayerDescriptor {
	seen := make(map[Category]bool, len(in))
	hasFaceArmor := false
	for _, l := range in {
		if l.Category == FaceArmor {
			hasFaceArmor = true
		}
	}
	out := make([]LayerDescriptor, 0, len(in))
	for _, l := range in {
		if l.ImagePath == "" || seen[l.Category] {
			continue
		}
		if l.Category == Head && hasFaceArmor {
			continue
		}
		seen[l.Category] = true
		out = append(out, l)
	}
	return out
}

func order(ls []LayerDescriptor) []LayerDescriptor {
	sort.SliceStable(ls, func(i, j int) bool {
		return priority[ls[i].Category] < priority[ls[j].Category]
	})
	return ls
}

func (c Composer) path(mode RenderMode, dir, file string) string {
	p := mode.namespace() + "/" + dir + "/" + file + mode.ext()
	if c.AssetBase == "" {
		return p
	}
	return strings.TrimSuffix(c.AssetBase, "/") + "/" + p
}
