package world

import (
	"strings"
)

// MaterialCategory is the job material category bitmask.
type MaterialCategory uint32

const (
	CatPlant MaterialCategory = 1 << iota
	CatWood
	CatCloth
	CatSilk
	CatLeather
	CatBone
	CatShell
	CatWood2
	CatSoap
	CatTooth
	CatHorn
	CatPearl
	CatYarn
	CatMetal
	CatStone
)

var categoryNames = []struct {
	bit  MaterialCategory
	name string
}{
	{CatPlant, "plant"}, {CatWood, "wood"}, {CatCloth, "cloth"}, {CatSilk, "silk"},
	{CatLeather, "leather"}, {CatBone, "bone"}, {CatShell, "shell"}, {CatWood2, "wood2"},
	{CatSoap, "soap"}, {CatTooth, "tooth"}, {CatHorn, "horn"}, {CatPearl, "pearl"},
	{CatYarn, "yarn"}, {CatMetal, "metal"}, {CatStone, "stone"},
}

// MaterialFlags are the raw flags on a material definition.
type MaterialFlags uint32

const (
	FlagStructuralPlantMat MaterialFlags = 1 << iota
	FlagWood
	FlagThreadPlant
	FlagSilk
	FlagLeather
	FlagBone
	FlagShell
	FlagSoap
	FlagTooth
	FlagHorn
	FlagPearl
	FlagYarn
	FlagIsMetal
	FlagIsStone
)

var materialFlagNames = []struct {
	flag MaterialFlags
	name string
}{
	{FlagStructuralPlantMat, "STRUCTURAL_PLANT_MAT"}, {FlagWood, "WOOD"},
	{FlagThreadPlant, "THREAD_PLANT"}, {FlagSilk, "SILK"}, {FlagLeather, "LEATHER"},
	{FlagBone, "BONE"}, {FlagShell, "SHELL"}, {FlagSoap, "SOAP"}, {FlagTooth, "TOOTH"},
	{FlagHorn, "HORN"}, {FlagPearl, "PEARL"}, {FlagYarn, "YARN"}, {FlagIsMetal, "IS_METAL"},
	{FlagIsStone, "IS_STONE"},
}

// Category bit -> material flag it selects. wood and wood2 both select WOOD.
var categoryFlagRules = []struct {
	category MaterialCategory
	flag     MaterialFlags
}{
	{CatPlant, FlagStructuralPlantMat}, {CatWood, FlagWood}, {CatCloth, FlagThreadPlant},
	{CatSilk, FlagSilk}, {CatLeather, FlagLeather}, {CatBone, FlagBone}, {CatShell, FlagShell},
	{CatWood2, FlagWood}, {CatSoap, FlagSoap}, {CatTooth, FlagTooth}, {CatHorn, FlagHorn},
	{CatPearl, FlagPearl}, {CatYarn, FlagYarn}, {CatMetal, FlagIsMetal}, {CatStone, FlagIsStone},
}

// ParseMaterialCategory parses a comma-separated, case-insensitive list of
// category names ("WOOD,BONE"). Unknown names fail the whole parse.
func ParseMaterialCategory(s string) (MaterialCategory, bool) {
	var mask MaterialCategory
	for _, part := range strings.Split(strings.ToLower(s), ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		found := false
		for _, c := range categoryNames {
			if c.name == part {
				mask |= c.bit
				found = true
				break
			}
		}
		if !found {
			return 0, false
		}
	}
	return mask, true
}

// String lists the set bits, comma-separated.
func (c MaterialCategory) String() string {
	var names []string
	for _, n := range categoryNames {
		if c&n.bit != 0 {
			names = append(names, n.name)
		}
	}
	return strings.Join(names, ",")
}

// ParseMaterialFlags parses raw flag names as used in fixtures.
func ParseMaterialFlags(names []string) (MaterialFlags, bool) {
	var flags MaterialFlags
	for _, name := range names {
		found := false
		for _, f := range materialFlagNames {
			if strings.EqualFold(f.name, name) {
				flags |= f.flag
				found = true
				break
			}
		}
		if !found {
			return 0, false
		}
	}
	return flags, true
}

// Names lists the set flags.
func (f MaterialFlags) Names() []string {
	var names []string
	for _, n := range materialFlagNames {
		if f&n.flag != 0 {
			names = append(names, n.name)
		}
	}
	return names
}
