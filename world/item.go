package world

import "strings"

// ItemFlags is the status bitmask of an item.
type ItemFlags uint32

const (
	ItemDump ItemFlags = 1 << iota
	ItemForbid
	ItemGarbageCollect
	ItemHostile
	ItemOnFire
	ItemRotten
	ItemTrader
	ItemInBuilding
	ItemConstruction
	ItemArtifact
	ItemOwned
	ItemInChest
	ItemInJob
	ItemMelt
	ItemHidden
)

var itemFlagNames = []struct {
	flag ItemFlags
	name string
}{
	{ItemDump, "dump"}, {ItemForbid, "forbid"}, {ItemGarbageCollect, "garbage_collect"},
	{ItemHostile, "hostile"}, {ItemOnFire, "on_fire"}, {ItemRotten, "rotten"},
	{ItemTrader, "trader"}, {ItemInBuilding, "in_building"}, {ItemConstruction, "construction"},
	{ItemArtifact, "artifact"}, {ItemOwned, "owned"}, {ItemInChest, "in_chest"},
	{ItemInJob, "in_job"}, {ItemMelt, "melt"}, {ItemHidden, "hidden"},
}

// ParseItemFlags parses lower-case flag names as used in fixtures.
func ParseItemFlags(names []string) (ItemFlags, bool) {
	var flags ItemFlags
	for _, name := range names {
		found := false
		for _, f := range itemFlagNames {
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
func (f ItemFlags) Names() []string {
	var names []string
	for _, n := range itemFlagNames {
		if f&n.flag != 0 {
			names = append(names, n.name)
		}
	}
	return names
}

// RefKind discriminates item reference variants.
type RefKind int

const (
	RefContainsItem RefKind = iota
	RefContainsUnit
	RefUnitHolder
	RefContainedInItem
	RefBuildingHolder
)

var refKindNames = []string{"contains_item", "contains_unit", "unit_holder", "contained_in_item", "building_holder"}

func (k RefKind) String() string {
	if int(k) < len(refKindNames) {
		return refKindNames[k]
	}
	return "unknown"
}

// ParseRefKind resolves a reference kind name.
func ParseRefKind(name string) (RefKind, bool) {
	for i, n := range refKindNames {
		if strings.EqualFold(n, name) {
			return RefKind(i), true
		}
	}
	return 0, false
}

// ItemRef links an item to another item, a unit or a building.
// ItemID is set for item kinds, UnitID for unit kinds, BuildingID for RefBuildingHolder.
type ItemRef struct {
	Kind       RefKind
	ItemID     int
	UnitID     int
	BuildingID int
}

// JobRefKind discriminates specific job references on an item.
type JobRefKind int

// JobRefJob is the reference kind an item carries while a job claims it.
const JobRefJob JobRefKind = 2

// JobRef is a specific reference from an item to a job.
type JobRef struct {
	Kind  JobRefKind
	JobID int
}

// Item is a free-standing good owned by the host.
type Item struct {
	ID          int
	Type        ItemType
	Subtype     int16
	Material    MaterialRef
	Stack       int
	Dimension   int // total dimension, THREAD and CLOTH only
	Flags       ItemFlags
	Refs        []ItemRef
	JobRefs     []JobRef
	StockpileID int // 0 when not assigned to a stockpile
}

// Has reports whether every flag in f is set.
func (i *Item) Has(f ItemFlags) bool {
	return i.Flags&f == f
}

// StackSize returns the stack size, at least 1.
func (i *Item) StackSize() int {
	if i.Stack < 1 {
		return 1
	}
	return i.Stack
}

// AssignedToStockpile reports whether the item is claimed by a stockpile.
func (i *Item) AssignedToStockpile() bool {
	return i.StockpileID > 0
}
