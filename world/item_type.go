package world

import (
	"strings"
)

// ItemType is the host's item category enum.
type ItemType int16

const (
	ItemNone ItemType = iota - 1
	ItemBar
	ItemSmallGem
	ItemBlocks
	ItemRough
	ItemBoulder
	ItemWood
	ItemDoor
	ItemBed
	ItemChair
	ItemChain
	ItemFlask
	ItemGoblet
	ItemInstrument
	ItemToy
	ItemCage
	ItemBarrel
	ItemBucket
	ItemTable
	ItemWeapon
	ItemArmor
	ItemShoes
	ItemShield
	ItemHelm
	ItemGloves
	ItemBox
	ItemBin
	ItemAmmo
	ItemMeat
	ItemFish
	ItemSeeds
	ItemPlant
	ItemSkinTanned
	ItemLeaves
	ItemThread
	ItemCloth
	ItemPants
	ItemBackpack
	ItemQuiver
	ItemSiegeAmmo
	ItemTrapComp
	ItemDrink
	ItemPowderMisc
	ItemCheese
	ItemFood
	ItemLiquidMisc
	ItemCoin
	ItemGlob
	ItemTool
	ItemSlab
	ItemEgg
	itemTypeCount
)

var itemTypeTokens = [...]string{
	"BAR", "SMALLGEM", "BLOCKS", "ROUGH", "BOULDER", "WOOD", "DOOR", "BED", "CHAIR", "CHAIN",
	"FLASK", "GOBLET", "INSTRUMENT", "TOY", "CAGE", "BARREL", "BUCKET", "TABLE", "WEAPON",
	"ARMOR", "SHOES", "SHIELD", "HELM", "GLOVES", "BOX", "BIN", "AMMO", "MEAT", "FISH", "SEEDS",
	"PLANT", "SKIN_TANNED", "LEAVES", "THREAD", "CLOTH", "PANTS", "BACKPACK", "QUIVER",
	"SIEGEAMMO", "TRAPCOMP", "DRINK", "POWDER_MISC", "CHEESE", "FOOD", "LIQUID_MISC", "COIN",
	"GLOB", "TOOL", "SLAB", "EGG",
}

// Item types whose subtype refers to an item definition in the raws.
var itemTypeHasSubtypes = map[ItemType]bool{
	ItemInstrument: true, ItemToy: true, ItemWeapon: true, ItemArmor: true, ItemShoes: true,
	ItemShield: true, ItemHelm: true, ItemGloves: true, ItemAmmo: true, ItemPants: true,
	ItemSiegeAmmo: true, ItemTrapComp: true, ItemFood: true, ItemTool: true,
}

// String returns the item type token, or "NONE".
func (t ItemType) String() string {
	if t < 0 || t >= itemTypeCount {
		return "NONE"
	}
	return itemTypeTokens[t]
}

// HasSubtypes reports whether items of this type carry an item definition subtype.
func (t ItemType) HasSubtypes() bool {
	return itemTypeHasSubtypes[t]
}

// ParseItemType resolves an item type token (case-insensitive).
func ParseItemType(token string) (ItemType, bool) {
	token = strings.ToUpper(strings.TrimSpace(token))
	for i, tok := range itemTypeTokens {
		if tok == token {
			return ItemType(i), true
		}
	}
	return ItemNone, false
}

// ItemTypeInfo is a resolved (type, subtype) pair.
type ItemTypeInfo struct {
	Type    ItemType
	Subtype int16
	Def     *ItemDef // nil when Subtype is -1
}

// NewItemTypeInfo decodes a (type, subtype) pair against the raws.
func NewItemTypeInfo(raws *Raws, t ItemType, subtype int16) ItemTypeInfo {
	info := ItemTypeInfo{Type: t, Subtype: subtype}
	if subtype >= 0 && raws != nil {
		info.Def = raws.ItemDef(t, subtype)
	}
	return info
}

// FindItemType parses "TYPE" or "TYPE:SUBTYPE_ID".
func FindItemType(raws *Raws, token string) (ItemTypeInfo, bool) {
	typeTok, subTok, hasSub := strings.Cut(token, ":")
	t, ok := ParseItemType(typeTok)
	if !ok {
		return ItemTypeInfo{Type: ItemNone, Subtype: -1}, false
	}
	info := ItemTypeInfo{Type: t, Subtype: -1}
	if !hasSub {
		return info, true
	}
	if raws == nil || !t.HasSubtypes() {
		return info, false
	}
	for i, def := range raws.ItemDefs[t] {
		if strings.EqualFold(def.ID, subTok) {
			info.Subtype = int16(i)
			info.Def = &raws.ItemDefs[t][i]
			return info, true
		}
	}
	return info, false
}

// IsValid reports whether the type is set and any subtype resolved to a definition.
func (i ItemTypeInfo) IsValid() bool {
	return i.Type != ItemNone && (i.Subtype == -1 || i.Def != nil)
}

// Equal compares type and subtype.
func (i ItemTypeInfo) Equal(other ItemTypeInfo) bool {
	return i.Type == other.Type && i.Subtype == other.Subtype
}

// Token renders the pair the way FindItemType accepts it.
func (i ItemTypeInfo) Token() string {
	if i.Def != nil {
		return i.Type.String() + ":" + i.Def.ID
	}
	return i.Type.String()
}

// Name returns a human-readable item name, falling back to the token.
func (i ItemTypeInfo) Name() string {
	if i.Def != nil && i.Def.Name != "" {
		return i.Def.Name
	}
	return strings.ToLower(strings.ReplaceAll(i.Type.String(), "_", " "))
}
