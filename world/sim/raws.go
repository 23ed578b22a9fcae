package sim

import "github.com/teranos/foreman/world"

// Inorganic ids of the default catalog.
const (
	Iron int32 = iota
	Hematite
	Gold
	NativeGold
	Copper
	Tetrahedrite
	Silver
	Adamantine
	RawAdamantine
	Microcline
)

// Plant ids of the default catalog.
const (
	Oak int32 = iota
	PlumpHelmet
	PigTail
	Wheat
	QuarryBush
	ValleyHerb
)

// Creature ids of the default catalog.
const (
	Cow int32 = iota
	CaveSpider
)

// Material slots inside plants and creatures of the default catalog.
const (
	SlotStructural = 0

	SlotWood    = 0 // Oak
	SlotThread  = 1 // PigTail
	SlotFlour   = 1 // Wheat
	SlotLeaf    = 1 // QuarryBush
	SlotExtract = 1 // ValleyHerb
	SlotDrink   = 2

	SlotLeather = 0 // Cow
	SlotBone    = 1
	SlotTallow  = 2
	SlotSoap    = 3
	SlotHair    = 4
	SlotSilk    = 0 // CaveSpider
)

// Plant returns the encoded identity of a plant material slot.
func Plant(plant int32, slot int) world.MaterialRef {
	return world.MaterialRef{Type: world.PlantMatBase + int16(slot), Index: plant}
}

// Creature returns the encoded identity of a creature material slot.
func Creature(creature int32, slot int) world.MaterialRef {
	return world.MaterialRef{Type: world.CreatureMatBase + int16(slot), Index: creature}
}

// Inorganic returns the encoded identity of an inorganic material.
func Inorganic(id int32) world.MaterialRef {
	return world.MaterialRef{Type: world.MatInorganic, Index: id}
}

// Builtin returns the encoded identity of a builtin material.
func Builtin(t int16) world.MaterialRef {
	return world.MaterialRef{Type: t, Index: world.MatIndexNone}
}

func mat(id string, flags world.MaterialFlags) world.Material {
	return world.Material{ID: id, Flags: flags}
}

// DefaultRaws returns a small descriptor catalog covering the production
// chains the controller reasons about. Fixtures without a raws section use it.
func DefaultRaws() *world.Raws {
	metal := world.FlagIsMetal
	stone := world.FlagIsStone
	return &world.Raws{
		Inorganics: []world.Inorganic{
			Iron:          {ID: "IRON", Material: mat("IRON", metal)},
			Hematite:      {ID: "HEMATITE", Material: mat("HEMATITE", stone), MetalOre: []int32{Iron}},
			Gold:          {ID: "GOLD", Material: mat("GOLD", metal)},
			NativeGold:    {ID: "NATIVE_GOLD", Material: mat("NATIVE_GOLD", stone), MetalOre: []int32{Gold}},
			Copper:        {ID: "COPPER", Material: mat("COPPER", metal)},
			Tetrahedrite:  {ID: "TETRAHEDRITE", Material: mat("TETRAHEDRITE", stone), MetalOre: []int32{Copper, Silver}},
			Silver:        {ID: "SILVER", Material: mat("SILVER", metal)},
			Adamantine:    {ID: "ADAMANTINE", Material: mat("ADAMANTINE", metal)},
			RawAdamantine: {ID: "RAW_ADAMANTINE", Material: mat("RAW_ADAMANTINE", stone), ThreadMetal: []int32{Adamantine}},
			Microcline:    {ID: "MICROCLINE", Material: mat("MICROCLINE", stone)},
		},
		Plants: []world.Plant{
			Oak: {ID: "OAK", Materials: []world.Material{mat("WOOD", world.FlagWood)}},
			PlumpHelmet: {ID: "MUSHROOM_HELMET_PLUMP", Materials: []world.Material{
				mat("STRUCTURAL", world.FlagStructuralPlantMat), mat("UNUSED", 0), mat("DRINK", 0),
			}},
			PigTail: {ID: "GRASS_TAIL_PIG", Materials: []world.Material{
				mat("STRUCTURAL", world.FlagStructuralPlantMat), mat("THREAD", world.FlagThreadPlant), mat("DRINK", 0),
			}, Products: map[world.PlantProcess]world.MaterialRef{
				world.ProcessThread: Plant(PigTail, SlotThread),
			}},
			Wheat: {ID: "WHEAT", Materials: []world.Material{
				mat("STRUCTURAL", world.FlagStructuralPlantMat), mat("FLOUR", 0), mat("DRINK", 0),
			}, Products: map[world.PlantProcess]world.MaterialRef{
				world.ProcessMill: Plant(Wheat, SlotFlour),
			}},
			QuarryBush: {ID: "BUSH_QUARRY", Materials: []world.Material{
				mat("STRUCTURAL", world.FlagStructuralPlantMat), mat("LEAF", 0),
			}, Products: map[world.PlantProcess]world.MaterialRef{
				world.ProcessLeaves: Plant(QuarryBush, SlotLeaf),
			}},
			ValleyHerb: {ID: "HERB_VALLEY", Materials: []world.Material{
				mat("STRUCTURAL", world.FlagStructuralPlantMat), mat("EXTRACT", 0),
			}, Products: map[world.PlantProcess]world.MaterialRef{
				world.ProcessExtractStillVial: Plant(ValleyHerb, SlotExtract),
			}},
		},
		Creatures: []world.Creature{
			Cow: {ID: "COW", Materials: []world.Material{
				mat("LEATHER", world.FlagLeather),
				mat("BONE", world.FlagBone),
				{ID: "TALLOW", ReactionProducts: []world.MaterialProduct{
					{ID: "SOAP_MAT", Material: Creature(Cow, SlotSoap)},
				}},
				mat("SOAP", world.FlagSoap),
				mat("HAIR", world.FlagYarn),
			}},
			CaveSpider: {ID: "SPIDER_CAVE_GIANT", Materials: []world.Material{
				mat("SILK", world.FlagSilk),
			}},
		},
		ItemDefs: map[world.ItemType][]world.ItemDef{
			world.ItemFood: {
				{ID: "ITEM_FOOD_BISCUITS", Name: "biscuits", Level: 2},
				{ID: "ITEM_FOOD_STEW", Name: "stew", Level: 3},
				{ID: "ITEM_FOOD_ROAST", Name: "roast", Level: 4},
			},
			world.ItemWeapon: {
				{ID: "ITEM_WEAPON_AXE_BATTLE", Name: "battle axe"},
				{ID: "ITEM_WEAPON_PICK", Name: "pick"},
			},
			world.ItemAmmo: {
				{ID: "ITEM_AMMO_BOLTS", Name: "bolts"},
				{ID: "ITEM_AMMO_ARROWS", Name: "arrows"},
			},
		},
		Reactions: []world.Reaction{
			{
				Code: "MAKE_SOAP_FROM_TALLOW",
				Name: "make soap",
				Reagents: []world.Reagent{
					{Code: "lye", Kind: world.ReagentItem, ItemType: world.ItemLiquidMisc, ItemSubtype: -1, Material: Builtin(world.MatLye)},
					{Code: "tallow", Kind: world.ReagentItem, ItemType: world.ItemGlob, ItemSubtype: -1, Material: world.NoMaterial},
				},
				Products: []world.Product{
					{Kind: world.ProductItem, ItemType: world.ItemBar, ItemSubtype: -1,
						Source: world.MaterialDerived, ReagentCode: "tallow", ProductCode: "SOAP_MAT"},
				},
			},
			{
				Code: "RENDER_FAT",
				Name: "render fat",
				Reagents: []world.Reagent{
					{Code: "fat", Kind: world.ReagentItem, ItemType: world.ItemGlob, ItemSubtype: -1, Material: world.NoMaterial},
				},
				Products: []world.Product{
					{Kind: world.ProductItem, ItemType: world.ItemGlob, ItemSubtype: -1,
						Source: world.MaterialSame, ReagentCode: "fat"},
					{Kind: world.ProductImprovement},
				},
			},
		},
	}
}
