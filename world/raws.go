package world

import "strings"

// Material is one material definition.
type Material struct {
	ID               string
	Name             string
	Flags            MaterialFlags
	ReactionProducts []MaterialProduct
}

// MaterialProduct is a named material reaction product (e.g. SOAP_MAT).
type MaterialProduct struct {
	ID       string
	Material MaterialRef
}

// ItemDef is an item definition addressed by subtype.
type ItemDef struct {
	ID    string
	Name  string
	Level int16 // nutrition tier, FOOD only
}

// Inorganic is an inorganic material with its smelting yields.
type Inorganic struct {
	ID          string
	Material    Material
	MetalOre    []int32 // inorganic ids of metals smelted from this ore
	ThreadMetal []int32 // inorganic ids of metals extracted as strands
}

// PlantProcess names a plant processing operation with a declared byproduct.
type PlantProcess int

const (
	ProcessMill PlantProcess = iota
	ProcessThread
	ProcessLeaves
	ProcessExtractBarrel
	ProcessExtractVial
	ProcessExtractStillVial
)

var plantProcessNames = []string{"MILL", "THREAD", "LEAVES", "EXTRACT_BARREL", "EXTRACT_VIAL", "EXTRACT_STILL_VIAL"}

func (p PlantProcess) String() string {
	if int(p) < len(plantProcessNames) {
		return plantProcessNames[p]
	}
	return "UNKNOWN"
}

// ParsePlantProcess resolves a raw flag name such as MILL.
func ParsePlantProcess(name string) (PlantProcess, bool) {
	for i, n := range plantProcessNames {
		if strings.EqualFold(n, name) {
			return PlantProcess(i), true
		}
	}
	return 0, false
}

// Plant is a plant definition. Products holds the byproduct material of each
// operation the plant declares; an absent key means the flag is unset.
type Plant struct {
	ID        string
	Materials []Material
	Products  map[PlantProcess]MaterialRef
}

// Creature is a creature definition with its tissue materials.
type Creature struct {
	ID        string
	Materials []Material
}

// ReagentKind discriminates reagent variants.
type ReagentKind int

const (
	ReagentItem ReagentKind = iota
	ReagentOther
)

// Reagent is a reaction input. Item fields apply to ReagentItem only.
type Reagent struct {
	Code        string
	Kind        ReagentKind
	ItemType    ItemType
	ItemSubtype int16
	Material    MaterialRef
}

// ProductKind discriminates reaction product variants.
type ProductKind int

const (
	ProductItem ProductKind = iota
	ProductImprovement
)

// MaterialSource says where a product's material comes from.
type MaterialSource int

const (
	MaterialDeclared MaterialSource = iota // Product.Material as written
	MaterialSame                           // same as the named reagent
	MaterialDerived                        // named reaction product of the reagent's material
)

// Product is a reaction output. Only ProductItem products yield goods.
type Product struct {
	Kind        ProductKind
	ItemType    ItemType
	ItemSubtype int16
	Material    MaterialRef
	Source      MaterialSource
	ReagentCode string // reagent whose material is used, MaterialSame/MaterialDerived
	ProductCode string // material reaction product, MaterialDerived
}

// Reaction is a custom reaction definition.
type Reaction struct {
	Code     string
	Name     string
	Reagents []Reagent
	Products []Product
}

// ReagentIndex returns the position of the reagent with the given code, or -1.
func (r *Reaction) ReagentIndex(code string) int {
	for i := range r.Reagents {
		if r.Reagents[i].Code == code {
			return i
		}
	}
	return -1
}

// Raws is the descriptor catalog of a world.
type Raws struct {
	Builtins   []Material // indexed by builtin type; defaults used when empty
	Inorganics []Inorganic
	Plants     []Plant
	Creatures  []Creature
	ItemDefs   map[ItemType][]ItemDef
	Reactions  []Reaction
}

var defaultBuiltins = func() []Material {
	mats := make([]Material, BuiltinMatCount)
	for i, tok := range builtinTokens {
		mats[i] = Material{ID: tok, Name: strings.ToLower(strings.ReplaceAll(tok, "_", " "))}
	}
	return mats
}()

// Builtin returns the builtin material of the given type.
func (r *Raws) Builtin(t int16) *Material {
	if t < 0 || int(t) >= BuiltinMatCount {
		return nil
	}
	if len(r.Builtins) == BuiltinMatCount {
		return &r.Builtins[t]
	}
	return &defaultBuiltins[t]
}

// ItemDef returns the definition for (type, subtype), or nil.
func (r *Raws) ItemDef(t ItemType, subtype int16) *ItemDef {
	defs := r.ItemDefs[t]
	if subtype < 0 || int(subtype) >= len(defs) {
		return nil
	}
	return &defs[subtype]
}

// FindReaction returns the reaction with the given code, or nil.
func (r *Raws) FindReaction(code string) *Reaction {
	for i := range r.Reactions {
		if r.Reactions[i].Code == code {
			return &r.Reactions[i]
		}
	}
	return nil
}
