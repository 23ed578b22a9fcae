package sim

import (
	"strings"

	"github.com/teranos/foreman/errors"
	"github.com/teranos/foreman/world"
)

// RawsDoc is a fixture's descriptor catalog. Cross references are tokens
// resolved after every definition has been read.
type RawsDoc struct {
	Inorganics []InorganicDoc          `yaml:"inorganics,omitempty" toml:"inorganics,omitempty"`
	Plants     []PlantDoc              `yaml:"plants,omitempty" toml:"plants,omitempty"`
	Creatures  []CreatureDoc           `yaml:"creatures,omitempty" toml:"creatures,omitempty"`
	ItemDefs   map[string][]ItemDefDoc `yaml:"item_defs,omitempty" toml:"item_defs,omitempty"`
	Reactions  []ReactionDoc           `yaml:"reactions,omitempty" toml:"reactions,omitempty"`
}

type MaterialDoc struct {
	ID       string            `yaml:"id" toml:"id"`
	Name     string            `yaml:"name,omitempty" toml:"name,omitempty"`
	Flags    []string          `yaml:"flags,omitempty" toml:"flags,omitempty"`
	Products map[string]string `yaml:"products,omitempty" toml:"products,omitempty"`
}

type InorganicDoc struct {
	MaterialDoc `yaml:",inline"`
	MetalOre    []string `yaml:"metal_ore,omitempty" toml:"metal_ore,omitempty"`
	ThreadMetal []string `yaml:"thread_metal,omitempty" toml:"thread_metal,omitempty"`
}

type PlantDoc struct {
	ID        string            `yaml:"id" toml:"id"`
	Materials []MaterialDoc     `yaml:"materials" toml:"materials"`
	Products  map[string]string `yaml:"products,omitempty" toml:"products,omitempty"`
}

type CreatureDoc struct {
	ID        string        `yaml:"id" toml:"id"`
	Materials []MaterialDoc `yaml:"materials" toml:"materials"`
}

type ItemDefDoc struct {
	ID    string `yaml:"id" toml:"id"`
	Name  string `yaml:"name,omitempty" toml:"name,omitempty"`
	Level int16  `yaml:"level,omitempty" toml:"level,omitempty"`
}

type ReactionDoc struct {
	Code     string       `yaml:"code" toml:"code"`
	Name     string       `yaml:"name,omitempty" toml:"name,omitempty"`
	Reagents []ReagentDoc `yaml:"reagents,omitempty" toml:"reagents,omitempty"`
	Products []ProductDoc `yaml:"products,omitempty" toml:"products,omitempty"`
}

type ReagentDoc struct {
	Code     string `yaml:"code" toml:"code"`
	Kind     string `yaml:"kind,omitempty" toml:"kind,omitempty"` // item (default) or other
	Type     string `yaml:"type,omitempty" toml:"type,omitempty"`
	Subtype  string `yaml:"subtype,omitempty" toml:"subtype,omitempty"`
	Material string `yaml:"material,omitempty" toml:"material,omitempty"`
}

// ProductDoc takes its material from Material, from the reagent named by Same,
// or from product Product of the reagent named by Derived.
type ProductDoc struct {
	Kind     string `yaml:"kind,omitempty" toml:"kind,omitempty"` // item (default) or improvement
	Type     string `yaml:"type,omitempty" toml:"type,omitempty"`
	Subtype  string `yaml:"subtype,omitempty" toml:"subtype,omitempty"`
	Material string `yaml:"material,omitempty" toml:"material,omitempty"`
	Same     string `yaml:"same,omitempty" toml:"same,omitempty"`
	Derived  string `yaml:"derived,omitempty" toml:"derived,omitempty"`
	Product  string `yaml:"product,omitempty" toml:"product,omitempty"`
}

func (md MaterialDoc) build() (world.Material, error) {
	flags, ok := world.ParseMaterialFlags(md.Flags)
	if !ok {
		return world.Material{}, errors.NewLookupError("unknown material flag in %v", md.Flags)
	}
	name := md.Name
	if name == "" {
		name = strings.ToLower(md.ID)
	}
	return world.Material{ID: strings.ToUpper(md.ID), Name: name, Flags: flags}, nil
}

func buildMaterials(docs []MaterialDoc) ([]world.Material, error) {
	if len(docs) > world.CreatureMatSlots {
		return nil, errors.NewValidationError("too many materials: %d", len(docs))
	}
	mats := make([]world.Material, 0, len(docs))
	for _, md := range docs {
		m, err := md.build()
		if err != nil {
			return nil, errors.Wrapf(err, "material %s", md.ID)
		}
		mats = append(mats, m)
	}
	return mats, nil
}

// resolveProducts attaches the material reaction products of one material list.
func resolveProducts(raws *world.Raws, mats []world.Material, docs []MaterialDoc) error {
	for i, md := range docs {
		for code, token := range md.Products {
			ref, err := parseMaterial(raws, token)
			if err != nil {
				return errors.Wrapf(err, "material %s product %s", md.ID, code)
			}
			mats[i].ReactionProducts = append(mats[i].ReactionProducts, world.MaterialProduct{ID: strings.ToUpper(code), Material: ref})
		}
	}
	return nil
}

func findInorganicIndex(raws *world.Raws, id string) (int32, bool) {
	for i := range raws.Inorganics {
		if strings.EqualFold(raws.Inorganics[i].ID, id) {
			return int32(i), true
		}
	}
	return -1, false
}

func (rd *RawsDoc) build() (*world.Raws, error) {
	raws := &world.Raws{ItemDefs: make(map[world.ItemType][]world.ItemDef)}

	for _, d := range rd.Inorganics {
		m, err := d.MaterialDoc.build()
		if err != nil {
			return nil, errors.Wrapf(err, "inorganic %s", d.ID)
		}
		raws.Inorganics = append(raws.Inorganics, world.Inorganic{ID: m.ID, Material: m})
	}
	for _, d := range rd.Plants {
		mats, err := buildMaterials(d.Materials)
		if err != nil {
			return nil, errors.Wrapf(err, "plant %s", d.ID)
		}
		raws.Plants = append(raws.Plants, world.Plant{ID: strings.ToUpper(d.ID), Materials: mats})
	}
	for _, d := range rd.Creatures {
		mats, err := buildMaterials(d.Materials)
		if err != nil {
			return nil, errors.Wrapf(err, "creature %s", d.ID)
		}
		raws.Creatures = append(raws.Creatures, world.Creature{ID: strings.ToUpper(d.ID), Materials: mats})
	}
	for token, defs := range rd.ItemDefs {
		t, err := parseItemType(token)
		if err != nil {
			return nil, err
		}
		for _, d := range defs {
			raws.ItemDefs[t] = append(raws.ItemDefs[t], world.ItemDef{ID: strings.ToUpper(d.ID), Name: d.Name, Level: d.Level})
		}
	}

	// Second pass: everything below refers to definitions by token.
	for i, d := range rd.Inorganics {
		inorg := &raws.Inorganics[i]
		mats := []world.Material{inorg.Material}
		if err := resolveProducts(raws, mats, []MaterialDoc{d.MaterialDoc}); err != nil {
			return nil, err
		}
		inorg.Material = mats[0]
		for _, id := range d.MetalOre {
			idx, ok := findInorganicIndex(raws, id)
			if !ok {
				return nil, errors.NewLookupError("inorganic %s: unknown ore metal %s", d.ID, id)
			}
			inorg.MetalOre = append(inorg.MetalOre, idx)
		}
		for _, id := range d.ThreadMetal {
			idx, ok := findInorganicIndex(raws, id)
			if !ok {
				return nil, errors.NewLookupError("inorganic %s: unknown thread metal %s", d.ID, id)
			}
			inorg.ThreadMetal = append(inorg.ThreadMetal, idx)
		}
	}
	for i, d := range rd.Plants {
		plant := &raws.Plants[i]
		if err := resolveProducts(raws, plant.Materials, d.Materials); err != nil {
			return nil, err
		}
		for name, token := range d.Products {
			proc, ok := world.ParsePlantProcess(name)
			if !ok {
				return nil, errors.NewLookupError("plant %s: unknown process %s", d.ID, name)
			}
			ref, err := parseMaterial(raws, token)
			if err != nil {
				return nil, errors.Wrapf(err, "plant %s process %s", d.ID, name)
			}
			if plant.Products == nil {
				plant.Products = make(map[world.PlantProcess]world.MaterialRef)
			}
			plant.Products[proc] = ref
		}
	}
	for i, d := range rd.Creatures {
		if err := resolveProducts(raws, raws.Creatures[i].Materials, d.Materials); err != nil {
			return nil, err
		}
	}

	for _, d := range rd.Reactions {
		r, err := d.build(raws)
		if err != nil {
			return nil, errors.Wrapf(err, "reaction %s", d.Code)
		}
		raws.Reactions = append(raws.Reactions, r)
	}
	return raws, nil
}

func (d ReactionDoc) build(raws *world.Raws) (world.Reaction, error) {
	r := world.Reaction{Code: strings.ToUpper(d.Code), Name: d.Name}
	if r.Name == "" {
		r.Name = strings.ToLower(strings.ReplaceAll(r.Code, "_", " "))
	}

	for _, rd := range d.Reagents {
		reagent := world.Reagent{Code: rd.Code, ItemType: world.ItemNone, ItemSubtype: -1, Material: world.NoMaterial}
		switch strings.ToLower(rd.Kind) {
		case "", "item":
			reagent.Kind = world.ReagentItem
		case "other":
			reagent.Kind = world.ReagentOther
		default:
			return r, errors.NewLookupError("reagent %s: unknown kind %s", rd.Code, rd.Kind)
		}
		var err error
		if rd.Type != "" {
			if reagent.ItemType, err = parseItemType(rd.Type); err != nil {
				return r, err
			}
			if reagent.ItemSubtype, err = parseSubtype(raws, reagent.ItemType, rd.Subtype); err != nil {
				return r, err
			}
		}
		if reagent.Material, err = parseMaterial(raws, rd.Material); err != nil {
			return r, err
		}
		r.Reagents = append(r.Reagents, reagent)
	}

	for i, pd := range d.Products {
		p := world.Product{ItemType: world.ItemNone, ItemSubtype: -1, Material: world.NoMaterial}
		switch strings.ToLower(pd.Kind) {
		case "", "item":
			p.Kind = world.ProductItem
		case "improvement":
			p.Kind = world.ProductImprovement
		default:
			return r, errors.NewLookupError("product %d: unknown kind %s", i, pd.Kind)
		}
		var err error
		if pd.Type != "" {
			if p.ItemType, err = parseItemType(pd.Type); err != nil {
				return r, err
			}
			if p.ItemSubtype, err = parseSubtype(raws, p.ItemType, pd.Subtype); err != nil {
				return r, err
			}
		}
		switch {
		case pd.Same != "" && pd.Derived != "":
			return r, errors.NewValidationError("product %d: same and derived are exclusive", i)
		case pd.Same != "":
			p.Source = world.MaterialSame
			p.ReagentCode = pd.Same
		case pd.Derived != "":
			p.Source = world.MaterialDerived
			p.ReagentCode = pd.Derived
			p.ProductCode = strings.ToUpper(pd.Product)
		default:
			if p.Material, err = parseMaterial(raws, pd.Material); err != nil {
				return r, err
			}
		}
		r.Products = append(r.Products, p)
	}
	return r, nil
}
