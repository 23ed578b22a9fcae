package world

import (
	"strconv"
	"strings"
)

// Material type layout. Inorganic materials use type 0 with the inorganic id
// as index; builtins occupy types 1..18; creature and plant materials encode
// the material slot in the type and the creature/plant id in the index.
const (
	MatInorganic       int16 = 0
	BuiltinMatCount          = 19
	CreatureMatBase    int16 = 19
	CreatureMatSlots         = 200
	PlantMatBase       int16 = 419
	PlantMatSlots            = 200
	materialTypeLimit        = int(PlantMatBase) + PlantMatSlots
	MatNone            int16 = -1
	MatIndexNone       int32 = -1
)

// Builtin material types.
const (
	MatAmber int16 = iota + 1
	MatCoral
	MatGlassGreen
	MatGlassClear
	MatGlassCrystal
	MatWater
	MatCoal
	MatPotash
	MatAsh
	MatPearlash
	MatLye
	MatMud
	MatVomit
	MatSalt
	MatFilthB
	MatFilthY
	MatUnknownSubstance
	MatGrime
)

var builtinTokens = [BuiltinMatCount]string{
	"INORGANIC", "AMBER", "CORAL", "GLASS_GREEN", "GLASS_CLEAR", "GLASS_CRYSTAL", "WATER",
	"COAL", "POTASH", "ASH", "PEARLASH", "LYE", "MUD", "VOMIT", "SALT", "FILTH_B", "FILTH_Y",
	"UNKNOWN_SUBSTANCE", "GRIME",
}

// MaterialRef is an encoded (type, index) material identity.
type MaterialRef struct {
	Type  int16 `yaml:"type" toml:"type"`
	Index int32 `yaml:"index" toml:"index"`
}

// NoMaterial is the unset material reference.
var NoMaterial = MaterialRef{Type: MatNone, Index: MatIndexNone}

// MaterialInfo is a decoded material identity with the records it resolves to.
type MaterialInfo struct {
	Type  int16
	Index int32

	Material  *Material
	Inorganic *Inorganic
	Plant     *Plant
	Creature  *Creature
}

// DecodeMaterial resolves (type, index) against the raws. Unknown identities
// decode to an info whose Material is nil.
func DecodeMaterial(raws *Raws, matType int16, matIndex int32) MaterialInfo {
	info := MaterialInfo{Type: matType, Index: matIndex}
	if matType < 0 || int(matType) >= materialTypeLimit || raws == nil {
		info.Type = MatNone
		info.Index = MatIndexNone
		return info
	}

	switch {
	case matType == MatInorganic && matIndex >= 0:
		if int(matIndex) < len(raws.Inorganics) {
			info.Inorganic = &raws.Inorganics[matIndex]
			info.Material = &info.Inorganic.Material
		}
	case matType < CreatureMatBase:
		info.Material = raws.Builtin(matType)
	case matType < PlantMatBase:
		if matIndex >= 0 && int(matIndex) < len(raws.Creatures) {
			info.Creature = &raws.Creatures[matIndex]
			slot := int(matType - CreatureMatBase)
			if slot < len(info.Creature.Materials) {
				info.Material = &info.Creature.Materials[slot]
			}
		}
	default:
		if matIndex >= 0 && int(matIndex) < len(raws.Plants) {
			info.Plant = &raws.Plants[matIndex]
			slot := int(matType - PlantMatBase)
			if slot < len(info.Plant.Materials) {
				info.Material = &info.Plant.Materials[slot]
			}
		}
	}
	return info
}

// DecodeRef is DecodeMaterial for an encoded reference.
func DecodeRef(raws *Raws, ref MaterialRef) MaterialInfo {
	return DecodeMaterial(raws, ref.Type, ref.Index)
}

// FindMaterial parses a material token:
//
//	COAL                 builtin
//	INORGANIC:IRON       inorganic
//	IRON                 bare inorganic id
//	PLANT:WHEAT:FLOUR    plant material
//	CREATURE:COW:LEATHER creature material
//	WHEAT:FLOUR          plant, then creature
func FindMaterial(raws *Raws, token string) (MaterialInfo, bool) {
	parts := strings.Split(strings.ToUpper(strings.TrimSpace(token)), ":")
	none := MaterialInfo{Type: MatNone, Index: MatIndexNone}
	if raws == nil || token == "" {
		return none, false
	}

	switch len(parts) {
	case 1:
		if info, ok := findBuiltin(raws, parts[0]); ok {
			return info, true
		}
		return findInorganic(raws, parts[0])
	case 2:
		if parts[0] == "INORGANIC" {
			return findInorganic(raws, parts[1])
		}
		if info, ok := findPlant(raws, parts[0], parts[1]); ok {
			return info, true
		}
		return findCreature(raws, parts[0], parts[1])
	case 3:
		switch parts[0] {
		case "PLANT":
			return findPlant(raws, parts[1], parts[2])
		case "CREATURE":
			return findCreature(raws, parts[1], parts[2])
		}
	}
	return none, false
}

// FindBuiltin resolves a builtin material token such as COAL or LYE.
func FindBuiltin(raws *Raws, token string) (MaterialInfo, bool) {
	return findBuiltin(raws, strings.ToUpper(token))
}

func findBuiltin(raws *Raws, token string) (MaterialInfo, bool) {
	for i := 1; i < BuiltinMatCount; i++ {
		if builtinTokens[i] == token {
			return DecodeMaterial(raws, int16(i), MatIndexNone), true
		}
	}
	return MaterialInfo{Type: MatNone, Index: MatIndexNone}, false
}

func findInorganic(raws *Raws, id string) (MaterialInfo, bool) {
	for i := range raws.Inorganics {
		if strings.EqualFold(raws.Inorganics[i].ID, id) {
			return DecodeMaterial(raws, MatInorganic, int32(i)), true
		}
	}
	return MaterialInfo{Type: MatNone, Index: MatIndexNone}, false
}

func findPlant(raws *Raws, plantID, matID string) (MaterialInfo, bool) {
	for i := range raws.Plants {
		if !strings.EqualFold(raws.Plants[i].ID, plantID) {
			continue
		}
		for slot := range raws.Plants[i].Materials {
			if strings.EqualFold(raws.Plants[i].Materials[slot].ID, matID) {
				return DecodeMaterial(raws, PlantMatBase+int16(slot), int32(i)), true
			}
		}
	}
	return MaterialInfo{Type: MatNone, Index: MatIndexNone}, false
}

func findCreature(raws *Raws, creatureID, matID string) (MaterialInfo, bool) {
	for i := range raws.Creatures {
		if !strings.EqualFold(raws.Creatures[i].ID, creatureID) {
			continue
		}
		for slot := range raws.Creatures[i].Materials {
			if strings.EqualFold(raws.Creatures[i].Materials[slot].ID, matID) {
				return DecodeMaterial(raws, CreatureMatBase+int16(slot), int32(i)), true
			}
		}
	}
	return MaterialInfo{Type: MatNone, Index: MatIndexNone}, false
}

// IsValid reports whether the identity resolved to a material record.
func (m MaterialInfo) IsValid() bool {
	return m.Material != nil
}

// Ref returns the encoded identity.
func (m MaterialInfo) Ref() MaterialRef {
	return MaterialRef{Type: m.Type, Index: m.Index}
}

// Matches reports whether m satisfies the material filter other. An invalid
// filter accepts everything; a filter with index -1 accepts any index of the
// same type.
func (m MaterialInfo) Matches(other MaterialInfo) bool {
	if !other.IsValid() {
		return true
	}
	return m.Type == other.Type && (other.Index == MatIndexNone || m.Index == other.Index)
}

// MatchesCategory reports whether the material carries a flag selected by mask.
func (m MaterialInfo) MatchesCategory(mask MaterialCategory) bool {
	if m.Material == nil || mask == 0 {
		return false
	}
	flags := m.Material.Flags
	for _, rule := range categoryFlagRules {
		if mask&rule.category != 0 && flags&rule.flag != 0 {
			return true
		}
	}
	return false
}

// ReactionProduct returns the material produced from m by the named
// material reaction product (e.g. SOAP_MAT).
func (m MaterialInfo) ReactionProduct(raws *Raws, code string) (MaterialInfo, bool) {
	if m.Material == nil {
		return MaterialInfo{Type: MatNone, Index: MatIndexNone}, false
	}
	for _, p := range m.Material.ReactionProducts {
		if strings.EqualFold(p.ID, code) {
			return DecodeRef(raws, p.Material), true
		}
	}
	return MaterialInfo{Type: MatNone, Index: MatIndexNone}, false
}

// Token renders the identity the way FindMaterial accepts it.
func (m MaterialInfo) Token() string {
	switch {
	case m.Type < 0:
		return "NONE"
	case m.Inorganic != nil:
		return "INORGANIC:" + m.Inorganic.ID
	case m.Type == MatInorganic:
		return "INORGANIC"
	case m.Type < CreatureMatBase:
		return builtinTokens[m.Type]
	case m.Creature != nil && m.Material != nil:
		return "CREATURE:" + m.Creature.ID + ":" + m.Material.ID
	case m.Plant != nil && m.Material != nil:
		return "PLANT:" + m.Plant.ID + ":" + m.Material.ID
	}
	return strconv.Itoa(int(m.Type)) + ":" + strconv.Itoa(int(m.Index))
}

// Name returns the material's display name, falling back to the token.
func (m MaterialInfo) Name() string {
	if m.Material != nil && m.Material.Name != "" {
		return m.Material.Name
	}
	return strings.ToLower(m.Token())
}
