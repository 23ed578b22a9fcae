package workflow

import (
	"fmt"

	"github.com/teranos/foreman/world"
)

// soapProduct is the material reaction product that yields soap.
const soapProduct = "SOAP_MAT"

var plantProcessOf = map[world.JobType]world.PlantProcess{
	world.JobMillPlants:          world.ProcessMill,
	world.JobProcessPlants:       world.ProcessThread,
	world.JobProcessPlantsBag:    world.ProcessLeaves,
	world.JobProcessPlantsBarrel: world.ProcessExtractBarrel,
	world.JobProcessPlantsVial:   world.ProcessExtractVial,
	world.JobExtractFromPlants:   world.ProcessExtractStillVial,
}

// GuessJobMaterial returns the material a job works with and its category
// mask. The job type's own material wins, then the assigned material, then
// the sole input (or a PLANT first input).
func GuessJobMaterial(raws *world.Raws, s Snapshot) (world.MaterialInfo, world.MaterialCategory) {
	mat := world.DecodeRef(raws, s.Material)
	if s.Type == world.JobPrepareMeal {
		mat = world.DecodeRef(raws, world.NoMaterial)
	}
	mask := s.MaterialCategory

	if token := s.Type.Attrs().Material; token != "" {
		if info, ok := world.FindBuiltin(raws, token); ok {
			mat = info
		} else if m, ok := world.ParseMaterialCategory(token); ok {
			mask = m
		}
	}

	if !mat.IsValid() && len(s.Items) > 0 && (len(s.Items) == 1 || s.Items[0].ItemType == world.ItemPlant) {
		mat = world.DecodeRef(raws, s.Items[0].Material)
		if s.Items[0].ItemType == world.ItemWood {
			mask |= world.CatWood | world.CatWood2
		}
	}
	return mat, mask
}

// InferOutputs lists what a job is expected to produce. The result is
// deterministic for a given snapshot and raws.
func InferOutputs(raws *world.Raws, s Snapshot) []Output {
	if s.Type == world.JobCustomReaction {
		return customOutputs(raws, s)
	}

	itype := s.Type.Attrs().Item
	if itype == world.ItemNone {
		return nil
	}
	mat, mask := GuessJobMaterial(raws, s)

	switch s.Type {
	case world.JobSmeltOre:
		var outs []Output
		if mat.Inorganic != nil {
			for _, idx := range mat.Inorganic.MetalOre {
				outs = append(outs, Output{Item: world.ItemBar, Subtype: -1, Material: world.MaterialRef{Type: world.MatInorganic, Index: idx}})
			}
		}
		return outs

	case world.JobExtractMetalStrands:
		var outs []Output
		if mat.Inorganic != nil {
			for _, idx := range mat.Inorganic.ThreadMetal {
				outs = append(outs, Output{Item: world.ItemThread, Subtype: -1, Material: world.MaterialRef{Type: world.MatInorganic, Index: idx}})
			}
		}
		return outs

	case world.JobPrepareMeal:
		if s.Material.Type != world.MatNone {
			var outs []Output
			for i, def := range raws.ItemDefs[world.ItemFood] {
				if def.Level == s.Material.Type {
					outs = append(outs, Output{Item: world.ItemFood, Subtype: int16(i), Material: world.NoMaterial})
				}
			}
			return outs
		}

	case world.JobMillPlants, world.JobProcessPlants, world.JobProcessPlantsBag,
		world.JobProcessPlantsBarrel, world.JobProcessPlantsVial, world.JobExtractFromPlants:
		mat = plantByproduct(raws, mat, plantProcessOf[s.Type])
	}

	return []Output{{Item: itype, Subtype: s.ItemSubtype, Mask: mask, Material: mat.Ref()}}
}

func plantByproduct(raws *world.Raws, mat world.MaterialInfo, proc world.PlantProcess) world.MaterialInfo {
	if mat.Plant != nil {
		if ref, ok := mat.Plant.Products[proc]; ok {
			return world.DecodeRef(raws, ref)
		}
	}
	return world.DecodeRef(raws, world.NoMaterial)
}

func customOutputs(raws *world.Raws, s Snapshot) []Output {
	r := raws.FindReaction(s.ReactionName)
	if r == nil {
		return nil
	}

	var outs []Output
	for _, prod := range r.Products {
		if prod.Kind != world.ProductItem || prod.ItemType < 0 {
			continue
		}
		mat := world.DecodeRef(raws, prod.Material)
		var mask world.MaterialCategory

		if prod.Source == world.MaterialSame || prod.Source == world.MaterialDerived {
			ridx := r.ReagentIndex(prod.ReagentCode)
			if ridx < 0 {
				continue
			}
			if item := jobItemForReagent(s.Items, ridx); item != nil {
				mat = world.DecodeRef(raws, item.Material)
			} else {
				reagent := r.Reagents[ridx]
				if reagent.Kind != world.ReagentItem {
					continue
				}
				mat = world.DecodeRef(raws, reagent.Material)
			}

			if prod.Source == world.MaterialDerived {
				if mat.IsValid() {
					derived, ok := mat.ReactionProduct(raws, prod.ProductCode)
					if !ok {
						continue
					}
					mat = derived
				} else if prod.ProductCode == soapProduct {
					mask |= world.CatSoap
				}
			}
		}

		outs = append(outs, Output{Item: prod.ItemType, Subtype: prod.ItemSubtype, Mask: mask, Material: mat.Ref()})
	}
	return outs
}

func jobItemForReagent(items []world.JobItem, reagent int) *world.JobItem {
	for i := range items {
		if items[i].ReagentIndex == reagent {
			return &items[i]
		}
	}
	return nil
}

// ShortJobDescription renders "job ID: TYPE [material]".
func ShortJobDescription(raws *world.Raws, id int, s Snapshot) string {
	desc := fmt.Sprintf("job %d: ", id)
	if s.Type != world.JobCustomReaction {
		desc += s.Type.String()
	} else {
		desc += s.ReactionName
	}

	mat, mask := GuessJobMaterial(raws, s)
	switch {
	case mat.IsValid():
		desc += " [" + mat.Name() + "]"
	case mask != 0:
		desc += " [" + mask.String() + "]"
	}
	return desc
}
