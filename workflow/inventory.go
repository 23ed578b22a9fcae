package workflow

import (
	"github.com/teranos/foreman/world"
)

// Items with any of these flags are ignored entirely.
const badItemFlags = world.ItemDump | world.ItemForbid | world.ItemGarbageCollect |
	world.ItemHostile | world.ItemOnFire | world.ItemRotten | world.ItemTrader |
	world.ItemInBuilding | world.ItemConstruction | world.ItemArtifact

// Partial thread and cloth stacks below these dimensions are not usable.
const (
	minThreadDimension = 15000
	minClothDimension  = 10000
)

// ItemBusy reports whether an item is tied up structurally: it holds a live
// item or a unit, a unit carries it outside a job, or it sits in a backpack
// (or in a flask, for drinks).
func ItemBusy(w world.World, item *world.Item) bool {
	for _, ref := range item.Refs {
		switch ref.Kind {
		case world.RefContainsItem:
			if obj := w.FindItem(ref.ItemID); obj != nil && !obj.Has(world.ItemGarbageCollect) {
				return true
			}
		case world.RefContainsUnit:
			return true
		case world.RefUnitHolder:
			if !item.Has(world.ItemInJob) {
				return true
			}
		case world.RefContainedInItem:
			obj := w.FindItem(ref.ItemID)
			if obj == nil {
				continue
			}
			if (obj.Type == world.ItemFlask && item.Type == world.ItemDrink) || obj.Type == world.ItemBackpack {
				return true
			}
		}
	}
	return false
}

// ItemInRealJob reports whether an item is claimed by a job other than a
// single hauling job.
func ItemInRealJob(w world.World, item *world.Item) bool {
	if !item.Has(world.ItemInJob) {
		return false
	}
	if len(item.JobRefs) != 1 || item.JobRefs[0].Kind != world.JobRefJob {
		return true
	}
	job := w.FindJob(item.JobRefs[0].JobID)
	if job == nil {
		return true
	}
	return job.Type.Class() != world.ClassHauling
}

// dryBucket marks water held by an abandoned bucket for removal.
func dryBucket(w world.World, item *world.Item) {
	for _, ref := range item.Refs {
		if ref.Kind != world.RefContainsItem {
			continue
		}
		obj := w.FindItem(ref.ItemID)
		if obj != nil && obj.Type == world.ItemLiquidMisc && obj.Material.Type == world.MatWater {
			obj.Flags |= world.ItemGarbageCollect | world.ItemHidden
		}
	}
}

// mapJobItems recounts every constraint from the free items and evaluates
// each constraint's hysteresis request.
func (wf *Workflow) mapJobItems() {
	constraints := wf.constraints.All()
	for _, c := range constraints {
		c.resetCounters()
	}
	wf.meltableCount = 0

	raws := wf.world.Raws()
	dryBuckets := wf.OptionEnabled(OptionDryBuckets)

	for _, item := range wf.world.FreeItems() {
		if item.Flags&badItemFlags != 0 {
			continue
		}

		invalid := false
		switch item.Type {
		case world.ItemBucket:
			if dryBuckets && !item.Has(world.ItemInJob) {
				dryBucket(wf.world, item)
			}
		case world.ItemThread:
			invalid = item.Dimension < minThreadDimension
		case world.ItemCloth:
			invalid = item.Dimension < minClothDimension
		}

		if item.Has(world.ItemMelt) && !item.Has(world.ItemOwned) && !ItemBusy(wf.world, item) {
			wf.meltableCount++
		}

		for _, c := range constraints {
			if !c.MatchesItemType(item.Type, item.Subtype) || !c.MatchesMaterial(raws, item.Material) {
				continue
			}
			if invalid ||
				item.Has(world.ItemOwned) ||
				item.Has(world.ItemInChest) ||
				item.AssignedToStockpile() ||
				ItemInRealJob(wf.world, item) ||
				ItemBusy(wf.world, item) {
				c.InUse++
			} else {
				c.Count++
				c.Amount += item.StackSize()
			}
		}
	}

	for _, c := range constraints {
		c.ComputeRequest()
		wf.recorder.ObserveConstraint(c.Spec(), c.Measured(), c.InUse)
	}
	wf.recorder.ObserveMeltable(wf.meltableCount)
}
