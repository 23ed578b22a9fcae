package workflow

import (
	"strings"

	"github.com/teranos/foreman/errors"
	"github.com/teranos/foreman/persist"
	"github.com/teranos/foreman/world"
)

// Constraint record integer slots.
const (
	slotGoalCount = 0
	slotGoalGap   = 1
	slotGoalMode  = 2

	modeByCount = 1
)

// DefaultGoalGap is the hysteresis gap of a constraint with no gap configured.
const DefaultGoalGap = 5

// Specificity weights.
const (
	weightSubtype       = 10000
	weightMaterialIndex = 5000
	weightMaterialType  = 1000
	weightMask          = 100
)

// Selector is a parsed constraint specification: ITEM[:SUBTYPE][/MASK[/MATERIAL]].
type Selector struct {
	Item     world.ItemTypeInfo
	Mask     world.MaterialCategory
	Material world.MaterialInfo
	Weight   int
}

// ParseSelector resolves a constraint specification against the raws.
func ParseSelector(raws *world.Raws, spec string) (Selector, error) {
	var sel Selector
	tokens := strings.Split(spec, "/")
	if len(tokens) > 3 {
		return sel, errors.NewUsageError("too many '/' separated fields in %q", spec)
	}

	item, ok := world.FindItemType(raws, tokens[0])
	if !ok || !item.IsValid() {
		return sel, errors.NewLookupError("Cannot find item type: %s", tokens[0])
	}
	sel.Item = item
	if item.Subtype >= 0 {
		sel.Weight += weightSubtype
	}

	if len(tokens) > 1 && tokens[1] != "" {
		mask, ok := world.ParseMaterialCategory(tokens[1])
		if !ok {
			return sel, errors.NewLookupError("Cannot decode material mask: %s", tokens[1])
		}
		sel.Mask = mask
	}
	if sel.Mask != 0 {
		sel.Weight += weightMask
	}

	sel.Material = world.DecodeRef(raws, world.NoMaterial)
	if len(tokens) > 2 && tokens[2] != "" {
		mat, ok := world.FindMaterial(raws, tokens[2])
		if !ok || !mat.IsValid() {
			return sel, errors.NewLookupError("Cannot find material: %s", tokens[2])
		}
		sel.Material = mat
	}
	if sel.Material.Type >= 0 {
		if sel.Material.Index >= 0 {
			sel.Weight += weightMaterialIndex
		} else {
			sel.Weight += weightMaterialType
		}
	}

	if sel.Mask != 0 && sel.Material.IsValid() && !sel.Material.MatchesCategory(sel.Mask) {
		return sel, errors.NewLookupError("Material %s doesn't match mask %s", tokens[2], tokens[1])
	}
	return sel, nil
}

// Same reports whether two selectors address the same goods.
func (s Selector) Same(o Selector) bool {
	return s.Item.Equal(o.Item) && s.Material.Ref() == o.Material.Ref() && s.Mask == o.Mask
}

// Output is one (item, subtype, material or category) tuple a job is
// expected to produce.
type Output struct {
	Item     world.ItemType
	Subtype  int16
	Mask     world.MaterialCategory
	Material world.MaterialRef
}

// Constraint is a persisted inventory target.
type Constraint struct {
	Selector
	record *persist.Record

	// Live counters from the last inventory scan.
	Amount int
	Count  int
	InUse  int

	RequestResume  bool
	RequestSuspend bool

	jobs               []*TrackedJob
	active             bool
	cantResumeReported bool

	materialCache map[world.MaterialRef]bool
}

func newConstraint(sel Selector, rec *persist.Record) *Constraint {
	return &Constraint{
		Selector:      sel,
		record:        rec,
		materialCache: make(map[world.MaterialRef]bool),
	}
}

// Spec returns the specification string the constraint was created with.
func (c *Constraint) Spec() string { return c.record.Value }

func (c *Constraint) GoalCount() int { return c.record.Ints[slotGoalCount] }

func (c *Constraint) SetGoalCount(v int) { c.record.Ints[slotGoalCount] = v }

// GoalGap is the configured gap clamped to [1, max(1, goal/2)]; an unset or
// non-positive gap means DefaultGoalGap.
func (c *Constraint) GoalGap() int {
	limit := max(1, c.GoalCount()/2)
	gap := c.record.Ints[slotGoalGap]
	if gap <= 0 {
		gap = DefaultGoalGap
	}
	return min(limit, gap)
}

// SetGoalGap stores the gap; -1 selects the default.
func (c *Constraint) SetGoalGap(v int) { c.record.Ints[slotGoalGap] = v }

// GoalByCount reports whether stacks are counted instead of summed amounts.
func (c *Constraint) GoalByCount() bool { return c.record.Ints[slotGoalMode]&modeByCount != 0 }

func (c *Constraint) SetGoalByCount(v bool) {
	if v {
		c.record.Ints[slotGoalMode] |= modeByCount
	} else {
		c.record.Ints[slotGoalMode] &^= modeByCount
	}
}

// Measured returns the counter the goal applies to.
func (c *Constraint) Measured() int {
	if c.GoalByCount() {
		return c.Count
	}
	return c.Amount
}

// ComputeRequest evaluates the hysteresis band from the live counters.
func (c *Constraint) ComputeRequest() {
	size := c.Measured()
	c.RequestResume = size <= c.GoalCount()-c.GoalGap()
	c.RequestSuspend = size >= c.GoalCount()
}

// Jobs returns the tracked jobs currently linked to the constraint.
func (c *Constraint) Jobs() []*TrackedJob { return c.jobs }

// Active reports whether a linked job was producing at the last mapping.
func (c *Constraint) Active() bool { return c.active }

// Description names the goods, e.g. "iron bar" or "metal bar".
func (c *Constraint) Description() string {
	info := c.Item.Name()
	switch {
	case c.Material.IsValid():
		info = c.Material.Name() + " " + info
	case c.Mask != 0:
		info = c.Mask.String() + " " + info
	}
	return info
}

// MatchesItemType reports whether an item of (t, subtype) is addressed.
func (c *Constraint) MatchesItemType(t world.ItemType, subtype int16) bool {
	return c.Item.Type == t && (c.Item.Subtype == -1 || c.Item.Subtype == subtype)
}

// MatchesMaterial reports whether an item of material ref passes the material
// and category filters. Results are memoized per material identity.
func (c *Constraint) MatchesMaterial(raws *world.Raws, ref world.MaterialRef) bool {
	if ok, cached := c.materialCache[ref]; cached {
		return ok
	}
	mat := world.DecodeRef(raws, ref)
	ok := mat.Matches(c.Material) && (c.Mask == 0 || mat.MatchesCategory(c.Mask))
	c.materialCache[ref] = ok
	return ok
}

// AcceptsOutput reports whether a job producing out serves the constraint.
// A job whose material is unknown matches on overlapping categories.
func (c *Constraint) AcceptsOutput(raws *world.Raws, out Output) bool {
	if !c.MatchesItemType(out.Item, out.Subtype) {
		return false
	}
	mat := world.DecodeRef(raws, out.Material)
	if !mat.Matches(c.Material) {
		return false
	}
	if c.Mask != 0 {
		if mat.IsValid() {
			return mat.MatchesCategory(c.Mask)
		}
		return out.Mask&c.Mask != 0
	}
	return true
}

func (c *Constraint) link(tj *TrackedJob) bool {
	for _, j := range c.jobs {
		if j == tj {
			return false
		}
	}
	c.jobs = append(c.jobs, tj)
	tj.constraints = append(tj.constraints, c)
	return true
}

func (c *Constraint) unlink(tj *TrackedJob) {
	for i, j := range c.jobs {
		if j == tj {
			c.jobs = append(c.jobs[:i], c.jobs[i+1:]...)
			return
		}
	}
}

func (c *Constraint) resetCounters() {
	c.Amount, c.Count, c.InUse = 0, 0, 0
}

// Constraints is the ordered, deduplicated constraint list.
type Constraints struct {
	list []*Constraint
}

// All returns the constraints in creation order.
func (cs *Constraints) All() []*Constraint { return cs.list }

func (cs *Constraints) Len() int { return len(cs.list) }

// Find returns the constraint addressing the same goods as sel, or nil.
func (cs *Constraints) Find(sel Selector) *Constraint {
	for _, c := range cs.list {
		if c.Selector.Same(sel) {
			return c
		}
	}
	return nil
}

// FindSpec returns the constraint created with exactly spec, or nil.
func (cs *Constraints) FindSpec(spec string) *Constraint {
	for _, c := range cs.list {
		if c.Spec() == spec {
			return c
		}
	}
	return nil
}

func (cs *Constraints) add(c *Constraint) {
	cs.list = append(cs.list, c)
}

func (cs *Constraints) remove(c *Constraint) bool {
	for i, x := range cs.list {
		if x == c {
			cs.list = append(cs.list[:i], cs.list[i+1:]...)
			for _, tj := range c.jobs {
				tj.unlinkConstraint(c)
			}
			c.jobs = nil
			return true
		}
	}
	return false
}

func (cs *Constraints) clear() {
	cs.list = nil
}
