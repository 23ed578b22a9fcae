package workflow

import (
	"slices"

	"github.com/teranos/foreman/world"
)

// Snapshot is a value copy of the fields that define a job. It is what a lost
// job is rebuilt from.
type Snapshot struct {
	Type             world.JobType
	ItemSubtype      int16
	Material         world.MaterialRef
	MaterialCategory world.MaterialCategory
	ReactionName     string
	HolderID         int
	Items            []world.JobItem
}

// Capture copies the defining fields of job.
func Capture(job *world.Job) Snapshot {
	return Snapshot{
		Type:             job.Type,
		ItemSubtype:      job.ItemSubtype,
		Material:         job.Material,
		MaterialCategory: job.MaterialCategory,
		ReactionName:     job.ReactionName,
		HolderID:         job.HolderID,
		Items:            slices.Clone(job.Items),
	}
}

// Equal reports structural equality.
func (s Snapshot) Equal(o Snapshot) bool {
	return s.Type == o.Type &&
		s.ItemSubtype == o.ItemSubtype &&
		s.Material == o.Material &&
		s.MaterialCategory == o.MaterialCategory &&
		s.ReactionName == o.ReactionName &&
		s.HolderID == o.HolderID &&
		slices.Equal(s.Items, o.Items)
}

// Matches reports whether job still has the captured fields.
func (s Snapshot) Matches(job *world.Job) bool {
	return s.Equal(Capture(job))
}

// Build creates a fresh job with the given id from the snapshot. The result
// is repeating and suspended.
func (s Snapshot) Build(id int) *world.Job {
	return &world.Job{
		ID:               id,
		Type:             s.Type,
		ItemSubtype:      s.ItemSubtype,
		Material:         s.Material,
		MaterialCategory: s.MaterialCategory,
		ReactionName:     s.ReactionName,
		Items:            slices.Clone(s.Items),
		HolderID:         s.HolderID,
		Flags:            world.JobFlags{Repeat: true, Suspend: true},
	}
}
