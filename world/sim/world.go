// Package sim is an in-memory host world. It backs the CLI and daemon with
// fixture files and gives tests a world they can mutate between frames.
package sim

import (
	"sort"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/teranos/foreman/world"
)

// Announcement is one recorded in-world announcement.
type Announcement struct {
	Text  string
	Color world.Color
	Pause bool
	Frame int
}

// World is a mutable in-memory host. All accessors assume the caller holds
// the critical section returned by Suspend; the sim itself does no locking
// outside Suspend.
type World struct {
	core sync.Mutex

	session   string
	frame     int
	raws      *world.Raws
	jobs      []*world.Job
	buildings map[int]*world.Building
	items     []*world.Item
	itemIndex map[int]*world.Item

	selectedBuilding int
	selectedJob      int

	rawsDoc *RawsDoc

	announcements []Announcement
	nextJobID     int

	logger *zap.SugaredLogger
}

// New creates an empty world. A nil raws uses DefaultRaws and an empty
// session id is replaced with a random one.
func New(session string, raws *world.Raws, logger *zap.SugaredLogger) *World {
	if raws == nil {
		raws = DefaultRaws()
	}
	if session == "" {
		session = uuid.NewString()
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &World{
		session:          session,
		raws:             raws,
		buildings:        make(map[int]*world.Building),
		itemIndex:        make(map[int]*world.Item),
		selectedBuilding: -1,
		selectedJob:      -1,
		nextJobID:        1,
		logger:           logger,
	}
}

// Suspend enters the host's exclusive critical section and returns the
// function that leaves it.
func (w *World) Suspend() (release func()) {
	w.core.Lock()
	return w.core.Unlock
}

func (w *World) Frame() int         { return w.frame }
func (w *World) SessionID() string  { return w.session }
func (w *World) Raws() *world.Raws  { return w.raws }
func (w *World) Jobs() []*world.Job { return w.jobs }

// FreeItems returns every item of the world.
func (w *World) FreeItems() []*world.Item { return w.items }

func (w *World) FindJob(id int) *world.Job {
	for _, j := range w.jobs {
		if j.ID == id {
			return j
		}
	}
	return nil
}

func (w *World) FindBuilding(id int) *world.Building {
	return w.buildings[id]
}

func (w *World) FindItem(id int) *world.Item {
	return w.itemIndex[id]
}

// LinkJob inserts a job under its existing id.
func (w *World) LinkJob(job *world.Job) bool {
	if job == nil || w.FindJob(job.ID) != nil {
		return false
	}
	w.jobs = append(w.jobs, job)
	if b := w.buildings[job.HolderID]; b != nil {
		b.Jobs = append(b.Jobs, job)
	}
	if job.ID >= w.nextJobID {
		w.nextJobID = job.ID + 1
	}
	return true
}

// SelectedBuilding returns the selected holder building, or nil.
func (w *World) SelectedBuilding() *world.Building {
	return w.buildings[w.selectedBuilding]
}

// SelectedJob returns the selected job, or nil.
func (w *World) SelectedJob() *world.Job {
	if w.selectedJob < 0 {
		return nil
	}
	return w.FindJob(w.selectedJob)
}

// Announce records an announcement.
func (w *World) Announce(text string, color world.Color, pause bool) {
	w.announcements = append(w.announcements, Announcement{Text: text, Color: color, Pause: pause, Frame: w.frame})
	w.logger.Infow("Announcement", "text", text, "frame", w.frame)
}

// Announcements returns the recorded announcements in order.
func (w *World) Announcements() []Announcement {
	return w.announcements
}

// ClearAnnouncements drops the recorded announcements.
func (w *World) ClearAnnouncements() {
	w.announcements = nil
}

// AdvanceFrames moves the frame counter forward.
func (w *World) AdvanceFrames(n int) {
	if n > 0 {
		w.frame += n
	}
}

// SetFrame sets the frame counter.
func (w *World) SetFrame(frame int) {
	w.frame = frame
}

// AddBuilding registers a holder building.
func (w *World) AddBuilding(id int, name string) *world.Building {
	b := &world.Building{ID: id, Name: name}
	w.buildings[id] = b
	return b
}

// NewJob returns a repeating job of type t held by holder, with no material
// and no subtype set.
func NewJob(t world.JobType, holder int) *world.Job {
	return &world.Job{
		Type:        t,
		ItemSubtype: -1,
		Material:    world.NoMaterial,
		HolderID:    holder,
		Flags:       world.JobFlags{Repeat: true},
	}
}

// NewJobItem returns an input requirement of type t with no subtype.
func NewJobItem(t world.ItemType, mat world.MaterialRef) world.JobItem {
	return world.JobItem{ItemType: t, ItemSubtype: -1, Material: mat, ReagentIndex: -1, Quantity: 1}
}

// NewItem returns a free item of type t with no subtype.
func NewItem(id int, t world.ItemType, mat world.MaterialRef) *world.Item {
	return &world.Item{ID: id, Type: t, Subtype: -1, Material: mat, Stack: 1}
}

// AddJob links a new job, assigning the next free id when job.ID is 0.
func (w *World) AddJob(job *world.Job) *world.Job {
	if job.ID == 0 {
		job.ID = w.nextJobID
	}
	if !w.LinkJob(job) {
		return nil
	}
	return job
}

// RemoveJob unlinks a job from the world and its holder.
func (w *World) RemoveJob(id int) bool {
	idx := -1
	for i, j := range w.jobs {
		if j.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return false
	}
	job := w.jobs[idx]
	w.jobs = append(w.jobs[:idx], w.jobs[idx+1:]...)
	if b := w.buildings[job.HolderID]; b != nil {
		for i, j := range b.Jobs {
			if j.ID == id {
				b.Jobs = append(b.Jobs[:i], b.Jobs[i+1:]...)
				break
			}
		}
	}
	return true
}

// RemoveBuilding deletes a building together with its queued jobs.
func (w *World) RemoveBuilding(id int) bool {
	b := w.buildings[id]
	if b == nil {
		return false
	}
	for _, j := range append([]*world.Job(nil), b.Jobs...) {
		w.RemoveJob(j.ID)
	}
	delete(w.buildings, id)
	return true
}

// AddItem registers a free item.
func (w *World) AddItem(item *world.Item) *world.Item {
	w.items = append(w.items, item)
	w.itemIndex[item.ID] = item
	return item
}

// RemoveItem deletes an item.
func (w *World) RemoveItem(id int) bool {
	if _, ok := w.itemIndex[id]; !ok {
		return false
	}
	delete(w.itemIndex, id)
	for i, it := range w.items {
		if it.ID == id {
			w.items = append(w.items[:i], w.items[i+1:]...)
			break
		}
	}
	return true
}

// SetSelection selects a building and job; -1 clears either.
func (w *World) SetSelection(buildingID, jobID int) {
	w.selectedBuilding = buildingID
	w.selectedJob = jobID
}

// Replace swaps in the contents of next, keeping the session id and never
// moving the frame counter backwards.
func (w *World) Replace(next *World) {
	w.raws = next.raws
	w.jobs = next.jobs
	w.buildings = next.buildings
	w.items = next.items
	w.itemIndex = next.itemIndex
	w.selectedBuilding = next.selectedBuilding
	w.selectedJob = next.selectedJob
	if next.nextJobID > w.nextJobID {
		w.nextJobID = next.nextJobID
	}
	if next.frame > w.frame {
		w.frame = next.frame
	}
}

// buildingIDs returns building ids in ascending order.
func (w *World) buildingIDs() []int {
	ids := make([]int, 0, len(w.buildings))
	for id := range w.buildings {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

var (
	_ world.World     = (*World)(nil)
	_ world.Selection = (*World)(nil)
	_ world.Announcer = (*World)(nil)
)
