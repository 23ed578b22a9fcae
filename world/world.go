package world

// World is the host surface the workflow controller runs against.
// Callers hold the host's critical section for the whole time they use it.
type World interface {
	// Frame returns the simulation frame counter.
	Frame() int

	// SessionID identifies the loaded save; persistent records are scoped to it.
	SessionID() string

	// Jobs returns the world job list in host order.
	Jobs() []*Job

	FindJob(id int) *Job
	FindBuilding(id int) *Building
	FindItem(id int) *Item

	// LinkJob inserts job into the world list under its existing id and
	// appends it to its holder's queue. It returns false without side
	// effects if the id is already in use.
	LinkJob(job *Job) bool

	// FreeItems returns the items that are not part of a unit or building.
	FreeItems() []*Item

	Raws() *Raws
}

// Selection exposes the player's current UI selection.
// Only the command layer consults it.
type Selection interface {
	SelectedBuilding() *Building
	SelectedJob() *Job
}

// Color is an announcement color.
type Color int

const (
	ColorGreen Color = 2
	ColorCyan  Color = 3
	ColorBrown Color = 6
)

// Announcer shows in-world announcements.
type Announcer interface {
	Announce(text string, color Color, pause bool)
}
