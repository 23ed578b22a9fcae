package workflow

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/teranos/foreman/persist"
	"github.com/teranos/foreman/world"
	"github.com/teranos/foreman/world/sim"
)

type eventLog struct {
	events []Event
}

func (l *eventLog) Notify(e Event) { l.events = append(l.events, e) }

func (l *eventLog) count(kind EventKind) int {
	n := 0
	for _, e := range l.events {
		if e.Kind == kind {
			n++
		}
	}
	return n
}

func (l *eventLog) texts() []string {
	out := make([]string, 0, len(l.events))
	for _, e := range l.events {
		out = append(out, e.Text)
	}
	return out
}

func (l *eventLog) reset() { l.events = nil }

type harness struct {
	t      *testing.T
	ctx    context.Context
	world  *sim.World
	store  *persist.MemoryStore
	events *eventLog
	wf     *Workflow
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	log := zaptest.NewLogger(t).Sugar()
	h := &harness{
		t:      t,
		ctx:    context.Background(),
		world:  sim.New("test-session", nil, log),
		store:  persist.NewMemoryStore(),
		events: &eventLog{},
	}
	h.wf = New(h.world, h.store, Options{Logger: log, Notifier: h.events, LivenessFrames: 1})
	return h
}

func (h *harness) load() {
	h.t.Helper()
	require.NoError(h.t, h.wf.Load(h.ctx))
}

// reopen simulates a session reload on the same store.
func (h *harness) reopen() {
	h.t.Helper()
	h.wf.Close()
	h.wf = New(h.world, h.store, Options{Logger: zaptest.NewLogger(h.t).Sugar(), Notifier: h.events, LivenessFrames: 1})
	h.load()
}

func (h *harness) addJob(job *world.Job) *world.Job {
	h.t.Helper()
	added := h.world.AddJob(job)
	require.NotNil(h.t, added)
	return added
}

func (h *harness) addItems(first, n int, t world.ItemType, mat world.MaterialRef) {
	for i := 0; i < n; i++ {
		h.world.AddItem(sim.NewItem(first+i, t, mat))
	}
}

// step advances one frame and runs the per-frame entry point.
func (h *harness) step(frames int) {
	h.t.Helper()
	for i := 0; i < frames; i++ {
		h.world.AdvanceFrames(1)
		require.NoError(h.t, h.wf.OnUpdate(h.ctx))
	}
}

func charcoalJob(holder int) *world.Job {
	job := sim.NewJob(world.JobMakeCharcoal, holder)
	job.Items = []world.JobItem{sim.NewJobItem(world.ItemWood, world.NoMaterial)}
	return job
}

func smeltJob(holder int, ore int32) *world.Job {
	job := sim.NewJob(world.JobSmeltOre, holder)
	job.Material = sim.Inorganic(ore)
	job.Items = []world.JobItem{sim.NewJobItem(world.ItemBoulder, sim.Inorganic(ore))}
	return job
}
