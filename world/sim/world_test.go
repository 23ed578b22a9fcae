package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/teranos/foreman/world"
)

func TestNewWorldDefaults(t *testing.T) {
	w := New("", nil, nil)
	assert.NotEmpty(t, w.SessionID())
	assert.NotNil(t, w.Raws())
	assert.Nil(t, w.SelectedBuilding())
	assert.Nil(t, w.SelectedJob())
}

func TestLinkJob(t *testing.T) {
	w := New("s", nil, zaptest.NewLogger(t).Sugar())
	b := w.AddBuilding(1, "Forge")

	job := NewJob(world.JobMakeWeapon, 1)
	job.ID = 7
	require.True(t, w.LinkJob(job))
	assert.Equal(t, []*world.Job{job}, b.Jobs)

	dup := NewJob(world.JobMakeAmmo, 1)
	dup.ID = 7
	assert.False(t, w.LinkJob(dup), "id collision leaves the world untouched")
	assert.Len(t, w.Jobs(), 1)
	assert.Len(t, b.Jobs, 1)

	next := w.AddJob(NewJob(world.JobMakeAmmo, 1))
	require.NotNil(t, next)
	assert.Equal(t, 8, next.ID)
}

func TestRemoveBuildingDropsJobs(t *testing.T) {
	w := New("s", nil, nil)
	w.AddBuilding(1, "Kitchen")
	w.AddBuilding(2, "Still")
	w.AddJob(NewJob(world.JobPrepareMeal, 1))
	w.AddJob(NewJob(world.JobPrepareMeal, 1))
	keep := w.AddJob(NewJob(world.JobBrewDrink, 2))

	require.True(t, w.RemoveBuilding(1))
	assert.False(t, w.RemoveBuilding(1))
	assert.Nil(t, w.FindBuilding(1))
	assert.Equal(t, []*world.Job{keep}, w.Jobs())
}

func TestItems(t *testing.T) {
	w := New("s", nil, nil)
	w.AddItem(NewItem(1, world.ItemBar, Inorganic(Iron)))
	w.AddItem(NewItem(2, world.ItemBar, Inorganic(Gold)))

	assert.NotNil(t, w.FindItem(2))
	require.True(t, w.RemoveItem(1))
	assert.False(t, w.RemoveItem(1))
	assert.Nil(t, w.FindItem(1))
	assert.Len(t, w.FreeItems(), 1)
}

func TestAnnounce(t *testing.T) {
	w := New("s", nil, zaptest.NewLogger(t).Sugar())
	w.SetFrame(40)
	w.Announce("Stopping production: iron bar", world.ColorCyan, false)

	got := w.Announcements()
	require.Len(t, got, 1)
	assert.Equal(t, 40, got[0].Frame)
	assert.Equal(t, world.ColorCyan, got[0].Color)

	w.ClearAnnouncements()
	assert.Empty(t, w.Announcements())
}

func TestReplaceKeepsSessionAndFrame(t *testing.T) {
	w := New("live", nil, nil)
	w.SetFrame(5000)

	next := New("disk", nil, nil)
	next.SetFrame(100)
	next.AddBuilding(3, "Loom")
	next.AddJob(NewJob(world.JobWeaveCloth, 3))

	w.Replace(next)
	assert.Equal(t, "live", w.SessionID())
	assert.Equal(t, 5000, w.Frame())
	assert.NotNil(t, w.FindBuilding(3))
	assert.Len(t, w.Jobs(), 1)

	later := New("disk", nil, nil)
	later.SetFrame(9000)
	w.Replace(later)
	assert.Equal(t, 9000, w.Frame())
}

func TestAdvanceFrames(t *testing.T) {
	w := New("s", nil, nil)
	w.AdvanceFrames(10)
	w.AdvanceFrames(-4)
	assert.Equal(t, 10, w.Frame())
}
