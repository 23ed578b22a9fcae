package world_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/foreman/world"
	"github.com/teranos/foreman/world/sim"
)

func TestFindItemType(t *testing.T) {
	raws := sim.DefaultRaws()

	bar, ok := world.FindItemType(raws, "BAR")
	require.True(t, ok)
	assert.Equal(t, world.ItemBar, bar.Type)
	assert.Equal(t, int16(-1), bar.Subtype)
	assert.Equal(t, "BAR", bar.Token())
	assert.Equal(t, "bar", bar.Name())

	bolts, ok := world.FindItemType(raws, "AMMO:ITEM_AMMO_BOLTS")
	require.True(t, ok)
	assert.Equal(t, int16(0), bolts.Subtype)
	assert.Equal(t, "AMMO:ITEM_AMMO_BOLTS", bolts.Token())
	assert.Equal(t, "bolts", bolts.Name())
	assert.True(t, bolts.IsValid())

	_, ok = world.FindItemType(raws, "AMMO:ITEM_AMMO_DARTS")
	assert.False(t, ok)
	_, ok = world.FindItemType(raws, "BAR:ANYTHING")
	assert.False(t, ok, "BAR has no subtypes")
	_, ok = world.FindItemType(raws, "WIDGET")
	assert.False(t, ok)
}

func TestItemTypeInfoEqual(t *testing.T) {
	raws := sim.DefaultRaws()
	a := world.NewItemTypeInfo(raws, world.ItemFood, 1)
	b := world.NewItemTypeInfo(raws, world.ItemFood, 1)
	c := world.NewItemTypeInfo(raws, world.ItemFood, -1)

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
	assert.Equal(t, "stew", a.Name())
}

func TestParseItemType(t *testing.T) {
	it, ok := world.ParseItemType("liquid_misc")
	require.True(t, ok)
	assert.Equal(t, world.ItemLiquidMisc, it)
	assert.Equal(t, "LIQUID_MISC", it.String())
	assert.True(t, world.ItemWeapon.HasSubtypes())
	assert.False(t, world.ItemBar.HasSubtypes())
}
