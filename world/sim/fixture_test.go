package sim

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/teranos/foreman/errors"
	"github.com/teranos/foreman/world"
)

func TestLoadFileYAML(t *testing.T) {
	w, err := LoadFile("testdata/smelter.yaml", zaptest.NewLogger(t).Sugar())
	require.NoError(t, err)

	assert.Equal(t, "fixture-session", w.SessionID())
	assert.Equal(t, 2400, w.Frame())
	require.Len(t, w.Jobs(), 2)

	smelt := w.FindJob(10)
	require.NotNil(t, smelt)
	assert.Equal(t, world.JobSmeltOre, smelt.Type)
	assert.Equal(t, Inorganic(Hematite), smelt.Material)
	assert.True(t, smelt.Flags.Repeat)
	assert.False(t, smelt.Flags.Suspend)

	meal := w.FindJob(11)
	require.NotNil(t, meal)
	assert.True(t, meal.Flags.Suspend)
	require.Len(t, meal.Items, 1)
	assert.Equal(t, world.ItemMeat, meal.Items[0].ItemType)
	assert.Equal(t, world.NoMaterial, meal.Items[0].Material)
	assert.Equal(t, -1, meal.Items[0].ReagentIndex)
	assert.Equal(t, 2, meal.Items[0].Quantity)

	smelter := w.FindBuilding(1)
	require.NotNil(t, smelter)
	require.Len(t, smelter.Jobs, 1)
	assert.Same(t, smelt, smelter.Jobs[0])

	require.Len(t, w.FreeItems(), 5)
	forbidden := w.FindItem(101)
	require.NotNil(t, forbidden)
	assert.True(t, forbidden.Has(world.ItemForbid))
	assert.Equal(t, Inorganic(Iron), forbidden.Material)

	water := w.FindItem(103)
	require.NotNil(t, water)
	require.Len(t, water.Refs, 1)
	assert.Equal(t, world.RefContainedInItem, water.Refs[0].Kind)
	assert.Equal(t, 102, water.Refs[0].ItemID)
	require.Len(t, water.JobRefs, 1)
	assert.Equal(t, world.JobRefJob, water.JobRefs[0].Kind)

	bolts := w.FindItem(104)
	require.NotNil(t, bolts)
	assert.Equal(t, int16(0), bolts.Subtype)
	assert.True(t, bolts.AssignedToStockpile())

	assert.Same(t, smelter, w.SelectedBuilding())
	assert.Same(t, smelt, w.SelectedJob())
}

func TestLoadFileTOML(t *testing.T) {
	w, err := LoadFile("testdata/soapmaker.toml", zaptest.NewLogger(t).Sugar())
	require.NoError(t, err)

	assert.Equal(t, "toml-session", w.SessionID())
	job := w.FindJob(1)
	require.NotNil(t, job)
	assert.Equal(t, world.JobCustomReaction, job.Type)
	assert.Equal(t, "MAKE_SOAP_FROM_TALLOW", job.ReactionName)
	require.Len(t, job.Items, 2)
	assert.Equal(t, 1, job.Items[1].ReagentIndex)
	assert.Equal(t, Creature(Cow, SlotTallow), job.Items[1].Material)

	assert.Nil(t, w.SelectedBuilding())
	assert.Nil(t, w.SelectedJob())
}

func TestLoadFileCustomRaws(t *testing.T) {
	w, err := LoadFile("testdata/custom_raws.yaml", zaptest.NewLogger(t).Sugar())
	require.NoError(t, err)

	raws := w.Raws()
	require.Len(t, raws.Inorganics, 2)
	assert.Equal(t, []int32{0}, raws.Inorganics[1].MetalOre)
	assert.Equal(t, world.MaterialRef{Type: world.MatInorganic, Index: 1}, w.FindJob(3).Material)

	reed := raws.Plants[0]
	assert.Equal(t, world.MaterialRef{Type: world.PlantMatBase + 1, Index: 0}, reed.Products[world.ProcessThread])

	fat := world.DecodeMaterial(raws, world.CreatureMatBase, 0)
	soap, ok := fat.ReactionProduct(raws, "SOAP_MAT")
	require.True(t, ok)
	assert.Equal(t, "CREATURE:GOAT:SOAP", soap.Token())

	pie, ok := world.FindItemType(raws, "FOOD:ITEM_FOOD_PIE")
	require.True(t, ok)
	assert.Equal(t, int16(2), pie.Def.Level)

	reaction := raws.FindReaction("MAKE_GOAT_SOAP")
	require.NotNil(t, reaction)
	assert.Equal(t, "make goat soap", reaction.Name)
	require.Len(t, reaction.Products, 1)
	assert.Equal(t, world.MaterialDerived, reaction.Products[0].Source)
	assert.Equal(t, "SOAP_MAT", reaction.Products[0].ProductCode)
}

func TestFixtureRoundTrip(t *testing.T) {
	for _, ext := range []string{".yaml", ".toml"} {
		t.Run(ext, func(t *testing.T) {
			w, err := LoadFile("testdata/smelter.yaml", zaptest.NewLogger(t).Sugar())
			require.NoError(t, err)
			w.FindJob(10).Flags.Suspend = true

			path := filepath.Join(t.TempDir(), "world"+ext)
			require.NoError(t, SaveFile(w, path))

			reloaded, err := LoadFile(path, zaptest.NewLogger(t).Sugar())
			require.NoError(t, err)
			assert.Equal(t, w.Document(), reloaded.Document())
			assert.True(t, reloaded.FindJob(10).Flags.Suspend)
		})
	}
}

func TestDecodeRejectsUnknownKeys(t *testing.T) {
	_, err := Decode([]byte("session: x\nbogus: 1\n"), ".yaml")
	assert.Error(t, err)

	_, err = Decode([]byte("session = \"x\"\nbogus = 1\n"), ".toml")
	assert.Error(t, err)

	_, err = Decode([]byte("{}"), ".json")
	require.Error(t, err)
	assert.True(t, errors.IsUsageError(err))
}

func TestFromDocumentErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  Document
	}{
		{"unknown job type", Document{Jobs: []JobDoc{{ID: 1, Type: "Juggle"}}}},
		{"unknown material", Document{Jobs: []JobDoc{{ID: 1, Type: "SmeltOre", Material: "MITHRIL"}}}},
		{"bad category", Document{Jobs: []JobDoc{{ID: 1, Type: "SpinThread", Category: "plastic"}}}},
		{"duplicate job", Document{Jobs: []JobDoc{{ID: 1, Type: "SmeltOre"}, {ID: 1, Type: "SmeltOre"}}}},
		{"duplicate item", Document{Items: []ItemDoc{{ID: 1, Type: "BAR"}, {ID: 1, Type: "BAR"}}}},
		{"unknown flag", Document{Items: []ItemDoc{{ID: 1, Type: "BAR", Flags: []string{"shiny"}}}}},
		{"unknown ref", Document{Items: []ItemDoc{{ID: 1, Type: "BAR", Refs: []RefDoc{{Kind: "orbits"}}}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromDocument(&tt.doc, zaptest.NewLogger(t).Sugar())
			assert.Error(t, err)
		})
	}
}

func TestLoadFileMissing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml"), nil)
	require.Error(t, err)
	assert.True(t, os.IsNotExist(errors.UnwrapAll(err)))
}
