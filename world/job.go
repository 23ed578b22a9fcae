package world

import "strings"

// JobClass groups job types by how the host treats them.
type JobClass int

const (
	ClassMisc JobClass = iota
	ClassHauling
	ClassStrangeMood
	ClassDestroy
	ClassManufacture
	ClassCustom
)

// JobType is the host's job kind enum.
type JobType int16

const (
	JobNone JobType = iota
	JobSmeltOre
	JobMeltMetalObject
	JobExtractMetalStrands
	JobMakeCharcoal
	JobMakeAsh
	JobMakeLye
	JobMakePotashFromLye
	JobMakePotashFromAsh
	JobMakePearlash
	JobMakeGlass
	JobPrepareMeal
	JobBrewDrink
	JobMakeCheese
	JobMillPlants
	JobProcessPlants
	JobProcessPlantsBag
	JobProcessPlantsBarrel
	JobProcessPlantsVial
	JobExtractFromPlants
	JobSpinThread
	JobWeaveCloth
	JobTanAHide
	JobConstructBin
	JobConstructBarrel
	JobConstructBucket
	JobConstructBlocks
	JobConstructTable
	JobConstructChair
	JobConstructBed
	JobMakeFlask
	JobMakeWeapon
	JobMakeAmmo
	JobMakeArmor
	JobMakeCrafts
	JobCollectClay
	JobCollectSand
	JobCustomReaction
	JobDestroyBuilding
	JobStrangeMoodCrafter
	JobStrangeMoodForge
	JobStoreItemInStockpile
	JobStoreItemInBin
	JobStoreItemInBarrel
	JobHaulToBuilding
	jobTypeCount
)

// JobTypeAttrs is the static attribute row for a job type.
type JobTypeAttrs struct {
	Token    string
	Class    JobClass
	Item     ItemType // produced item type, ItemNone if none
	Material string   // builtin material token or material category list, "" if none
}

var jobTypeAttrs = [jobTypeCount]JobTypeAttrs{
	JobNone:                 {"NONE", ClassMisc, ItemNone, ""},
	JobSmeltOre:             {"SmeltOre", ClassManufacture, ItemBar, ""},
	JobMeltMetalObject:      {"MeltMetalObject", ClassManufacture, ItemNone, ""},
	JobExtractMetalStrands:  {"ExtractMetalStrands", ClassManufacture, ItemThread, ""},
	JobMakeCharcoal:         {"MakeCharcoal", ClassManufacture, ItemBar, "COAL"},
	JobMakeAsh:              {"MakeAsh", ClassManufacture, ItemBar, "ASH"},
	JobMakeLye:              {"MakeLye", ClassManufacture, ItemLiquidMisc, "LYE"},
	JobMakePotashFromLye:    {"MakePotashFromLye", ClassManufacture, ItemBar, "POTASH"},
	JobMakePotashFromAsh:    {"MakePotashFromAsh", ClassManufacture, ItemBar, "POTASH"},
	JobMakePearlash:         {"MakePearlash", ClassManufacture, ItemBar, "PEARLASH"},
	JobMakeGlass:            {"MakeGlass", ClassManufacture, ItemBoulder, "GLASS_GREEN"},
	JobPrepareMeal:          {"PrepareMeal", ClassManufacture, ItemFood, ""},
	JobBrewDrink:            {"BrewDrink", ClassManufacture, ItemDrink, ""},
	JobMakeCheese:           {"MakeCheese", ClassManufacture, ItemCheese, ""},
	JobMillPlants:           {"MillPlants", ClassManufacture, ItemPowderMisc, ""},
	JobProcessPlants:        {"ProcessPlants", ClassManufacture, ItemThread, ""},
	JobProcessPlantsBag:     {"ProcessPlantsBag", ClassManufacture, ItemLeaves, ""},
	JobProcessPlantsBarrel:  {"ProcessPlantsBarrel", ClassManufacture, ItemLiquidMisc, ""},
	JobProcessPlantsVial:    {"ProcessPlantsVial", ClassManufacture, ItemLiquidMisc, ""},
	JobExtractFromPlants:    {"ExtractFromPlants", ClassManufacture, ItemLiquidMisc, ""},
	JobSpinThread:           {"SpinThread", ClassManufacture, ItemThread, "yarn"},
	JobWeaveCloth:           {"WeaveCloth", ClassManufacture, ItemCloth, ""},
	JobTanAHide:             {"TanAHide", ClassManufacture, ItemSkinTanned, ""},
	JobConstructBin:         {"ConstructBin", ClassManufacture, ItemBin, ""},
	JobConstructBarrel:      {"ConstructBarrel", ClassManufacture, ItemBarrel, ""},
	JobConstructBucket:      {"ConstructBucket", ClassManufacture, ItemBucket, ""},
	JobConstructBlocks:      {"ConstructBlocks", ClassManufacture, ItemBlocks, ""},
	JobConstructTable:       {"ConstructTable", ClassManufacture, ItemTable, ""},
	JobConstructChair:       {"ConstructChair", ClassManufacture, ItemChair, ""},
	JobConstructBed:         {"ConstructBed", ClassManufacture, ItemBed, ""},
	JobMakeFlask:            {"MakeFlask", ClassManufacture, ItemFlask, ""},
	JobMakeWeapon:           {"MakeWeapon", ClassManufacture, ItemWeapon, ""},
	JobMakeAmmo:             {"MakeAmmo", ClassManufacture, ItemAmmo, ""},
	JobMakeArmor:            {"MakeArmor", ClassManufacture, ItemArmor, ""},
	JobMakeCrafts:           {"MakeCrafts", ClassManufacture, ItemNone, ""},
	JobCollectClay:          {"CollectClay", ClassManufacture, ItemBoulder, ""},
	JobCollectSand:          {"CollectSand", ClassManufacture, ItemPowderMisc, ""},
	JobCustomReaction:       {"CustomReaction", ClassCustom, ItemNone, ""},
	JobDestroyBuilding:      {"DestroyBuilding", ClassDestroy, ItemNone, ""},
	JobStrangeMoodCrafter:   {"StrangeMoodCrafter", ClassStrangeMood, ItemNone, ""},
	JobStrangeMoodForge:     {"StrangeMoodForge", ClassStrangeMood, ItemNone, ""},
	JobStoreItemInStockpile: {"StoreItemInStockpile", ClassHauling, ItemNone, ""},
	JobStoreItemInBin:       {"StoreItemInBin", ClassHauling, ItemNone, ""},
	JobStoreItemInBarrel:    {"StoreItemInBarrel", ClassHauling, ItemNone, ""},
	JobHaulToBuilding:       {"HaulToBuilding", ClassHauling, ItemNone, ""},
}

// Attrs returns the attribute row of the job type.
func (t JobType) Attrs() JobTypeAttrs {
	if t < 0 || t >= jobTypeCount {
		return jobTypeAttrs[JobNone]
	}
	return jobTypeAttrs[t]
}

func (t JobType) String() string { return t.Attrs().Token }

// Class returns the job class.
func (t JobType) Class() JobClass { return t.Attrs().Class }

// ParseJobType resolves a job type token (case-insensitive).
func ParseJobType(token string) (JobType, bool) {
	for i := range jobTypeAttrs {
		if strings.EqualFold(jobTypeAttrs[i].Token, token) {
			return JobType(i), true
		}
	}
	return JobNone, false
}

// JobFlags are the host job flags this system reads or writes.
type JobFlags struct {
	Repeat  bool `yaml:"repeat,omitempty" toml:"repeat,omitempty"`
	Suspend bool `yaml:"suspend,omitempty" toml:"suspend,omitempty"`
}

// JobItem is one declared input requirement of a job.
type JobItem struct {
	ItemType         ItemType
	ItemSubtype      int16
	Material         MaterialRef
	MaterialCategory MaterialCategory
	ReagentIndex     int
	Quantity         int
}

// Job is a production order owned by the host.
type Job struct {
	ID               int
	Type             JobType
	ItemSubtype      int16
	Material         MaterialRef
	MaterialCategory MaterialCategory
	ReactionName     string
	Items            []JobItem
	MiscLinks        []int // auxiliary item/unit links; supported jobs have none
	HolderID         int   // holder building id, -1 if none
	Flags            JobFlags
}

// Building is a holder facility with its queued jobs.
type Building struct {
	ID   int
	Name string
	Jobs []*Job
}

// MaxBuildingJobs is the hard job slot limit of a holder building.
const MaxBuildingJobs = 10
