package sim

import (
	"bytes"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/teranos/foreman/errors"
	"github.com/teranos/foreman/world"
)

// Document is the on-disk fixture layout shared by the YAML and TOML forms.
type Document struct {
	Session   string        `yaml:"session,omitempty" toml:"session,omitempty"`
	Frame     int           `yaml:"frame,omitempty" toml:"frame,omitempty"`
	Raws      *RawsDoc      `yaml:"raws,omitempty" toml:"raws,omitempty"`
	Buildings []BuildingDoc `yaml:"buildings,omitempty" toml:"buildings,omitempty"`
	Jobs      []JobDoc      `yaml:"jobs,omitempty" toml:"jobs,omitempty"`
	Items     []ItemDoc     `yaml:"items,omitempty" toml:"items,omitempty"`
	Selection *SelectionDoc `yaml:"selection,omitempty" toml:"selection,omitempty"`
}

type BuildingDoc struct {
	ID   int    `yaml:"id" toml:"id"`
	Name string `yaml:"name,omitempty" toml:"name,omitempty"`
}

type JobDoc struct {
	ID        int          `yaml:"id" toml:"id"`
	Type      string       `yaml:"type" toml:"type"`
	Holder    int          `yaml:"holder,omitempty" toml:"holder,omitempty"`
	Subtype   string       `yaml:"subtype,omitempty" toml:"subtype,omitempty"`
	Material  string       `yaml:"material,omitempty" toml:"material,omitempty"`
	Category  string       `yaml:"category,omitempty" toml:"category,omitempty"`
	Reaction  string       `yaml:"reaction,omitempty" toml:"reaction,omitempty"`
	Repeat    bool         `yaml:"repeat,omitempty" toml:"repeat,omitempty"`
	Suspend   bool         `yaml:"suspend,omitempty" toml:"suspend,omitempty"`
	Items     []JobItemDoc `yaml:"items,omitempty" toml:"items,omitempty"`
	MiscLinks []int        `yaml:"misc_links,omitempty" toml:"misc_links,omitempty"`
}

type JobItemDoc struct {
	Type     string `yaml:"type" toml:"type"`
	Subtype  string `yaml:"subtype,omitempty" toml:"subtype,omitempty"`
	Material string `yaml:"material,omitempty" toml:"material,omitempty"`
	Category string `yaml:"category,omitempty" toml:"category,omitempty"`
	Reagent  *int   `yaml:"reagent,omitempty" toml:"reagent,omitempty"`
	Quantity int    `yaml:"quantity,omitempty" toml:"quantity,omitempty"`
}

type ItemDoc struct {
	ID        int         `yaml:"id" toml:"id"`
	Type      string      `yaml:"type" toml:"type"`
	Subtype   string      `yaml:"subtype,omitempty" toml:"subtype,omitempty"`
	Material  string      `yaml:"material,omitempty" toml:"material,omitempty"`
	Stack     int         `yaml:"stack,omitempty" toml:"stack,omitempty"`
	Dimension int         `yaml:"dimension,omitempty" toml:"dimension,omitempty"`
	Flags     []string    `yaml:"flags,omitempty" toml:"flags,omitempty"`
	Refs      []RefDoc    `yaml:"refs,omitempty" toml:"refs,omitempty"`
	Jobs      []JobRefDoc `yaml:"jobs,omitempty" toml:"jobs,omitempty"`
	Stockpile int         `yaml:"stockpile,omitempty" toml:"stockpile,omitempty"`
}

type RefDoc struct {
	Kind     string `yaml:"kind" toml:"kind"`
	Item     int    `yaml:"item,omitempty" toml:"item,omitempty"`
	Unit     int    `yaml:"unit,omitempty" toml:"unit,omitempty"`
	Building int    `yaml:"building,omitempty" toml:"building,omitempty"`
}

type JobRefDoc struct {
	Kind int `yaml:"kind" toml:"kind"`
	Job  int `yaml:"job" toml:"job"`
}

// SelectionDoc ids of 0 mean nothing selected.
type SelectionDoc struct {
	Building int `yaml:"building,omitempty" toml:"building,omitempty"`
	Job      int `yaml:"job,omitempty" toml:"job,omitempty"`
}

// LoadFile reads a fixture, choosing the codec by extension (.yaml, .yml, .toml).
func LoadFile(path string, logger *zap.SugaredLogger) (*World, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read fixture %s", path)
	}
	doc, err := Decode(data, filepath.Ext(path))
	if err != nil {
		return nil, errors.Wrapf(err, "fixture %s", path)
	}
	w, err := FromDocument(doc, logger)
	if err != nil {
		return nil, errors.Wrapf(err, "fixture %s", path)
	}
	return w, nil
}

// SaveFile writes the world back in the codec chosen by extension.
func SaveFile(w *World, path string) error {
	data, err := Encode(w.Document(), filepath.Ext(path))
	if err != nil {
		return errors.Wrapf(err, "encode fixture %s", path)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.Wrapf(err, "write fixture %s", path)
	}
	return nil
}

// Decode parses fixture bytes. Unknown keys are rejected in both forms.
func Decode(data []byte, ext string) (*Document, error) {
	var doc Document
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&doc); err != nil {
			return nil, errors.Wrap(err, "decode yaml")
		}
	case ".toml":
		md, err := toml.Decode(string(data), &doc)
		if err != nil {
			return nil, errors.Wrap(err, "decode toml")
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return nil, errors.Newf("unknown toml keys: %v", undecoded)
		}
	default:
		return nil, errors.NewUsageError("unsupported fixture extension %q (want .yaml, .yml or .toml)", ext)
	}
	return &doc, nil
}

// Encode renders a document in the codec chosen by extension.
func Encode(doc *Document, ext string) ([]byte, error) {
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		return yaml.Marshal(doc)
	case ".toml":
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(doc); err != nil {
			return nil, errors.Wrap(err, "encode toml")
		}
		return buf.Bytes(), nil
	}
	return nil, errors.NewUsageError("unsupported fixture extension %q (want .yaml, .yml or .toml)", ext)
}

// FromDocument builds a world from a decoded fixture.
func FromDocument(doc *Document, logger *zap.SugaredLogger) (*World, error) {
	raws := DefaultRaws()
	if doc.Raws != nil {
		var err error
		if raws, err = doc.Raws.build(); err != nil {
			return nil, errors.Wrap(err, "raws")
		}
	}

	w := New(doc.Session, raws, logger)
	w.rawsDoc = doc.Raws
	w.frame = doc.Frame

	for _, b := range doc.Buildings {
		w.AddBuilding(b.ID, b.Name)
	}

	for _, jd := range doc.Jobs {
		job, err := jd.build(raws)
		if err != nil {
			return nil, errors.Wrapf(err, "job %d", jd.ID)
		}
		if !w.LinkJob(job) {
			return nil, errors.NewConflictError("duplicate job id %d", jd.ID)
		}
	}

	for _, id := range doc.Items {
		item, err := id.build(raws)
		if err != nil {
			return nil, errors.Wrapf(err, "item %d", id.ID)
		}
		if w.FindItem(item.ID) != nil {
			return nil, errors.NewConflictError("duplicate item id %d", item.ID)
		}
		w.AddItem(item)
	}

	if doc.Selection != nil {
		b, j := doc.Selection.Building, doc.Selection.Job
		if b == 0 {
			b = -1
		}
		if j == 0 {
			j = -1
		}
		w.SetSelection(b, j)
	}
	return w, nil
}

func parseMaterial(raws *world.Raws, token string) (world.MaterialRef, error) {
	if token == "" {
		return world.NoMaterial, nil
	}
	info, ok := world.FindMaterial(raws, token)
	if !ok {
		return world.NoMaterial, errors.NewLookupError("cannot find material: %s", token)
	}
	return info.Ref(), nil
}

func parseCategory(s string) (world.MaterialCategory, error) {
	mask, ok := world.ParseMaterialCategory(s)
	if !ok {
		return 0, errors.NewLookupError("cannot decode material mask: %s", s)
	}
	return mask, nil
}

func parseSubtype(raws *world.Raws, t world.ItemType, subtype string) (int16, error) {
	if subtype == "" {
		return -1, nil
	}
	info, ok := world.FindItemType(raws, t.String()+":"+subtype)
	if !ok {
		return -1, errors.NewLookupError("cannot find item subtype: %s:%s", t, subtype)
	}
	return info.Subtype, nil
}

func parseItemType(token string) (world.ItemType, error) {
	t, ok := world.ParseItemType(token)
	if !ok {
		return world.ItemNone, errors.NewLookupError("cannot find item type: %s", token)
	}
	return t, nil
}

func (jd JobDoc) build(raws *world.Raws) (*world.Job, error) {
	jt, ok := world.ParseJobType(jd.Type)
	if !ok {
		return nil, errors.NewLookupError("unknown job type: %s", jd.Type)
	}
	job := NewJob(jt, jd.Holder)
	job.ID = jd.ID
	job.ReactionName = jd.Reaction
	job.Flags = world.JobFlags{Repeat: jd.Repeat, Suspend: jd.Suspend}
	job.MiscLinks = jd.MiscLinks
	if jd.Holder == 0 {
		job.HolderID = -1
	}

	var err error
	if job.Material, err = parseMaterial(raws, jd.Material); err != nil {
		return nil, err
	}
	if job.MaterialCategory, err = parseCategory(jd.Category); err != nil {
		return nil, err
	}
	if jd.Subtype != "" {
		if job.ItemSubtype, err = parseSubtype(raws, jt.Attrs().Item, jd.Subtype); err != nil {
			return nil, err
		}
	}

	for i, id := range jd.Items {
		ji, err := id.build(raws)
		if err != nil {
			return nil, errors.Wrapf(err, "input %d", i)
		}
		job.Items = append(job.Items, ji)
	}
	return job, nil
}

func (id JobItemDoc) build(raws *world.Raws) (world.JobItem, error) {
	t, err := parseItemType(id.Type)
	if err != nil {
		return world.JobItem{}, err
	}
	ji := NewJobItem(t, world.NoMaterial)
	if ji.Material, err = parseMaterial(raws, id.Material); err != nil {
		return ji, err
	}
	if ji.MaterialCategory, err = parseCategory(id.Category); err != nil {
		return ji, err
	}
	if ji.ItemSubtype, err = parseSubtype(raws, t, id.Subtype); err != nil {
		return ji, err
	}
	if id.Reagent != nil {
		ji.ReagentIndex = *id.Reagent
	}
	if id.Quantity > 0 {
		ji.Quantity = id.Quantity
	}
	return ji, nil
}

func (id ItemDoc) build(raws *world.Raws) (*world.Item, error) {
	t, err := parseItemType(id.Type)
	if err != nil {
		return nil, err
	}
	mat, err := parseMaterial(raws, id.Material)
	if err != nil {
		return nil, err
	}
	item := NewItem(id.ID, t, mat)
	if item.Subtype, err = parseSubtype(raws, t, id.Subtype); err != nil {
		return nil, err
	}
	if id.Stack > 0 {
		item.Stack = id.Stack
	}
	item.Dimension = id.Dimension
	item.StockpileID = id.Stockpile

	flags, ok := world.ParseItemFlags(id.Flags)
	if !ok {
		return nil, errors.NewLookupError("unknown item flag in %v", id.Flags)
	}
	item.Flags = flags

	for _, rd := range id.Refs {
		kind, ok := world.ParseRefKind(rd.Kind)
		if !ok {
			return nil, errors.NewLookupError("unknown ref kind: %s", rd.Kind)
		}
		item.Refs = append(item.Refs, world.ItemRef{Kind: kind, ItemID: rd.Item, UnitID: rd.Unit, BuildingID: rd.Building})
	}
	for _, jr := range id.Jobs {
		item.JobRefs = append(item.JobRefs, world.JobRef{Kind: world.JobRefKind(jr.Kind), JobID: jr.Job})
	}
	return item, nil
}

// Document renders the world as a fixture. Raws are written back only when
// the world was loaded with an explicit raws section.
func (w *World) Document() *Document {
	doc := &Document{
		Session: w.session,
		Frame:   w.frame,
		Raws:    w.rawsDoc,
	}

	for _, id := range w.buildingIDs() {
		b := w.buildings[id]
		doc.Buildings = append(doc.Buildings, BuildingDoc{ID: b.ID, Name: b.Name})
	}

	for _, job := range w.jobs {
		doc.Jobs = append(doc.Jobs, w.jobDoc(job))
	}

	items := append([]*world.Item(nil), w.items...)
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	for _, item := range items {
		doc.Items = append(doc.Items, w.itemDoc(item))
	}

	if w.selectedBuilding >= 0 || w.selectedJob >= 0 {
		sel := &SelectionDoc{}
		if w.selectedBuilding >= 0 {
			sel.Building = w.selectedBuilding
		}
		if w.selectedJob >= 0 {
			sel.Job = w.selectedJob
		}
		doc.Selection = sel
	}
	return doc
}

func (w *World) materialToken(ref world.MaterialRef) string {
	if ref.Type < 0 {
		return ""
	}
	return world.DecodeRef(w.raws, ref).Token()
}

func (w *World) subtypeToken(t world.ItemType, subtype int16) string {
	if subtype < 0 {
		return ""
	}
	if def := w.raws.ItemDef(t, subtype); def != nil {
		return def.ID
	}
	return ""
}

func (w *World) jobDoc(job *world.Job) JobDoc {
	jd := JobDoc{
		ID:        job.ID,
		Type:      job.Type.String(),
		Subtype:   w.subtypeToken(job.Type.Attrs().Item, job.ItemSubtype),
		Material:  w.materialToken(job.Material),
		Category:  job.MaterialCategory.String(),
		Reaction:  job.ReactionName,
		Repeat:    job.Flags.Repeat,
		Suspend:   job.Flags.Suspend,
		MiscLinks: job.MiscLinks,
	}
	if job.HolderID > 0 {
		jd.Holder = job.HolderID
	}
	for _, ji := range job.Items {
		doc := JobItemDoc{
			Type:     ji.ItemType.String(),
			Subtype:  w.subtypeToken(ji.ItemType, ji.ItemSubtype),
			Material: w.materialToken(ji.Material),
			Category: ji.MaterialCategory.String(),
			Quantity: ji.Quantity,
		}
		if ji.ReagentIndex >= 0 {
			idx := ji.ReagentIndex
			doc.Reagent = &idx
		}
		jd.Items = append(jd.Items, doc)
	}
	return jd
}

func (w *World) itemDoc(item *world.Item) ItemDoc {
	doc := ItemDoc{
		ID:        item.ID,
		Type:      item.Type.String(),
		Subtype:   w.subtypeToken(item.Type, item.Subtype),
		Material:  w.materialToken(item.Material),
		Stack:     item.Stack,
		Dimension: item.Dimension,
		Flags:     item.Flags.Names(),
		Stockpile: item.StockpileID,
	}
	for _, ref := range item.Refs {
		doc.Refs = append(doc.Refs, RefDoc{Kind: ref.Kind.String(), Item: ref.ItemID, Unit: ref.UnitID, Building: ref.BuildingID})
	}
	for _, jr := range item.JobRefs {
		doc.Jobs = append(doc.Jobs, JobRefDoc{Kind: int(jr.Kind), Job: jr.JobID})
	}
	return doc
}
