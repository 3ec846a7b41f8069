package geoprofile

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/beetlebugorg/geoprofile/internal/monitoring"
	"github.com/beetlebugorg/geoprofile/internal/projection"
	"github.com/beetlebugorg/geoprofile/internal/section"
	"github.com/beetlebugorg/geoprofile/internal/soil"
	"github.com/beetlebugorg/geoprofile/internal/spatial"
)

// boundsTolerance pads geographic index rectangles [deg]
const boundsTolerance = 1e-7

// Workspace is an editing session over a repository.
//
// It keeps a working set of profiles loaded from the repository. Imports are
// stored straight away; edits made through AddProfileAt, Edit and
// RemoveProfile stay in the working set until SaveChanges. Cross-sections
// compiled in the session are kept in memory only.
//
// A Workspace is safe for concurrent use. Each compilation works on a
// snapshot of the working set taken when it starts.
type Workspace struct {
	repo   Repository
	opts   WorkspaceOptions
	parser Parser

	mu       sync.RWMutex
	profiles map[int]*soil.Profile
	removed  map[int]bool
	sections []*section.CrossSection
}

// ImportReport summarizes a batch import.
type ImportReport struct {
	Files      int
	Imported   int
	Skipped    int // duplicate positions
	Failed     int // rejected by the parser
	ProfileIDs []int
	Log        []string
}

// OpenWorkspace loads the profiles of repo into a new workspace. An empty
// soil type table is seeded with the CUR162 catalogue. Zero ParseOptions
// select DefaultParseOptions.
func OpenWorkspace(repo Repository, opts WorkspaceOptions) (*Workspace, error) {
	if opts.Parse == (ParseOptions{}) {
		opts.Parse = DefaultParseOptions()
	}
	w := &Workspace{
		repo:     repo,
		opts:     opts,
		parser:   NewParserWithOptions(opts.Parse),
		profiles: make(map[int]*soil.Profile),
		removed:  make(map[int]bool),
	}

	profiles, err := repo.ListProfiles()
	if err != nil {
		return nil, fmt.Errorf("load profiles: %w", err)
	}
	for _, p := range profiles {
		p.MarkClean()
		w.profiles[p.ID] = p
	}

	if err := w.EnsureDefaultSoilTypes(); err != nil {
		return nil, err
	}
	return w, nil
}

// ListProfiles returns copies of the working set in ascending id order.
func (w *Workspace) ListProfiles() ([]*soil.Profile, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.snapshot(), nil
}

func (w *Workspace) snapshot() []*soil.Profile {
	out := make([]*soil.Profile, 0, len(w.profiles))
	for _, p := range w.profiles {
		out = append(out, p.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Profile returns a copy of a working profile.
func (w *Workspace) Profile(id int) (*Profile, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	p, ok := w.profiles[id]
	if !ok {
		return nil, fmt.Errorf("profile %d: %w", id, ErrNotFound)
	}
	return p.Clone(), nil
}

// Edit runs fn on the working profile id. The profile methods record
// whether anything changed; SaveChanges stores it if so.
//
// Example:
//
//	err := ws.Edit(3, func(p *geoprofile.Profile) error {
//	    return p.SetLayerType(0, 10002)
//	})
func (w *Workspace) Edit(id int, fn func(p *Profile) error) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	p, ok := w.profiles[id]
	if !ok {
		return fmt.Errorf("profile %d: %w", id, ErrNotFound)
	}
	return fn(p)
}

// AddProfileAt adds an empty profile at a geographic position to the working
// set and returns a copy of it. It gets the next id and is stored by
// SaveChanges.
func (w *Workspace) AddProfileAt(lat, lon float64, source string) *Profile {
	w.mu.Lock()
	defer w.mu.Unlock()

	id := w.nextID()
	x, y := projection.ToRD(lat, lon)
	p := &soil.Profile{
		ID:        id,
		Name:      fmt.Sprintf("profile %d", id),
		Source:    source,
		X:         x,
		Y:         y,
		Latitude:  lat,
		Longitude: lon,
	}
	p.MarkDirty()
	w.profiles[id] = p
	return p.Clone()
}

// nextID is one above the highest id in the working set, counting removed
// profiles that are not saved yet. Callers hold the write lock.
func (w *Workspace) nextID() int {
	highest := 0
	for id := range w.profiles {
		if id > highest {
			highest = id
		}
	}
	for id := range w.removed {
		if id > highest {
			highest = id
		}
	}
	return highest + 1
}

// RemoveProfile drops a profile from the working set. The repository row is
// deleted by SaveChanges.
func (w *Workspace) RemoveProfile(id int) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.profiles[id]; !ok {
		return fmt.Errorf("profile %d: %w", id, ErrNotFound)
	}
	delete(w.profiles, id)
	w.removed[id] = true
	return nil
}

// Dirty reports whether the working set has unsaved changes.
func (w *Workspace) Dirty() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if len(w.removed) > 0 {
		return true
	}
	for _, p := range w.profiles {
		if p.Dirty() {
			return true
		}
	}
	return false
}

// SaveChanges writes removed and changed profiles to the repository and
// returns how many were written.
func (w *Workspace) SaveChanges() (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	saved := 0
	for id := range w.removed {
		err := w.repo.DeleteProfile(id)
		if err != nil && !errors.Is(err, ErrNotFound) {
			return saved, fmt.Errorf("delete profile %d: %w", id, err)
		}
		delete(w.removed, id)
		saved++
	}

	ids := make([]int, 0, len(w.profiles))
	for id, p := range w.profiles {
		if p.Dirty() {
			ids = append(ids, id)
		}
	}
	sort.Ints(ids)
	for _, id := range ids {
		p := w.profiles[id]
		if _, err := w.repo.UpsertProfile(p); err != nil {
			return saved, fmt.Errorf("save profile %d: %w", id, err)
		}
		p.MarkClean()
		saved++
	}
	return saved, nil
}

// ImportDir imports every .gef file below dir, and every .gef entry of the
// .zip archives found there. Extensions match case-insensitively.
func (w *Workspace) ImportDir(dir string) (*ImportReport, error) {
	var paths []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		switch strings.ToLower(filepath.Ext(path)) {
		case ".gef":
			paths = append(paths, path)
		case ".zip":
			entries, err := ZipEntries(path)
			if err != nil {
				return err
			}
			paths = append(paths, entries...)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", dir, err)
	}
	return w.ImportFiles(paths)
}

// ImportFiles parses the given GEF files, converts each into a profile and
// stores profile and sounding metadata. A file whose position was imported
// before is skipped. Parse failures are written to the report log and do not
// stop the import; a repository failure does.
func (w *Workspace) ImportFiles(paths []string) (*ImportReport, error) {
	book := monitoring.NewLogbook(false)
	book.Logf("LOGBOOK import CPT files")
	report := &ImportReport{Files: len(paths)}

	load := w.opts.Load
	load.SkipErrors = true
	set, errs := ImportSoundings(paths, w.parser, load)
	for _, err := range errs {
		var fe *FormatError
		if errors.As(err, &fe) {
			book.Logf("%s", fe.Error())
		} else {
			book.Logf("ERROR %v", err)
		}
		report.Failed++
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	for _, item := range set.Soundings {
		meta := item.Sounding.Metadata()
		dup, err := w.repo.HasSoundingAt(meta.X, meta.Y)
		if err != nil {
			report.Log = book.Lines()
			return report, fmt.Errorf("check %s: %w", item.Path, err)
		}
		if dup {
			book.Logf("SKIPPED file %s because the x and y coordinate are not unique.", meta.FileName)
			report.Skipped++
			continue
		}

		item.Profile.ID = w.nextID()
		id, err := w.repo.UpsertProfile(item.Profile)
		if err != nil {
			report.Log = book.Lines()
			return report, fmt.Errorf("store profile %s: %w", item.Path, err)
		}
		item.Profile.MarkClean()
		w.profiles[id] = item.Profile

		if _, err := w.repo.AddSounding(SoundingRecord{
			ProfileID:       id,
			Name:            meta.Name,
			FileName:        meta.FileName,
			Date:            meta.Date,
			X:               meta.X,
			Y:               meta.Y,
			Latitude:        meta.Latitude,
			Longitude:       meta.Longitude,
			TopElevation:    meta.TopElevation,
			BottomElevation: meta.BottomElevation,
		}); err != nil {
			report.Log = book.Lines()
			return report, fmt.Errorf("store sounding %s: %w", item.Path, err)
		}

		book.Logf("Imported %s as profile %d (%d layers)", meta.FileName, id, item.Profile.Len())
		report.Imported++
		report.ProfileIDs = append(report.ProfileIDs, id)
	}

	book.Logf("%d files, %d imported, %d skipped, %d failed",
		report.Files, report.Imported, report.Skipped, report.Failed)
	report.Log = book.Lines()
	monitoring.Logf("import: %d of %d files imported", report.Imported, report.Files)
	return report, nil
}

// ImportProfilesText reads pre-classified profiles in the layer text format
// and stores them. It returns the new ids in input order.
func (w *Workspace) ImportProfilesText(r io.Reader) ([]int, error) {
	profiles, err := soil.ReadProfiles(r)
	if err != nil {
		return nil, fmt.Errorf("read profiles: %w", err)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	ids := make([]int, 0, len(profiles))
	for _, p := range profiles {
		p.ID = w.nextID()
		id, err := w.repo.UpsertProfile(p)
		if err != nil {
			return ids, fmt.Errorf("store profile %q: %w", p.Name, err)
		}
		p.MarkClean()
		w.profiles[id] = p
		ids = append(ids, id)
	}
	return ids, nil
}

// CompileSection compiles a cross-section along path over the working set
// and keeps it in the session.
func (w *Workspace) CompileSection(path []LatLon) (*CrossSection, error) {
	c := section.NewCompiler(w)
	if w.opts.LinearSearch {
		c.Finder = section.LinearFinder
	}
	cs, err := c.Compile(path)
	if err != nil {
		return nil, fmt.Errorf("compile section: %w", err)
	}

	w.mu.Lock()
	w.sections = append(w.sections, cs)
	w.mu.Unlock()
	return cs, nil
}

// Sections returns the cross-sections compiled in this session, oldest first.
func (w *Workspace) Sections() []*CrossSection {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return append([]*CrossSection(nil), w.sections...)
}

// ProfilesIn returns copies of the working profiles whose position lies
// within b, in ascending id order.
func (w *Workspace) ProfilesIn(b Bounds) []*Profile {
	w.mu.RLock()
	defer w.mu.RUnlock()

	entries := make([]spatial.Entry, 0, len(w.profiles))
	for id, p := range w.profiles {
		entries = append(entries, spatial.Entry{
			ID:    id,
			Point: projection.Point{X: p.Longitude, Y: p.Latitude},
		})
	}

	// The index query is padded; the final filter is the exact box
	q := b.Expand(boundsTolerance)
	sw := projection.Point{X: q.MinLon, Y: q.MinLat}
	ne := projection.Point{X: q.MaxLon, Y: q.MaxLat}
	var ids []int
	if w.opts.LinearSearch {
		ids = spatial.NewLinear(entries).Within(sw, ne)
	} else {
		ids = spatial.NewIndex(entries, boundsTolerance).Within(sw, ne)
	}

	out := make([]*Profile, 0, len(ids))
	for _, id := range ids {
		p := w.profiles[id]
		if b.Contains(p.Longitude, p.Latitude) {
			out = append(out, p.Clone())
		}
	}
	return out
}

// SectionsIn returns the session's cross-sections whose path bounding box
// intersects b, oldest first.
func (w *Workspace) SectionsIn(b Bounds) []*CrossSection {
	w.mu.RLock()
	defer w.mu.RUnlock()

	var out []*CrossSection
	for _, cs := range w.sections {
		if pb, ok := PathBounds(cs.Path); ok && b.Intersects(pb) {
			out = append(out, cs)
		}
	}
	return out
}

// SectionProfiles resolves the profiles a section passes, in path order.
// A profile that no longer exists is an error wrapping ErrNotFound.
func (w *Workspace) SectionProfiles(cs *CrossSection) ([]*Profile, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	ids := cs.ProfileIDs()
	out := make([]*Profile, 0, len(ids))
	for _, id := range ids {
		p, ok := w.profiles[id]
		if !ok {
			return nil, fmt.Errorf("section %s: profile %d: %w", cs.ID, id, ErrNotFound)
		}
		out = append(out, p.Clone())
	}
	return out, nil
}

// SectionSoilTypes resolves the soil types of a section in encounter order.
// An unknown soil type id is an error wrapping ErrNotFound.
func (w *Workspace) SectionSoilTypes(cs *CrossSection) ([]SoilType, error) {
	out := make([]SoilType, 0, len(cs.SoilTypeIDs))
	for _, id := range cs.SoilTypeIDs {
		st, err := w.repo.GetSoilType(id)
		if err != nil {
			return nil, fmt.Errorf("section %s: soil type %d: %w", cs.ID, id, err)
		}
		out = append(out, st)
	}
	return out, nil
}

// LoadSoilTypes reads a YAML soil type catalogue and stores every entry,
// replacing types with the same id. It returns the number stored.
func (w *Workspace) LoadSoilTypes(r io.Reader) (int, error) {
	types, err := soil.LoadSoilTypes(r)
	if err != nil {
		return 0, err
	}
	for i, st := range types {
		if err := w.repo.UpsertSoilType(st); err != nil {
			return i, fmt.Errorf("store soil type %d: %w", st.ID, err)
		}
	}
	return len(types), nil
}

// EnsureDefaultSoilTypes stores the CUR162 catalogue when the repository has
// no soil types yet.
func (w *Workspace) EnsureDefaultSoilTypes() error {
	existing, err := w.repo.ListSoilTypes()
	if err != nil {
		return fmt.Errorf("list soil types: %w", err)
	}
	if len(existing) > 0 {
		return nil
	}
	for _, st := range soil.DefaultSoilTypes() {
		if err := w.repo.UpsertSoilType(st); err != nil {
			return fmt.Errorf("store soil type %d: %w", st.ID, err)
		}
	}
	return nil
}

// SoilTypes returns the soil types of the repository in ascending id order.
func (w *Workspace) SoilTypes() ([]SoilType, error) {
	return w.repo.ListSoilTypes()
}

// ProfileSources returns the distinct source labels of the stored profiles.
func (w *Workspace) ProfileSources() ([]string, error) {
	return w.repo.ProfileSources()
}

// Soundings returns the metadata of every imported sounding.
func (w *Workspace) Soundings() ([]SoundingRecord, error) {
	return w.repo.ListSoundings()
}
