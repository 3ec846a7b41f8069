// Command geoprofile imports GEF soundings into a SQLite profile store and
// compiles cross-sections from it.
//
// Usage:
//
//	geoprofile [-db file] import DIR|FILE...
//	geoprofile [-db file] import-profiles FILE
//	geoprofile [-db file] profiles
//	geoprofile [-db file] soiltypes [-load catalogue.yaml]
//	geoprofile [-db file] section LAT,LON LAT,LON [LAT,LON...]
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/beetlebugorg/geoprofile/internal/config"
	"github.com/beetlebugorg/geoprofile/internal/monitoring"
	"github.com/beetlebugorg/geoprofile/pkg/geoprofile"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	var dbPath string
	var quiet bool
	flag.StringVar(&dbPath, "db", cfg.Database, "path to sqlite db")
	flag.BoolVar(&quiet, "q", false, "suppress diagnostic logging")
	flag.Usage = usage
	flag.Parse()

	if quiet {
		monitoring.SetLogger(nil)
	}
	if flag.NArg() < 1 {
		usage()
		os.Exit(2)
	}

	if err := run(dbPath, cfg, flag.Args()); err != nil {
		log.Fatalf("%s: %v", flag.Arg(0), err)
	}
}

// run opens the store, runs one command and closes the store again.
func run(dbPath string, cfg config.Config, args []string) (err error) {
	if len(args) == 0 {
		return fmt.Errorf("no command given")
	}
	repo, err := geoprofile.OpenSQLite(dbPath)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer func() {
		if cerr := repo.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close db: %w", cerr)
		}
	}()

	opts := geoprofile.DefaultWorkspaceOptions()
	opts.Load.MinInterval = cfg.MinInterval
	opts.Load.Workers = cfg.Workers
	opts.LinearSearch = cfg.LinearSearch

	ws, err := geoprofile.OpenWorkspace(repo, opts)
	if err != nil {
		return fmt.Errorf("open workspace: %w", err)
	}
	if cfg.SoilTypes != "" {
		if err := loadSoilTypes(ws, cfg.SoilTypes); err != nil {
			return fmt.Errorf("soil types: %w", err)
		}
	}
	return dispatch(ws, args[0], args[1:])
}

func dispatch(ws *geoprofile.Workspace, cmd string, args []string) error {
	switch cmd {
	case "import":
		return runImport(ws, args)
	case "import-profiles":
		return runImportProfiles(ws, args)
	case "profiles":
		return runProfiles(ws)
	case "soiltypes":
		return runSoilTypes(ws, args)
	case "section":
		return runSection(ws, args)
	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func usage() {
	fmt.Fprintf(flag.CommandLine.Output(), `usage: geoprofile [flags] command [args]

commands:
  import DIR|FILE...            import GEF soundings (directories, .gef and .zip files)
  import-profiles FILE          import pre-classified layer text
  profiles                      list stored profiles
  soiltypes [-load FILE]        list soil types, optionally loading a YAML catalogue first
  section LAT,LON LAT,LON...    compile a cross-section along a path

flags:
`)
	flag.PrintDefaults()
}

func runImport(ws *geoprofile.Workspace, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("no input given")
	}

	var files []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return err
		}
		if info.IsDir() {
			report, err := ws.ImportDir(arg)
			if report != nil {
				printReport(report)
			}
			if err != nil {
				return err
			}
			continue
		}
		if strings.EqualFold(filepath.Ext(arg), ".zip") {
			entries, err := geoprofile.ZipEntries(arg)
			if err != nil {
				return err
			}
			files = append(files, entries...)
			continue
		}
		files = append(files, arg)
	}

	if len(files) > 0 {
		report, err := ws.ImportFiles(files)
		if report != nil {
			printReport(report)
		}
		return err
	}
	return nil
}

func printReport(r *geoprofile.ImportReport) {
	for _, line := range r.Log {
		fmt.Println(line)
	}
}

func runImportProfiles(ws *geoprofile.Workspace, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("want exactly one file")
	}
	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	ids, err := ws.ImportProfilesText(f)
	if err != nil {
		return err
	}
	fmt.Printf("imported %d profiles\n", len(ids))
	return nil
}

func runProfiles(ws *geoprofile.Workspace) error {
	profiles, err := ws.ListProfiles()
	if err != nil {
		return err
	}
	for _, p := range profiles {
		top, bottom, _ := p.Extent()
		fmt.Printf("%5d  %-20s  %-16s  %10.2f %10.2f  %7.2f .. %7.2f  %2d layers\n",
			p.ID, p.Name, p.Source, p.X, p.Y, top, bottom, p.Len())
	}
	return nil
}

func runSoilTypes(ws *geoprofile.Workspace, args []string) error {
	fs := flag.NewFlagSet("soiltypes", flag.ExitOnError)
	load := fs.String("load", "", "YAML soil type catalogue to store first")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *load != "" {
		if err := loadSoilTypes(ws, *load); err != nil {
			return err
		}
	}

	types, err := ws.SoilTypes()
	if err != nil {
		return err
	}
	for _, st := range types {
		fmt.Printf("%6d  %-28s  ydry %5.1f  ysat %5.1f  c %5.1f  phi %5.1f  %s\n",
			st.ID, st.Name, st.DryWeight, st.SaturatedWeight, st.Cohesion, st.FrictionAngle, st.Source)
	}
	return nil
}

func loadSoilTypes(ws *geoprofile.Workspace, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	n, err := ws.LoadSoilTypes(f)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	monitoring.Logf("loaded %d soil types from %s", n, path)
	return nil
}

func runSection(ws *geoprofile.Workspace, args []string) error {
	path := make([]geoprofile.LatLon, 0, len(args))
	for _, arg := range args {
		ll, err := parseLatLon(arg)
		if err != nil {
			return err
		}
		path = append(path, ll)
	}
	if len(path) < 2 {
		return fmt.Errorf("a section needs at least two points")
	}

	cs, err := ws.CompileSection(path)
	if err != nil {
		return err
	}
	profiles, err := ws.SectionProfiles(cs)
	if err != nil {
		return err
	}
	names := make(map[int]string, len(profiles))
	for _, p := range profiles {
		names[p.ID] = p.Name
	}

	fmt.Printf("section %s: %.1f m, elevation %.2f .. %.2f\n",
		cs.ID, cs.Length(), cs.MaxElevation, cs.MinElevation)
	for _, iv := range cs.Intervals {
		name := "-"
		if iv.ProfileID != geoprofile.NoProfile {
			name = names[iv.ProfileID]
		}
		fmt.Printf("%10.1f %10.1f  %5d  %s\n", iv.Start, iv.End, iv.ProfileID, name)
	}
	if cs.Unmatched > 0 {
		fmt.Printf("%d of %d samples matched no profile\n", cs.Unmatched, cs.Samples)
	}

	types, err := ws.SectionSoilTypes(cs)
	if err != nil {
		return err
	}
	for _, st := range types {
		fmt.Printf("soil type %d  %s  %s\n", st.ID, st.Name, st.Color)
	}
	return nil
}

func parseLatLon(s string) (geoprofile.LatLon, error) {
	a, b, ok := strings.Cut(s, ",")
	if !ok {
		return geoprofile.LatLon{}, fmt.Errorf("invalid point %q, want LAT,LON", s)
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(a), 64)
	if err != nil {
		return geoprofile.LatLon{}, fmt.Errorf("invalid latitude %q", a)
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(b), 64)
	if err != nil {
		return geoprofile.LatLon{}, fmt.Errorf("invalid longitude %q", b)
	}
	return geoprofile.LatLon{Lat: lat, Lon: lon}, nil
}
