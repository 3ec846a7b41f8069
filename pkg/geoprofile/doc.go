// Package geoprofile turns GEF cone penetration tests into vertical soil
// profiles and compiles those profiles along a path into 2D cross-sections.
//
// # Basic Usage
//
//	parser := geoprofile.NewParser()
//	sounding, err := parser.Parse("CPT-001.gef")
//	if err != nil {
//	    log.Fatal(err) // a *geoprofile.FormatError naming file and line
//	}
//
//	profile, err := geoprofile.Compile(sounding, 0.1)
//	for _, l := range profile.Layers() {
//	    fmt.Printf("%.2f .. %.2f: %d\n", l.Top, l.Bottom, l.SoilTypeID)
//	}
//
// # Workspace
//
// A Workspace binds a repository (in memory or SQLite) to the parser and the
// section compiler. It holds the working set of profiles: edits are made on
// the working set and written back with SaveChanges.
//
//	repo, _ := geoprofile.OpenSQLite("profiles.db")
//	ws, err := geoprofile.OpenWorkspace(repo, geoprofile.DefaultWorkspaceOptions())
//
//	report, err := ws.ImportDir("/data/cpts")
//	for _, line := range report.Log {
//	    fmt.Println(line)
//	}
//
//	cs, err := ws.CompileSection([]geoprofile.LatLon{
//	    {Lat: 52.10, Lon: 5.10},
//	    {Lat: 52.12, Lon: 5.14},
//	})
//	for _, iv := range cs.Intervals {
//	    fmt.Printf("%6.0f - %6.0f m: profile %d\n", iv.Start, iv.End, iv.ProfileID)
//	}
//
// # Exporters
//
// A CrossSection refers to profiles by id. SectionProfiles and
// SectionSoilTypes resolve them; an id that cannot be resolved is reported
// as an error wrapping ErrNotFound, never skipped.
//
// # Coordinates
//
// Planar positions are Dutch RD (Amersfoort) metres. Geographic positions are
// WGS84 degrees converted with fixed polynomial approximations; converting
// back and forth drifts by millimetres.
package geoprofile
