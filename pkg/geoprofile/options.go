package geoprofile

import (
	"io"
	"runtime"

	"github.com/beetlebugorg/geoprofile/internal/gef"
	"github.com/beetlebugorg/geoprofile/internal/soil"
)

// ParseOptions configures parsing behavior.
type ParseOptions struct {
	// TypeMarker must appear on a #REPORTCODE or #PROCEDURECODE line
	// (case-insensitive). Default "CPT-REPORT".
	TypeMarker string

	// DefaultVoid is the void value of columns without #COLUMNVOID.
	DefaultVoid float64

	// MinConeResistance clamps qc [MPa] when deriving the friction ratio.
	MinConeResistance float64
}

// DefaultParseOptions returns default options.
func DefaultParseOptions() ParseOptions {
	o := gef.DefaultOptions()
	return ParseOptions{
		TypeMarker:        o.TypeMarker,
		DefaultVoid:       o.DefaultVoid,
		MinConeResistance: o.MinConeResistance,
	}
}

func (o ParseOptions) internal() gef.Options {
	return gef.Options{
		TypeMarker:        o.TypeMarker,
		DefaultVoid:       o.DefaultVoid,
		MinConeResistance: o.MinConeResistance,
	}
}

// LoadOptions tunes ImportSoundings.
type LoadOptions struct {
	// Parallel spreads the files over a pool of goroutines.
	Parallel bool

	// Workers is the pool size; 0 means runtime.NumCPU().
	Workers int

	// SkipErrors keeps going past files that fail and returns their errors
	// next to the good results. Unset, the first failure ends the import.
	SkipErrors bool

	// MinInterval is the layer band thickness [m]; 0 means 0.1.
	MinInterval float64

	// Progress receives the number of finished files and the total.
	Progress func(done, total int)

	// ErrorLog receives one line per failed file.
	ErrorLog io.Writer
}

// DefaultLoadOptions enables the pool at NumCPU workers and skips failed
// files.
func DefaultLoadOptions() LoadOptions {
	return LoadOptions{
		Parallel:    true,
		Workers:     runtime.NumCPU(),
		SkipErrors:  true,
		MinInterval: soil.DefaultMinInterval,
	}
}

// WorkspaceOptions configures a Workspace.
type WorkspaceOptions struct {
	Parse ParseOptions
	Load  LoadOptions

	// LinearSearch makes CompileSection scan all profiles for every sample
	// instead of querying an R-tree. Results are identical.
	LinearSearch bool
}

// DefaultWorkspaceOptions returns workspace options with defaults.
func DefaultWorkspaceOptions() WorkspaceOptions {
	return WorkspaceOptions{
		Parse: DefaultParseOptions(),
		Load:  DefaultLoadOptions(),
	}
}
