package geoprofile

import (
	"archive/zip"
	"fmt"
	"io"
	"strings"

	"github.com/beetlebugorg/geoprofile/internal/gef"
)

// Parser parses GEF cone penetration test files.
//
// Create a parser with NewParser and use Parse or ParseWithOptions to read
// soundings.
type Parser interface {
	// Parse reads a GEF file and returns the sounding.
	//
	// The filename may also name an entry inside a zip archive as
	// zip:///path/to/archive.zip!dir/CPT-001.gef. Any rejection is a
	// *FormatError naming the file and, where known, the line.
	Parse(filename string) (*Sounding, error)

	// ParseWithOptions parses a GEF file with custom options.
	ParseWithOptions(filename string, opts ParseOptions) (*Sounding, error)

	// ParseReader parses a GEF stream. name is used as the file name of the
	// sounding and in error messages.
	ParseReader(r io.Reader, name string) (*Sounding, error)
}

// NewParser creates a GEF parser with default options.
//
// Example:
//
//	parser := geoprofile.NewParser()
//	sounding, err := parser.Parse("CPT-001.gef")
func NewParser() Parser {
	return NewParserWithOptions(DefaultParseOptions())
}

// NewParserWithOptions creates a parser that applies opts to every file.
func NewParserWithOptions(opts ParseOptions) Parser {
	return &parserWrapper{opts: opts}
}

// parserWrapper binds options to the internal reader
type parserWrapper struct {
	opts ParseOptions
}

func (p *parserWrapper) Parse(filename string) (*Sounding, error) {
	return p.ParseWithOptions(filename, p.opts)
}

func (p *parserWrapper) ParseWithOptions(filename string, opts ParseOptions) (*Sounding, error) {
	// Check if this is a zip:// URL for streaming from zip
	if strings.HasPrefix(filename, "zip://") {
		return parseFromZip(filename, opts)
	}
	return gef.ParseFile(filename, opts.internal())
}

func (p *parserWrapper) ParseReader(r io.Reader, name string) (*Sounding, error) {
	return gef.Parse(r, name, p.opts.internal())
}

// parseFromZip parses a GEF file directly from a zip archive without extracting to disk.
// Format: zip:///path/to/file.zip!path/within/zip.gef
func parseFromZip(zipURL string, opts ParseOptions) (*Sounding, error) {
	zipPath, entryPath, ok := strings.Cut(strings.TrimPrefix(zipURL, "zip://"), "!")
	if !ok || entryPath == "" {
		return nil, fmt.Errorf("invalid zip URL format: %s (expected zip://path!entry)", zipURL)
	}

	r, err := zip.OpenReader(zipPath)
	if err != nil {
		return nil, fmt.Errorf("open zip: %w", err)
	}
	defer r.Close()

	var entry *zip.File
	for _, f := range r.File {
		if f.Name == entryPath {
			entry = f
			break
		}
	}
	if entry == nil {
		return nil, fmt.Errorf("file not found in zip: %s", entryPath)
	}

	rc, err := entry.Open()
	if err != nil {
		return nil, fmt.Errorf("open zip entry: %w", err)
	}
	defer rc.Close()

	return gef.Parse(rc, entryPath, opts.internal())
}

// ZipEntries lists zip:// paths for every .gef entry of an archive, in
// archive order.
func ZipEntries(zipPath string) ([]string, error) {
	r, err := zip.OpenReader(zipPath)
	if err != nil {
		return nil, fmt.Errorf("open zip: %w", err)
	}
	defer r.Close()

	var paths []string
	for _, f := range r.File {
		if f.FileInfo().IsDir() || !isGEF(f.Name) {
			continue
		}
		paths = append(paths, "zip://"+zipPath+"!"+f.Name)
	}
	return paths, nil
}

func isGEF(name string) bool {
	return strings.EqualFold(pathExt(name), ".gef")
}

// pathExt is filepath.Ext for both slash styles, zip names always use '/'
func pathExt(name string) string {
	if i := strings.LastIndexAny(name, "/\\"); i >= 0 {
		name = name[i+1:]
	}
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		return name[i:]
	}
	return ""
}
