// Package gef reads cone penetration tests (CPT) from GEF files.
//
// A GEF file is line oriented. A header of "#KEYWORD = arg, arg, ..." lines is
// closed by an "#EOH" line and followed by delimiter-separated data rows whose
// column layout is declared in the header.
//
// The reader is a two-state machine: stateHeader collects declarations and
// leaves only through the #EOH guard, which requires the depth, cone resistance
// and friction force columns, the CPT report marker and a position. stateData
// converts rows to samples. Every violation aborts the file with a
// *FormatError; a partial sounding is never returned.
package gef

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/beetlebugorg/geoprofile/internal/projection"
)

// Quantity codes used in #COLUMNINFO.
const (
	QuantityPenetrationLength          = 1
	QuantityConeResistance             = 2
	QuantityFrictionForce              = 3
	QuantityFrictionRatio              = 4
	QuantityCorrectedPenetrationLength = 11
)

// Options configures parsing behavior.
type Options struct {
	// TypeMarker must appear (case-insensitive) on a #REPORTCODE or
	// #PROCEDURECODE line for the file to be accepted as a CPT.
	TypeMarker string

	// DefaultVoid is the void sentinel of every column without a #COLUMNVOID.
	DefaultVoid float64

	// MinConeResistance clamps qc before the friction ratio is derived.
	MinConeResistance float64
}

// DefaultOptions returns parse options with defaults
func DefaultOptions() Options {
	return Options{
		TypeMarker:        "CPT-REPORT",
		DefaultVoid:       9999,
		MinConeResistance: 0.01,
	}
}

type scanState int

const (
	stateHeader scanState = iota
	stateData
)

func (s scanState) String() string {
	switch s {
	case stateHeader:
		return "header"
	case stateData:
		return "data"
	default:
		return "unknown"
	}
}

// columns holds 0-based indices of the mapped quantities, -1 when unmapped.
type columns struct {
	depth, qc, fs, rf int
}

type reader struct {
	opts  Options
	file  string
	line  int
	state scanState

	cols     columns
	declared map[int]bool    // every column named by #COLUMNINFO
	voids    map[int]float64 // #COLUMNVOID per column index
	sep      string
	recSep   string
	isCPT    bool
	hasXY    bool

	meta    Metadata
	samples []Sample
}

// ParseFile opens and parses a GEF file.
func ParseFile(path string, opts Options) (*Sounding, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	return Parse(f, path, opts)
}

// Parse reads a GEF stream. filename is used for the sounding name and in
// error messages.
//
// Example:
//
//	s, err := gef.Parse(f, "CPT-001.gef", gef.DefaultOptions())
//	var fe *gef.FormatError
//	if errors.As(err, &fe) {
//	    log.Println(fe)
//	}
func Parse(r io.Reader, filename string, opts Options) (*Sounding, error) {
	if opts.TypeMarker == "" {
		opts.TypeMarker = DefaultOptions().TypeMarker
	}
	if opts.MinConeResistance <= 0 {
		opts.MinConeResistance = DefaultOptions().MinConeResistance
	}

	rd := &reader{
		opts:     opts,
		file:     filename,
		state:    stateHeader,
		cols:     columns{depth: -1, qc: -1, fs: -1, rf: -1},
		declared: make(map[int]bool),
		voids:    make(map[int]float64),
		sep:      " ",
	}
	rd.meta.FileName = filename
	rd.meta.Name = soundingName(filename)

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		rd.line++
		var err error
		switch rd.state {
		case stateHeader:
			err = rd.header(sc.Text())
		case stateData:
			err = rd.data(sc.Text())
		}
		if err != nil {
			return nil, err
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", filename, err)
	}

	if rd.state != stateData {
		return nil, rd.fail(0, ErrMissingHeaderEnd, "file ended in %s", rd.state)
	}
	if len(rd.samples) == 0 {
		return nil, rd.fail(0, ErrNoSamples, "")
	}

	rd.meta.BottomElevation = rd.samples[len(rd.samples)-1].Elevation
	return &Sounding{meta: rd.meta, samples: rd.samples}, nil
}

func (rd *reader) fail(line int, kind error, format string, args ...interface{}) *FormatError {
	return &FormatError{
		File:   rd.file,
		Line:   line,
		Kind:   kind,
		Detail: fmt.Sprintf(format, args...),
	}
}

func (rd *reader) header(line string) error {
	if strings.TrimSpace(line) == "" {
		return nil
	}
	if strings.Contains(line, "#EOH") {
		return rd.endHeader()
	}

	keyword, rest, ok := strings.Cut(line, "=")
	if !ok {
		return rd.fail(rd.line, ErrMalformedHeader, "expected KEYWORD = value, got %q", line)
	}
	keyword = strings.ToUpper(strings.TrimSpace(keyword))
	args := strings.Split(rest, ",")
	for i := range args {
		args[i] = strings.TrimSpace(args[i])
	}

	switch keyword {
	case "#COLUMNINFO":
		return rd.columnInfo(args)
	case "#COLUMNVOID":
		return rd.columnVoid(args)
	case "#STARTDATE":
		date, err := rd.date(args)
		if err != nil {
			return err
		}
		rd.meta.Date = date
	case "#FILEDATE":
		// Only a fallback for files without #STARTDATE
		if rd.meta.Date.IsZero() {
			date, err := rd.date(args)
			if err != nil {
				return err
			}
			rd.meta.Date = date
		}
	case "#COLUMNSEPARATOR":
		if args[0] != "" {
			rd.sep = args[0][:1]
		}
	case "#RECORDSEPARATOR":
		rd.recSep = args[0]
	case "#REPORTCODE", "#PROCEDURECODE":
		if strings.Contains(strings.ToUpper(line), strings.ToUpper(rd.opts.TypeMarker)) {
			rd.isCPT = true
		}
	case "#ZID":
		z, err := rd.number(args, 1, "Z coord")
		if err != nil {
			return err
		}
		rd.meta.TopElevation = z
	case "#XYID":
		x, err := rd.number(args, 1, "X coord")
		if err != nil {
			return err
		}
		y, err := rd.number(args, 2, "Y coord")
		if err != nil {
			return err
		}
		rd.meta.X, rd.meta.Y = x, y
		rd.meta.Latitude, rd.meta.Longitude = projection.FromRD(x, y)
		rd.hasXY = true
	}
	return nil
}

// endHeader is the only transition out of stateHeader.
func (rd *reader) endHeader() error {
	if rd.cols.qc < 0 || rd.cols.fs < 0 {
		return rd.fail(rd.line, ErrMissingColumn, "found gef file without qc or fs")
	}
	if rd.cols.depth < 0 {
		return rd.fail(rd.line, ErrMissingColumn, "found gef file without columninfo for z")
	}
	if !rd.isCPT {
		return rd.fail(rd.line, ErrNotCPT, "")
	}
	if !rd.hasXY {
		return rd.fail(rd.line, ErrMissingPosition, "")
	}
	rd.state = stateData
	return nil
}

func (rd *reader) columnInfo(args []string) error {
	if len(args) < 4 {
		return rd.fail(rd.line, ErrMalformedHeader, "#COLUMNINFO needs 4 arguments, got %d", len(args))
	}
	col, err := strconv.Atoi(args[0])
	if err != nil || col < 1 {
		return rd.fail(rd.line, ErrInvalidNumber, "column number %q", args[0])
	}
	quantity, err := strconv.Atoi(args[3])
	if err != nil {
		return rd.fail(rd.line, ErrInvalidNumber, "quantity %q", args[3])
	}

	idx := col - 1
	rd.declared[idx] = true
	switch quantity {
	case QuantityPenetrationLength, QuantityCorrectedPenetrationLength:
		rd.cols.depth = idx
	case QuantityConeResistance:
		rd.cols.qc = idx
	case QuantityFrictionForce:
		rd.cols.fs = idx
	case QuantityFrictionRatio:
		rd.cols.rf = idx
	}
	return nil
}

func (rd *reader) columnVoid(args []string) error {
	if len(args) < 2 {
		return rd.fail(rd.line, ErrMalformedHeader, "#COLUMNVOID needs 2 arguments, got %d", len(args))
	}
	col, err := strconv.Atoi(args[0])
	if err != nil || col < 1 {
		return rd.fail(rd.line, ErrInvalidNumber, "column number %q", args[0])
	}
	if !rd.declared[col-1] {
		return rd.fail(rd.line, ErrVoidBeforeColumn, "column %d", col)
	}
	void, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		return rd.fail(rd.line, ErrInvalidNumber, "void value %q", args[1])
	}
	rd.voids[col-1] = void
	return nil
}

func (rd *reader) date(args []string) (time.Time, error) {
	if len(args) < 3 {
		return time.Time{}, rd.fail(rd.line, ErrMalformedHeader, "date needs year, month, day")
	}
	var ymd [3]int
	for i := range ymd {
		v, err := strconv.Atoi(args[i])
		if err != nil {
			return time.Time{}, rd.fail(rd.line, ErrInvalidNumber, "date component %q", args[i])
		}
		ymd[i] = v
	}
	return time.Date(ymd[0], time.Month(ymd[1]), ymd[2], 0, 0, 0, 0, time.UTC), nil
}

func (rd *reader) number(args []string, i int, what string) (float64, error) {
	if i >= len(args) {
		return 0, rd.fail(rd.line, ErrMalformedHeader, "missing %s", what)
	}
	v, err := strconv.ParseFloat(args[i], 64)
	if err != nil {
		return 0, rd.fail(rd.line, ErrInvalidNumber, "Invalid %s: %s", what, args[i])
	}
	return v, nil
}

func (rd *reader) void(col int) float64 {
	if v, ok := rd.voids[col]; ok {
		return v
	}
	return rd.opts.DefaultVoid
}

func (rd *reader) data(line string) error {
	line = strings.TrimSpace(line)
	if rd.recSep != "" {
		line = strings.TrimSuffix(line, rd.recSep)
	}
	if line == "" {
		return nil
	}

	var tokens []string
	for _, tok := range strings.Split(line, rd.sep) {
		if tok = strings.TrimSpace(tok); tok != "" {
			tokens = append(tokens, tok)
		}
	}

	value := func(col int, what string) (float64, error) {
		if col >= len(tokens) {
			return 0, rd.fail(rd.line, ErrShortRow, "no %s in column %d", what, col+1)
		}
		v, err := strconv.ParseFloat(tokens[col], 64)
		if err != nil {
			return 0, rd.fail(rd.line, ErrInvalidNumber, "Invalid %s value: %s", what, tokens[col])
		}
		return v, nil
	}

	qc, err := value(rd.cols.qc, "qc")
	if err != nil {
		return err
	}
	fs, err := value(rd.cols.fs, "fs")
	if err != nil {
		return err
	}
	if qc == rd.void(rd.cols.qc) || fs == rd.void(rd.cols.fs) {
		return nil
	}

	depth, err := value(rd.cols.depth, "dz")
	if err != nil {
		return err
	}

	var rf float64
	if rd.cols.rf >= 0 {
		if rf, err = value(rd.cols.rf, "wg"); err != nil {
			return err
		}
	} else {
		rf = fs / math.Max(qc, rd.opts.MinConeResistance) * 100
	}

	rd.samples = append(rd.samples, Sample{
		Depth:          math.Abs(depth),
		Elevation:      rd.meta.TopElevation - math.Abs(depth),
		ConeResistance: qc,
		FrictionForce:  fs,
		FrictionRatio:  rf,
	})
	return nil
}

// soundingName strips directories and every extension: "a/CPT-01.GEF" → "CPT-01".
func soundingName(filename string) string {
	name, _, _ := strings.Cut(filepath.Base(filename), ".")
	return name
}
