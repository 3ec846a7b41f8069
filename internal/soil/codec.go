package soil

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/beetlebugorg/geoprofile/internal/projection"
)

// SourceText labels profiles read with ReadProfiles.
const SourceText = "Geoprofile"

// MarshalLayers encodes layers as "top;bottom;soiltype" lines with
// elevations rounded to centimetres.
func MarshalLayers(layers []Layer) []byte {
	var buf bytes.Buffer
	for _, l := range layers {
		fmt.Fprintf(&buf, "%.2f;%.2f;%d\n", l.Top, l.Bottom, l.SoilTypeID)
	}
	return buf.Bytes()
}

// ParseLayers decodes the output of MarshalLayers. Blank lines are skipped.
func ParseLayers(data []byte) ([]Layer, error) {
	var layers []Layer
	for i, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		f := splitFields(line)
		if len(f) != 3 {
			return nil, fmt.Errorf("layer line %d: want top;bottom;soiltype, got %q", i+1, line)
		}
		l, err := parseLayer(f[0], f[1], f[2])
		if err != nil {
			return nil, fmt.Errorf("layer line %d: %w", i+1, err)
		}
		layers = append(layers, l)
	}
	return layers, nil
}

func parseLayer(top, bottom, id string) (Layer, error) {
	var l Layer
	var err error
	if l.Top, err = strconv.ParseFloat(top, 64); err != nil {
		return l, fmt.Errorf("invalid top %q", top)
	}
	if l.Bottom, err = strconv.ParseFloat(bottom, 64); err != nil {
		return l, fmt.Errorf("invalid bottom %q", bottom)
	}
	if l.SoilTypeID, err = strconv.Atoi(id); err != nil {
		return l, fmt.Errorf("invalid soil type %q", id)
	}
	return l, nil
}

func splitFields(line string) []string {
	f := strings.Split(line, ";")
	for i := range f {
		f[i] = strings.TrimSpace(f[i])
	}
	return f
}

// ReadProfiles reads hand-classified profiles from text. Each profile is a
// block:
//
//	#name
//	x;y
//	top;bottom;soiltype
//	bottom;soiltype
//	...
//
// The first layer line gives both elevations, the following lines only the
// bottom, the top being the bottom of the line before. A block ends at a
// blank line, the next '#' line or the end of input. Positions are RD
// coordinates; latitude and longitude are derived.
func ReadProfiles(r io.Reader) ([]*Profile, error) {
	sc := bufio.NewScanner(r)
	lineNo := 0
	next := func() (string, bool) {
		if !sc.Scan() {
			return "", false
		}
		lineNo++
		return strings.TrimSpace(sc.Text()), true
	}

	var profiles []*Profile
	line, ok := next()
	for ok {
		if !strings.HasPrefix(line, "#") {
			// Anything between blocks is ignored
			line, ok = next()
			continue
		}

		p := &Profile{
			Name:   strings.TrimSpace(strings.ReplaceAll(line, "#", "")),
			Source: SourceText,
		}

		if line, ok = next(); !ok {
			return nil, fmt.Errorf("line %d: profile %q has no position", lineNo, p.Name)
		}
		xy := splitFields(line)
		if len(xy) < 2 {
			return nil, fmt.Errorf("line %d: want x;y, got %q", lineNo, line)
		}
		var err error
		if p.X, err = strconv.ParseFloat(xy[0], 64); err != nil {
			return nil, fmt.Errorf("line %d: invalid x %q", lineNo, xy[0])
		}
		if p.Y, err = strconv.ParseFloat(xy[1], 64); err != nil {
			return nil, fmt.Errorf("line %d: invalid y %q", lineNo, xy[1])
		}
		p.Latitude, p.Longitude = projection.FromRD(p.X, p.Y)

		if line, ok = next(); !ok {
			return nil, fmt.Errorf("line %d: profile %q has no layers", lineNo, p.Name)
		}
		f := splitFields(line)
		if len(f) < 3 {
			return nil, fmt.Errorf("line %d: want top;bottom;soiltype, got %q", lineNo, line)
		}
		first, err := parseLayer(f[0], f[1], f[2])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		p.AddLayer(first.Top, first.Bottom, first.SoilTypeID)
		prev := first.Bottom

		for {
			if line, ok = next(); !ok || line == "" || strings.HasPrefix(line, "#") {
				break
			}
			f := splitFields(line)
			if len(f) < 2 {
				return nil, fmt.Errorf("line %d: want bottom;soiltype, got %q", lineNo, line)
			}
			bottom, err := strconv.ParseFloat(f[0], 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: invalid bottom %q", lineNo, f[0])
			}
			id, err := strconv.Atoi(f[1])
			if err != nil {
				return nil, fmt.Errorf("line %d: invalid soil type %q", lineNo, f[1])
			}
			p.AddLayer(prev, bottom, id)
			prev = bottom
		}

		profiles = append(profiles, p)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read profiles: %w", err)
	}
	return profiles, nil
}
