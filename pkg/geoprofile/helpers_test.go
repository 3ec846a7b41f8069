package geoprofile

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/beetlebugorg/geoprofile/internal/monitoring"
)

func init() {
	monitoring.SetLogger(nil)
}

// sandRows classify as 10000 throughout (Rf 0.5 %)
var sandRows = []string{
	"0.5 10.0 0.05",
	"1.0 10.0 0.05",
	"1.5 10.0 0.05",
}

// gefSource renders a minimal CPT file at RD position (x, y).
func gefSource(x, y, z float64, rows []string) string {
	header := []string{
		"#GEFID= 1, 1, 0",
		"#COLUMN= 3",
		"#COLUMNINFO= 1, m, penetration length, 1",
		"#COLUMNINFO= 2, MPa, cone resistance, 2",
		"#COLUMNINFO= 3, MPa, friction force, 3",
		fmt.Sprintf("#XYID= 31000, %.3f, %.3f", x, y),
		fmt.Sprintf("#ZID= 31000, %.2f", z),
		"#REPORTCODE= GEF-CPT-Report, 1, 1, 0",
		"#STARTDATE= 2021, 3, 4",
		"#EOH=",
	}
	return strings.Join(append(header, rows...), "\n") + "\n"
}

// writeGEF writes a CPT file into dir and returns its path.
func writeGEF(t *testing.T, dir, name string, x, y float64) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(gefSource(x, y, 1.0, sandRows)), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

// writeFile writes arbitrary content into dir and returns its path.
func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}
