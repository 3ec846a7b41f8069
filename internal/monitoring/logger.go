// Package monitoring holds the process-wide diagnostic logger and a line
// collector for import logbooks.
package monitoring

import (
	"fmt"
	"log"
	"sync"
)

// Logf is the package-level diagnostic logger. It defaults to log.Printf and
// may be replaced by SetLogger; tests usually mute it.
var Logf func(format string, v ...interface{}) = log.Printf

// SetLogger replaces the package logger. Passing nil mutes it.
func SetLogger(f func(format string, v ...interface{})) {
	if f == nil {
		Logf = func(string, ...interface{}) {}
		return
	}
	Logf = f
}

// Logbook collects formatted lines, for example the per-file messages of a
// batch import. It is safe for concurrent use.
type Logbook struct {
	mu    sync.Mutex
	lines []string
	echo  bool
}

// NewLogbook returns an empty logbook. With echo set every line is also
// passed to Logf.
func NewLogbook(echo bool) *Logbook {
	return &Logbook{echo: echo}
}

// Logf appends a line.
func (b *Logbook) Logf(format string, v ...interface{}) {
	line := fmt.Sprintf(format, v...)
	b.mu.Lock()
	b.lines = append(b.lines, line)
	b.mu.Unlock()
	if b.echo {
		Logf("%s", line)
	}
}

// Lines returns a copy of the collected lines in the order they were logged.
func (b *Logbook) Lines() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.lines...)
}

// Len returns the number of lines.
func (b *Logbook) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.lines)
}
