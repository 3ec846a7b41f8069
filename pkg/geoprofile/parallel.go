package geoprofile

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/beetlebugorg/geoprofile/internal/soil"
)

// Imported is one successfully parsed and compiled sounding.
type Imported struct {
	Path     string
	Sounding *Sounding
	Profile  *Profile
}

// ImportSet holds the results of a batch import in input order.
type ImportSet struct {
	Soundings []Imported
}

// ImportSounding parses one file and compiles its profile. The profile has no
// id yet and takes the sounding's name.
func ImportSounding(path string, parser Parser, minInterval float64) (Imported, error) {
	s, err := parser.Parse(path)
	if err != nil {
		return Imported{}, err
	}
	p, err := soil.Compile(s, minInterval)
	if err != nil {
		return Imported{}, err
	}
	return Imported{Path: path, Sounding: s, Profile: p}, nil
}

// ImportSoundings parses every path and compiles a profile from each.
//
// Files never affect each other. With opts.Parallel the files are spread over
// opts.Workers goroutines (NumCPU when 0); otherwise they are handled in
// order on the calling goroutine. Results keep the order of paths whatever
// order the workers finish in.
//
// A failed file is wrapped with its path, written to opts.ErrorLog when set
// and collected. With SkipErrors unset the first failure in path order is
// returned alone and the set is nil. Progress, when set, is told about every
// finished file.
//
// Example:
//
//	set, errs := geoprofile.ImportSoundings(paths, geoprofile.NewParser(), geoprofile.LoadOptions{
//	    Parallel:   true,
//	    SkipErrors: true,
//	    ErrorLog:   os.Stderr,
//	})
//	fmt.Printf("imported %d, skipped %d\n", len(set.Soundings), len(errs))
func ImportSoundings(paths []string, parser Parser, opts LoadOptions) (*ImportSet, []error) {
	if len(paths) == 0 {
		return &ImportSet{Soundings: []Imported{}}, nil
	}
	if opts.MinInterval <= 0 {
		opts.MinInterval = soil.DefaultMinInterval
	}

	outcomes := make([]outcome, len(paths))
	if opts.Parallel {
		importPool(paths, parser, opts, outcomes)
	} else {
		for i, path := range paths {
			outcomes[i].item, outcomes[i].err = ImportSounding(path, parser, opts.MinInterval)
			if opts.Progress != nil {
				opts.Progress(i+1, len(paths))
			}
			if outcomes[i].err != nil && !opts.SkipErrors {
				outcomes = outcomes[:i+1]
				break
			}
		}
	}

	set := &ImportSet{Soundings: make([]Imported, 0, len(outcomes))}
	var errs []error
	for i, o := range outcomes {
		if o.err == nil {
			set.Soundings = append(set.Soundings, o.item)
			continue
		}
		err := fmt.Errorf("%s: %w", paths[i], o.err)
		if opts.ErrorLog != nil {
			fmt.Fprintf(opts.ErrorLog, "import %v\n", err)
		}
		if !opts.SkipErrors {
			return nil, []error{err}
		}
		errs = append(errs, err)
	}
	return set, errs
}

// outcome is the result for one path
type outcome struct {
	item Imported
	err  error
}

// importPool fills outcomes[i] for every path. Each worker owns the slots
// of the indices it takes, so the slice needs no lock.
func importPool(paths []string, parser Parser, opts LoadOptions, outcomes []outcome) {
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	workers = min(workers, len(paths))

	next := make(chan int)
	finished := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for i := range next {
				outcomes[i].item, outcomes[i].err = ImportSounding(paths[i], parser, opts.MinInterval)
				finished <- struct{}{}
			}
		}()
	}

	go func() {
		for i := range paths {
			next <- i
		}
		close(next)
	}()

	for done := 1; done <= len(paths); done++ {
		<-finished
		if opts.Progress != nil {
			opts.Progress(done, len(paths))
		}
	}
	wg.Wait()
}
