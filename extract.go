package rescuefat

import (
	"fmt"
	"path"
	"runtime"
	"strings"
	"sync"

	"github.com/spf13/afero"

	"github.com/mkling/rescuefat/checkpoint"
)

// Result describes the outcome of extracting a single directory entry.
type Result struct {
	Entry DirEntry

	// Name is the name used at the sink, unique per run. It differs from
	// Entry.Name() only when the collision policy had to disambiguate.
	Name string

	// Size is the number of bytes handed to the sink. For files with an
	// integrity error this can be less than the declared file size.
	Size int64

	// Err is nil for a clean extraction. Integrity errors do not abort the
	// run; the partially recovered bytes are still written to the sink.
	Err error
}

// Extractor copies every root directory entry of a volume to an output
// sink. All reads target the immutable image, so the entries are extracted
// concurrently by a bounded worker pool; the sink is the only shared
// mutable resource and each worker writes a distinct name.
type Extractor struct {
	volume  *Volume
	sink    afero.Fs
	workers int
}

// NewExtractor creates an extractor writing to sink. workers bounds the
// number of parallel extractions; values < 1 mean one worker per CPU.
func NewExtractor(volume *Volume, sink afero.Fs, workers int) *Extractor {
	if workers < 1 {
		workers = runtime.NumCPU()
	}
	return &Extractor{
		volume:  volume,
		sink:    sink,
		workers: workers,
	}
}

// Run extracts all entries of the volume. Failures are local to their file
// and land in the returned results; Run itself never gives up. The results
// are in root directory order regardless of worker scheduling.
func (x *Extractor) Run() []Result {
	entries := x.volume.Entries()
	names := uniqueNames(entries)

	results := make([]Result, len(entries))
	sem := make(chan struct{}, x.workers)
	var wg sync.WaitGroup

	for i := range entries {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			results[i] = x.extractOne(entries[i], names[i])
		}(i)
	}
	wg.Wait()

	return results
}

// extractOne recovers the bytes of one entry and writes them to the sink.
// Partially recovered bytes are written too, so a later inspection can look
// at whatever was salvageable.
func (x *Extractor) extractOne(entry DirEntry, name string) Result {
	data, err := x.volume.ReadFile(entry)

	result := Result{
		Entry: entry,
		Name:  name,
		Size:  int64(len(data)),
		Err:   err,
	}

	if writeErr := afero.WriteFile(x.sink, name, data, 0o644); writeErr != nil {
		if result.Err == nil {
			result.Err = checkpoint.Wrap(writeErr, fmt.Errorf("writing %s to the sink", name))
		}
	}

	return result
}

// uniqueNames applies the collision policy: the first entry keeps its
// reconstructed name, later duplicates get a ~n counter inserted before the
// extension. The assignment only depends on the root directory order, so it
// is deterministic across runs.
func uniqueNames(entries []DirEntry) []string {
	taken := make(map[string]bool, len(entries))
	names := make([]string, len(entries))

	for i, entry := range entries {
		name := entry.Name()
		ext := path.Ext(name)
		base := strings.TrimSuffix(name, ext)

		candidate := name
		for n := 1; taken[strings.ToUpper(candidate)]; n++ {
			candidate = fmt.Sprintf("%s~%d%s", base, n, ext)
		}

		taken[strings.ToUpper(candidate)] = true
		names[i] = candidate
	}

	return names
}
