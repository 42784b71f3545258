// Package dataset builds the training dataset from a set of raw rig logs.
// Each source file is cleaned into its own feature table and the tables
// are concatenated, in sorted source order, into one aggregate table.
package dataset

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/banshee-data/reflectivity.report/internal/features"
	"github.com/banshee-data/reflectivity.report/internal/fsutil"
	"github.com/banshee-data/reflectivity.report/internal/monitoring"
	"github.com/banshee-data/reflectivity.report/internal/rawlog"
	"github.com/banshee-data/reflectivity.report/internal/rotation"
	"github.com/banshee-data/reflectivity.report/internal/security"
)

// ErrNoSources is returned when there is nothing to aggregate.
var ErrNoSources = errors.New("no source files to aggregate")

// Aggregator reads raw logs from RawDir and writes per-file tables and the
// aggregate table into CleanDir.
type Aggregator struct {
	FS           fsutil.FileSystem
	RawDir       string
	CleanDir     string
	DatasetFile  string
	TargetOffset int
}

// FileResult describes one cleaned source file.
type FileResult struct {
	Source  string
	Target  int
	Samples int
	Rows    []features.Row

	// TailBuckets is the number of filled buckets in the discarded
	// trailing sweep, zero when the log ended on a boundary.
	TailBuckets int
}

// Result is the outcome of an aggregation.
type Result struct {
	Files []FileResult
	Rows  []features.Row

	// Path is where the aggregate table was written.
	Path string
	// Digest is the hex SHA-256 of the aggregate table bytes.
	Digest string
}

// RowsPerTarget counts aggregate rows by label.
func (r *Result) RowsPerTarget() [features.NumClasses]int {
	var counts [features.NumClasses]int
	for _, row := range r.Rows {
		counts[row.Target]++
	}
	return counts
}

// Discover lists the files in dir whose names start with prefix, sorted.
func Discover(fs fsutil.FileSystem, dir, prefix string) ([]string, error) {
	names, err := fs.ListFiles(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", dir, err)
	}
	var out []string
	for _, n := range names {
		if strings.HasPrefix(n, prefix) {
			out = append(out, n)
		}
	}
	slices.Sort(out)
	return out, nil
}

// BuildFile cleans one raw log and writes its feature table to CleanDir
// under the same name.
func (a *Aggregator) BuildFile(source string) (FileResult, error) {
	res := FileResult{Source: source}
	if err := security.ValidateSourceName(source); err != nil {
		return res, &features.MalformedInputError{Source: source, Err: err}
	}

	target, err := features.ParseTarget(source, a.TargetOffset)
	if err != nil {
		return res, err
	}
	res.Target = target

	samples, err := a.readRaw(source)
	if err != nil {
		return res, err
	}
	res.Samples = len(samples)

	runs, tail := rotation.SegmentWithTail(rotation.Bucketize(samples))
	res.TailBuckets = tail
	if len(runs) == 0 {
		monitoring.Logf("%s: no complete sweeps in %d samples", source, len(samples))
	}

	rows, err := features.Build(runs, target)
	if err != nil {
		return res, fmt.Errorf("%s: %w", source, err)
	}
	res.Rows = rows

	if err := a.writeTable(filepath.Join(a.CleanDir, source), rows); err != nil {
		return res, fmt.Errorf("%s: failed to write clean table: %w", source, err)
	}
	monitoring.Debugf("%s: target=%d samples=%d runs=%d", source, target, len(samples), len(rows))
	return res, nil
}

// readRaw opens, reads and closes one raw log.
func (a *Aggregator) readRaw(source string) ([]rotation.Sample, error) {
	f, err := a.FS.Open(filepath.Join(a.RawDir, source))
	if err != nil {
		return nil, fmt.Errorf("%s: failed to open raw log: %w", source, err)
	}
	defer f.Close()

	samples, err := rawlog.Read(f)
	if err != nil {
		return nil, &features.MalformedInputError{Source: source, Err: err}
	}
	return samples, nil
}

func (a *Aggregator) writeTable(path string, rows []features.Row) error {
	w, err := a.FS.Create(path)
	if err != nil {
		return err
	}
	if err := features.WriteCSV(w, rows); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}

// Aggregate cleans every source and writes the concatenated table. Sources
// are processed in lexicographic order regardless of the order given, so
// the same inputs always produce the same bytes. If any file fails, every
// failure is reported and no aggregate is written.
func (a *Aggregator) Aggregate(sources []string) (*Result, error) {
	if len(sources) == 0 {
		return nil, ErrNoSources
	}
	ordered := slices.Clone(sources)
	slices.Sort(ordered)
	ordered = slices.Compact(ordered)

	if err := a.FS.MkdirAll(a.CleanDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", a.CleanDir, err)
	}

	res := &Result{}
	var errs []error
	for _, src := range ordered {
		fr, err := a.BuildFile(src)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		res.Files = append(res.Files, fr)
		res.Rows = append(res.Rows, fr.Rows...)
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("%d of %d source files failed: %w", len(errs), len(ordered), errors.Join(errs...))
	}

	var buf bytes.Buffer
	if err := features.WriteCSV(&buf, res.Rows); err != nil {
		return nil, fmt.Errorf("failed to encode dataset: %w", err)
	}
	res.Path = filepath.Join(a.CleanDir, a.datasetFile())
	if err := a.FS.WriteFile(res.Path, buf.Bytes(), 0644); err != nil {
		return nil, fmt.Errorf("failed to write dataset: %w", err)
	}
	res.Digest = Digest(buf.Bytes())

	monitoring.Logf("wrote %d rows from %d files to %s", len(res.Rows), len(res.Files), res.Path)
	return res, nil
}

func (a *Aggregator) datasetFile() string {
	if a.DatasetFile == "" {
		return "training_dataset.csv"
	}
	return a.DatasetFile
}

// Digest returns the hex SHA-256 of a serialised table.
func Digest(table []byte) string {
	sum := sha256.Sum256(table)
	return hex.EncodeToString(sum[:])
}
