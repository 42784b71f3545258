package main

import (
	"flag"
	"fmt"

	"github.com/banshee-data/reflectivity.report/internal/dataset"
	"github.com/banshee-data/reflectivity.report/internal/metrics"
)

func (a *app) runClean(args []string) error {
	fs := flag.NewFlagSet("clean", flag.ContinueOnError)
	rawDir := fs.String("raw", a.cfg.GetRawDir(), "Directory of raw rig logs")
	cleanDir := fs.String("clean", a.cfg.GetCleanDir(), "Directory for cleaned tables and the dataset")
	prefix := fs.String("prefix", a.cfg.GetSourcePrefix(), "Only raw logs whose names start with this prefix")
	metricsFile := fs.String("metrics", a.cfg.GetMetricsFile(), "Write Prometheus textfile metrics here")
	if err := fs.Parse(args); err != nil {
		return err
	}

	sources, err := dataset.Discover(a.fs, *rawDir, *prefix)
	if err != nil {
		return err
	}

	agg := &dataset.Aggregator{
		FS:           a.fs,
		RawDir:       *rawDir,
		CleanDir:     *cleanDir,
		DatasetFile:  a.cfg.GetDatasetFile(),
		TargetOffset: a.cfg.GetTargetOffset(),
	}
	res, err := agg.Aggregate(sources)
	if err != nil {
		return err
	}

	for _, f := range res.Files {
		fmt.Fprintf(a.out, "%-24s target=%d samples=%d rows=%d\n", f.Source, f.Target, f.Samples, len(f.Rows))
	}
	fmt.Fprintf(a.out, "rows per target: %v\n", res.RowsPerTarget())
	fmt.Fprintf(a.out, "dataset: %s (%d rows, sha256 %s)\n", res.Path, len(res.Rows), res.Digest)

	if *metricsFile != "" {
		rec := metrics.NewRecorder()
		rec.ObserveDataset(res, a.clock.Now())
		if err := rec.WriteTextfile(*metricsFile); err != nil {
			return err
		}
	}
	return nil
}
