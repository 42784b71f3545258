package main

import (
	"bytes"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/banshee-data/reflectivity.report/internal/dataset"
	"github.com/banshee-data/reflectivity.report/internal/db"
	"github.com/banshee-data/reflectivity.report/internal/features"
	"github.com/banshee-data/reflectivity.report/internal/metrics"
	"github.com/banshee-data/reflectivity.report/internal/report"
	"github.com/banshee-data/reflectivity.report/internal/timeutil"
	"github.com/banshee-data/reflectivity.report/internal/train"
	"github.com/banshee-data/reflectivity.report/internal/version"
)

func (a *app) runTrain(args []string) error {
	fs := flag.NewFlagSet("train", flag.ContinueOnError)
	datasetPath := fs.String("dataset", a.cfg.GetDatasetPath(), "Training dataset CSV")
	modelPath := fs.String("model", a.cfg.GetModelPath(), "Where to write the fitted model")
	plotsDir := fs.String("plots", a.cfg.GetPlotsDir(), "Directory for the complexity curve (empty to skip)")
	k := fs.Int("k", a.cfg.GetNeighbours(), "Neighbours used by the persisted model")
	kMin := fs.Int("kmin", a.cfg.GetSweepMinK(), "Smallest k in the complexity sweep")
	kMax := fs.Int("kmax", a.cfg.GetSweepMaxK(), "Largest k in the complexity sweep (0 to skip)")
	testFraction := fs.Float64("test-fraction", a.cfg.GetTestFraction(), "Share of rows held out for testing")
	seed := fs.Uint64("seed", a.cfg.GetRandomSeed(), "Split seed")
	metricsFile := fs.String("metrics", a.cfg.GetMetricsFile(), "Write Prometheus textfile metrics here")
	record := fs.Bool("record", true, "Record the run in the database")
	if err := fs.Parse(args); err != nil {
		return err
	}

	data, err := a.fs.ReadFile(*datasetPath)
	if err != nil {
		return fmt.Errorf("failed to read dataset: %w", err)
	}
	rows, err := features.ReadCSV(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("%s: %w", *datasetPath, err)
	}

	start := a.clock.Now()
	trainer := &train.Trainer{
		TestFraction: *testFraction,
		Seed:         *seed,
		Neighbours:   *k,
		SweepMinK:    *kMin,
		SweepMaxK:    *kMax,
		ModelPath:    *modelPath,
	}
	out, err := trainer.Run(rows)
	if err != nil {
		return err
	}
	log.Printf("trained and evaluated in %s", timeutil.Elapsed(a.clock, start))

	fmt.Fprintf(a.out, "train rows: %d, test rows: %d\n", len(out.Split.Train), len(out.Split.Test))
	fmt.Fprintf(a.out, "accuracy (k=%d): %.4f\n\n", out.Model.K(), out.Evaluation.Accuracy)
	if err := report.WritePredictions(a.out, out.Evaluation); err != nil {
		return err
	}
	fmt.Fprintln(a.out)
	if err := report.WriteConfusion(a.out, out.Evaluation.Confusion); err != nil {
		return err
	}
	fmt.Fprintln(a.out)
	if err := report.WriteClassificationReport(a.out, out.Evaluation); err != nil {
		return err
	}
	if len(out.Sweep) > 0 {
		fmt.Fprintln(a.out)
		if err := report.WriteSweep(a.out, out.Sweep); err != nil {
			return err
		}
	}

	if *plotsDir != "" && len(out.Sweep) > 0 {
		if err := writePlots(*plotsDir, out); err != nil {
			return err
		}
	}

	if *record {
		if err := a.recordRun(out, *datasetPath, dataset.Digest(data), len(rows), trainer, start); err != nil {
			return err
		}
	}

	if *metricsFile != "" {
		rec := metrics.NewRecorder()
		rec.ObserveTraining(out, start)
		if err := rec.WriteTextfile(*metricsFile); err != nil {
			return err
		}
	}
	return nil
}

func writePlots(dir string, out *train.Outcome) error {
	png, err := report.ComplexityCurvePNG(out.Sweep, dir)
	if err != nil {
		return err
	}
	htmlPath := filepath.Join(dir, report.CurveFileName+".html")
	f, err := os.Create(htmlPath)
	if err != nil {
		return fmt.Errorf("failed to create chart page: %w", err)
	}
	if err := report.TrainingPage(f, out.Sweep, out.Evaluation); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	log.Printf("complexity curve written to %s and %s", png, htmlPath)
	return nil
}

func (a *app) recordRun(out *train.Outcome, datasetPath, digest string, rows int, t *train.Trainer, at time.Time) error {
	database, err := db.NewDB(a.dbPath)
	if err != nil {
		return err
	}
	defer database.Close()

	confusion := make([][]int, len(out.Evaluation.Confusion))
	for i, row := range out.Evaluation.Confusion {
		confusion[i] = append([]int(nil), row[:]...)
	}
	run := &db.TrainingRun{
		CreatedAt:     at,
		DatasetPath:   datasetPath,
		DatasetDigest: digest,
		DatasetRows:   rows,
		TrainRows:     len(out.Split.Train),
		TestRows:      len(out.Split.Test),
		Neighbours:    out.Model.K(),
		Seed:          t.Seed,
		TestFraction:  t.TestFraction,
		Accuracy:      out.Evaluation.Accuracy,
		Confusion:     confusion,
		ModelPath:     out.ModelPath,
		BuildVersion:  version.Version,
	}
	for _, p := range out.Sweep {
		run.Sweep = append(run.Sweep, db.SweepPoint{Neighbours: p.K, TrainAccuracy: p.TrainAccuracy, TestAccuracy: p.TestAccuracy})
	}
	if err := database.RecordTrainingRun(run); err != nil {
		return err
	}
	log.Printf("recorded training run %s in %s", run.RunID, a.dbPath)
	return nil
}
