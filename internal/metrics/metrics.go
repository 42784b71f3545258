// Package metrics exposes batch pipeline results as Prometheus metrics and
// writes them in the text exposition format for a node-exporter textfile
// collector.
package metrics

import (
	"fmt"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/banshee-data/reflectivity.report/internal/dataset"
	"github.com/banshee-data/reflectivity.report/internal/train"
)

const namespace = "reflectivity"

// Recorder owns a private registry so repeated runs in one process do not
// collide with the default registerer.
type Recorder struct {
	registry *prometheus.Registry

	datasetRows      prometheus.Gauge
	datasetFiles     prometheus.Gauge
	rowsPerTarget    *prometheus.GaugeVec
	discardedSweeps  prometheus.Counter
	discardedBuckets prometheus.Counter
	datasetBuiltUnix prometheus.Gauge

	modelNeighbours prometheus.Gauge
	modelAccuracy   prometheus.Gauge
	trainRows       prometheus.Gauge
	testRows        prometheus.Gauge
	sweepAccuracy   *prometheus.GaugeVec
	classF1         *prometheus.GaugeVec
	trainedUnix     prometheus.Gauge
}

// NewRecorder creates and registers all metrics.
func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	auto := promauto.With(reg)
	r := &Recorder{registry: reg}

	r.datasetRows = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "dataset",
		Name:      "rows",
		Help:      "Rows in the most recent aggregate table",
	})
	r.datasetFiles = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "dataset",
		Name:      "source_files",
		Help:      "Raw logs that contributed to the aggregate table",
	})
	r.rowsPerTarget = auto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "dataset",
		Name:      "target_rows",
		Help:      "Aggregate rows per digit label",
	}, []string{"target"})
	r.discardedSweeps = auto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "dataset",
		Name:      "discarded_sweeps_total",
		Help:      "Trailing partial sweeps dropped during segmentation",
	})
	r.discardedBuckets = auto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "dataset",
		Name:      "discarded_buckets_total",
		Help:      "Filled buckets lost with discarded trailing sweeps",
	})
	r.datasetBuiltUnix = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "dataset",
		Name:      "last_built_timestamp_seconds",
		Help:      "Unix time the aggregate table was last written",
	})

	r.modelNeighbours = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "model",
		Name:      "neighbours",
		Help:      "k of the persisted classifier",
	})
	r.modelAccuracy = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "model",
		Name:      "test_accuracy",
		Help:      "Test-partition accuracy of the persisted classifier",
	})
	r.trainRows = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "model",
		Name:      "train_rows",
		Help:      "Rows in the training partition",
	})
	r.testRows = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "model",
		Name:      "test_rows",
		Help:      "Rows in the test partition",
	})
	r.sweepAccuracy = auto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "model",
		Name:      "sweep_accuracy",
		Help:      "Accuracy per neighbour count and partition from the complexity sweep",
	}, []string{"k", "partition"})
	r.classF1 = auto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "model",
		Name:      "class_f1",
		Help:      "Test-partition F1 score per digit",
	}, []string{"target"})
	r.trainedUnix = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "model",
		Name:      "last_trained_timestamp_seconds",
		Help:      "Unix time of the most recent training run",
	})
	return r
}

// Registry returns the recorder's registry.
func (r *Recorder) Registry() *prometheus.Registry { return r.registry }

// ObserveDataset records an aggregation result.
func (r *Recorder) ObserveDataset(res *dataset.Result, at time.Time) {
	r.datasetRows.Set(float64(len(res.Rows)))
	r.datasetFiles.Set(float64(len(res.Files)))
	for target, n := range res.RowsPerTarget() {
		r.rowsPerTarget.WithLabelValues(strconv.Itoa(target)).Set(float64(n))
	}
	for _, f := range res.Files {
		if f.TailBuckets > 0 {
			r.discardedSweeps.Inc()
			r.discardedBuckets.Add(float64(f.TailBuckets))
		}
	}
	r.datasetBuiltUnix.Set(float64(at.Unix()))
}

// ObserveTraining records a training outcome.
func (r *Recorder) ObserveTraining(out *train.Outcome, at time.Time) {
	r.modelNeighbours.Set(float64(out.Model.K()))
	r.trainRows.Set(float64(len(out.Split.Train)))
	r.testRows.Set(float64(len(out.Split.Test)))
	if out.Evaluation != nil {
		r.modelAccuracy.Set(out.Evaluation.Accuracy)
		for _, c := range out.Evaluation.Classes {
			r.classF1.WithLabelValues(strconv.Itoa(c.Label)).Set(c.F1)
		}
	}
	for _, p := range out.Sweep {
		k := strconv.Itoa(p.K)
		r.sweepAccuracy.WithLabelValues(k, "train").Set(p.TrainAccuracy)
		r.sweepAccuracy.WithLabelValues(k, "test").Set(p.TestAccuracy)
	}
	r.trainedUnix.Set(float64(at.Unix()))
}

// WriteTextfile writes every metric to path atomically.
func (r *Recorder) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("failed to write metrics: %w", err)
	}
	return nil
}
