package db

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// TrainingRun is one recorded training pass.
type TrainingRun struct {
	RunID         string
	CreatedAt     time.Time
	DatasetPath   string
	DatasetDigest string
	DatasetRows   int
	TrainRows     int
	TestRows      int
	Neighbours    int
	Seed          uint64
	TestFraction  float64
	Accuracy      float64
	Confusion     [][]int
	ModelPath     string
	BuildVersion  string
	Sweep         []SweepPoint
}

// SweepPoint is one stored k of the complexity curve.
type SweepPoint struct {
	Neighbours    int
	TrainAccuracy float64
	TestAccuracy  float64
}

// RecordTrainingRun stores run and its sweep points in one transaction.
// A missing RunID or CreatedAt is filled in.
func (db *DB) RecordTrainingRun(run *TrainingRun) error {
	if run.RunID == "" {
		run.RunID = uuid.NewString()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now()
	}
	confusion, err := json.Marshal(run.Confusion)
	if err != nil {
		return fmt.Errorf("failed to encode confusion matrix: %w", err)
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO training_runs (
			run_id, created_unix_nanos, dataset_path, dataset_digest, dataset_rows,
			train_rows, test_rows, neighbours, seed, test_fraction, accuracy,
			confusion_json, model_path, build_version
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.RunID, run.CreatedAt.UnixNano(), run.DatasetPath, run.DatasetDigest, run.DatasetRows,
		run.TrainRows, run.TestRows, run.Neighbours, int64(run.Seed), run.TestFraction, run.Accuracy,
		string(confusion), nullString(run.ModelPath), nullString(run.BuildVersion),
	)
	if err != nil {
		return fmt.Errorf("failed to insert training run: %w", err)
	}

	for _, p := range run.Sweep {
		if _, err := tx.Exec(
			`INSERT INTO sweep_points (run_id, neighbours, train_accuracy, test_accuracy) VALUES (?, ?, ?, ?)`,
			run.RunID, p.Neighbours, p.TrainAccuracy, p.TestAccuracy,
		); err != nil {
			return fmt.Errorf("failed to insert sweep point k=%d: %w", p.Neighbours, err)
		}
	}
	return tx.Commit()
}

// ListTrainingRuns returns up to limit runs, newest first, with their
// sweep points. A non-positive limit returns every run.
func (db *DB) ListTrainingRuns(limit int) ([]TrainingRun, error) {
	query := `
		SELECT run_id, created_unix_nanos, dataset_path, dataset_digest, dataset_rows,
			train_rows, test_rows, neighbours, seed, test_fraction, accuracy,
			confusion_json, model_path, build_version
		FROM training_runs
		ORDER BY created_unix_nanos DESC, run_id`
	var args []interface{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query training runs: %w", err)
	}
	defer rows.Close()

	var runs []TrainingRun
	for rows.Next() {
		var (
			r         TrainingRun
			created   int64
			seed      int64
			confusion string
			modelPath sql.NullString
			version   sql.NullString
		)
		if err := rows.Scan(&r.RunID, &created, &r.DatasetPath, &r.DatasetDigest, &r.DatasetRows,
			&r.TrainRows, &r.TestRows, &r.Neighbours, &seed, &r.TestFraction, &r.Accuracy,
			&confusion, &modelPath, &version); err != nil {
			return nil, fmt.Errorf("failed to scan training run: %w", err)
		}
		r.CreatedAt = time.Unix(0, created)
		r.Seed = uint64(seed)
		r.ModelPath = modelPath.String
		r.BuildVersion = version.String
		if err := json.Unmarshal([]byte(confusion), &r.Confusion); err != nil {
			return nil, fmt.Errorf("run %s: failed to decode confusion matrix: %w", r.RunID, err)
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range runs {
		runs[i].Sweep, err = db.sweepPoints(runs[i].RunID)
		if err != nil {
			return nil, err
		}
	}
	return runs, nil
}

func (db *DB) sweepPoints(runID string) ([]SweepPoint, error) {
	rows, err := db.Query(
		`SELECT neighbours, train_accuracy, test_accuracy FROM sweep_points WHERE run_id = ? ORDER BY neighbours`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query sweep points: %w", err)
	}
	defer rows.Close()

	var out []SweepPoint
	for rows.Next() {
		var p SweepPoint
		if err := rows.Scan(&p.Neighbours, &p.TrainAccuracy, &p.TestAccuracy); err != nil {
			return nil, fmt.Errorf("failed to scan sweep point: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
