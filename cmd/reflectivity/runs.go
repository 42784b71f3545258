package main

import (
	"flag"

	"github.com/banshee-data/reflectivity.report/internal/db"
	"github.com/banshee-data/reflectivity.report/internal/report"
)

func (a *app) runRuns(args []string) error {
	fs := flag.NewFlagSet("runs", flag.ContinueOnError)
	limit := fs.Int("limit", 20, "Maximum runs to list (0 for all)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	database, err := db.NewDB(a.dbPath)
	if err != nil {
		return err
	}
	defer database.Close()

	runs, err := database.ListTrainingRuns(*limit)
	if err != nil {
		return err
	}
	return report.WriteRuns(a.out, runs)
}
