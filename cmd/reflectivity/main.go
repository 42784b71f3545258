// Command reflectivity cleans rig scans into a training dataset, trains the
// digit classifier, and keeps a record of training runs.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/banshee-data/reflectivity.report/internal/config"
	"github.com/banshee-data/reflectivity.report/internal/db"
	"github.com/banshee-data/reflectivity.report/internal/fsutil"
	"github.com/banshee-data/reflectivity.report/internal/monitoring"
	"github.com/banshee-data/reflectivity.report/internal/timeutil"
	"github.com/banshee-data/reflectivity.report/internal/version"
)

var (
	configFile = flag.String("config", "", "Pipeline config JSON (built-in defaults when empty)")
	dbFile     = flag.String("db", "", "Training run database (overrides db_path from the config)")
	verbose    = flag.Bool("v", false, "Enable debug logging")
)

var errUnknownCommand = errors.New("unknown command")

// app holds what every subcommand needs.
type app struct {
	cfg    *config.PipelineConfig
	dbPath string
	fs     fsutil.FileSystem
	clock  timeutil.Clock
	out    io.Writer
}

func main() {
	flag.Usage = printUsage
	flag.Parse()

	if flag.NArg() < 1 {
		printUsage()
		os.Exit(1)
	}
	monitoring.SetVerbose(*verbose)

	cfg := config.EmptyPipelineConfig()
	if *configFile != "" {
		var err error
		cfg, err = config.LoadPipelineConfig(*configFile)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
	}

	a := &app{
		cfg:    cfg,
		dbPath: cfg.GetDBPath(),
		fs:     fsutil.OSFileSystem{},
		clock:  timeutil.SystemClock{},
		out:    os.Stdout,
	}
	if *dbFile != "" {
		a.dbPath = *dbFile
	}

	if err := a.dispatch(flag.Arg(0), flag.Args()[1:]); err != nil {
		if errors.Is(err, errUnknownCommand) {
			fmt.Fprintf(os.Stderr, "%v\n\n", err)
			printUsage()
			os.Exit(1)
		}
		log.Fatalf("%s: %v", flag.Arg(0), err)
	}
}

func (a *app) dispatch(command string, args []string) error {
	switch command {
	case "clean":
		return a.runClean(args)
	case "train":
		return a.runTrain(args)
	case "runs":
		return a.runRuns(args)
	case "migrate":
		return db.RunMigrateCommand(args, a.dbPath, a.out)
	case "capture":
		return a.runCapture(args)
	case "version":
		fmt.Fprintf(a.out, "reflectivity %s\n", version.String())
		return nil
	case "help":
		printUsage()
		return nil
	default:
		return fmt.Errorf("%w: %s", errUnknownCommand, command)
	}
}

func printUsage() {
	fmt.Println(`reflectivity - rotational reflectivity digit classifier

Usage: reflectivity [-config file] [-db file] [-v] <command> [options]

Commands:
  clean      Clean raw rig logs into per-file tables and the training dataset
  train      Train and evaluate the k-NN classifier on the training dataset
  runs       List recorded training runs
  migrate    Manage the training run database schema (see 'migrate help')
  capture    Record one raw log from the rig over a serial port
  version    Show build information
  help       Show this help message

Examples:
  reflectivity clean -raw raw_data -clean clean_data
  reflectivity train -plots plots -metrics reflectivity.prom
  reflectivity capture -port /dev/ttyACM0 -label 7
  reflectivity -db reflectivity.db runs -limit 5`)
}
