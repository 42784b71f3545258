package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os/signal"
	"syscall"

	"github.com/banshee-data/reflectivity.report/internal/capture"
	"github.com/banshee-data/reflectivity.report/internal/serialmux"
)

func (a *app) runCapture(args []string) error {
	fs := flag.NewFlagSet("capture", flag.ContinueOnError)
	port := fs.String("port", "", "Serial device of the rig bridge (required)")
	baud := fs.Int("baud", serialmux.DefaultBaudRate, "Baud rate")
	outDir := fs.String("out", a.cfg.GetRawDir(), "Directory for the raw log")
	name := fs.String("name", a.cfg.GetSourcePrefix(), "Raw log base name")
	label := fs.String("label", "", "Digit on the platform, appended to the name")
	start := fs.String("start", "", "Command sent to the rig once listening")
	maxSamples := fs.Int("max", 0, "Stop after this many samples (0 for no limit)")
	listPorts := fs.Bool("list", false, "List serial ports and exit")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *listPorts {
		ports, err := serialmux.ListPorts()
		if err != nil {
			return err
		}
		for _, p := range ports {
			fmt.Fprintln(a.out, p)
		}
		return nil
	}
	if *port == "" {
		fs.Usage()
		return fmt.Errorf("-port is required")
	}

	mux, err := serialmux.NewRealSerialMux(*port, serialmux.PortOptions{BaudRate: *baud})
	if err != nil {
		return err
	}
	defer mux.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	res, err := capture.Run(ctx, mux, a.fs, capture.Options{
		OutDir:       *outDir,
		Name:         *name,
		Label:        *label,
		StartCommand: *start,
		MaxSamples:   *maxSamples,
	})
	if err != nil {
		return err
	}
	if n := mux.Dropped(); n > 0 {
		log.Printf("capture fell behind the rig and dropped %d line(s)", n)
	}
	fmt.Fprintf(a.out, "%s: %d samples (%s)\n", res.Path, res.Samples, res.Reason)
	return nil
}
