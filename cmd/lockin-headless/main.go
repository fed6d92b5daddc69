// Command lockin-headless runs the lock-in amplifier engine without a
// display, printing averaged I/Q/phase outputs to stdout as FrameReady
// events arrive.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/miksto/lockin-amplifier-engine/dsp/dbuf"
	"github.com/miksto/lockin-amplifier-engine/engine"
	"github.com/miksto/lockin-amplifier-engine/engine/config"
)

func main() {
	var (
		presetPath  = pflag.StringP("preset", "p", "", "YAML preset file to load instead of defaults")
		duration    = pflag.DurationP("duration", "d", 0, "run for this long then exit (0 = run forever)")
		referenceHz = pflag.Float64("reference-hz", 0, "override referenceFrequency")
		help        = pflag.Bool("help", false, "display help text")
	)
	pflag.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: lockin-headless [options]")
		pflag.PrintDefaults()
	}
	pflag.Parse()
	if *help {
		pflag.Usage()
		return
	}

	params := config.Default()
	if *presetPath != "" {
		loaded, err := config.LoadPreset(*presetPath)
		if err != nil {
			log.Fatalf("lockin-headless: %v", err)
		}
		params = loaded
	}
	if *referenceHz > 0 {
		params.ReferenceFrequency = *referenceHz
	}
	params.Clamp()

	buffer := dbuf.New(params.SnapshotPoints)
	facade := engine.New(log.Default())
	if err := facade.Init(buffer, params.SnapshotPoints); err != nil {
		log.Fatalf("lockin-headless: init: %v", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if *duration > 0 {
		var durationCancel context.CancelFunc
		ctx, durationCancel = context.WithTimeout(ctx, *duration)
		defer durationCancel()
	}

	if err := facade.Start(ctx, params); err != nil {
		log.Fatalf("lockin-headless: start: %v", err)
	}

	for {
		select {
		case <-ctx.Done():
			_ = facade.Stop()
			return
		case frame := <-facade.Events():
			fmt.Printf("i=%.4f q=%.4f signed=%.4f phase=%.2f effRate=%.1f n=%d\n",
				frame.Outputs.I, frame.Outputs.Q, frame.Outputs.SignedOutput,
				frame.Outputs.PhaseDeg, frame.EffectiveSampleRate, frame.DataLength)
		}
	}
}
