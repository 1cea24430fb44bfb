// Command pocketwave is the receiver process: it owns the DSP pipeline,
// the SDR front end, the audio output stream, and the parameter store,
// and spawns pocketwave-ui as a subprocess it talks to over stdio.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/n7cdr/pocketwave/internal/config"
	"github.com/n7cdr/pocketwave/internal/lifecycle"
	"github.com/n7cdr/pocketwave/internal/logging"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "pocketwave:", err)
		os.Exit(1)
	}
}

func run() error {
	flags, err := config.ParseFlags(pflag.CommandLine, os.Args[1:])
	if err != nil {
		return err
	}

	logger := logging.New(logging.Receiver, logging.Options{Level: flags.LogLevel})

	overrides, err := config.LoadOverrides(flags.ConfigPath)
	if err != nil {
		return err
	}
	store := config.BuildStore(overrides)

	opts := lifecycle.Options{
		Device:       flags.Device,
		HamlibModel:  0,
		UIBinaryPath: flags.UIBinary,
		FilterOrder:  5,
		AudioBlockSz: int(store.Numeric("spkr_chunk_sz").Get()),
		BridgeDepth:  8,
	}

	receiver, err := lifecycle.Start(context.Background(), logger, store, opts)
	if err != nil {
		return fmt.Errorf("starting receiver: %w", err)
	}
	logger.Info("receiver started", "device", flags.Device, "ui_binary", flags.UIBinary)

	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case <-sigCh:
		logger.Info("signal received, shutting down")
	case err := <-receiver.SchedulerErr():
		if err != nil {
			logger.Error("dsp pipeline exited", "err", err)
		}
	}

	done := make(chan struct{})
	go func() {
		receiver.Shutdown()
		close(done)
	}()

	select {
	case <-done:
	case <-sigCh:
		logger.Warn("second signal received, exiting immediately")
		os.Exit(1)
	}
	return nil
}
