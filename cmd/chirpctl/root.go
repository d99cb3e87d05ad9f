package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vicholz/chirp-web/descriptor"
	"github.com/vicholz/chirp-web/rlog"
)

var rootFlags = struct {
	port       *string
	vendor     *string
	model      *string
	descDir    *string
	verbose    *bool
	quiet      *bool
}{}

var rootCmd = &cobra.Command{
	Use:   "chirpctl",
	Short: "Clone memory to and from a radio over a serial cable.",
}

// Execute runs the root command, exiting non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootFlags.port = rootCmd.PersistentFlags().StringP("port", "p", "", "serial port device (e.g. /dev/ttyUSB0, COM3)")
	rootFlags.vendor = rootCmd.PersistentFlags().StringP("vendor", "V", "", "radio vendor, as listed by list-models")
	rootFlags.model = rootCmd.PersistentFlags().StringP("model", "m", "", "radio model, as listed by list-models")
	rootFlags.descDir = rootCmd.PersistentFlags().String("descriptor-dir", "", "load additional descriptor YAML from this directory")
	rootFlags.verbose = rootCmd.PersistentFlags().BoolP("verbose", "v", false, "log frame-level detail")
	rootFlags.quiet = rootCmd.PersistentFlags().BoolP("quiet", "q", false, "suppress progress output")

	rootCmd.AddCommand(downloadCmd, uploadCmd, probeCmd, listModelsCmd)
}

// loadRegistry builds the descriptor registry, layering an operator-supplied
// directory of YAML descriptor documents over the built-in set.
func loadRegistry(logger rlog.Logger) (*descriptor.Registry, error) {
	reg, err := descriptor.NewRegistry()
	if err != nil {
		return nil, err
	}
	if *rootFlags.descDir == "" {
		return reg, nil
	}
	extra, err := descriptor.LoadDir(*rootFlags.descDir, logger)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", *rootFlags.descDir, err)
	}
	return extra.Merge(reg), nil
}

func newLogger() rlog.Logger {
	if *rootFlags.verbose {
		return rlog.WithPrefix(rlog.NewWriter(os.Stderr), "chirpctl")
	}
	return rlog.Noop{}
}

func resolveModel(reg *descriptor.Registry) (descriptor.ResolvedModel, error) {
	if *rootFlags.vendor == "" || *rootFlags.model == "" {
		return descriptor.ResolvedModel{}, fmt.Errorf("--vendor and --model are required (see list-models)")
	}
	return reg.Resolve(*rootFlags.vendor, *rootFlags.model)
}

func requirePort() (string, error) {
	if *rootFlags.port == "" {
		return "", fmt.Errorf("--port is required")
	}
	return *rootFlags.port, nil
}
