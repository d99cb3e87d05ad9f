package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vicholz/chirp-web/codec"
	"github.com/vicholz/chirp-web/engine"
	"github.com/vicholz/chirp-web/image"
	"github.com/vicholz/chirp-web/transport"
)

var downloadFlags = struct {
	out         *string
	container   *bool
	metricsAddr *string
}{}

var downloadCmd = &cobra.Command{
	Use:   "download",
	Short: "Read the full memory image from a radio and save it to a file.",
	RunE:  runDownload,
}

func init() {
	downloadFlags.out = downloadCmd.Flags().StringP("out", "o", "image.bin", "output file")
	downloadFlags.container = downloadCmd.Flags().Bool("container", false, "wrap the raw image in a self-describing container (spec image container)")
	downloadFlags.metricsAddr = downloadCmd.Flags().String("metrics-addr", "", "expose Prometheus metrics on this address for the duration of the download")
}

func runDownload(cmd *cobra.Command, args []string) error {
	port, err := requirePort()
	if err != nil {
		return err
	}
	logger := newLogger()
	reg, err := loadRegistry(logger)
	if err != nil {
		return err
	}
	rm, err := resolveModel(reg)
	if err != nil {
		return err
	}

	opener := transport.SerialOpener{Port: port}
	t, err := opener.Open(transport.DefaultSettings(rm.Protocol.Baud))
	if err != nil {
		return fmt.Errorf("opening %s: %w", port, err)
	}
	defer t.Close()

	metrics, stopMetrics := startMetrics(*downloadFlags.metricsAddr)
	defer stopMetrics()

	progressCh := make(chan engine.ProgressEvent, 8)
	go progressPrinter(progressCh, *rootFlags.quiet, os.Stderr)

	sess := engine.NewSession(t, &rm.Protocol, rm.Model,
		engine.WithLogger(logger),
		engine.WithProgress(progressCh),
		engine.WithMetrics(metrics),
	)

	raw, err := sess.Download()
	close(progressCh)
	if err != nil {
		return fmt.Errorf("download: %w", err)
	}

	// Decode once as a sanity check: a memory image that doesn't parse
	// against its own descriptor almost certainly transferred wrong.
	if _, err := codec.Decode(raw, rm.Protocol.MemoryFormat); err != nil {
		fmt.Fprintf(os.Stderr, "warning: downloaded image failed to decode: %v\n", err)
	}

	var payload []byte
	if *downloadFlags.container {
		payload, err = image.WriteContainer(image.RadioImage{
			Vendor:     rm.Model.Vendor,
			Model:      rm.Model.Model,
			ProtocolID: rm.Protocol.ID,
			Raw:        raw,
			Header:     sess.Header(),
		})
		if err != nil {
			return fmt.Errorf("building container: %w", err)
		}
	} else {
		payload = raw
	}

	if err := os.WriteFile(*downloadFlags.out, payload, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", *downloadFlags.out, err)
	}
	if !*rootFlags.quiet {
		fmt.Fprintf(os.Stderr, "wrote %d bytes to %s\n", len(payload), *downloadFlags.out)
	}
	return nil
}
