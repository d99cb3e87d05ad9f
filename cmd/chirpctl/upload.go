package main

import (
	"bytes"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vicholz/chirp-web/engine"
	"github.com/vicholz/chirp-web/image"
	"github.com/vicholz/chirp-web/transport"
)

var uploadFlags = struct {
	in          *string
	metricsAddr *string
}{}

var uploadCmd = &cobra.Command{
	Use:   "upload",
	Short: "Write a saved memory image to a radio.",
	RunE:  runUpload,
}

func init() {
	uploadFlags.in = uploadCmd.Flags().StringP("in", "i", "image.bin", "input file (raw image or container)")
	uploadFlags.metricsAddr = uploadCmd.Flags().String("metrics-addr", "", "expose Prometheus metrics on this address for the duration of the upload")
}

func runUpload(cmd *cobra.Command, args []string) error {
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

	data, err := os.ReadFile(*uploadFlags.in)
	if err != nil {
		return fmt.Errorf("reading %s: %w", *uploadFlags.in, err)
	}
	raw := data
	if img, err := image.ReadContainer(data); err == nil {
		raw = img.Raw
		if !bytes.EqualFold([]byte(img.Vendor), []byte(rm.Model.Vendor)) || !bytes.EqualFold([]byte(img.Model), []byte(rm.Model.Model)) {
			fmt.Fprintf(os.Stderr, "warning: container was captured from %s/%s, uploading to %s/%s\n",
				img.Vendor, img.Model, rm.Model.Vendor, rm.Model.Model)
		}
	}

	opener := transport.SerialOpener{Port: port}
	t, err := opener.Open(transport.DefaultSettings(rm.Protocol.Baud))
	if err != nil {
		return fmt.Errorf("opening %s: %w", port, err)
	}
	defer t.Close()

	metrics, stopMetrics := startMetrics(*uploadFlags.metricsAddr)
	defer stopMetrics()

	progressCh := make(chan engine.ProgressEvent, 8)
	go progressPrinter(progressCh, *rootFlags.quiet, os.Stderr)

	sess := engine.NewSession(t, &rm.Protocol, rm.Model,
		engine.WithLogger(logger),
		engine.WithProgress(progressCh),
		engine.WithMetrics(metrics),
	)

	err = sess.Upload(raw)
	close(progressCh)
	if err != nil {
		return fmt.Errorf("upload: %w", err)
	}
	if !*rootFlags.quiet {
		fmt.Fprintln(os.Stderr, "upload complete")
	}
	return nil
}
