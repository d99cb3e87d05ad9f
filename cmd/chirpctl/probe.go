package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vicholz/chirp-web/engine"
	"github.com/vicholz/chirp-web/transport"
)

var probeCmd = &cobra.Command{
	Use:   "probe",
	Short: "Run the handshake only, to confirm a cable/port/model combination.",
	RunE:  runProbe,
}

func runProbe(cmd *cobra.Command, args []string) error {
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

	sess := engine.NewSession(t, &rm.Protocol, rm.Model, engine.WithLogger(logger))
	header, err := sess.Probe()
	if err != nil {
		return fmt.Errorf("probe: %w", err)
	}
	fmt.Printf("session %s: %s/%s responded", sess.ID(), rm.Model.Vendor, rm.Model.Model)
	if len(header) > 0 {
		fmt.Printf(", identification=% x", header)
	}
	fmt.Println()
	return nil
}
