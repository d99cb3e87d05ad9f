package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/vicholz/chirp-web/rlog"
)

var listModelsCmd = &cobra.Command{
	Use:   "list-models",
	Short: "List every radio model this build supports.",
	RunE:  runListModels,
}

func runListModels(cmd *cobra.Command, args []string) error {
	reg, err := loadRegistry(rlog.Noop{})
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 2, 2, ' ', 0)
	fmt.Fprintln(w, "VENDOR\tMODEL\tPROTOCOL\tMEMORY SIZE")
	for _, m := range reg.Models() {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\n", m.Vendor, m.Model, m.ProtocolID, m.MemorySize)
	}
	return w.Flush()
}
