package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/turbot/tailpipe-extractor/extractor"
)

func statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the configured extractors and their last execution",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := newHost(cmd.Context())
			if err != nil {
				return err
			}
			defer h.Close()

			printStatus(cmd.OutOrStdout(), h.manager)
			return nil
		},
	}
}

func printStatus(out io.Writer, m *extractor.Manager) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tDATA SOURCE\tSTATUS\tLAST EXECUTION")
	for _, name := range m.Names() {
		e, _ := m.Get(name)
		def := e.Definition()
		lastExecution := def.LastExecution
		if lastExecution == "" {
			lastExecution = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", name, def.DataSource, e.Status(), lastExecution)
	}
	_ = w.Flush()
}
