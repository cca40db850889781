package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/san-kum/ctrlsys/internal/config"
)

func newPresetsCmd() *cobra.Command {
	var dump string
	cmd := &cobra.Command{
		Use:   "presets",
		Short: "list presets, or write one out as a config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if dump != "" {
				cfg := config.GetPreset(dump)
				if cfg == nil {
					return fmt.Errorf("unknown preset: %s", dump)
				}
				out := dump + ".yaml"
				if err := config.Save(out, cfg); err != nil {
					return err
				}
				fmt.Printf("wrote %s\n", out)
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tPLANT\tCONTROLLER\tANGULAR\tDURATION")
			for _, name := range config.ListPresets() {
				cfg := config.GetPreset(name)
				angular := cfg.Control.Angular
				if angular == "" {
					angular = "-"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%.1fs\n", name, cfg.Plant.Model, controllerLabel(cfg), angular, cfg.Run.Duration)
			}
			return w.Flush()
		},
	}
	cmd.Flags().StringVar(&dump, "write", "", "write the named preset to <name>.yaml")
	return cmd
}
