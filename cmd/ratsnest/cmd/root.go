package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/OpenTraceRatsnest/pkg/ratsnest"
)

var (
	// Global flags
	verbose     bool
	constraints bool
	tJunctions  bool
)

var rootCmd = &cobra.Command{
	Use:   "ratsnest",
	Short: "Ratsnest calculator for KiCad boards",
	Long: `Compute the missing copper connections of a printed circuit board:
for every net, the shortest set of airwires that would join all of its
pads, vias, tracks and zones.

Examples:
  ratsnest unconnected board.kicad_pcb            # List all missing connections
  ratsnest unconnected board.kicad_pcb GND        # Only the GND net
  ratsnest check --strict board.kicad_pcb         # Fail if any net is incomplete
  ratsnest script edits.rats                      # Replay an edit script`,
	Version:       "0.1.0",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if verbose {
			ratsnest.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
				Level: slog.LevelDebug,
			})))
		} else {
			ratsnest.SetLogger(nil)
		}
	},
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log debug output to stderr")
	rootCmd.PersistentFlags().BoolVar(&constraints, "constraints", true,
		"keep airwires from crossing tracks of their own net")
	rootCmd.PersistentFlags().BoolVar(&tJunctions, "tjunctions", true,
		"treat pads and vias lying on a track as connected to it")
}

// boardOptions maps the global flags to ratsnest options
func boardOptions() []ratsnest.Option {
	return []ratsnest.Option{
		ratsnest.WithConstraints(constraints),
		ratsnest.WithTJunctions(tJunctions),
	}
}
