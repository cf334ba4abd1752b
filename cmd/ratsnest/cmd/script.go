package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/OpenTraceRatsnest/pkg/ratsnest"
	"github.com/OpenTraceLab/OpenTraceRatsnest/pkg/script"
)

var scriptBoard string

var scriptCmd = &cobra.Command{
	Use:   "script <file>",
	Short: "Replay an edit script",
	Long: `Replay a script of item edits and ratsnest assertions. Each line places,
moves or removes a pad, via, track or zone, recalculates, prints the
missing connections or checks an expectation. The first failed
expectation stops the replay with a non-zero exit status.

With --board the script starts from the copper of a KiCad board, and
pads can be referenced as <reference>-<number>, e.g. R1-2.

Examples:
  ratsnest script edits.rats
  ratsnest script --board board.kicad_pcb reroute.rats`,
	Args: cobra.ExactArgs(1),
	RunE: runScript,
}

func init() {
	rootCmd.AddCommand(scriptCmd)

	scriptCmd.Flags().StringVarP(&scriptBoard, "board", "b", "",
		"KiCad board to start from")
}

func runScript(cmd *cobra.Command, args []string) error {
	parser, err := script.NewParser()
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}
	prog, err := parser.ParseFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to parse script: %w", err)
	}

	board := ratsnest.NewBoard(boardOptions()...)
	if scriptBoard != "" {
		if _, board, err = loadBoard(scriptBoard); err != nil {
			return err
		}
	}

	return script.Run(cmd.Context(), prog, board, os.Stdout)
}
