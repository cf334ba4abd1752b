package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/OpenTraceRatsnest/pkg/kicad/pcb"
	"github.com/OpenTraceLab/OpenTraceRatsnest/pkg/ratsnest"
)

var strict bool

var unconnectedCmd = &cobra.Command{
	Use:   "unconnected <board.kicad_pcb> [net-name]",
	Short: "List the missing connections of a board",
	Long: `Load a KiCad board and print every missing connection, one line per
airwire, with its end points and length in millimetres.

Examples:
  ratsnest unconnected board.kicad_pcb
  ratsnest unconnected board.kicad_pcb /SDA`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runUnconnected,
}

var checkCmd = &cobra.Command{
	Use:   "check <board.kicad_pcb>",
	Short: "Summarise the routing state of every net",
	Long: `Load a KiCad board and print, per net, how many items it has and how
many connections are still missing.

Examples:
  ratsnest check board.kicad_pcb
  ratsnest check --strict board.kicad_pcb   # exit status 1 if anything is unrouted`,
	Args: cobra.ExactArgs(1),
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(unconnectedCmd)
	rootCmd.AddCommand(checkCmd)

	checkCmd.Flags().BoolVar(&strict, "strict", false,
		"fail when any connection is missing")
}

// loadBoard parses a KiCad board and registers its copper with a new
// ratsnest board
func loadBoard(filename string) (*pcb.Board, *ratsnest.Board, error) {
	kb, err := pcb.ParseFile(filename)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load board: %w", err)
	}

	board := ratsnest.NewBoard(boardOptions()...)
	items := kb.Items()
	for _, it := range items {
		if err := board.Add(it); err != nil {
			return nil, nil, fmt.Errorf("failed to add %v: %w", it, err)
		}
	}

	bounds := kb.CopperBounds()
	ratsnest.Logger().Debug("board loaded",
		"file", filename, "items", len(items), "nets", len(board.NetCodes()),
		"width_mm", bounds.Width(), "height_mm", bounds.Height())
	return kb, board, nil
}

func runUnconnected(cmd *cobra.Command, args []string) error {
	kb, board, err := loadBoard(args[0])
	if err != nil {
		return err
	}

	links := board.GetUnconnected()
	if len(args) == 2 {
		code, ok := kb.NetCode(args[1])
		if !ok {
			return fmt.Errorf("net %q not found", args[1])
		}
		var filtered []ratsnest.Link
		for _, l := range links {
			if l.Net == code {
				filtered = append(filtered, l)
			}
		}
		links = filtered
	}

	for _, l := range links {
		fmt.Printf("%-16s (%.4f, %.4f) - (%.4f, %.4f)  %.4f mm\n",
			kb.NetName(l.Net),
			float64(l.A.X)*pcb.NanometersToMM, float64(l.A.Y)*pcb.NanometersToMM,
			float64(l.B.X)*pcb.NanometersToMM, float64(l.B.Y)*pcb.NanometersToMM,
			float64(l.Distance)*pcb.NanometersToMM)
	}
	fmt.Printf("%d unconnected\n", len(links))
	return nil
}

func runCheck(cmd *cobra.Command, args []string) error {
	kb, board, err := loadBoard(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("Board: %s\n", args[0])
	fmt.Printf("%-16s %6s %6s %11s\n", "Net", "Items", "Nodes", "Unconnected")

	total, incomplete := 0, 0
	for _, code := range board.NetCodes() {
		net, _ := board.GetNet(code)
		missing := len(net.GetUnconnected())
		s := net.Stats()
		fmt.Printf("%-16s %6d %6d %11d\n", kb.NetName(code), s.Items, s.Nodes, missing)
		total += missing
		if missing > 0 {
			incomplete++
		}
	}
	fmt.Printf("\n%d nets, %d incomplete, %d unconnected\n", len(board.NetCodes()), incomplete, total)

	if strict && total > 0 {
		return fmt.Errorf("%d connections missing", total)
	}
	return nil
}
