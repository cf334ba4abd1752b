package cmd

import (
	"bytes"
	"os"
	"strings"
	"testing"
)

const fixtureBoard = "../../../pkg/kicad/pcb/testdata/simple.kicad_pcb"

// execute runs the root command with args and returns what it printed
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	// Capture stdout
	old := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	var buf bytes.Buffer
	done := make(chan struct{})
	go func() {
		buf.ReadFrom(r)
		close(done)
	}()

	// Reset flags to prevent accumulation between tests
	verbose = false
	constraints = true
	tJunctions = true
	strict = false
	scriptBoard = ""

	rootCmd.SetArgs(args)
	err := rootCmd.Execute()

	w.Close()
	os.Stdout = old
	<-done

	return buf.String(), err
}

type e2eCase struct {
	name        string
	args        []string
	wantErr     bool
	errContain  string
	wantContain []string
	wantMissing []string
}

func runCases(t *testing.T, tests []e2eCase) {
	t.Helper()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			output, err := execute(t, tt.args...)

			if tt.wantErr {
				if err == nil {
					t.Fatalf("Expected error but got none\nOutput: %s", output)
				}
				if tt.errContain != "" && !strings.Contains(err.Error(), tt.errContain) {
					t.Errorf("Error %q does not contain %q", err, tt.errContain)
				}
			} else if err != nil {
				t.Fatalf("Unexpected error: %v\nOutput: %s", err, output)
			}

			for _, want := range tt.wantContain {
				if !strings.Contains(output, want) {
					t.Errorf("Output missing expected string: %q\nGot:\n%s", want, output)
				}
			}
			for _, unwanted := range tt.wantMissing {
				if strings.Contains(output, unwanted) {
					t.Errorf("Output contains unexpected string: %q\nGot:\n%s", unwanted, output)
				}
			}
		})
	}
}

// TestUnconnectedE2E tests the unconnected command end-to-end
func TestUnconnectedE2E(t *testing.T) {
	runCases(t, []e2eCase{
		{
			name: "all nets",
			args: []string{"unconnected", fixtureBoard},
			wantContain: []string{
				"(101.0000, 110.0000) - (104.0000, 104.0000)  6.7082 mm",
				"(106.0000, 105.0000) - (110.0000, 99.0000)  7.2111 mm",
				"(99.0000, 105.0000) - (99.0000, 110.0000)  5.0000 mm",
				"GND",
				"VCC",
				"3 unconnected",
			},
			wantMissing: []string{"SIG"},
		},
		{
			name: "single net",
			args: []string{"unconnected", fixtureBoard, "VCC"},
			wantContain: []string{
				"(99.0000, 105.0000) - (99.0000, 110.0000)  5.0000 mm",
				"1 unconnected",
			},
			wantMissing: []string{"GND"},
		},
		{
			name:        "routed net",
			args:        []string{"unconnected", fixtureBoard, "SIG"},
			wantContain: []string{"0 unconnected"},
		},
		{
			name:       "unknown net",
			args:       []string{"unconnected", fixtureBoard, "NOPE"},
			wantErr:    true,
			errContain: `net "NOPE" not found`,
		},
		{
			name:       "missing file",
			args:       []string{"unconnected", "testdata/missing.kicad_pcb"},
			wantErr:    true,
			errContain: "failed to load board",
		},
		{
			name:    "no arguments",
			args:    []string{"unconnected"},
			wantErr: true,
		},
	})
}

// TestCheckE2E tests the check command end-to-end
func TestCheckE2E(t *testing.T) {
	runCases(t, []e2eCase{
		{
			name: "summary",
			args: []string{"check", fixtureBoard},
			wantContain: []string{
				"Board: " + fixtureBoard,
				"Unconnected",
				"3 nets, 2 incomplete, 3 unconnected",
			},
		},
		{
			name:       "strict",
			args:       []string{"check", "--strict", fixtureBoard},
			wantErr:    true,
			errContain: "3 connections missing",
			wantContain: []string{
				"3 nets, 2 incomplete, 3 unconnected",
			},
		},
	})
}

// TestScriptE2E tests the script command end-to-end
func TestScriptE2E(t *testing.T) {
	runCases(t, []e2eCase{
		{
			name: "standalone",
			args: []string{"script", "testdata/standalone.rats"},
			wantContain: []string{
				"net 1: (0, 0) - (3000, 4000) length 5000",
				"net 1: items 2 nodes 2 edges 0 components 2 unconnected 1",
			},
		},
		{
			name: "from board",
			args: []string{"script", "--board", fixtureBoard, "testdata/reroute.rats"},
			wantContain: []string{
				"net 1: (101000000, 110000000) - (104000000, 104000000) length 6708203",
				"net 1: (106000000, 105000000) - (110000000, 99000000) length 7211102",
			},
			wantMissing: []string{"net 2:"},
		},
		{
			name:       "failed expectation",
			args:       []string{"script", "testdata/failing.rats"},
			wantErr:    true,
			errContain: "3:1: expectation failed",
		},
		{
			name:       "missing script",
			args:       []string{"script", "testdata/missing.rats"},
			wantErr:    true,
			errContain: "failed to parse script",
		},
	})
}
