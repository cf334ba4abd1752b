package main

import "github.com/OpenTraceLab/OpenTraceRatsnest/cmd/ratsnest/cmd"

func main() {
	cmd.Execute()
}
