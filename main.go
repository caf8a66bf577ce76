package main

import (
	"os"

	"github.com/malu-oliver/agent-financeiro/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
