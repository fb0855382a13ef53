package main

import (
	"github.com/BioHazard786/coderoom/cmd"
	"github.com/BioHazard786/coderoom/internal/logging"
)

func main() {
	// Initialize logging
	logging.Init()
	cmd.Execute()
}
