package main

import (
	"os"

	"github.com/devfolio/portfolio-backend/internal/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
