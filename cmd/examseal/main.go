package main

import (
	"os"

	"examseal/cmd/examseal/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
