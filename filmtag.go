package main

import (
	"os"

	"github.com/choiway/filmtag/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
