package main

import (
	"os"

	"marketplace-admin/cmd/adminctl/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
