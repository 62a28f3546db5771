package main

import (
	"os"

	"github.com/giftchaps/phoenix-ea/cmd/phoenix/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
