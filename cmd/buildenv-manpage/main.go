package main

import (
	"fmt"
	"os"

	"github.com/flox/flox-sub009/cmd/buildenv"
)

func main() {
	if err := buildenv.WriteManPage(os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error generating man page: %v\n", err)
		os.Exit(1)
	}
}
