package main

import (
	"os"

	"github.com/flox/flox-sub009/cmd/buildenv"
)

func main() {
	os.Exit(buildenv.Execute())
}
