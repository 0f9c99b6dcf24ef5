package main

import (
	"os"

	"github.com/dshills/refract/internal/cli"
	"github.com/dshills/refract/internal/logging"
)

func main() {
	code := cli.Run()
	logging.Sync()
	os.Exit(code)
}
