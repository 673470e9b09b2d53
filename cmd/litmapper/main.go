// Command litmapper serves and drives the literature clustering backend.
package main

import (
	"context"
	"os"

	"github.com/custodia-labs/litmapper/internal/adapters/driving/cli"
)

func main() {
	cli.SetBootstrap(bootstrap)
	if err := cli.Execute(context.Background()); err != nil {
		os.Exit(1)
	}
}
