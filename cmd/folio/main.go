// Command folio tracks, selects and groups portfolio holdings.
package main

import (
	"os"

	"github.com/mesh-intelligence/folio/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
