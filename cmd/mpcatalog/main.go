// Command mpcatalog browses the community management pack catalog.
package main

import (
	"os"

	"github.com/mpcatalog/mpcatalog/internal/cmd"
)

func main() {
	os.Exit(cmd.Main())
}
