// Command fitdump dumps, checks and summarises FIT activity files.
package main

import (
	"os"

	"github.com/arloliu/fitstream/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
