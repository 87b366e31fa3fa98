// Command reorganize applies a campaign's column rules to a local CSV file.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/afero"
)

func main() {
	if err := newRootCommand(afero.NewOsFs(), time.Now).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
