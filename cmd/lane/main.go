package main

import (
	"errors"
	"fmt"
	"os"

	app "github.com/valter-silva-au/lane/internal"
	"github.com/valter-silva-au/lane/internal/cli"
	"github.com/valter-silva-au/lane/internal/core"
	"github.com/valter-silva-au/lane/internal/integration"
)

// Set by goreleaser ldflags at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	cli.SetVersionInfo(version, commit, date)
	basePath := app.ResolveBasePath()

	a, err := app.NewApp(basePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing lane: %v\n", err)
		os.Exit(2)
	}
	defer a.Close()

	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitCode(err))
	}
}

// exitCode maps an error to the process exit code: 1 for precondition and
// validation failures, 3 for a completion whose tag was created locally
// but could not be pushed, 2 for everything unexpected.
func exitCode(err error) int {
	var verr *core.ValidationError
	if errors.As(err, &verr) {
		return 1
	}
	var gerr *integration.VcsError
	if errors.As(err, &gerr) && gerr.Partial {
		return 3
	}
	return 2
}
