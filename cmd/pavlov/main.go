// Command pavlov lists the assertion catalog and runs check plans
// against values documents.
package main

import (
	"errors"
	"fmt"
	"os"
)

func main() {
	a := newApp(os.Stdout, os.Stderr)
	err := newRootCmd(a).Execute()
	_ = a.logger.Close()
	if err != nil {
		if !errors.Is(err, errChecksFailed) {
			fmt.Fprintf(os.Stderr, "pavlov: %v\n", err)
		}
		os.Exit(exitCode(err))
	}
}

// exitCode is 1 when checks failed and 2 for every other error.
func exitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, errChecksFailed):
		return 1
	default:
		return 2
	}
}
