// Command feedbackctl drives the feedback API from a terminal: offline draft
// validation, submission, and the admin list, settings and export calls.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", describe(err))
		os.Exit(1)
	}
}
