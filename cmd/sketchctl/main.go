// Command sketchctl evaluates sketch scripts, exports their geometry and
// manages the sketch library without the desktop app.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
