// Command calc replays a saved calculator program from a YAML or JSON file
// and prints its evaluation, or samples it as a graph.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
