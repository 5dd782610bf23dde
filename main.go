// The main package for the kapwire executable.
package main

import (
	"github.com/kapwire/kapwire/cmd"
)

// main is the entry point of the application.
// It defers all execution to the Cobra CLI library.
func main() {
	cmd.Execute()
}
