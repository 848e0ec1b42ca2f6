// The main package for the productfinder executable.
package main

import (
	"github.com/anshultibby/moleAI-sub001/cmd"
)

func main() {
	cmd.Execute()
}
