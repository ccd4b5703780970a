// Command ipcsim projects consumer price index categories with Monte Carlo
// simulation.
package main

import "github.com/theirongolddev/ipcsim/cmd"

func main() {
	cmd.Execute()
}
