////////////////////////////////////////////////////////////////////////////////
// dao_gov: membership weighted DAO governance
// proposals, weighted votes, quorum and a timelock before execution
////////////////////////////////////////////////////////////////////////////////

package main

import (
	"fmt"
	"os"

	"dao_gov/cli"
)

func main() {
	err := cli.Execute(setupLogging)
	closeLogRotator()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
