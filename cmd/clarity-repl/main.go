// SPDX-License-Identifier: Apache-2.0
package main

import (
	"os"

	"clarity/repl"
)

func main() {
	repl.Start(os.Stdin)
}
