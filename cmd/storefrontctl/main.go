// Command storefrontctl is the operator CLI: it mints tokens, seeds the
// Postgres catalog and rebuilds projected carts.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
