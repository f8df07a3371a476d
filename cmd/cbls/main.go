// Command cbls runs inventory imports and reads against the cable inventory
// database without going through the HTTP server.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
