// Command timescape compiles schema, handler and module descriptors into
// TypeScript sources and a manifest bundle.
package main

import "os"

func main() {
	if err := Execute(); err != nil {
		os.Exit(1)
	}
}
