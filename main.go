// Package main provides the entrypoint for webhook-relay.
package main

import (
	"os"

	"github.com/isometry/webhook-relay/cmd"
)

func main() {
	if err := cmd.New().Execute(); err != nil {
		os.Exit(1)
	}
}
