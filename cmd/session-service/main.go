// Package main is the session-service entrypoint (HTTP + WebSocket).
package main

import (
	"log"

	"github.com/fitsync/session-service/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
