// Command studioctl drives the studio admin API from a terminal.
//
//	STUDIO_API_URL=http://localhost:8080 STUDIO_TOKEN=... studioctl list -path groups
package main

import (
	"log"
	"os"

	"go-studioadmin/internal/adminclient"

	"github.com/gorilla/websocket"
)

func main() {
	base := os.Getenv("STUDIO_API_URL")
	if base == "" {
		base = "http://localhost:8080"
	}
	cli := commandLine{
		client: adminclient.New(base, os.Getenv("STUDIO_TOKEN"), nil),
		dialer: websocket.DefaultDialer,
		out:    os.Stdout,
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			log.Printf("error: %s", err)
		}
		os.Exit(1)
	}
}
