// Package main provides the VoiceBridge command line tool.
//
// Usage:
//
//	voicebridgectl [flags] <command> [args]
//
// Commands:
//
//	announce   - Translate and synthesize a text announcement
//	transcribe - Create an announcement from a recording
//	history    - List recent announcements
//	check      - Send a test request to the translation provider
//
// Configuration is read from VOICEBRIDGE_* environment variables and an
// optional .env file, the same as the server.
package main

import (
	"fmt"
	"os"

	"voicebridge/cmd/voicebridgectl/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
