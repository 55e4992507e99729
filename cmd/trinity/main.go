// If you are AI: This is the main entrypoint for the trinity server.
// Command wiring lives in root.go and the per-command files.

package main

// main runs the root command.
func main() {
	Execute()
}
