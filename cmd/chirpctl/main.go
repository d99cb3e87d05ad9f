// Command chirpctl is the operator CLI for the radio clone engine: it
// drives Download, Upload and Probe against a real serial port from the
// command line.
package main

func main() {
	Execute()
}
