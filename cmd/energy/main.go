// Command energy scores aim-trainer results against the benchmark catalog
// and replays entry histories into a running aimtrack server.
package main

func main() {
	Execute()
}
