// Package main is the entry point for the scorefix CLI tool, which corrects
// the per-second score logs written by a screen-capture score tracker.
package main

import "github.com/pable/scorefix/cmd"

func main() {
	cmd.Execute()
}
