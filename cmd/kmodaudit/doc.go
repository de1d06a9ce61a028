// Package kmodaudit provides the command-line interface for kmodaudit. It
// wires flags and config files into an audit run, renders the report and
// offers batch, watch and pattern helpers as subcommands.
//
// Typical usage from a main package:
//
//	package main
//	import "github.com/kmodaudit/kmodaudit/cmd/kmodaudit"
//	func main() { kmodaudit.Execute() }
package kmodaudit
