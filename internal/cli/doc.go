// Package cli defines the Cobra command tree for the funcscaffold CLI. Each
// file registers one top-level command with the root command. Commands only
// parse flags and format output; template acquisition and function creation
// live in internal packages.
package cli
