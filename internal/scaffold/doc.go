// Package scaffold writes a template's file map into a new directory. It
// powers the v1 function-creation step, which materialises a function
// folder next to its generated function.json.
package scaffold
