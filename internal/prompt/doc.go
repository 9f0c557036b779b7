// Package prompt is the interactive surface used by wizard steps: free text
// input with validation and single choice from a numbered list. The terminal
// implementation reads answers line by line, which also makes it scriptable
// from tests and pipes.
package prompt
