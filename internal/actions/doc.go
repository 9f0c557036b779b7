// Package actions executes the actions of a v2 template job against a wizard
// context and a file system. Actions run in the order the job lists them;
// each one either mutates the context or writes a file.
package actions
