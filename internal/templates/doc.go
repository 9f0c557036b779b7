// Package templates parses raw function templates into one normalized model.
//
// Two schema generations are supported. Version 1 ("script") templates carry
// a function.json binding descriptor and reference a shared binding catalogue
// whose settings drive the prompts. Version 2 templates describe jobs made of
// inputs (user prompts) and actions (file effects). Both are reduced to
// FunctionTemplate values so that callers never branch on the raw schema.
//
// Parsing is lenient per item: a malformed template, binding, or prompt is
// logged as a ParseError and dropped without affecting its siblings.
package templates
