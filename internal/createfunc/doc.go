// Package createfunc is the function-creation wizard. It turns a template
// set into wizard steps: a template pick that expands into either the v1
// flow (function name, binding settings, function folder and function.json)
// or the v2 flow (job pick, job inputs, job actions).
package createfunc
