// Package wizard implements a generic prompt-then-execute orchestrator.
//
// A Wizard threads one Context through an ordered list of prompt steps and
// then through execute steps sorted by priority. A prompt step may return a
// SubWizard discovered at runtime; its prompt steps run immediately after the
// step that produced them (depth first) and its execute steps join the
// master list. Independently authored steps therefore compose without the
// engine knowing what they do, and the priority numbers order their effects.
package wizard
