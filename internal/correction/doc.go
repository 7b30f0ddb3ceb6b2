// Package correction computes bath corrections for a configured module.
//
// The Engine owns the decision hierarchy shared by every module type: an ideal-state check,
// projection based optimal dilution when nothing is below target, and delegation to a
// type specific Corrector when a component has to be fortified. Correctors are registered
// per ModuleType and only ever see a resolved State.
package correction
