// Package correctors provides the fortification strategies registered with the correction engine.
//
// MakeupBlend serves 2-component modules and corrects with a blend of makeup solution and water.
// PureChemical serves 3-component modules and corrects with pure chemicals and water.
package correctors
