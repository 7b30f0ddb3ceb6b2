package correction

import "strings"

type amountUnit struct {
	name string
	// litres of liquid added per unit of pure chemical
	volumeFactor float64
}

// amountUnits maps the numerator of a concentration unit to its amount unit. Solids are treated as
// adding no volume.
var amountUnits = map[string]amountUnit{
	"l":  {name: "L", volumeFactor: 1},
	"ml": {name: "ml", volumeFactor: 1e-3},
	"ul": {name: "µl", volumeFactor: 1e-6},
	"µl": {name: "µl", volumeFactor: 1e-6},
	"kg": {name: "kg"},
	"g":  {name: "g"},
	"mg": {name: "mg"},
}

func lookupUnit(unit string) (amountUnit, bool) {
	numerator, _, _ := strings.Cut(unit, "/")
	u, ok := amountUnits[strings.ToLower(strings.TrimSpace(numerator))]
	return u, ok
}

// VolumeFactor returns the litres of liquid one amount unit of a chemical measured in unit adds.
// Unknown units are treated as solids.
func VolumeFactor(unit string) float64 {
	u, _ := lookupUnit(unit)
	return u.volumeFactor
}

// AmountUnit returns the unit pure chemical additions are expressed in, e.g. "ml" for "ml/L".
func AmountUnit(unit string) string {
	if u, ok := lookupUnit(unit); ok {
		return u.name
	}
	numerator, _, _ := strings.Cut(unit, "/")
	if numerator = strings.TrimSpace(numerator); numerator != "" {
		return numerator
	}
	return "units"
}

// KnownUnit reports whether the numerator of unit is understood for volume accounting.
func KnownUnit(unit string) bool {
	_, ok := lookupUnit(unit)
	return ok
}
