package animl

import "math"

// validSIBaseUnits is the set of base unit names an SIUnit may carry.
// "1" denotes the dimensionless unit.
var validSIBaseUnits = map[string]bool{
	"1":   true,
	"m":   true,
	"kg":  true,
	"s":   true,
	"A":   true,
	"K":   true,
	"mol": true,
	"cd":  true,
}

// Unit is the display unit of a series or parameter. SIUnits describe the
// conversion of values in this unit to their SI-base representation.
type Unit struct {
	Label    string
	Quantity string
	SIUnits  []*SIUnit
}

// SIUnit is one component of a unit's SI conversion chain. Each component
// maps v to factor * v^exponent + offset; components compose left to right
// across the chain. The composition is syntactic, not commutative:
// reordering components changes the transform.
type SIUnit struct {
	Unit     string
	Factor   float64
	Exponent float64
	Offset   float64
}

// Apply maps one value through this component.
func (si *SIUnit) Apply(v float64) float64 {
	return si.Factor*math.Pow(v, si.Exponent) + si.Offset
}

// Transform returns the composed conversion from a value expressed in this
// unit to its SI-base representation. A unit without SI components returns
// the identity.
func (u *Unit) Transform() func(float64) float64 {
	components := u.SIUnits
	return func(v float64) float64 {
		for _, si := range components {
			v = si.Apply(v)
		}
		return v
	}
}

// ToSI converts a single value expressed in this unit to SI base.
func (u *Unit) ToSI(v float64) float64 {
	return u.Transform()(v)
}
