package animl

import (
	"math"
	"testing"
)

func TestUnitIdentityTransform(t *testing.T) {
	u := &Unit{Label: "AU"}
	if got := u.ToSI(3.5); got != 3.5 {
		t.Errorf("ToSI(3.5) = %v, want identity", got)
	}
}

func TestUnitScaleTransform(t *testing.T) {
	// Millimetres: factor 0.001 against the metre.
	u := &Unit{
		Label:   "mm",
		SIUnits: []*SIUnit{{Unit: "m", Factor: 0.001, Exponent: 1, Offset: 0}},
	}
	if got := u.ToSI(250); got != 0.25 {
		t.Errorf("ToSI(250) = %v, want 0.25", got)
	}
}

func TestUnitOffsetTransform(t *testing.T) {
	// Degrees Celsius to Kelvin.
	u := &Unit{
		Label:   "degC",
		SIUnits: []*SIUnit{{Unit: "K", Factor: 1, Exponent: 1, Offset: 273.15}},
	}
	if got := u.ToSI(25); math.Abs(got-298.15) > 1e-9 {
		t.Errorf("ToSI(25) = %v, want 298.15", got)
	}
}

func TestUnitCompositionOrderMatters(t *testing.T) {
	scale := &SIUnit{Unit: "m", Factor: 2, Exponent: 1, Offset: 0}
	shift := &SIUnit{Unit: "m", Factor: 1, Exponent: 1, Offset: 10}

	scaleThenShift := &Unit{Label: "a", SIUnits: []*SIUnit{scale, shift}}
	shiftThenScale := &Unit{Label: "b", SIUnits: []*SIUnit{shift, scale}}

	if got := scaleThenShift.ToSI(3); got != 16 {
		t.Errorf("scale-then-shift(3) = %v, want 16", got)
	}
	if got := shiftThenScale.ToSI(3); got != 26 {
		t.Errorf("shift-then-scale(3) = %v, want 26", got)
	}
}

func TestSIUnitExponent(t *testing.T) {
	si := &SIUnit{Unit: "m", Factor: 1, Exponent: 2, Offset: 0}
	if got := si.Apply(3); got != 9 {
		t.Errorf("Apply(3) = %v, want 9", got)
	}
}

func TestUnitTransformIsReusable(t *testing.T) {
	u := &Unit{
		Label:   "km",
		SIUnits: []*SIUnit{{Unit: "m", Factor: 1000, Exponent: 1, Offset: 0}},
	}
	toSI := u.Transform()
	if toSI(1) != 1000 || toSI(2) != 2000 {
		t.Error("Transform closure should be reusable across calls")
	}
}
