// Package unitexpr parses compact unit-label expressions like "mg/mL",
// "m^2", or "degC" into an AnIML Unit with its SI conversion chain.
// It is an authoring convenience: instrument software usually emits SIUnit
// components directly, but tooling that builds documents by hand can
// derive them from the label instead.
package unitexpr

import (
	"fmt"
	"math"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"github.com/instrumatics/animl-go/core/animl"
	errs "github.com/instrumatics/animl-go/core/errors"
)

// unitGrammar is the participle grammar for unit expressions.
// Examples: "m", "mg", "mL", "m^2", "mg/mL", "m^2*kg/s^3"
//
//nolint:govet // participle grammar tags are not standard struct tags
type unitGrammar struct {
	First *unitTerm `parser:"@@"`
	Rest  []*unitOp `parser:"@@*"`
}

//nolint:govet // participle grammar tags are not standard struct tags
type unitOp struct {
	Op   string    `parser:"@(\"*\" | \"/\")"`
	Term *unitTerm `parser:"@@"`
}

//nolint:govet // participle grammar tags are not standard struct tags
type unitTerm struct {
	Symbol   string `parser:"@Ident"`
	Exponent *int   `parser:"(\"^\" @Int)?"`
}

// unitLexer defines the lexer for unit expressions.
var unitLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Int", Pattern: `-?[0-9]+`},
	{Name: "Ident", Pattern: `[A-Za-z]+`},
	{Name: "Punct", Pattern: `[*/^]`},
	{Name: "Whitespace", Pattern: `\s+`},
})

// unitParser is the participle parser for unit expressions.
var unitParser = participle.MustBuild[unitGrammar](
	participle.Lexer(unitLexer),
	participle.Elide("Whitespace"),
)

// baseUnit maps one accepted unit symbol to its SI-base equivalent:
// value_in_symbol * factor + offset = value_in_base, with dimExp copies of
// the base dimension.
type baseUnit struct {
	base   string
	factor float64
	offset float64
	dimExp int
}

// knownUnits are the symbols the grammar accepts before prefixing.
var knownUnits = map[string]baseUnit{
	"1":    {base: "1", factor: 1},
	"m":    {base: "m", factor: 1, dimExp: 1},
	"g":    {base: "kg", factor: 1e-3, dimExp: 1},
	"s":    {base: "s", factor: 1, dimExp: 1},
	"A":    {base: "A", factor: 1, dimExp: 1},
	"K":    {base: "K", factor: 1, dimExp: 1},
	"mol":  {base: "mol", factor: 1, dimExp: 1},
	"cd":   {base: "cd", factor: 1, dimExp: 1},
	"L":    {base: "m", factor: 1e-3, dimExp: 3},
	"min":  {base: "s", factor: 60, dimExp: 1},
	"h":    {base: "s", factor: 3600, dimExp: 1},
	"degC": {base: "K", factor: 1, offset: 273.15, dimExp: 1},
}

// siPrefixes are the decimal SI prefixes accepted in front of a symbol.
var siPrefixes = map[string]float64{
	"y": 1e-24, "z": 1e-21, "a": 1e-18, "f": 1e-15, "p": 1e-12,
	"n": 1e-9, "u": 1e-6, "m": 1e-3, "c": 1e-2, "d": 1e-1,
	"da": 1e1, "h": 1e2, "k": 1e3, "M": 1e6, "G": 1e9,
	"T": 1e12, "P": 1e15, "E": 1e18, "Z": 1e21, "Y": 1e24,
}

// Parse parses a unit expression and returns the equivalent Unit. The
// returned SIUnits are one linear component per term, composed left to
// right; a unit with an offset (degC) is only valid as the whole
// expression.
func Parse(expr string) (*animl.Unit, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return nil, errs.NewParse("unit expression", "", "empty expression")
	}
	g, err := unitParser.ParseString("", expr)
	if err != nil {
		return nil, errs.NewParse("unit expression", "", err.Error())
	}

	terms := make([]*unitTerm, 0, 1+len(g.Rest))
	invert := make([]bool, 0, 1+len(g.Rest))
	terms = append(terms, g.First)
	invert = append(invert, false)
	for _, op := range g.Rest {
		terms = append(terms, op.Term)
		invert = append(invert, op.Op == "/")
	}

	u := &animl.Unit{Label: expr}
	for i, term := range terms {
		si, offsetUnit, err := resolveTerm(term, invert[i])
		if err != nil {
			return nil, err
		}
		if offsetUnit && len(terms) > 1 {
			return nil, errs.NewParse("unit expression", "", fmt.Sprintf("offset unit %q cannot be combined with other terms", term.Symbol))
		}
		u.SIUnits = append(u.SIUnits, si)
	}
	return u, nil
}

// resolveTerm maps one term to a linear SIUnit component.
func resolveTerm(term *unitTerm, invert bool) (*animl.SIUnit, bool, error) {
	bu, prefixFactor, err := lookupSymbol(term.Symbol)
	if err != nil {
		return nil, false, err
	}

	exp := 1
	if term.Exponent != nil {
		exp = *term.Exponent
	}
	if bu.offset != 0 && (exp != 1 || invert) {
		return nil, false, errs.NewParse("unit expression", "", fmt.Sprintf("offset unit %q cannot carry an exponent or divide", term.Symbol))
	}

	factor := math.Pow(prefixFactor*bu.factor, float64(exp))
	if invert {
		factor = 1 / factor
	}
	return &animl.SIUnit{
		Unit:     bu.base,
		Factor:   factor,
		Exponent: 1,
		Offset:   bu.offset,
	}, bu.offset != 0, nil
}

// lookupSymbol resolves a symbol to its base unit, trying an exact match
// first and an SI prefix split second.
func lookupSymbol(symbol string) (baseUnit, float64, error) {
	if bu, ok := knownUnits[symbol]; ok {
		return bu, 1, nil
	}
	// Longest prefix first so "da" beats "d".
	for _, n := range []int{2, 1} {
		if len(symbol) <= n {
			continue
		}
		factor, ok := siPrefixes[symbol[:n]]
		if !ok {
			continue
		}
		if bu, ok := knownUnits[symbol[n:]]; ok {
			if bu.offset != 0 {
				return baseUnit{}, 0, errs.NewParse("unit expression", "", fmt.Sprintf("offset unit %q cannot be prefixed", symbol[n:]))
			}
			return bu, factor, nil
		}
	}
	return baseUnit{}, 0, errs.NewParse("unit expression", "", fmt.Sprintf("unknown unit symbol %q", symbol))
}
