package rules

import (
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/roach88/streamcalc/internal/engine"
)

// Profile names a rule set.
type Profile string

const (
	ProfileArithmetic Profile = "arithmetic"
	ProfileAlgebra    Profile = "algebra"
	ProfileEquation   Profile = "equation"
	ProfileFactoring  Profile = "factoring"
	ProfileCalculus   Profile = "calculus"
	ProfileFull       Profile = "full"
)

// DefaultProfile is used when no profile is configured.
const DefaultProfile = ProfileFull

// Family groups related rules.
type Family string

const (
	FamilyNormalize  Family = "normalize"
	FamilyArithmetic Family = "arithmetic"
	FamilyAlgebra    Family = "algebra"
	FamilyEquation   Family = "equation"
	FamilyFactoring  Family = "factoring"
	FamilyCalculus   Family = "calculus"
	FamilyTerminal   Family = "terminal"
)

var profileFamilies = map[Profile][]Family{
	ProfileArithmetic: {FamilyNormalize, FamilyArithmetic, FamilyTerminal},
	ProfileAlgebra:    {FamilyNormalize, FamilyArithmetic, FamilyAlgebra, FamilyTerminal},
	ProfileEquation:   {FamilyNormalize, FamilyArithmetic, FamilyAlgebra, FamilyEquation, FamilyTerminal},
	ProfileFactoring:  {FamilyNormalize, FamilyArithmetic, FamilyAlgebra, FamilyEquation, FamilyFactoring, FamilyTerminal},
	ProfileCalculus:   {FamilyNormalize, FamilyArithmetic, FamilyAlgebra, FamilyCalculus, FamilyTerminal},
	ProfileFull:       {FamilyNormalize, FamilyArithmetic, FamilyAlgebra, FamilyEquation, FamilyCalculus, FamilyTerminal},
}

// Profiles returns every profile name in a stable order.
func Profiles() []Profile {
	return []Profile{ProfileArithmetic, ProfileAlgebra, ProfileEquation, ProfileFactoring, ProfileCalculus, ProfileFull}
}

// ParseProfile converts a profile name. The empty string selects
// DefaultProfile.
func ParseProfile(s string) (Profile, error) {
	if strings.TrimSpace(s) == "" {
		return DefaultProfile, nil
	}
	p := Profile(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := profileFamilies[p]; !ok {
		names := make([]string, 0, len(profileFamilies))
		for _, known := range Profiles() {
			names = append(names, string(known))
		}
		return "", fmt.Errorf("unknown profile %q (want one of %s)", s, strings.Join(names, ", "))
	}
	return p, nil
}

// Rule ids.
const (
	IDPrecedence       = "precedence"
	IDParen            = "paren"
	IDNegation         = "negation"
	IDTermParse        = "term-parse"
	IDSubstitution     = "substitution"
	IDProductRule      = "product-rule"
	IDDerivative       = "derivative"
	IDDefiniteIntegral = "definite-integral"
	IDIntegral         = "integral"
	IDCriticalPoints   = "critical-points"
	IDFactor           = "factor"
	IDQuadratic        = "quadratic"
	IDLinear           = "linear"
	IDFOIL             = "foil"
	IDFactorForm       = "factor-form"
	IDAlgebraicAdd     = "algebraic-add"
	IDDistribution     = "distribution"
	IDAdd              = "add"
	IDSubtract         = "subtract"
	IDMultiply         = "multiply"
	IDDivide           = "divide"
	IDModulo           = "modulo"
	IDExponent         = "exponent"
	IDFactorial        = "factorial"
	IDSqrt             = "sqrt"
	IDNthRoot          = "nth-root"
	IDFloor            = "floor"
	IDCeil             = "ceil"
	IDAbs              = "abs"
	IDPartial          = "partial-operation"
	IDResult           = "result"
	IDUnrecognized     = "unrecognized"
)

// Entry describes one registered rule.
type Entry struct {
	ID       string `json:"id"`
	Priority int    `json:"priority"`
	Family   Family `json:"family"`
	Summary  string `json:"summary"`

	build func(c *Catalog, p Profile) engine.Rule
}

// registry lists every rule. Lower priority runs first.
var registry = []Entry{
	{ID: IDPrecedence, Priority: 100, Family: FamilyNormalize, Summary: "bracket the top operator of an operator chain",
		build: func(c *Catalog, _ Profile) engine.Rule { return precedenceRule{limit: c.precedenceCap} }},
	{ID: IDParen, Priority: 110, Family: FamilyNormalize, Summary: "strip parentheses around a whole item",
		build: func(*Catalog, Profile) engine.Rule { return parenRule{} }},
	{ID: IDNegation, Priority: 120, Family: FamilyNormalize, Summary: "unary minus",
		build: func(*Catalog, Profile) engine.Rule { return negationRule{} }},

	{ID: IDTermParse, Priority: 200, Family: FamilyAlgebra, Summary: "lift a term literal into an algebraic value",
		build: func(*Catalog, Profile) engine.Rule { return termParseRule{} }},
	{ID: IDSubstitution, Priority: 210, Family: FamilyAlgebra, Summary: "replace bound variables with their values",
		build: func(*Catalog, Profile) engine.Rule { return substitutionRule{} }},

	{ID: IDProductRule, Priority: 300, Family: FamilyCalculus, Summary: "d/dx((f)(g)) = f'g + fg'",
		build: func(c *Catalog, _ Profile) engine.Rule { return productRule{catalog: c} }},
	{ID: IDDerivative, Priority: 310, Family: FamilyCalculus, Summary: "power-rule derivative",
		build: func(*Catalog, Profile) engine.Rule { return derivativeRule{} }},
	{ID: IDDefiniteIntegral, Priority: 320, Family: FamilyCalculus, Summary: "F(b)-F(a) through helper engines",
		build: func(c *Catalog, _ Profile) engine.Rule { return definiteIntegralRule{catalog: c} }},
	{ID: IDIntegral, Priority: 330, Family: FamilyCalculus, Summary: "power-rule antiderivative",
		build: func(*Catalog, Profile) engine.Rule { return integralRule{} }},
	{ID: IDCriticalPoints, Priority: 340, Family: FamilyCalculus, Summary: "solve f'=0 and evaluate f there",
		build: func(c *Catalog, _ Profile) engine.Rule { return criticalPointsRule{catalog: c} }},

	{ID: IDFactor, Priority: 400, Family: FamilyEquation, Summary: "factor(x^2+bx+c)",
		build: func(*Catalog, Profile) engine.Rule { return factorRule{} }},
	{ID: IDQuadratic, Priority: 410, Family: FamilyEquation, Summary: "solve ax^2+bx+c=0",
		build: func(*Catalog, Profile) engine.Rule { return quadraticRule{} }},
	{ID: IDLinear, Priority: 420, Family: FamilyEquation, Summary: "solve ax+b=0",
		build: func(*Catalog, Profile) engine.Rule { return linearRule{} }},

	{ID: IDFOIL, Priority: 500, Family: FamilyAlgebra, Summary: "expand products and small powers of sums",
		build: func(*Catalog, Profile) engine.Rule { return foilRule{} }},
	{ID: IDFactorForm, Priority: 510, Family: FamilyFactoring, Summary: "factor a bare monic quadratic",
		build: func(*Catalog, Profile) engine.Rule { return factorRule{bare: true} }},
	{ID: IDAlgebraicAdd, Priority: 520, Family: FamilyAlgebra, Summary: "combine like terms",
		build: func(*Catalog, Profile) engine.Rule { return algebraicAddRule{} }},
	{ID: IDDistribution, Priority: 530, Family: FamilyAlgebra, Summary: "a(b+c) and (b+c)/a",
		build: func(*Catalog, Profile) engine.Rule { return distributionRule{} }},

	{ID: IDAdd, Priority: 600, Family: FamilyArithmetic, Summary: "a+b",
		build: func(*Catalog, Profile) engine.Rule { return newArithmeticRule(IDAdd) }},
	{ID: IDSubtract, Priority: 601, Family: FamilyArithmetic, Summary: "a-b",
		build: func(*Catalog, Profile) engine.Rule { return newArithmeticRule(IDSubtract) }},
	{ID: IDMultiply, Priority: 602, Family: FamilyArithmetic, Summary: "a*b",
		build: func(*Catalog, Profile) engine.Rule { return newArithmeticRule(IDMultiply) }},
	{ID: IDDivide, Priority: 603, Family: FamilyArithmetic, Summary: "a/b",
		build: func(*Catalog, Profile) engine.Rule { return newArithmeticRule(IDDivide) }},
	{ID: IDModulo, Priority: 604, Family: FamilyArithmetic, Summary: "a%b",
		build: func(*Catalog, Profile) engine.Rule { return newArithmeticRule(IDModulo) }},
	{ID: IDExponent, Priority: 605, Family: FamilyArithmetic, Summary: "a^b",
		build: func(*Catalog, Profile) engine.Rule { return newArithmeticRule(IDExponent) }},
	{ID: IDFactorial, Priority: 610, Family: FamilyArithmetic, Summary: "n!",
		build: func(*Catalog, Profile) engine.Rule { return factorialRule{} }},
	{ID: IDSqrt, Priority: 620, Family: FamilyArithmetic, Summary: "√x = x^0.5",
		build: func(*Catalog, Profile) engine.Rule { return sqrtRule{} }},
	{ID: IDNthRoot, Priority: 621, Family: FamilyArithmetic, Summary: "n√x = x^(1/n)",
		build: func(*Catalog, Profile) engine.Rule { return nthRootRule{} }},
	{ID: IDFloor, Priority: 630, Family: FamilyArithmetic, Summary: "⌊x⌋",
		build: func(c *Catalog, p Profile) engine.Rule { return newBracketRule(c, p, IDFloor) }},
	{ID: IDCeil, Priority: 631, Family: FamilyArithmetic, Summary: "⌈x⌉",
		build: func(c *Catalog, p Profile) engine.Rule { return newBracketRule(c, p, IDCeil) }},
	{ID: IDAbs, Priority: 632, Family: FamilyArithmetic, Summary: "|x|",
		build: func(c *Catalog, p Profile) engine.Rule { return newBracketRule(c, p, IDAbs) }},
	{ID: IDPartial, Priority: 700, Family: FamilyArithmetic, Summary: "resolve a composite operand in a child engine",
		build: func(c *Catalog, p Profile) engine.Rule { return &partialRule{catalog: c, profile: p} }},

	{ID: IDResult, Priority: 900, Family: FamilyTerminal, Summary: "hand a finished value to the parent engine",
		build: func(*Catalog, Profile) engine.Rule { return resultRule{} }},
	{ID: IDUnrecognized, Priority: 999, Family: FamilyTerminal, Summary: "report an item every rule rejected",
		build: func(*Catalog, Profile) engine.Rule { return unrecognizedRule{} }},
}

// Order returns the partial order every rule list must respect.
func Order() []engine.OrderConstraint {
	return []engine.OrderConstraint{
		{Before: IDQuadratic, After: IDLinear, Reason: "a quadratic equation also has a linear shape"},
		{Before: IDFOIL, After: IDFactorForm, Reason: "an already-factored product must be expanded, not refactored"},
		{Before: IDFactorForm, After: IDAlgebraicAdd, Reason: "a bare quadratic sum would otherwise be combined first"},
		{Before: IDProductRule, After: IDDerivative, Reason: "the product rule is the specific derivative form"},
		{Before: IDDefiniteIntegral, After: IDIntegral, Reason: "a definite integral also has an integral shape"},
		{Before: IDAlgebraicAdd, After: IDPartial, Reason: "algebraic operands are combined in place"},
		{Before: IDDistribution, After: IDPartial, Reason: "algebraic operands are distributed in place"},
		{Before: IDFOIL, After: IDPartial, Reason: "algebraic operands are expanded in place"},
		{Before: IDPrecedence, After: IDPartial, Reason: "chains are bracketed before operands are resolved"},
		{Before: IDResult, After: IDUnrecognized, Reason: "finished values are never unrecognized"},
	}
}

// Catalog builds rule lists for profiles.
type Catalog struct {
	precedenceCap int
}

// DefaultPrecedenceCap bounds the bracketing passes of one precedence rule
// application.
const DefaultPrecedenceCap = 10

// CatalogOption configures a Catalog.
type CatalogOption func(*Catalog)

// WithPrecedenceCap sets how many bracketing passes the precedence rule makes
// in a single application.
func WithPrecedenceCap(n int) CatalogOption {
	return func(c *Catalog) {
		if n > 0 {
			c.precedenceCap = n
		}
	}
}

// NewCatalog creates a catalog.
func NewCatalog(opts ...CatalogOption) *Catalog {
	c := &Catalog{precedenceCap: DefaultPrecedenceCap}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Entries returns the registry entries of p sorted by priority.
func (c *Catalog) Entries(p Profile) ([]Entry, error) {
	families, ok := profileFamilies[p]
	if !ok {
		return nil, fmt.Errorf("unknown profile %q", p)
	}
	var out []Entry
	for _, e := range registry {
		if slices.Contains(families, e.Family) {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Priority < out[j].Priority
	})
	return out, nil
}

// Build returns fresh rule instances for p in evaluation order.
func (c *Catalog) Build(p Profile) ([]engine.Rule, error) {
	entries, err := c.Entries(p)
	if err != nil {
		return nil, err
	}
	out := make([]engine.Rule, len(entries))
	for i, e := range entries {
		out[i] = e.build(c, p)
	}
	return out, nil
}

// Validate checks that the rule order of p satisfies Order plus extra.
func (c *Catalog) Validate(p Profile, extra ...engine.OrderConstraint) error {
	entries, err := c.Entries(p)
	if err != nil {
		return err
	}
	constraints := append(Order(), extra...)
	if err := engine.ValidateOrder(constraints); err != nil {
		return err
	}
	ids := make([]string, len(entries))
	for i, e := range entries {
		ids[i] = e.ID
	}
	return engine.CheckOrder(ids, constraints)
}
