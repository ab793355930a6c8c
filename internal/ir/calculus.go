package ir

// Derivative is d/dVar(Body).
type Derivative struct {
	Var  string
	Body Node
}

func (Derivative) irNode() {}

func (d Derivative) String() string { return "d/d" + d.Var + "(" + d.Body.String() + ")" }

// Integral is ∫Body dVar, or the definite form ∫[Lower,Upper] Body dVar when
// both bounds are set.
type Integral struct {
	Var   string
	Body  Node
	Lower Node
	Upper Node
}

func (Integral) irNode() {}

// Definite reports whether both bounds are present.
func (i Integral) Definite() bool {
	return i.Lower != nil && i.Upper != nil
}

func (i Integral) String() string {
	if i.Definite() {
		return "∫[" + i.Lower.String() + "," + i.Upper.String() + "] " + i.Body.String() + " d" + i.Var
	}
	return "∫" + i.Body.String() + " d" + i.Var
}

// OptimizeKind names the critical-point request form.
type OptimizeKind string

const (
	Maximize OptimizeKind = "maximize"
	Minimize OptimizeKind = "minimize"
	Critical OptimizeKind = "critical"
)

// Optimize asks for the critical points of Body with respect to Var.
type Optimize struct {
	Kind OptimizeKind
	Var  string
	Body Node
}

func (Optimize) irNode() {}

func (o Optimize) String() string {
	return string(o.Kind) + "(" + o.Body.String() + "," + o.Var + ")"
}

// Factor asks for the factored form of Body.
type Factor struct {
	Body Node
}

func (Factor) irNode() {}

func (f Factor) String() string { return "factor(" + f.Body.String() + ")" }
