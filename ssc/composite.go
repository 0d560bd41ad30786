package ssc

import (
	"fmt"
	"io"

	"github.com/notargets/schwarz/types"
	"github.com/notargets/schwarz/utils"
)

// Applier is the common contract of the preconditioner components: a patch
// smoother, a coarse correction, or a composite of either.
type Applier interface {
	SetUp(op *Operator) error
	Apply(x utils.Vector) (y utils.Vector, err error)
	View(w io.Writer)
}

// Additive sums the corrections of its components on the same input
// residual: y = sum_i M_i^-1 x. The result is exactly the floating-point sum
// of the component applications, in component order.
type Additive struct {
	Components []Applier
}

func NewAdditive(components ...Applier) *Additive {
	return &Additive{Components: components}
}

func (a *Additive) SetUp(op *Operator) (err error) {
	for _, c := range a.Components {
		if err = c.SetUp(op); err != nil {
			return
		}
	}
	return
}

func (a *Additive) Apply(x utils.Vector) (y utils.Vector, err error) {
	if len(a.Components) == 0 {
		err = &types.ConfigurationError{What: "additive composite has no components"}
		return
	}
	for i, c := range a.Components {
		var z utils.Vector
		if z, err = c.Apply(x); err != nil {
			y = utils.Vector{}
			return
		}
		if i == 0 {
			y = z
		} else {
			y.Add(z)
		}
	}
	return
}

func (a *Additive) View(w io.Writer) {
	fmt.Fprintf(w, "Additive composite of %d components\n", len(a.Components))
	for _, c := range a.Components {
		c.View(w)
	}
	return
}

// Multiplicative applies its components in sequence, updating the residual
// with the bound operator between stages: y += M_i^-1 r; r = x - A*y. It
// trades the parallelism of the additive combination for a stronger single
// application.
type Multiplicative struct {
	Components []Applier
	op         *Operator
}

func NewMultiplicative(components ...Applier) *Multiplicative {
	return &Multiplicative{Components: components}
}

func (m *Multiplicative) SetUp(op *Operator) (err error) {
	for _, c := range m.Components {
		if err = c.SetUp(op); err != nil {
			return
		}
	}
	m.op = op
	return
}

func (m *Multiplicative) Apply(x utils.Vector) (y utils.Vector, err error) {
	if len(m.Components) == 0 {
		err = &types.ConfigurationError{What: "multiplicative composite has no components"}
		return
	}
	if m.op == nil {
		err = &types.ConfigurationError{What: "multiplicative composite applied before setup"}
		return
	}
	var (
		r = x.Copy()
		z utils.Vector
	)
	y = utils.NewVector(x.Len())
	for i, c := range m.Components {
		if z, err = c.Apply(r); err != nil {
			y = utils.Vector{}
			return
		}
		y.Add(z)
		if i < len(m.Components)-1 {
			r = x.Copy().Subtract(m.op.A.MulVec(y))
		}
	}
	return
}

func (m *Multiplicative) View(w io.Writer) {
	fmt.Fprintf(w, "Multiplicative composite of %d components\n", len(m.Components))
	for _, c := range m.Components {
		c.View(w)
	}
	return
}
