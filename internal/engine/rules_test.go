package engine

import (
	"context"

	"github.com/roach88/streamcalc/internal/ir"
)

// Test rules. They work on a tiny subset of ir: Binary(+) over numbers,
// groups, and error values.

// addRule folds Binary(+, Num, Num) into a Num.
type addRule struct{ id string }

func (r addRule) ID() string {
	if r.id == "" {
		return "add"
	}
	return r.id
}

func (addRule) Matches(item *Item) bool {
	b, ok := item.Node.(ir.Binary)
	if !ok || b.Op != ir.OpAdd {
		return false
	}
	_, l := b.Left.(ir.Num)
	_, r := b.Right.(ir.Num)
	return l && r
}

func (addRule) Apply(_ context.Context, item *Item, e *Engine) (Outcome, error) {
	b := item.Node.(ir.Binary)
	e.Emit(ir.Num{Value: b.Left.(ir.Num).Value + b.Right.(ir.Num).Value})
	return Consumed, nil
}

// ungroupRule strips a Group.
type ungroupRule struct{}

func (ungroupRule) ID() string { return "ungroup" }

func (ungroupRule) Matches(item *Item) bool {
	_, ok := item.Node.(ir.Group)
	return ok
}

func (ungroupRule) Apply(_ context.Context, item *Item, e *Engine) (Outcome, error) {
	e.Emit(item.Node.(ir.Group).Inner)
	return Consumed, nil
}

// flipRule rewrites Num 1 <-> Num 2 forever.
type flipRule struct{}

func (flipRule) ID() string { return "flip" }

func (flipRule) Matches(item *Item) bool {
	_, ok := item.Node.(ir.Raw)
	return ok
}

func (flipRule) Apply(_ context.Context, item *Item, e *Engine) (Outcome, error) {
	if item.Node.(ir.Raw).Text == "a" {
		e.Emit(ir.Raw{Text: "b"})
	} else {
		e.Emit(ir.Raw{Text: "a"})
	}
	return Consumed, nil
}

// decliningRule matches everything and always declines from Apply.
type decliningRule struct{}

func (decliningRule) ID() string { return "declining" }

func (decliningRule) Matches(*Item) bool { return true }

func (decliningRule) Apply(context.Context, *Item, *Engine) (Outcome, error) {
	return Rejected, nil
}

// resultRule returns terminal items to the parent, or re-emits them.
type resultRule struct{}

func (resultRule) ID() string { return "result" }

func (resultRule) Matches(item *Item) bool { return ir.IsTerminal(item.Node) }

func (resultRule) Apply(ctx context.Context, item *Item, e *Engine) (Outcome, error) {
	if e.HasParent() {
		return Consumed, e.ReturnToParent(ctx, item)
	}
	e.Emit(item.Node)
	return Consumed, nil
}

// catchAllRule turns an unrecognized item into an error value.
type catchAllRule struct{}

func (catchAllRule) ID() string { return "unrecognized" }

func (catchAllRule) CatchAll() bool { return true }

func (catchAllRule) Matches(item *Item) bool {
	return item.IsRejectedByAll() && !ir.IsError(item.Node)
}

func (catchAllRule) Apply(_ context.Context, item *Item, e *Engine) (Outcome, error) {
	e.Emit(ir.ErrorValue{Message: "Error: Unrecognized expression '" + item.String() + "'"})
	return Consumed, nil
}

// splitRule resolves Binary(+, Group, Num) by suspending on a child engine
// for the group.
type splitRule struct {
	cont Continuation[splitState]
}

type splitState struct {
	right ir.Node
}

func (*splitRule) ID() string { return "split" }

func (*splitRule) Matches(item *Item) bool {
	b, ok := item.Node.(ir.Binary)
	if !ok || b.Op != ir.OpAdd {
		return false
	}
	_, g := b.Left.(ir.Group)
	return g
}

func (r *splitRule) Apply(ctx context.Context, item *Item, e *Engine) (Outcome, error) {
	b := item.Node.(ir.Binary)
	if err := r.cont.Suspend(r.ID(), splitState{right: b.Right}); err != nil {
		return Rejected, err
	}
	child, err := e.SpawnChild(r.ID(), []Rule{ungroupRule{}, addRule{}, resultRule{}})
	if err != nil {
		return Rejected, err
	}
	child.Emit(b.Left)
	return Consumed, child.Run(ctx)
}

func (r *splitRule) Resume(_ context.Context, e *Engine, result *Item) error {
	st, err := r.cont.Take(r.ID())
	if err != nil {
		return err
	}
	e.Emit(ir.Binary{Op: ir.OpAdd, Left: result.Node, Right: st.right})
	return nil
}
