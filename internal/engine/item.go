package engine

import (
	"sort"

	"github.com/roach88/streamcalc/internal/ir"
)

// Item is a unit of data flowing through an engine, paired with the rules
// that have already declined it.
type Item struct {
	Node ir.Node

	rejectedBy map[string]struct{}
	totalRules int

	// TransformedBy and History are recorded only when tracing is enabled.
	TransformedBy []string
	History       []Step
}

// NewItem wraps n for an engine with totalRules rules.
func NewItem(n ir.Node, totalRules int) *Item {
	return &Item{Node: n, totalRules: totalRules}
}

// Reject marks the item as declined by ruleID. Repeated calls are idempotent.
func (i *Item) Reject(ruleID string) {
	if i.rejectedBy == nil {
		i.rejectedBy = make(map[string]struct{}, i.totalRules)
	}
	i.rejectedBy[ruleID] = struct{}{}
}

// RejectedBy reports whether ruleID declined the item.
func (i *Item) RejectedBy(ruleID string) bool {
	_, ok := i.rejectedBy[ruleID]
	return ok
}

// RejectionCount returns the number of distinct rules that declined the item.
func (i *Item) RejectionCount() int {
	return len(i.rejectedBy)
}

// Rejections returns the sorted ids of the rules that declined the item.
func (i *Item) Rejections() []string {
	ids := make([]string, 0, len(i.rejectedBy))
	for id := range i.rejectedBy {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// IsRejectedByAll reports whether every registered rule declined the item.
func (i *Item) IsRejectedByAll() bool {
	return len(i.rejectedBy) >= i.totalRules
}

// String renders the payload.
func (i *Item) String() string {
	return i.Node.String()
}

// inherit copies the observability trail of the item it was derived from and
// appends the step that produced it.
func (i *Item) inherit(from *Item, step Step) {
	i.TransformedBy = append(append(make([]string, 0, len(from.TransformedBy)+1), from.TransformedBy...), step.Rule)
	i.History = append(append(make([]Step, 0, len(from.History)+1), from.History...), step)
}
