package engine

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// TraceLevel selects how much the engine records about each rewrite.
type TraceLevel int

const (
	// TraceOff records nothing and adds no work to the loop.
	TraceOff TraceLevel = iota
	// TraceMinimal records which rule consumed each item.
	TraceMinimal
	// TraceStandard adds a step for every resume of a suspended rule.
	TraceStandard
	// TraceDetailed adds before/after text.
	TraceDetailed
	// TraceDebug adds wall-clock timestamps and, on terminal rejection, the
	// ids of every rejecting rule.
	TraceDebug
)

var traceLevelNames = []string{"off", "minimal", "standard", "detailed", "debug"}

// String returns the lowercase level name.
func (l TraceLevel) String() string {
	if l < TraceOff || int(l) >= len(traceLevelNames) {
		return fmt.Sprintf("TraceLevel(%d)", int(l))
	}
	return traceLevelNames[l]
}

// ParseTraceLevel accepts a level name (case-insensitive) or its ordinal 0..4.
func ParseTraceLevel(s string) (TraceLevel, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, name := range traceLevelNames {
		if s == name {
			return TraceLevel(i), nil
		}
	}
	if n, err := strconv.Atoi(s); err == nil && n >= 0 && n < len(traceLevelNames) {
		return TraceLevel(n), nil
	}
	return TraceOff, fmt.Errorf("invalid trace level %q (must be one of %s)", s, strings.Join(traceLevelNames, ", "))
}

// Step is one recorded rewrite.
type Step struct {
	Seq      int64     `json:"seq"`
	Engine   string    `json:"engine"`
	Rule     string    `json:"rule"`
	Before   string    `json:"before,omitempty"`
	After    string    `json:"after,omitempty"`
	At       time.Time `json:"at,omitzero"`
	Rejected []string  `json:"rejected,omitempty"`
}
