package repositories

import (
	"fmt"
	"strings"

	"github.com/buildmind/sitetrack/internal/domain/schedule"
	"github.com/buildmind/sitetrack/pkg/types/common"
)

// condBuilder accumulates WHERE conditions with positional pgx arguments.
// Each call to add binds exactly one argument; the format string names its
// placeholder position with a %d verb (use %[1]d when the same argument
// appears more than once in the condition).
type condBuilder struct {
	conds []string
	args  []any
}

func (b *condBuilder) add(format string, arg any) {
	b.args = append(b.args, arg)
	b.conds = append(b.conds, fmt.Sprintf(format, len(b.args)))
}

// addRaw appends a condition that carries no bound argument.
func (b *condBuilder) addRaw(cond string) {
	b.conds = append(b.conds, cond)
}

// where renders the accumulated conditions, or the empty string when none
// were added.
func (b *condBuilder) where() string {
	if len(b.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(b.conds, " AND ")
}

// next is the positional index the following bound argument will take.
// Useful for LIMIT/OFFSET appended outside the builder.
func (b *condBuilder) next() int {
	return len(b.args) + 1
}

// pgx encodes []string cleanly for = ANY($n); the typed slices from the
// domain need an explicit conversion first.

func idsToStrings(ids []common.ID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = string(id)
	}
	return out
}

func statusesToStrings[S ~string](statuses []S) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}

func prioritiesToStrings(priorities []schedule.Priority) []string {
	return statusesToStrings(priorities)
}
