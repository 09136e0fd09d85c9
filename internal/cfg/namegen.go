package cfg

import (
	"fmt"
	"sync/atomic"
)

// Two disjoint counters back the fresh-name generators: one namespace
// for desugaring temporaries, one for synthesized generator functions.
// Each returns a string unique within the process.
var (
	tempCounter      int64
	generatorCounter int64
)

// newTempName returns a fresh temporary-variable name, e.g. for binding
// a nested call's argument or a comprehension's accumulator.
func newTempName(hint string) string {
	n := atomic.AddInt64(&tempCounter, 1)
	if hint == "" {
		hint = "tmp"
	}
	return fmt.Sprintf("__%s_%d", hint, n)
}

// newGeneratorName returns a fresh name for a synthesized generator
// function, derived from the name the generator expression is being
// assigned to. Lifted lambdas do not use it: they take the target name as is.
func newGeneratorName(hint string) string {
	n := atomic.AddInt64(&generatorCounter, 1)
	if hint == "" {
		hint = "gen"
	}
	return fmt.Sprintf("__%s_gen_%d", hint, n)
}
