package stack

import (
	"github.com/carmenstack/spatialmatch/internal/archetype"
	"github.com/carmenstack/spatialmatch/internal/phrasematch"
)

// Expand turns one stack of archetypes into the cartesian product of their
// exemplars, depth-first and position-by-position, preserving the stack's
// relev/adjRelev on every produced permutation. It stops as soon as budget
// entries have been produced.
func Expand(in *Stack[*archetype.Archetype], budget int) []*Stack[*phrasematch.Phrasematch] {
	if len(in.Elements) == 0 || budget <= 0 {
		return nil
	}

	out := make([]*Stack[*phrasematch.Phrasematch], 0, budget)
	current := make([]*phrasematch.Phrasematch, len(in.Elements))

	var walk func(pos int)
	walk = func(pos int) {
		if len(out) >= budget {
			return
		}
		if pos == len(in.Elements) {
			elems := make([]*phrasematch.Phrasematch, len(current))
			copy(elems, current)
			out = append(out, &Stack[*phrasematch.Phrasematch]{
				Elements: elems,
				Relev:    in.Relev,
				AdjRelev: in.AdjRelev,
			})
			return
		}
		for _, exemplar := range in.Elements[pos].Exemplars {
			if len(out) >= budget {
				return
			}
			current[pos] = exemplar
			walk(pos + 1)
		}
	}
	walk(0)
	return out
}

// ExpandAll expands a selected list of archetype stacks against a single
// shared maxOut budget (spec.md §4.B: "maxOut = spatialmatch_stack_limit"),
// so the cap applies across the whole batch rather than per input stack.
func ExpandAll(in []*Stack[*archetype.Archetype], maxOut int) []*Stack[*phrasematch.Phrasematch] {
	if maxOut <= 0 {
		return nil
	}
	out := make([]*Stack[*phrasematch.Phrasematch], 0, maxOut)
	for _, s := range in {
		if len(out) >= maxOut {
			break
		}
		out = append(out, Expand(s, maxOut-len(out))...)
	}
	return out
}
