package interp

import (
	"fmt"

	stateffect "github.com/stateffect/stateffect-go"
	"github.com/stateffect/stateffect-go/path"
	"github.com/stateffect/stateffect-go/ref"
)

// applyNoop is the identity effect: same state, nothing applied.
func applyNoop(doc stateffect.Document, _ stateffect.Effect, _ *stateffect.Context, _ Options) stateffect.ApplyResult {
	return stateffect.ApplyResult{State: doc}
}

// writeBack narrows a structural edit result to a document. Primitive
// edits always target inside the document, so a non-document result
// means the path was empty or degenerate.
func writeBack(next any) (stateffect.Document, error) {
	d, ok := next.(stateffect.Document)
	if !ok {
		return nil, fmt.Errorf("path must target inside the document")
	}
	return d, nil
}

func applyAssocIn(doc stateffect.Document, eff stateffect.Effect, ctx *stateffect.Context, _ Options) stateffect.ApplyResult {
	segments := ref.ResolvePath(eff.Path, ctx)
	value := ref.Resolve(eff.Value, ctx)
	next, err := path.AssocIn(doc, segments, value)
	if err != nil {
		return stateffect.Failure(doc, eff, stateffect.ErrInvalidPath, err.Error())
	}
	state, err := writeBack(next)
	if err != nil {
		return stateffect.Failure(doc, eff, stateffect.ErrInvalidPath, err.Error())
	}
	return stateffect.Applied(state, eff)
}

func applyDissocIn(doc stateffect.Document, eff stateffect.Effect, ctx *stateffect.Context, _ Options) stateffect.ApplyResult {
	segments := ref.ResolvePath(eff.Path, ctx)
	next, err := path.DissocIn(doc, segments)
	if err != nil {
		return stateffect.Failure(doc, eff, stateffect.ErrInvalidPath, err.Error())
	}
	state, err := writeBack(next)
	if err != nil {
		return stateffect.Failure(doc, eff, stateffect.ErrInvalidPath, err.Error())
	}
	return stateffect.Applied(state, eff)
}

func applyUpdateIn(doc stateffect.Document, eff stateffect.Effect, ctx *stateffect.Context, _ Options) stateffect.ApplyResult {
	fn, ok := ref.ResolveFn(ref.Resolve(eff.Fn, ctx))
	if !ok {
		return stateffect.Failure(doc, eff, stateffect.ErrUnknownFunction,
			fmt.Sprintf("%v does not resolve to a callable", eff.Fn))
	}

	args := make([]any, len(eff.Args))
	for i, arg := range eff.Args {
		args[i] = ref.Resolve(arg, ctx)
	}

	segments := ref.ResolvePath(eff.Path, ctx)
	current, exists := path.GetIn(doc, segments)
	if !exists && fn.Absent != nil {
		// Each built-in declares its own absent-value stand-in.
		current = fn.Absent(args)
	}

	out, err := fn.Apply(current, args)
	if err != nil {
		return stateffect.Failure(doc, eff, stateffect.ErrUpdateFailed, err.Error())
	}
	next, err := path.AssocIn(doc, segments, out)
	if err != nil {
		return stateffect.Failure(doc, eff, stateffect.ErrInvalidPath, err.Error())
	}
	state, err := writeBack(next)
	if err != nil {
		return stateffect.Failure(doc, eff, stateffect.ErrInvalidPath, err.Error())
	}
	return stateffect.Applied(state, eff)
}

func applyConjIn(doc stateffect.Document, eff stateffect.Effect, ctx *stateffect.Context, _ Options) stateffect.ApplyResult {
	segments := ref.ResolvePath(eff.Path, ctx)
	value := ref.Resolve(eff.Value, ctx)
	current, _ := path.GetIn(doc, segments)
	coll, err := path.Conj(current, value)
	if err != nil {
		return stateffect.Failure(doc, eff, stateffect.ErrNotACollection, err.Error())
	}
	next, err := path.AssocIn(doc, segments, coll)
	if err != nil {
		return stateffect.Failure(doc, eff, stateffect.ErrInvalidPath, err.Error())
	}
	state, err := writeBack(next)
	if err != nil {
		return stateffect.Failure(doc, eff, stateffect.ErrInvalidPath, err.Error())
	}
	return stateffect.Applied(state, eff)
}

func applyRemoveIn(doc stateffect.Document, eff stateffect.Effect, ctx *stateffect.Context, _ Options) stateffect.ApplyResult {
	pred, err := ref.ResolvePredicate(ref.Resolve(eff.Predicate, ctx))
	if err != nil {
		return stateffect.Failure(doc, eff, stateffect.ErrInvalidEffect, err.Error())
	}
	segments := ref.ResolvePath(eff.Path, ctx)
	current, exists := path.GetIn(doc, segments)
	if !exists {
		// Nothing to remove from.
		return stateffect.Applied(doc, eff)
	}
	_, rest, err := path.RemoveMatching(current, pred)
	if err != nil {
		return stateffect.Failure(doc, eff, stateffect.ErrNotACollection, err.Error())
	}
	next, err := path.AssocIn(doc, segments, rest)
	if err != nil {
		return stateffect.Failure(doc, eff, stateffect.ErrInvalidPath, err.Error())
	}
	state, err := writeBack(next)
	if err != nil {
		return stateffect.Failure(doc, eff, stateffect.ErrInvalidPath, err.Error())
	}
	return stateffect.Applied(state, eff)
}

// applyMove relocates every predicate-matching element from the source
// collection to the destination collection. Both paths are resolved
// independently; destination kind is preserved (append for ordered, add
// for unordered).
func applyMove(doc stateffect.Document, eff stateffect.Effect, ctx *stateffect.Context, _ Options) stateffect.ApplyResult {
	pred, err := ref.ResolvePredicate(ref.Resolve(eff.Predicate, ctx))
	if err != nil {
		return stateffect.Failure(doc, eff, stateffect.ErrInvalidEffect, err.Error())
	}
	fromSegs := ref.ResolvePath(eff.From, ctx)
	toSegs := ref.ResolvePath(eff.To, ctx)

	src, exists := path.GetIn(doc, fromSegs)
	if !exists {
		// An absent source moves nothing.
		return stateffect.Applied(doc, eff)
	}
	moved, rest, err := path.RemoveMatching(src, pred)
	if err != nil {
		return stateffect.Failure(doc, eff, stateffect.ErrNotACollection, err.Error())
	}

	dest, _ := path.GetIn(doc, toSegs)
	for _, el := range moved {
		dest, err = path.Conj(dest, el)
		if err != nil {
			return stateffect.Failure(doc, eff, stateffect.ErrNotACollection, err.Error())
		}
	}

	next, err := path.AssocIn(doc, fromSegs, rest)
	if err != nil {
		return stateffect.Failure(doc, eff, stateffect.ErrInvalidPath, err.Error())
	}
	next, err = path.AssocIn(next, toSegs, dest)
	if err != nil {
		return stateffect.Failure(doc, eff, stateffect.ErrInvalidPath, err.Error())
	}
	state, err := writeBack(next)
	if err != nil {
		return stateffect.Failure(doc, eff, stateffect.ErrInvalidPath, err.Error())
	}
	return stateffect.Applied(state, eff)
}

func applyMergeIn(doc stateffect.Document, eff stateffect.Effect, ctx *stateffect.Context, _ Options) stateffect.ApplyResult {
	value := ref.Resolve(eff.Value, ctx)
	var src map[string]any
	switch m := value.(type) {
	case map[string]any:
		src = m
	case stateffect.Document:
		src = map[string]any(m)
	default:
		return stateffect.Failure(doc, eff, stateffect.ErrNotAMap,
			fmt.Sprintf("merge value resolved to %T, not a map", value))
	}

	segments := ref.ResolvePath(eff.Path, ctx)
	current, _ := path.GetIn(doc, segments)
	merged, err := path.MergeValue(current, src)
	if err != nil {
		return stateffect.Failure(doc, eff, stateffect.ErrNotAMap, err.Error())
	}
	next, err := path.AssocIn(doc, segments, merged)
	if err != nil {
		return stateffect.Failure(doc, eff, stateffect.ErrInvalidPath, err.Error())
	}
	state, err := writeBack(next)
	if err != nil {
		return stateffect.Failure(doc, eff, stateffect.ErrInvalidPath, err.Error())
	}
	return stateffect.Applied(state, eff)
}
