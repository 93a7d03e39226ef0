package repository

import "slices"

// Spec is a query specification: filters, an optional ordering and paging.
//
//	open := repository.Where(func(o Order) bool { return !o.Closed }).
//	    OrderBy(func(a, b Order) int { return cmp.Compare(a.ID, b.ID) }).
//	    Take(10)
//	orders, err := repo.List(ctx, open)
type Spec[T any] struct {
	where []func(T) bool
	order func(a, b T) int
	skip  int
	take  int
}

// Where starts a specification with predicate.
func Where[T any](predicate func(T) bool) Spec[T] {
	return Spec[T]{}.And(predicate)
}

// And adds a predicate; every predicate must hold.
func (s Spec[T]) And(predicate func(T) bool) Spec[T] {
	s.where = append(slices.Clip(s.where), predicate)
	return s
}

// OrderBy sorts matches with cmp (stable).
func (s Spec[T]) OrderBy(cmp func(a, b T) int) Spec[T] {
	s.order = cmp
	return s
}

// Skip drops the first n matches.
func (s Spec[T]) Skip(n int) Spec[T] {
	s.skip = n
	return s
}

// Take keeps at most n matches. Zero means no limit.
func (s Spec[T]) Take(n int) Spec[T] {
	s.take = n
	return s
}

// Matches reports whether item satisfies every predicate.
func (s Spec[T]) Matches(item T) bool {
	for _, p := range s.where {
		if !p(item) {
			return false
		}
	}
	return true
}

// Apply filters, orders, then pages items. It returns a new slice.
func Apply[T any](items []T, specs ...Spec[T]) []T {
	out := slices.Clone(items)
	for _, s := range specs {
		out = slices.DeleteFunc(out, func(item T) bool { return !s.Matches(item) })
		if s.order != nil {
			slices.SortStableFunc(out, s.order)
		}
		if s.skip > 0 {
			out = out[min(s.skip, len(out)):]
		}
		if s.take > 0 && len(out) > s.take {
			out = out[:s.take]
		}
	}
	return out
}
