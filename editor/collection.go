package editor

import "slices"

// Entity is anything kept in an id-addressed collection.
type Entity interface {
	GetID() string
}

// Upsert replaces the item with the same id in place, or adds it at the
// front (prepend) or the back. items is not modified.
func Upsert[T Entity](items []T, item T, prepend bool) []T {
	if i := indexOf(items, item.GetID()); i >= 0 {
		out := slices.Clone(items)
		out[i] = item
		return out
	}
	if prepend {
		out := make([]T, 0, len(items)+1)
		out = append(out, item)
		return append(out, items...)
	}
	out := slices.Clone(items)
	return append(out, item)
}

// Replace swaps the item with the same id. Without a match the collection
// comes back unchanged.
func Replace[T Entity](items []T, item T) []T {
	out := slices.Clone(items)
	if i := indexOf(out, item.GetID()); i >= 0 {
		out[i] = item
	}
	return out
}

// Remove filters id out of items. A missing id yields an identical copy.
func Remove[T Entity](items []T, id string) []T {
	out := make([]T, 0, len(items))
	for _, it := range items {
		if it.GetID() != id {
			out = append(out, it)
		}
	}
	return out
}

// Contains reports whether any item has the given id.
func Contains[T Entity](items []T, id string) bool {
	return indexOf(items, id) >= 0
}

func indexOf[T Entity](items []T, id string) int {
	return slices.IndexFunc(items, func(it T) bool { return it.GetID() == id })
}
