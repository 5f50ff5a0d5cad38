package diskkit

import (
	"iter"

	"github.com/gobwas/glob"
)

// CollectList drains a FlatList sequence into a slice, stopping at the
// first error. Convenience for callers that want the whole listing; large
// buckets should iterate instead.
func CollectList(seq iter.Seq2[FileEntry, error]) ([]FileEntry, error) {
	var entries []FileEntry
	for entry, err := range seq {
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// FilterGlob narrows a listing to entries whose path matches pattern.
// Patterns use gobwas/glob syntax with "/" as separator, so "*" stays
// within one segment and "**" crosses segments.
func FilterGlob(seq iter.Seq2[FileEntry, error], pattern string) (iter.Seq2[FileEntry, error], error) {
	g, err := glob.Compile(pattern, '/')
	if err != nil {
		return nil, err
	}
	return func(yield func(FileEntry, error) bool) {
		for entry, err := range seq {
			if err != nil {
				yield(FileEntry{}, err)
				return
			}
			if !g.Match(entry.Path) {
				continue
			}
			if !yield(entry, nil) {
				return
			}
		}
	}, nil
}
