package query

import (
	"sort"

	"github.com/wadjakorntonsri/go-bookmarks/pkg/core/domain"
)

// TagFilterResult is the outcome of intersecting a tag selection.
// Applied is false when nothing was selected; in that case IDs is meaningless
// and every bookmark passes.
type TagFilterResult struct {
	Applied bool
	IDs     []int64
}

// NoMatches reports a requested filter that matched nothing. Callers must
// not confuse this with "no filter".
func (r TagFilterResult) NoMatches() bool {
	return r.Applied && len(r.IDs) == 0
}

// IntersectTags returns the bookmark ids that carry every selected tag.
// Duplicate selections count once. Output ids are ascending.
func IntersectTags(selected []int64, links []domain.BookmarkTagLink) TagFilterResult {
	want := make(map[int64]struct{}, len(selected))
	for _, id := range selected {
		want[id] = struct{}{}
	}
	if len(want) == 0 {
		return TagFilterResult{}
	}

	// bookmark id -> selected tags seen on it
	seen := make(map[int64]map[int64]struct{})
	for _, l := range links {
		if _, ok := want[l.TagID]; !ok {
			continue
		}
		tags := seen[l.BookmarkID]
		if tags == nil {
			tags = make(map[int64]struct{}, len(want))
			seen[l.BookmarkID] = tags
		}
		tags[l.TagID] = struct{}{}
	}

	ids := make([]int64, 0, len(seen))
	for bookmarkID, tags := range seen {
		if len(tags) == len(want) {
			ids = append(ids, bookmarkID)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	return TagFilterResult{Applied: true, IDs: ids}
}

// UniqueIDs drops duplicates and non-positive ids, keeping first-seen order.
// A nil input stays nil so "not supplied" survives deduplication.
func UniqueIDs(ids []int64) []int64 {
	if ids == nil {
		return nil
	}
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if id <= 0 {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
