package service

import (
	"sort"

	"feedgen/internal/domain/model"
)

type ChangeKind string

const (
	ChangeAdded   ChangeKind = "added"
	ChangeRemoved ChangeKind = "removed"
	ChangeUpdated ChangeKind = "changed"
)

// FeedChange 两次生成之间某个 feed 的数据源变化（不比较价格）
type FeedChange struct {
	FeedID         uint32
	Pair           string
	Kind           ChangeKind
	StatusBefore   model.FeedStatus
	StatusAfter    model.FeedStatus
	AddedSources   []string
	RemovedSources []string
}

// DiffConfigs compares source membership feed by feed.
// Changes follow next's feed order, removed feeds come last in prev's order.
func DiffConfigs(prev, next *model.GeneratedConfig) []FeedChange {
	var changes []FeedChange
	if next == nil {
		next = &model.GeneratedConfig{}
	}
	if prev == nil {
		prev = &model.GeneratedConfig{}
	}

	before := make(map[uint32]model.FeedDefinition, len(prev.Feeds))
	for _, f := range prev.Feeds {
		before[f.ID] = f
	}
	after := make(map[uint32]struct{}, len(next.Feeds))

	for _, f := range next.Feeds {
		after[f.ID] = struct{}{}
		old, ok := before[f.ID]
		if !ok {
			changes = append(changes, FeedChange{
				FeedID:       f.ID,
				Pair:         f.Pair.String(),
				Kind:         ChangeAdded,
				StatusAfter:  f.Status,
				AddedSources: exchanges(f.Sources),
			})
			continue
		}

		added, removed := setDiff(exchanges(old.Sources), exchanges(f.Sources))
		if len(added) == 0 && len(removed) == 0 && old.Status == f.Status && old.Pair == f.Pair {
			continue
		}
		changes = append(changes, FeedChange{
			FeedID:         f.ID,
			Pair:           f.Pair.String(),
			Kind:           ChangeUpdated,
			StatusBefore:   old.Status,
			StatusAfter:    f.Status,
			AddedSources:   added,
			RemovedSources: removed,
		})
	}

	for _, f := range prev.Feeds {
		if _, ok := after[f.ID]; ok {
			continue
		}
		changes = append(changes, FeedChange{
			FeedID:         f.ID,
			Pair:           f.Pair.String(),
			Kind:           ChangeRemoved,
			StatusBefore:   f.Status,
			RemovedSources: exchanges(f.Sources),
		})
	}
	return changes
}

func exchanges(sources []model.FeedSource) []string {
	out := make([]string, 0, len(sources))
	for _, s := range sources {
		out = append(out, s.Exchange)
	}
	return out
}

func setDiff(before, after []string) (added, removed []string) {
	in := func(xs []string) map[string]struct{} {
		m := make(map[string]struct{}, len(xs))
		for _, x := range xs {
			m[x] = struct{}{}
		}
		return m
	}
	b, a := in(before), in(after)
	for _, x := range after {
		if _, ok := b[x]; !ok {
			added = append(added, x)
		}
	}
	for _, x := range before {
		if _, ok := a[x]; !ok {
			removed = append(removed, x)
		}
	}
	sort.Strings(added)
	sort.Strings(removed)
	return added, removed
}
