// Standingsync - Alliance Standings Synchronization for EVE Online
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/standingsync

package sync

import (
	"cmp"
	"slices"

	esimodel "github.com/tomtom215/standingsync/internal/models/esi"
)

// contactWrite is the payload shared by one group of add or update calls.
// labelID 0 means no label.
type contactWrite struct {
	standing float64
	labelID  int64
}

func (w contactWrite) labels() []int64 {
	if w.labelID == 0 {
		return nil
	}
	return []int64{w.labelID}
}

type writeGroup struct {
	write contactWrite
	ids   []int64
}

// contactDiff is the set of ESI operations converging a follower.
type contactDiff struct {
	adds    []writeGroup
	updates []writeGroup
	deletes []int64
}

func (d contactDiff) empty() bool {
	return len(d.adds) == 0 && len(d.updates) == 0 && len(d.deletes) == 0
}

// diffContacts compares the follower's current contacts with target.
// warLabelID is the follower's war target label, 0 when none applies.
func diffContacts(current []esimodel.Contact, target TargetSet, warLabelID int64, replaceAll bool) contactDiff {
	have := make(map[int64]esimodel.Contact, len(current))
	for _, c := range current {
		have[c.ContactID] = c
	}

	adds := make(map[contactWrite][]int64)
	updates := make(map[contactWrite][]int64)
	for id, want := range target {
		w := contactWrite{standing: want.Standing}
		if want.IsWarTarget {
			w.labelID = warLabelID
		}
		got, ok := have[id]
		switch {
		case !ok:
			adds[w] = append(adds[w], id)
		case got.Standing != want.Standing,
			w.labelID != 0 && !slices.Contains(got.LabelIDs, w.labelID),
			warLabelID != 0 && !want.IsWarTarget && slices.Contains(got.LabelIDs, warLabelID):
			updates[w] = append(updates[w], id)
		}
	}

	var deletes []int64
	if replaceAll {
		for id := range have {
			if _, ok := target[id]; !ok {
				deletes = append(deletes, id)
			}
		}
		slices.Sort(deletes)
	}

	return contactDiff{adds: sortedGroups(adds), updates: sortedGroups(updates), deletes: deletes}
}

// sortedGroups orders groups by standing descending, then label id, with
// ids ascending inside each group.
func sortedGroups(m map[contactWrite][]int64) []writeGroup {
	groups := make([]writeGroup, 0, len(m))
	for w, ids := range m {
		slices.Sort(ids)
		groups = append(groups, writeGroup{write: w, ids: ids})
	}
	slices.SortFunc(groups, func(a, b writeGroup) int {
		if c := cmp.Compare(b.write.standing, a.write.standing); c != 0 {
			return c
		}
		return cmp.Compare(a.write.labelID, b.write.labelID)
	})
	return groups
}

// chunkIDs splits ids into batches of at most size.
func chunkIDs(ids []int64, size int) [][]int64 {
	if size <= 0 {
		size = len(ids)
	}
	var chunks [][]int64
	for start := 0; start < len(ids); start += size {
		chunks = append(chunks, ids[start:min(start+size, len(ids))])
	}
	return chunks
}
