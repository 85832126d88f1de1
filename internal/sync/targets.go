// Standingsync - Alliance Standings Synchronization for EVE Online
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/standingsync

package sync

import (
	"sort"

	"github.com/tomtom215/standingsync/internal/models"
)

// TargetPolicy controls how a follower's contacts are derived.
type TargetPolicy struct {
	// AddWarTargets injects the alliance's war targets at minimum standing.
	AddWarTargets bool

	// ReplaceAll deletes follower contacts that are not in the target set.
	ReplaceAll bool
}

// TargetSet is the contact set a follower converges to, keyed by entity id.
type TargetSet map[int64]models.Contact

// BuildTargetSet derives the follower target set from the mirror and the
// alliance's war targets. A war target always overrides a mirror entry for
// the same id.
func BuildTargetSet(mirror []models.Contact, warTargets []models.Entity, policy TargetPolicy) TargetSet {
	set := make(TargetSet, len(mirror)+len(warTargets))
	for _, c := range mirror {
		c.IsWarTarget = false
		set[c.EntityID] = c
	}
	if policy.AddWarTargets {
		for _, e := range warTargets {
			set[e.ID] = models.Contact{
				EntityID:    e.ID,
				Kind:        e.Kind,
				Standing:    models.StandingMin,
				IsWarTarget: true,
			}
		}
	}
	return set
}

// Contacts returns the set as a slice ordered by entity id.
func (s TargetSet) Contacts() []models.Contact {
	out := make([]models.Contact, 0, len(s))
	for _, c := range s {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EntityID < out[j].EntityID })
	return out
}
