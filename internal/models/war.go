// Standingsync - Alliance Standings Synchronization for EVE Online
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/standingsync

package models

import "time"

// War is a declared war between an aggressor and a defender, optionally
// joined by allies on the defender's side.
type War struct {
	ID              int64      `json:"id"`
	Aggressor       Entity     `json:"aggressor"`
	Defender        Entity     `json:"defender"`
	Allies          []Entity   `json:"allies,omitempty"`
	Declared        time.Time  `json:"declared"`
	Started         *time.Time `json:"started,omitempty"`
	Finished        *time.Time `json:"finished,omitempty"`
	Retracted       *time.Time `json:"retracted,omitempty"`
	IsMutual        bool       `json:"is_mutual"`
	IsOpenForAllies bool       `json:"is_open_for_allies"`
}

// IsActive reports whether the war has started and not yet finished at now.
func (w *War) IsActive(now time.Time) bool {
	if w.Started == nil || w.Started.After(now) {
		return false
	}
	return w.Finished == nil || w.Finished.After(now)
}

// IsFinished reports whether the war's finish time has passed at now.
func (w *War) IsFinished(now time.Time) bool {
	return w.Finished != nil && !w.Finished.After(now)
}

// Targets returns the entities entityID is at war with in this war:
// the aggressor fights the defender and all allies, the defender and each
// ally fight the aggressor.
func (w *War) Targets(entityID int64) []Entity {
	if w.Aggressor.ID == entityID {
		targets := make([]Entity, 0, 1+len(w.Allies))
		targets = append(targets, w.Defender)
		targets = append(targets, w.Allies...)
		return targets
	}
	if w.Defender.ID == entityID {
		return []Entity{w.Aggressor}
	}
	for _, ally := range w.Allies {
		if ally.ID == entityID {
			return []Entity{w.Aggressor}
		}
	}
	return nil
}
