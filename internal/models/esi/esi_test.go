// Standingsync - Alliance Standings Synchronization for EVE Online
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/standingsync

package esi

import (
	"errors"
	"testing"

	"github.com/goccy/go-json"

	"github.com/tomtom215/standingsync/internal/models"
)

func TestWarParticipantRef(t *testing.T) {
	tests := []struct {
		name    string
		p       WarParticipant
		want    models.EntityRef
		wantErr bool
	}{
		{"alliance", WarParticipant{AllianceID: 99000001}, models.AllianceRef(99000001), false},
		{"corporation", WarParticipant{CorporationID: 98000001}, models.CorporationRef(98000001), false},
		{"alliance wins", WarParticipant{AllianceID: 1, CorporationID: 2}, models.AllianceRef(1), false},
		{"neither", WarParticipant{ShipsKilled: 3}, models.EntityRef{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.p.Ref()
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidParticipant) {
					t.Errorf("Ref() error = %v, want ErrInvalidParticipant", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Ref() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Ref() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestWarDecode(t *testing.T) {
	payload := `{
		"aggressor": {"alliance_id": 1001, "isk_destroyed": 0, "ships_killed": 0},
		"allies": [{"corporation_id": 2002}],
		"declared": "2026-04-01T10:00:00Z",
		"defender": {"corporation_id": 3003, "isk_destroyed": 0, "ships_killed": 0},
		"id": 700001,
		"mutual": false,
		"open_for_allies": true,
		"started": "2026-04-02T10:00:00Z"
	}`

	var w War
	if err := json.Unmarshal([]byte(payload), &w); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if w.ID != 700001 || w.Aggressor.AllianceID != 1001 || w.Defender.CorporationID != 3003 {
		t.Errorf("unexpected war: %+v", w)
	}
	if len(w.Allies) != 1 || w.Allies[0].CorporationID != 2002 {
		t.Errorf("unexpected allies: %+v", w.Allies)
	}
	if w.Started == nil || w.Finished != nil {
		t.Errorf("unexpected timestamps: started=%v finished=%v", w.Started, w.Finished)
	}
	if !w.OpenForAllies {
		t.Error("OpenForAllies = false, want true")
	}
}
