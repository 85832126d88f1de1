// Standingsync - Alliance Standings Synchronization for EVE Online
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/standingsync

package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/tomtom215/standingsync/internal/database/query"
	"github.com/tomtom215/standingsync/internal/models"
)

// SaveWar inserts or updates a war and replaces its ally set wholesale.
func (db *DB) SaveWar(ctx context.Context, w models.War) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	return db.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO wars (
				war_id, aggressor_id, aggressor_kind, defender_id, defender_kind,
				declared, started, finished, retracted, is_mutual, is_open_for_allies, updated_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
			ON CONFLICT (war_id) DO UPDATE SET
				aggressor_id = excluded.aggressor_id,
				aggressor_kind = excluded.aggressor_kind,
				defender_id = excluded.defender_id,
				defender_kind = excluded.defender_kind,
				declared = excluded.declared,
				started = excluded.started,
				finished = excluded.finished,
				retracted = excluded.retracted,
				is_mutual = excluded.is_mutual,
				is_open_for_allies = excluded.is_open_for_allies,
				updated_at = CURRENT_TIMESTAMP`,
			w.ID, w.Aggressor.ID, string(w.Aggressor.Kind), w.Defender.ID, string(w.Defender.Kind),
			w.Declared, nullableTime(w.Started), nullableTime(w.Finished), nullableTime(w.Retracted),
			w.IsMutual, w.IsOpenForAllies); err != nil {
			return fmt.Errorf("failed to save war %d: %w", w.ID, err)
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM war_allies WHERE war_id = ?`, w.ID); err != nil {
			return fmt.Errorf("failed to clear allies of war %d: %w", w.ID, err)
		}
		seen := make(map[int64]struct{}, len(w.Allies))
		for _, ally := range w.Allies {
			if _, dup := seen[ally.ID]; dup {
				continue
			}
			seen[ally.ID] = struct{}{}
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO war_allies (war_id, entity_id, kind) VALUES (?, ?, ?)`,
				w.ID, ally.ID, string(ally.Kind)); err != nil {
				return fmt.Errorf("failed to insert ally %d of war %d: %w", ally.ID, w.ID, err)
			}
		}
		return nil
	})
}

// DeleteWar removes a war and its allies. Deleting a missing war is not an
// error.
func (db *DB) DeleteWar(ctx context.Context, warID int64) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	return db.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM war_allies WHERE war_id = ?`, warID); err != nil {
			return fmt.Errorf("failed to delete allies of war %d: %w", warID, err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM wars WHERE war_id = ?`, warID); err != nil {
			return fmt.Errorf("failed to delete war %d: %w", warID, err)
		}
		return nil
	})
}

// War returns a war by id with participant names resolved from entities.
func (db *DB) War(ctx context.Context, warID int64) (models.War, error) {
	wars, err := db.queryWars(ctx, query.NewWhereBuilder().AddClause("w.war_id = ?", warID))
	if err != nil {
		return models.War{}, err
	}
	if len(wars) == 0 {
		return models.War{}, fmt.Errorf("war %d: %w", warID, ErrNotFound)
	}
	return wars[0], nil
}

// ActiveWars returns the wars that have started and not finished at now.
func (db *DB) ActiveWars(ctx context.Context, now time.Time) ([]models.War, error) {
	wb := query.NewWhereBuilder().
		AddClause("w.started IS NOT NULL AND w.started <= ?", now).
		AddClause("(w.finished IS NULL OR w.finished > ?)", now)
	return db.queryWars(ctx, wb)
}

// FinishedWars returns the wars whose finish time has passed at now.
func (db *DB) FinishedWars(ctx context.Context, now time.Time) ([]models.War, error) {
	wb := query.NewWhereBuilder().
		AddClause("w.finished IS NOT NULL").
		AddBefore("w.finished", now)
	return db.queryWars(ctx, wb)
}

// FinishedWarIDs returns the ids of wars whose finish time has passed at now.
func (db *DB) FinishedWarIDs(ctx context.Context, now time.Time) (map[int64]struct{}, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	rows, err := db.conn.QueryContext(ctx,
		`SELECT war_id FROM wars WHERE finished IS NOT NULL AND finished <= ?`, now)
	if err != nil {
		return nil, fmt.Errorf("failed to query finished wars: %w", err)
	}
	defer closeWithLog(rows, "rows")

	ids := make(map[int64]struct{})
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan war id: %w", err)
		}
		ids[id] = struct{}{}
	}
	return ids, rows.Err()
}

func (db *DB) queryWars(ctx context.Context, wb *query.WhereBuilder) ([]models.War, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	where, args := wb.BuildWithPrefix()
	rows, err := db.conn.QueryContext(ctx, `
		SELECT w.war_id,
			w.aggressor_id, w.aggressor_kind, COALESCE(a.name, ''),
			w.defender_id, w.defender_kind, COALESCE(d.name, ''),
			w.declared, w.started, w.finished, w.retracted,
			w.is_mutual, w.is_open_for_allies
		FROM wars w
		LEFT JOIN entities a ON a.id = w.aggressor_id
		LEFT JOIN entities d ON d.id = w.defender_id
		`+where+`
		ORDER BY w.war_id`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query wars: %w", err)
	}
	defer closeWithLog(rows, "rows")

	wars := []models.War{}
	for rows.Next() {
		var (
			w                            models.War
			aggKind, defKind             string
			started, finished, retracted sql.NullTime
		)
		if err := rows.Scan(&w.ID,
			&w.Aggressor.ID, &aggKind, &w.Aggressor.Name,
			&w.Defender.ID, &defKind, &w.Defender.Name,
			&w.Declared, &started, &finished, &retracted,
			&w.IsMutual, &w.IsOpenForAllies); err != nil {
			return nil, fmt.Errorf("failed to scan war: %w", err)
		}
		w.Aggressor.Kind = models.EntityKind(aggKind)
		w.Defender.Kind = models.EntityKind(defKind)
		w.Started = timePtr(started)
		w.Finished = timePtr(finished)
		w.Retracted = timePtr(retracted)
		wars = append(wars, w)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := db.attachAllies(ctx, wars); err != nil {
		return nil, err
	}
	return wars, nil
}

func (db *DB) attachAllies(ctx context.Context, wars []models.War) error {
	if len(wars) == 0 {
		return nil
	}
	ids := make([]int64, len(wars))
	index := make(map[int64]int, len(wars))
	for i, w := range wars {
		ids[i] = w.ID
		index[w.ID] = i
	}

	where, args := query.NewWhereBuilder().AddIn("wa.war_id", ids).BuildWithPrefix()
	rows, err := db.conn.QueryContext(ctx, `
		SELECT wa.war_id, wa.entity_id, wa.kind, COALESCE(e.name, '')
		FROM war_allies wa
		LEFT JOIN entities e ON e.id = wa.entity_id
		`+where+`
		ORDER BY wa.war_id, wa.entity_id`, args...)
	if err != nil {
		return fmt.Errorf("failed to query war allies: %w", err)
	}
	defer closeWithLog(rows, "rows")

	for rows.Next() {
		var (
			warID int64
			ally  models.Entity
			kind  string
		)
		if err := rows.Scan(&warID, &ally.ID, &kind, &ally.Name); err != nil {
			return fmt.Errorf("failed to scan war ally: %w", err)
		}
		ally.Kind = models.EntityKind(kind)
		i := index[warID]
		wars[i].Allies = append(wars[i].Allies, ally)
	}
	return rows.Err()
}

func nullableTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func timePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}
