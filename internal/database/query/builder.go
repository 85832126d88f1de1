// Standingsync - Alliance Standings Synchronization for EVE Online
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/standingsync

package query

import (
	"strings"
	"time"
)

// WhereBuilder accumulates AND-joined clauses with positional arguments.
type WhereBuilder struct {
	clauses []string
	args    []interface{}
}

// NewWhereBuilder returns an empty builder.
func NewWhereBuilder() *WhereBuilder {
	return &WhereBuilder{
		clauses: []string{},
		args:    []interface{}{},
	}
}

// AddClause appends a raw clause with its arguments.
func (wb *WhereBuilder) AddClause(clause string, args ...interface{}) *WhereBuilder {
	wb.clauses = append(wb.clauses, clause)
	wb.args = append(wb.args, args...)
	return wb
}

// AddEqual appends "column = ?" unless value is zero.
func (wb *WhereBuilder) AddEqual(column string, value int64) *WhereBuilder {
	if value == 0 {
		return wb
	}
	return wb.AddClause(column+" = ?", value)
}

// AddIn appends "column IN (?, ...)". An empty id list matches nothing.
func (wb *WhereBuilder) AddIn(column string, ids []int64) *WhereBuilder {
	if len(ids) == 0 {
		return wb.AddClause("1=0")
	}
	placeholders := make([]string, len(ids))
	for i, id := range ids {
		placeholders[i] = "?"
		wb.args = append(wb.args, id)
	}
	wb.clauses = append(wb.clauses, column+" IN ("+strings.Join(placeholders, ", ")+")")
	return wb
}

// AddNotVersion matches rows whose version column is unset or differs from
// version. An empty version adds nothing.
func (wb *WhereBuilder) AddNotVersion(column, version string) *WhereBuilder {
	if version == "" {
		return wb
	}
	return wb.AddClause("("+column+" IS NULL OR "+column+" <> ?)", version)
}

// AddBefore appends "column <= ?" for a non-zero instant.
func (wb *WhereBuilder) AddBefore(column string, at time.Time) *WhereBuilder {
	if at.IsZero() {
		return wb
	}
	return wb.AddClause(column+" <= ?", at)
}

// Build returns the joined clauses and arguments. An empty builder yields
// "1=1".
func (wb *WhereBuilder) Build() (string, []interface{}) {
	if len(wb.clauses) == 0 {
		return "1=1", []interface{}{}
	}
	return strings.Join(wb.clauses, " AND "), wb.args
}

// BuildWithPrefix is Build with a leading "WHERE ".
func (wb *WhereBuilder) BuildWithPrefix() (string, []interface{}) {
	whereClause, args := wb.Build()
	return "WHERE " + whereClause, args
}

// Count returns the number of clauses.
func (wb *WhereBuilder) Count() int {
	return len(wb.clauses)
}

// IsEmpty reports whether no clause was added.
func (wb *WhereBuilder) IsEmpty() bool {
	return len(wb.clauses) == 0
}
