// Standingsync - Alliance Standings Synchronization for EVE Online
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/standingsync

// Package query builds parameterized SQL WHERE clauses for the database
// package.
//
// The WhereBuilder collects clauses and their arguments in order:
//
//	wb := query.NewWhereBuilder()
//	wb.AddEqual("manager_id", allianceID)
//	wb.AddNotVersion("version_hash", version)
//	where, args := wb.BuildWithPrefix()
//	// where: "WHERE manager_id = ? AND (version_hash IS NULL OR version_hash <> ?)"
//
// Column names are always compile-time constants of the caller; only values
// travel as arguments.
package query
