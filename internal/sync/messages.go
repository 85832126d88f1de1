// Standingsync - Alliance Standings Synchronization for EVE Online
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/standingsync

package sync

import (
	"fmt"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/tomtom215/standingsync/internal/models"
)

var printer = message.NewPrinter(language.English)

func deactivationNotification(userID int64, characterName, reason string) models.Notification {
	return models.Notification{
		UserID: userID,
		Title:  fmt.Sprintf("Standings Sync deactivated for %s", characterName),
		Message: fmt.Sprintf(
			"Standings Sync has been deactivated for your character %s, because %s.\n"+
				"Feel free to activate sync for your character again, once the issue has been resolved.",
			characterName, reason),
		Level: models.LevelWarning,
	}
}

func managerReportNotification(userID int64, allianceName string, success bool, contacts int) models.Notification {
	status, verdict, level := "OK", "completed successfully", models.LevelSuccess
	if !success {
		status, verdict, level = "FAILED", "has failed", models.LevelDanger
	}
	msg := fmt.Sprintf("Syncing of alliance contacts for %q %s.\n", allianceName, verdict)
	if success {
		msg += printer.Sprintf("%d contacts synced.", contacts)
	}
	return models.Notification{
		UserID:  userID,
		Title:   fmt.Sprintf("Standings Sync: Alliance sync for %s: %s", allianceName, status),
		Message: msg,
		Level:   level,
	}
}
