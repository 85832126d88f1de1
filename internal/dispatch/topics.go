// Standingsync - Alliance Standings Synchronization for EVE Online
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/standingsync

package dispatch

import "fmt"

// Topic names.
const (
	TopicPrefix          = "standingsync"
	TopicManagerSync     = TopicPrefix + ".manager"
	TopicWarRefresh      = TopicPrefix + ".war"
	TopicPoison          = TopicPrefix + ".poison"
	characterTopicPrefix = TopicPrefix + ".character."
)

// CharacterTopic returns the shard topic for characterID.
func CharacterTopic(characterID int64, shards int) string {
	return fmt.Sprintf("%s%d", characterTopicPrefix, Shard(characterID, shards))
}

// Shard maps a character id onto [0, shards).
func Shard(characterID int64, shards int) int {
	if shards <= 1 {
		return 0
	}
	s := characterID % int64(shards)
	if s < 0 {
		s = -s
	}
	return int(s)
}

// CharacterTopics lists every character shard topic.
func CharacterTopics(shards int) []string {
	if shards < 1 {
		shards = 1
	}
	topics := make([]string, 0, shards)
	for i := 0; i < shards; i++ {
		topics = append(topics, fmt.Sprintf("%s%d", characterTopicPrefix, i))
	}
	return topics
}
