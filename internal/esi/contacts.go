// Standingsync - Alliance Standings Synchronization for EVE Online
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/standingsync

package esi

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	esimodel "github.com/tomtom215/standingsync/internal/models/esi"
)

// ESI limits on contact ids per write call.
const (
	MaxContactWriteBatch  = 100
	MaxContactDeleteBatch = 20
)

// AllianceContacts returns every contact of an alliance. token must carry
// esi-alliances.read_contacts.v1.
func (c *Client) AllianceContacts(ctx context.Context, allianceID int64, token string) ([]esimodel.Contact, error) {
	req := request{
		path:     fmt.Sprintf("/alliances/%d/contacts/", allianceID),
		token:    token,
		endpoint: "/alliances/{alliance_id}/contacts/",
	}
	contacts, err := getPaged[esimodel.Contact](ctx, c, req)
	if err != nil {
		return nil, err
	}
	if err := validateAll(req.endpoint, contacts); err != nil {
		return nil, err
	}
	return contacts, nil
}

// CharacterContacts returns every contact of a character. token must carry
// esi-characters.read_contacts.v1.
func (c *Client) CharacterContacts(ctx context.Context, characterID int64, token string) ([]esimodel.Contact, error) {
	req := request{
		path:     fmt.Sprintf("/characters/%d/contacts/", characterID),
		token:    token,
		endpoint: "/characters/{character_id}/contacts/",
	}
	contacts, err := getPaged[esimodel.Contact](ctx, c, req)
	if err != nil {
		return nil, err
	}
	if err := validateAll(req.endpoint, contacts); err != nil {
		return nil, err
	}
	return contacts, nil
}

// CharacterContactLabels returns the contact labels a character defined.
func (c *Client) CharacterContactLabels(ctx context.Context, characterID int64, token string) ([]esimodel.ContactLabel, error) {
	req := request{
		path:     fmt.Sprintf("/characters/%d/contacts/labels/", characterID),
		token:    token,
		endpoint: "/characters/{character_id}/contacts/labels/",
	}
	labels, err := getJSON[[]esimodel.ContactLabel](ctx, c, req)
	if err != nil {
		return nil, err
	}
	if err := validateAll(req.endpoint, labels); err != nil {
		return nil, err
	}
	return labels, nil
}

// AddContacts adds contactIDs to a character with one standing and optional
// labels. token must carry esi-characters.write_contacts.v1.
func (c *Client) AddContacts(ctx context.Context, characterID int64, token string, contactIDs []int64, standing float64, labelIDs []int64) error {
	return c.writeContacts(ctx, http.MethodPost, characterID, token, contactIDs, standing, labelIDs)
}

// UpdateContacts changes the standing and labels of existing contacts.
func (c *Client) UpdateContacts(ctx context.Context, characterID int64, token string, contactIDs []int64, standing float64, labelIDs []int64) error {
	return c.writeContacts(ctx, http.MethodPut, characterID, token, contactIDs, standing, labelIDs)
}

func (c *Client) writeContacts(ctx context.Context, method string, characterID int64, token string, contactIDs []int64, standing float64, labelIDs []int64) error {
	if len(contactIDs) == 0 {
		return nil
	}
	if len(contactIDs) > MaxContactWriteBatch {
		return fmt.Errorf("%d contact ids exceed the limit of %d per call", len(contactIDs), MaxContactWriteBatch)
	}

	q := url.Values{}
	q.Set("standing", strconv.FormatFloat(standing, 'f', -1, 64))
	if len(labelIDs) > 0 {
		q.Set("label_ids", joinIDs(labelIDs))
	}

	_, err := c.do(ctx, request{
		method:   method,
		path:     fmt.Sprintf("/characters/%d/contacts/", characterID),
		query:    q,
		token:    token,
		body:     contactIDs,
		endpoint: "/characters/{character_id}/contacts/",
	})
	return err
}

// DeleteContacts removes contactIDs from a character.
func (c *Client) DeleteContacts(ctx context.Context, characterID int64, token string, contactIDs []int64) error {
	if len(contactIDs) == 0 {
		return nil
	}
	if len(contactIDs) > MaxContactDeleteBatch {
		return fmt.Errorf("%d contact ids exceed the limit of %d per delete", len(contactIDs), MaxContactDeleteBatch)
	}

	q := url.Values{}
	q.Set("contact_ids", joinIDs(contactIDs))
	_, err := c.do(ctx, request{
		method:   http.MethodDelete,
		path:     fmt.Sprintf("/characters/%d/contacts/", characterID),
		query:    q,
		token:    token,
		endpoint: "/characters/{character_id}/contacts/",
	})
	return err
}
