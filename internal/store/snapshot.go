package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/roach88/quill/internal/schema"
	"github.com/roach88/quill/internal/settings"
)

// ErrNoSnapshot is returned when no settings have been pulled yet.
var ErrNoSnapshot = errors.New("no settings snapshot in local store; run pull first")

// SaveBaseline replaces the stored baseline for every domain present
// in snap, plus the auxiliary lookups. Runs in one transaction so a
// crash never leaves half a pull behind.
func (s *Store) SaveBaseline(ctx context.Context, snap settings.Snapshot, lookups schema.Lookups, pulledAt time.Time) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	stamp := pulledAt.UTC().Format(time.RFC3339)

	for _, d := range settings.SaveOrder {
		value, ok := domainValue(snap, d)
		if !ok {
			continue
		}
		payload, err := json.Marshal(value)
		if err != nil {
			return fmt.Errorf("marshal %s: %w", d, err)
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO snapshots (domain, payload, pulled_at)
			VALUES (?, ?, ?)
			ON CONFLICT(domain) DO UPDATE SET
				payload = excluded.payload,
				pulled_at = excluded.pulled_at`,
			string(d), string(payload), stamp,
		)
		if err != nil {
			return fmt.Errorf("write %s snapshot: %w", d, err)
		}
	}

	lookupPayload, err := json.Marshal(storedLookups{
		Languages:  lookups.Languages,
		FrontPages: lookups.FrontPages,
	})
	if err != nil {
		return fmt.Errorf("marshal lookups: %w", err)
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO lookups (id, payload, pulled_at)
		VALUES (1, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			payload = excluded.payload,
			pulled_at = excluded.pulled_at`,
		string(lookupPayload), stamp,
	)
	if err != nil {
		return fmt.Errorf("write lookups: %w", err)
	}

	return tx.Commit()
}

// SaveDomain replaces one domain's stored baseline, typically after a
// successful save refreshed it from the server echo.
func (s *Store) SaveDomain(ctx context.Context, snap settings.Snapshot, d settings.Domain, at time.Time) error {
	value, ok := domainValue(snap, d)
	if !ok {
		return fmt.Errorf("domain %s not present in snapshot", d)
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", d, err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO snapshots (domain, payload, pulled_at)
		VALUES (?, ?, ?)
		ON CONFLICT(domain) DO UPDATE SET
			payload = excluded.payload,
			pulled_at = excluded.pulled_at`,
		string(d), string(payload), at.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("write %s snapshot: %w", d, err)
	}
	return nil
}

// LoadBaseline reads the stored baseline snapshot and lookups.
// Domains never pulled stay nil in the result. Returns ErrNoSnapshot
// when nothing has been pulled at all.
func (s *Store) LoadBaseline(ctx context.Context) (settings.Snapshot, schema.Lookups, error) {
	var snap settings.Snapshot
	var lookups schema.Lookups

	rows, err := s.db.QueryContext(ctx, `SELECT domain, payload FROM snapshots`)
	if err != nil {
		return snap, lookups, fmt.Errorf("read snapshots: %w", err)
	}
	defer rows.Close()

	count := 0
	for rows.Next() {
		var domain, payload string
		if err := rows.Scan(&domain, &payload); err != nil {
			return snap, lookups, fmt.Errorf("scan snapshot row: %w", err)
		}
		if err := unmarshalDomain(&snap, settings.Domain(domain), []byte(payload)); err != nil {
			return snap, lookups, fmt.Errorf("decode %s snapshot: %w", domain, err)
		}
		count++
	}
	if err := rows.Err(); err != nil {
		return snap, lookups, fmt.Errorf("read snapshots: %w", err)
	}
	if count == 0 {
		return snap, lookups, ErrNoSnapshot
	}

	var lookupPayload string
	err = s.db.QueryRowContext(ctx, `SELECT payload FROM lookups WHERE id = 1`).Scan(&lookupPayload)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		// Older pulls may predate the lookups row; not an error.
	case err != nil:
		return snap, lookups, fmt.Errorf("read lookups: %w", err)
	default:
		var stored storedLookups
		if err := json.Unmarshal([]byte(lookupPayload), &stored); err != nil {
			return snap, lookups, fmt.Errorf("decode lookups: %w", err)
		}
		lookups.Languages = stored.Languages
		lookups.FrontPages = stored.FrontPages
	}

	return snap, lookups, nil
}

type storedLookups struct {
	Languages  []string                    `json:"languages,omitempty"`
	FrontPages []schema.FrontPageCandidate `json:"frontPages,omitempty"`
}

func domainValue(snap settings.Snapshot, d settings.Domain) (any, bool) {
	switch d {
	case settings.DomainProfile:
		return snap.Profile, snap.Profile != nil
	case settings.DomainUserOptions:
		return snap.UserOptions, snap.UserOptions != nil
	case settings.DomainSite:
		return snap.Site, snap.Site != nil
	case settings.DomainStorage:
		return snap.Storage, snap.Storage != nil
	case settings.DomainReading:
		return snap.Reading, snap.Reading != nil
	case settings.DomainDiscussion:
		return snap.Discussion, snap.Discussion != nil
	case settings.DomainNotify:
		return snap.Notify, snap.Notify != nil
	case settings.DomainPermalink:
		return snap.Permalink, snap.Permalink != nil
	default:
		return nil, false
	}
}

func unmarshalDomain(snap *settings.Snapshot, d settings.Domain, payload []byte) error {
	switch d {
	case settings.DomainProfile:
		snap.Profile = &settings.Profile{}
		return json.Unmarshal(payload, snap.Profile)
	case settings.DomainUserOptions:
		snap.UserOptions = &settings.UserOptions{}
		return json.Unmarshal(payload, snap.UserOptions)
	case settings.DomainSite:
		snap.Site = &settings.Site{}
		return json.Unmarshal(payload, snap.Site)
	case settings.DomainStorage:
		snap.Storage = &settings.Storage{}
		return json.Unmarshal(payload, snap.Storage)
	case settings.DomainReading:
		snap.Reading = &settings.Reading{}
		return json.Unmarshal(payload, snap.Reading)
	case settings.DomainDiscussion:
		snap.Discussion = &settings.Discussion{}
		return json.Unmarshal(payload, snap.Discussion)
	case settings.DomainNotify:
		snap.Notify = &settings.Notify{}
		return json.Unmarshal(payload, snap.Notify)
	case settings.DomainPermalink:
		snap.Permalink = &settings.Permalink{}
		return json.Unmarshal(payload, snap.Permalink)
	default:
		return fmt.Errorf("unknown domain %q", d)
	}
}
