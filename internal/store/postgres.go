// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 meddsl Contributors

package store

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// ruleSetColumns is the shared column list for SELECT queries.
const ruleSetColumns = `id, profile, version, entry, raw_json, content_hash, enabled, created_at, updated_at`

// pgxIface is the subset of *pgxpool.Pool this package depends on. Narrowing
// to an interface lets tests substitute pgxmock's pool double.
type pgxIface interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Close()
}

// PostgresRuleSetStore implements RuleSetStore using PostgreSQL.
type PostgresRuleSetStore struct {
	pool pgxIface
}

// NewPostgresRuleSetStore creates a PostgreSQL-backed RuleSetStore using
// the given connection pool.
func NewPostgresRuleSetStore(pool *pgxpool.Pool) *PostgresRuleSetStore {
	return &PostgresRuleSetStore{pool: pool}
}

// Close closes the underlying connection pool.
func (s *PostgresRuleSetStore) Close() {
	s.pool.Close()
}

func scanRuleSet(row pgx.Row) (*StoredRuleSet, error) {
	var rs StoredRuleSet
	if err := row.Scan(&rs.ID, &rs.Profile, &rs.Version, &rs.Entry, &rs.RawJSON,
		&rs.Hash, &rs.Enabled, &rs.CreatedAt, &rs.UpdatedAt); err != nil {
		return nil, oops.Code("RULESET_SCAN_FAILED").Wrap(err)
	}
	return &rs, nil
}

func scanRuleSets(rows pgx.Rows) ([]*StoredRuleSet, error) {
	defer rows.Close()
	var out []*StoredRuleSet
	for rows.Next() {
		var rs StoredRuleSet
		if err := rows.Scan(&rs.ID, &rs.Profile, &rs.Version, &rs.Entry, &rs.RawJSON,
			&rs.Hash, &rs.Enabled, &rs.CreatedAt, &rs.UpdatedAt); err != nil {
			return nil, oops.Code("RULESET_SCAN_FAILED").Wrap(err)
		}
		out = append(out, &rs)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.Code("RULESET_ROWS_ITERATION_FAILED").Wrap(err)
	}
	return out, nil
}

// SaveRuleSet inserts a new RuleSet version, generating a ULID id, and
// notifies listeners via pg_notify('ruleset_changed', id) in the same
// transaction. Saving a RuleSet as enabled=true for a profile that already
// has an enabled RuleSet disables the previous one first, so
// GetByProfile always resolves to exactly one active version.
func (s *PostgresRuleSetStore) SaveRuleSet(ctx context.Context, rs *StoredRuleSet) error {
	id := ulid.Make().String()

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return oops.Code("RULESET_SAVE_FAILED").With("profile", rs.Profile).Wrap(err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // rollback after commit is a no-op

	if rs.Enabled {
		_, err = tx.Exec(ctx, `UPDATE rulesets SET enabled = false WHERE profile = $1 AND enabled`, rs.Profile)
		if err != nil {
			return oops.Code("RULESET_SAVE_FAILED").With("profile", rs.Profile).With("operation", "disable previous").Wrap(err)
		}
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO rulesets (id, profile, version, entry, raw_json, content_hash, enabled)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, id, rs.Profile, rs.Version, rs.Entry, rs.RawJSON, rs.Hash, rs.Enabled)
	if err != nil {
		return oops.Code("RULESET_SAVE_FAILED").With("profile", rs.Profile).Wrap(err)
	}

	_, err = tx.Exec(ctx, `SELECT pg_notify('ruleset_changed', $1)`, id)
	if err != nil {
		return oops.Code("RULESET_SAVE_FAILED").With("profile", rs.Profile).With("operation", "notify").Wrap(err)
	}

	if err := tx.Commit(ctx); err != nil {
		return oops.Code("RULESET_SAVE_FAILED").With("profile", rs.Profile).With("operation", "commit").Wrap(err)
	}

	rs.ID = id
	return nil
}

// GetByProfile retrieves the currently enabled RuleSet for a profile.
func (s *PostgresRuleSetStore) GetByProfile(ctx context.Context, profile string) (*StoredRuleSet, error) {
	row := s.pool.QueryRow(ctx,
		"SELECT "+ruleSetColumns+" FROM rulesets WHERE profile = $1 AND enabled", profile)
	rs, err := scanRuleSet(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("RULESET_NOT_FOUND").With("profile", profile).Errorf("no enabled ruleset for profile")
	}
	if err != nil {
		return nil, oops.With("operation", "get ruleset by profile").With("profile", profile).Wrap(err)
	}
	return rs, nil
}

// GetByID retrieves a RuleSet by its id, regardless of enabled state.
func (s *PostgresRuleSetStore) GetByID(ctx context.Context, id string) (*StoredRuleSet, error) {
	row := s.pool.QueryRow(ctx,
		"SELECT "+ruleSetColumns+" FROM rulesets WHERE id = $1", id)
	rs, err := scanRuleSet(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("RULESET_NOT_FOUND").With("id", id).Errorf("ruleset not found")
	}
	if err != nil {
		return nil, oops.With("operation", "get ruleset by id").With("id", id).Wrap(err)
	}
	return rs, nil
}

// ListEnabled returns every currently enabled RuleSet, ordered by profile.
func (s *PostgresRuleSetStore) ListEnabled(ctx context.Context) ([]*StoredRuleSet, error) {
	rows, err := s.pool.Query(ctx,
		"SELECT "+ruleSetColumns+" FROM rulesets WHERE enabled ORDER BY profile")
	if err != nil {
		return nil, oops.With("operation", "list enabled rulesets").Wrap(err)
	}
	return scanRuleSets(rows)
}

// List returns RuleSets matching opts, ordered by profile then created_at.
func (s *PostgresRuleSetStore) List(ctx context.Context, opts ListOptions) ([]*StoredRuleSet, error) {
	query := "SELECT " + ruleSetColumns + " FROM rulesets"
	var where []string
	var args []any
	argIdx := 1

	if opts.Profile != "" {
		where = append(where, "profile = $"+strconv.Itoa(argIdx))
		args = append(args, opts.Profile)
		argIdx++
	}
	if opts.Enabled != nil {
		where = append(where, "enabled = $"+strconv.Itoa(argIdx))
		args = append(args, *opts.Enabled)
		argIdx++
	}
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY profile, created_at"

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, oops.With("operation", "list rulesets").Wrap(err)
	}
	return scanRuleSets(rows)
}

// RecordExecution appends a single execution-audit row.
func (s *PostgresRuleSetStore) RecordExecution(ctx context.Context, rec *ExecutionRecord) error {
	id := ulid.Make().String()
	_, err := s.pool.Exec(ctx, `
		INSERT INTO execution_audit (id, ruleset_id, rule_hash, case_json, actions_json, trace_json)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, id, rec.RuleSetID, rec.RuleHash, rec.CaseJSON, rec.ActionsJSON, rec.TraceJSON)
	if err != nil {
		return oops.Code("EXECUTION_RECORD_FAILED").With("ruleset_id", rec.RuleSetID).Wrap(err)
	}
	rec.ID = id
	return nil
}
