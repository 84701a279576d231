// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 meddsl Contributors

package store

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/samber/oops"
)

// RuleSetChangedChannel is the PostgreSQL NOTIFY channel PostgresRuleSetStore
// fires on every SaveRuleSet, carrying the new ruleset's id as payload.
const RuleSetChangedChannel = "ruleset_changed"

// PgListener implements cache.Listener over a dedicated pgx connection
// LISTENing on RuleSetChangedChannel. A dedicated connection is required:
// LISTEN state is per-connection and pgxpool hands back arbitrary pooled
// connections on every query, so the listening connection must be held for
// the lifetime of the subscription rather than borrowed per call.
type PgListener struct {
	pool *pgxpool.Pool
}

// NewPgListener creates a PgListener over pool.
func NewPgListener(pool *pgxpool.Pool) *PgListener {
	return &PgListener{pool: pool}
}

// Listen acquires a dedicated connection, issues LISTEN, and returns a
// channel of notification payloads. The returned channel closes and the
// connection is released when ctx is cancelled or a read error occurs.
func (l *PgListener) Listen(ctx context.Context) (<-chan string, error) {
	conn, err := l.pool.Acquire(ctx)
	if err != nil {
		return nil, oops.Code("LISTEN_ACQUIRE_FAILED").Wrap(err)
	}

	if _, err := conn.Exec(ctx, "LISTEN "+RuleSetChangedChannel); err != nil {
		conn.Release()
		return nil, oops.Code("LISTEN_FAILED").With("channel", RuleSetChangedChannel).Wrap(err)
	}

	ch := make(chan string)
	go func() {
		defer close(ch)
		defer conn.Release()
		for {
			notification, err := conn.Conn().WaitForNotification(ctx)
			if err != nil {
				return
			}
			select {
			case ch <- notification.Payload:
			case <-ctx.Done():
				return
			}
		}
	}()

	return ch, nil
}
