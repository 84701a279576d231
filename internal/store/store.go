// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 meddsl Contributors

// Package store persists RuleSet documents and execution audit records in
// PostgreSQL, and notifies listeners (internal/cache) when a RuleSet
// changes via LISTEN/NOTIFY.
package store

import (
	"context"
	"time"
)

// StoredRuleSet is the persisted form of a RuleSet.
type StoredRuleSet struct {
	ID        string
	Profile   string
	Version   string
	Entry     string
	RawJSON   []byte // canonical JSON, per ruleset.CanonicalBytes
	Hash      string
	Enabled   bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ExecutionRecord is a single audit entry: one case evaluated against one
// RuleSet, with the resulting actions and full trace.
type ExecutionRecord struct {
	ID          string
	RuleSetID   string
	RuleHash    string
	CaseJSON    []byte
	ActionsJSON []byte
	TraceJSON   []byte
	CreatedAt   time.Time
}

// ListOptions filters RuleSetStore.List.
type ListOptions struct {
	Profile string
	Enabled *bool
}

// RuleSetStore handles persistence for RuleSets and their execution audit
// trail.
type RuleSetStore interface {
	SaveRuleSet(ctx context.Context, rs *StoredRuleSet) error
	GetByProfile(ctx context.Context, profile string) (*StoredRuleSet, error)
	GetByID(ctx context.Context, id string) (*StoredRuleSet, error)
	ListEnabled(ctx context.Context) ([]*StoredRuleSet, error)
	List(ctx context.Context, opts ListOptions) ([]*StoredRuleSet, error)
	RecordExecution(ctx context.Context, rec *ExecutionRecord) error
}
