// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 meddsl Contributors

package store

import "github.com/samber/oops"

// IsNotFound returns true if err is a RULESET_NOT_FOUND error from this
// package.
func IsNotFound(err error) bool {
	if err == nil {
		return false
	}
	oopsErr, ok := oops.AsOops(err)
	if !ok {
		return false
	}
	return oopsErr.Code() == "RULESET_NOT_FOUND"
}
