// Copyright Recap Technologies, Inc.
// SPDX-License-Identifier: MIT

package utils

// Coalesce returns the first value that is not the zero value for T, or the
// zero value when every argument is zero.
func Coalesce[T comparable](values ...T) T {
	var zero T
	for _, v := range values {
		if v != zero {
			return v
		}
	}
	return zero
}
