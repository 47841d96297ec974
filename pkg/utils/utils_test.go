// Copyright Recap Technologies, Inc.
// SPDX-License-Identifier: MIT

package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTimePtr(t *testing.T) {
	now := time.Now()
	ptr := TimePtr(now)
	assert.NotNil(t, ptr)
	assert.Equal(t, now, *ptr)
}

func TestCoalesce(t *testing.T) {
	assert.Equal(t, "a", Coalesce("a", "b"))
	assert.Equal(t, "b", Coalesce("", "b"))
	assert.Equal(t, "", Coalesce("", ""))
	assert.Equal(t, "", Coalesce[string]())
	assert.Equal(t, 30, Coalesce(0, 30))
	assert.Equal(t, 2*time.Second, Coalesce(0, 2*time.Second))
}
