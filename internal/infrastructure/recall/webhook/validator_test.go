// Copyright Recap Technologies, Inc.
// SPDX-License-Identifier: MIT

package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func sign(secret, timestamp string, body []byte) string {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write([]byte(fmt.Sprintf("v0:%s:%s", timestamp, body)))
	return "v0=" + hex.EncodeToString(h.Sum(nil))
}

func TestValidateSignature_Valid(t *testing.T) {
	v := NewValidator("secret-token")
	body := []byte(`{"event":"bot.status_change"}`)
	timestamp := "1724800000"

	err := v.ValidateSignature(body, sign("secret-token", timestamp, body), timestamp)
	assert.NoError(t, err)
}

func TestValidateSignature_WrongSecret(t *testing.T) {
	v := NewValidator("secret-token")
	body := []byte(`{"event":"bot.status_change"}`)
	timestamp := "1724800000"

	err := v.ValidateSignature(body, sign("other-secret", timestamp, body), timestamp)
	assert.Error(t, err)
}

func TestValidateSignature_TamperedBody(t *testing.T) {
	v := NewValidator("secret-token")
	timestamp := "1724800000"
	signature := sign("secret-token", timestamp, []byte(`{"event":"a"}`))

	err := v.ValidateSignature([]byte(`{"event":"b"}`), signature, timestamp)
	assert.Error(t, err)
}

func TestValidateSignature_MissingInputs(t *testing.T) {
	v := NewValidator("secret-token")

	assert.Error(t, v.ValidateSignature([]byte("{}"), "", "1724800000"))
	assert.Error(t, v.ValidateSignature([]byte("{}"), "v0=abc", ""))

	unconfigured := NewValidator("")
	assert.Error(t, unconfigured.ValidateSignature([]byte("{}"), "v0=abc", "1724800000"))
}
