// Copyright Recap Technologies, Inc.
// SPDX-License-Identifier: MIT

// Package webhook validates inbound provider webhook deliveries.
package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Validator verifies the HMAC signature the provider attaches to each
// webhook delivery.
type Validator struct {
	SecretToken string
}

// NewValidator creates a webhook signature validator.
func NewValidator(secretToken string) *Validator {
	return &Validator{SecretToken: secretToken}
}

// ValidateSignature checks the delivery signature. The signed message is
// "v0:<timestamp>:<body>" and the expected header value is
// "v0=<hex hmac-sha256>".
func (v *Validator) ValidateSignature(body []byte, signature, timestamp string) error {
	if v.SecretToken == "" {
		return fmt.Errorf("webhook secret token not configured")
	}
	if signature == "" {
		return fmt.Errorf("missing webhook signature")
	}
	if timestamp == "" {
		return fmt.Errorf("missing webhook timestamp")
	}

	message := fmt.Sprintf("v0:%s:%s", timestamp, body)

	h := hmac.New(sha256.New, []byte(v.SecretToken))
	h.Write([]byte(message))
	expected := "v0=" + hex.EncodeToString(h.Sum(nil))

	if !hmac.Equal([]byte(signature), []byte(expected)) {
		return fmt.Errorf("webhook signature does not match expected signature")
	}

	return nil
}
