// Copyright Recap Technologies, Inc.
// SPDX-License-Identifier: MIT

package models

// TranscriptSegment is one speaker turn from a bot-captured transcript.
type TranscriptSegment struct {
	Speaker      string  `json:"speaker,omitempty"`
	Text         string  `json:"text"`
	StartSeconds float64 `json:"start_seconds,omitempty"`
	EndSeconds   float64 `json:"end_seconds,omitempty"`
}
