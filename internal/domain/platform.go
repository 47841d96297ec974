// Copyright Recap Technologies, Inc.
// SPDX-License-Identifier: MIT

package domain

import (
	"strings"

	"github.com/recapio/meeting-bot-service/internal/domain/models"
)

// platformHosts maps meeting URL host fragments to platform identifiers.
var platformHosts = []struct {
	fragment string
	platform models.Platform
}{
	{"zoom.us", models.PlatformZoom},
	{"meet.google.com", models.PlatformGoogleMeet},
	{"teams.microsoft.com", models.PlatformTeams},
	{"teams.live.com", models.PlatformTeams},
}

// DetectPlatform maps a meeting URL to its platform identifier. Pure, no
// network. Returns models.PlatformUnknown when the URL does not belong to a
// supported platform; an unsupported platform is a terminal, non-retryable
// condition for bot enhancement.
func DetectPlatform(meetingURL string) models.Platform {
	url := strings.ToLower(meetingURL)
	for _, h := range platformHosts {
		if strings.Contains(url, h.fragment) {
			return h.platform
		}
	}
	return models.PlatformUnknown
}
