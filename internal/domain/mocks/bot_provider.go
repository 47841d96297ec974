// Copyright Recap Technologies, Inc.
// SPDX-License-Identifier: MIT

package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/recapio/meeting-bot-service/internal/domain"
	"github.com/recapio/meeting-bot-service/internal/domain/models"
)

// MockBotProvider implements domain.BotProvider for testing
type MockBotProvider struct {
	mock.Mock
}

func (m *MockBotProvider) CreateBot(ctx context.Context, req domain.CreateBotRequest) (*models.Bot, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Bot), args.Error(1)
}

func (m *MockBotProvider) GetBot(ctx context.Context, botID string) (*models.Bot, error) {
	args := m.Called(ctx, botID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Bot), args.Error(1)
}

func (m *MockBotProvider) StopBot(ctx context.Context, botID string) error {
	args := m.Called(ctx, botID)
	return args.Error(0)
}

func (m *MockBotProvider) GetBotTranscript(ctx context.Context, botID string) ([]models.TranscriptSegment, error) {
	args := m.Called(ctx, botID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.TranscriptSegment), args.Error(1)
}
