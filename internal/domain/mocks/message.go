// Copyright Recap Technologies, Inc.
// SPDX-License-Identifier: MIT

package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/recapio/meeting-bot-service/internal/domain/models"
)

// MockBotEventSender implements domain.BotEventSender for testing
type MockBotEventSender struct {
	mock.Mock
}

func (m *MockBotEventSender) SendBotWebhookEvent(ctx context.Context, subject string, event models.BotWebhookEventMessage) error {
	args := m.Called(ctx, subject, event)
	return args.Error(0)
}

func (m *MockBotEventSender) SendBotStatusUpdated(ctx context.Context, msg models.BotStatusUpdatedMessage) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

// MockWebhookValidator implements domain.WebhookValidator for testing
type MockWebhookValidator struct {
	mock.Mock
}

func (m *MockWebhookValidator) ValidateSignature(body []byte, signature, timestamp string) error {
	args := m.Called(body, signature, timestamp)
	return args.Error(0)
}

// MockMessage implements domain.Message for testing
type MockMessage struct {
	mock.Mock
}

func (m *MockMessage) Subject() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockMessage) Data() []byte {
	args := m.Called()
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]byte)
}

func (m *MockMessage) Respond(data []byte) error {
	args := m.Called(data)
	return args.Error(0)
}

func (m *MockMessage) HasReply() bool {
	args := m.Called()
	return args.Bool(0)
}
