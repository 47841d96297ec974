// Copyright Recap Technologies, Inc.
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/recapio/meeting-bot-service/internal/domain"
	"github.com/recapio/meeting-bot-service/internal/domain/mocks"
	"github.com/recapio/meeting-bot-service/internal/domain/models"
)

func validWebhookRequest(body string) WebhookRequest {
	return WebhookRequest{
		SessionUID: "s1",
		Signature:  "v0=abc",
		Timestamp:  "1724800000",
		RawBody:    []byte(body),
	}
}

func TestProcessWebhookEvent_PublishesStatusChange(t *testing.T) {
	validator := new(mocks.MockWebhookValidator)
	validator.On("ValidateSignature", mock.Anything, "v0=abc", "1724800000").Return(nil)

	sender := new(mocks.MockBotEventSender)
	sender.On("SendBotWebhookEvent", mock.Anything, models.BotWebhookStatusChangeSubject,
		mock.MatchedBy(func(event models.BotWebhookEventMessage) bool {
			return event.EventType == "bot.status_change" &&
				event.SessionUID == "s1" &&
				event.BotID == "bot-1"
		})).Return(nil)

	svc := NewBotWebhookService(sender, validator)
	err := svc.ProcessWebhookEvent(context.Background(),
		validWebhookRequest(`{"event":"bot.status_change","data":{"bot_id":"bot-1","code":"in_call_recording"}}`))

	assert.NoError(t, err)
	sender.AssertExpectations(t)
	validator.AssertExpectations(t)
}

func TestProcessWebhookEvent_InvalidSignature(t *testing.T) {
	validator := new(mocks.MockWebhookValidator)
	validator.On("ValidateSignature", mock.Anything, mock.Anything, mock.Anything).
		Return(assert.AnError)

	sender := new(mocks.MockBotEventSender)

	svc := NewBotWebhookService(sender, validator)
	err := svc.ProcessWebhookEvent(context.Background(),
		validWebhookRequest(`{"event":"bot.status_change","data":{}}`))

	require.Error(t, err)
	assert.Equal(t, domain.ErrorTypeValidation, domain.GetErrorType(err))
	sender.AssertNotCalled(t, "SendBotWebhookEvent", mock.Anything, mock.Anything, mock.Anything)
}

func TestProcessWebhookEvent_MissingHeaders(t *testing.T) {
	svc := NewBotWebhookService(new(mocks.MockBotEventSender), new(mocks.MockWebhookValidator))

	req := validWebhookRequest(`{"event":"bot.status_change"}`)
	req.Signature = ""
	err := svc.ProcessWebhookEvent(context.Background(), req)

	require.Error(t, err)
	assert.Equal(t, domain.ErrorTypeValidation, domain.GetErrorType(err))
}

func TestProcessWebhookEvent_UnsupportedEventDropped(t *testing.T) {
	validator := new(mocks.MockWebhookValidator)
	validator.On("ValidateSignature", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	sender := new(mocks.MockBotEventSender)

	svc := NewBotWebhookService(sender, validator)
	err := svc.ProcessWebhookEvent(context.Background(),
		validWebhookRequest(`{"event":"participant.join","data":{}}`))

	// Unknown events are acknowledged so the provider stops retrying.
	assert.NoError(t, err)
	sender.AssertNotCalled(t, "SendBotWebhookEvent", mock.Anything, mock.Anything, mock.Anything)
}

func TestProcessWebhookEvent_MalformedBody(t *testing.T) {
	validator := new(mocks.MockWebhookValidator)
	validator.On("ValidateSignature", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	svc := NewBotWebhookService(new(mocks.MockBotEventSender), validator)
	err := svc.ProcessWebhookEvent(context.Background(), validWebhookRequest(`{not json`))

	require.Error(t, err)
	assert.Equal(t, domain.ErrorTypeValidation, domain.GetErrorType(err))
}
