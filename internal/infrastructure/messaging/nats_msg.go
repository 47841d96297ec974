// Copyright Recap Technologies, Inc.
// SPDX-License-Identifier: MIT

package messaging

import (
	"github.com/nats-io/nats.go"

	"github.com/recapio/meeting-bot-service/internal/domain"
)

// NatsMsg adapts a *nats.Msg to the domain.Message interface so handlers
// stay decoupled from the NATS client types.
type NatsMsg struct {
	msg *nats.Msg
}

var _ domain.Message = (*NatsMsg)(nil)

// NewNatsMsg wraps a NATS message.
func NewNatsMsg(msg *nats.Msg) *NatsMsg {
	return &NatsMsg{msg: msg}
}

// Subject returns the message subject.
func (m *NatsMsg) Subject() string {
	return m.msg.Subject
}

// Data returns the message payload.
func (m *NatsMsg) Data() []byte {
	return m.msg.Data
}

// Respond replies to the message.
func (m *NatsMsg) Respond(data []byte) error {
	return m.msg.Respond(data)
}

// HasReply reports whether the sender expects a reply.
func (m *NatsMsg) HasReply() bool {
	return m.msg.Reply != ""
}
