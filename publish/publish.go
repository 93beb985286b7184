// Copyright (c) 2024, The OTNS Authors.
// All rights reserved.
//
// Redistribution and use in source and binary forms, with or without
// modification, are permitted provided that the following conditions are met:
// 1. Redistributions of source code must retain the above copyright
//    notice, this list of conditions and the following disclaimer.
// 2. Redistributions in binary form must reproduce the above copyright
//    notice, this list of conditions and the following disclaimer in the
//    documentation and/or other materials provided with the distribution.
// 3. Neither the name of the copyright holder nor the
//    names of its contributors may be used to endorse or promote products
//    derived from this software without specific prior written permission.
//
// THIS SOFTWARE IS PROVIDED BY THE COPYRIGHT HOLDERS AND CONTRIBUTORS "AS IS"
// AND ANY EXPRESS OR IMPLIED WARRANTIES, INCLUDING, BUT NOT LIMITED TO, THE
// IMPLIED WARRANTIES OF MERCHANTABILITY AND FITNESS FOR A PARTICULAR PURPOSE
// ARE DISCLAIMED. IN NO EVENT SHALL THE COPYRIGHT HOLDER OR CONTRIBUTORS BE
// LIABLE FOR ANY DIRECT, INDIRECT, INCIDENTAL, SPECIAL, EXEMPLARY, OR
// CONSEQUENTIAL DAMAGES (INCLUDING, BUT NOT LIMITED TO, PROCUREMENT OF
// SUBSTITUTE GOODS OR SERVICES; LOSS OF USE, DATA, OR PROFITS; OR BUSINESS
// INTERRUPTION) HOWEVER CAUSED AND ON ANY THEORY OF LIABILITY, WHETHER IN
// CONTRACT, STRICT LIABILITY, OR TORT (INCLUDING NEGLIGENCE OR OTHERWISE)
// ARISING IN ANY WAY OUT OF THE USE OF THIS SOFTWARE, EVEN IF ADVISED OF THE
// POSSIBILITY OF SUCH DAMAGE.

// Package publish sends computed reports to an MQTT broker.
package publish

import (
	"encoding/json"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/openthread/ot-budget/logger"
	"github.com/openthread/ot-budget/report"
)

const (
	DefaultTopicPrefix = "ot-budget"
	DefaultTimeout     = 5 * time.Second
	summaryQos         = 1
)

type Config struct {
	Broker      string
	ClientID    string
	Username    string
	Password    string
	TopicPrefix string
	Timeout     time.Duration
}

func DefaultConfig() Config {
	return Config{
		ClientID:    "ot-budget-" + uuid.NewString()[:8],
		TopicPrefix: DefaultTopicPrefix,
		Timeout:     DefaultTimeout,
	}
}

// tokenPublisher is the part of mqtt.Client used by the Publisher.
type tokenPublisher interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
}

type Publisher struct {
	cfg    Config
	client mqtt.Client
	pub    tokenPublisher
}

// New creates a Publisher for cfg.Broker. Call Connect before publishing.
func New(cfg Config) (*Publisher, error) {
	if cfg.Broker == "" {
		return nil, errors.New("mqtt broker not configured")
	}
	if cfg.TopicPrefix == "" {
		cfg.TopicPrefix = DefaultTopicPrefix
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	opts := mqtt.NewClientOptions()
	opts.AddBroker(cfg.Broker)
	opts.SetClientID(cfg.ClientID)
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}
	opts.SetAutoReconnect(true)
	opts.SetConnectTimeout(cfg.Timeout)
	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		logger.Warnf("mqtt connection lost: %v", err)
	})

	client := mqtt.NewClient(opts)
	return &Publisher{cfg: cfg, client: client, pub: client}, nil
}

func (p *Publisher) Connect() error {
	logger.Debugf("connecting to mqtt broker %s", p.cfg.Broker)
	token := p.client.Connect()
	if !token.WaitTimeout(p.cfg.Timeout) {
		return errors.Errorf("connect to mqtt broker %s: timeout", p.cfg.Broker)
	}
	if err := token.Error(); err != nil {
		return errors.Wrapf(err, "connect to mqtt broker %s", p.cfg.Broker)
	}
	logger.Infof("connected to mqtt broker %s", p.cfg.Broker)
	return nil
}

func (p *Publisher) Close() {
	if p.client != nil && p.client.IsConnected() {
		p.client.Disconnect(250)
	}
}

// SummaryTopic returns the topic the summary of a run is published to.
func (p *Publisher) SummaryTopic(runID string) string {
	return strings.TrimSuffix(p.cfg.TopicPrefix, "/") + "/" + runID + "/summary"
}

// PublishReport publishes the JSON summary of r and waits for the broker to acknowledge it.
func (p *Publisher) PublishReport(r *report.Report) (string, error) {
	payload, err := json.Marshal(r)
	if err != nil {
		return "", errors.Wrap(err, "marshal report")
	}

	topic := p.SummaryTopic(r.RunID)
	token := p.pub.Publish(topic, summaryQos, false, payload)
	if !token.WaitTimeout(p.cfg.Timeout) {
		return topic, errors.Errorf("publish to %s: timeout", topic)
	}
	if err = token.Error(); err != nil {
		return topic, errors.Wrapf(err, "publish to %s", topic)
	}
	logger.Debugf("published %d bytes to %s", len(payload), topic)
	return topic, nil
}
