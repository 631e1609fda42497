/*************************************************************************
 * Copyright 2017 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

// Package kafka implements the `/api/kafka/metadata` and
// `/api/kafka/saslcheck` probes from SPEC_FULL's additional-protocols
// table: a single-broker dial (no consumer group, no producer, no
// cluster membership — matching spec §5's no-pooling Non-goal) built on
// sarama.Broker, plus an optional SASL/PLAIN or SASL/SCRAM-SHA-256
// credential check via xdg-go/scram.
package kafka

import (
	"net"
	"strconv"
	"time"

	"github.com/IBM/sarama"
	"github.com/rossgg/portofcall/internal/engine/ecode"
	"github.com/xdg-go/scram"
)

// MetadataParams is the `/api/kafka/metadata` request.
type MetadataParams struct {
	Host       string
	Port       int
	DeadlineMs int
}

// MetadataResult reports the broker's advertised cluster view.
type MetadataResult struct {
	ControllerID int32
	ClusterID    string
	Brokers      []BrokerInfo
	Topics       []string
}

// BrokerInfo is one entry from the Metadata response's broker list.
type BrokerInfo struct {
	ID   int32
	Host string
	Port int32
}

func brokerConfig(deadlineMs int) *sarama.Config {
	cfg := sarama.NewConfig()
	d := time.Duration(deadlineMs) * time.Millisecond
	cfg.Net.DialTimeout = d
	cfg.Net.ReadTimeout = d
	cfg.Net.WriteTimeout = d
	cfg.Version = sarama.V2_8_0_0
	return cfg
}

// Metadata dials a single broker and issues one MetadataRequest,
// reporting the controller, cluster ID, advertised broker list, and
// topic names — no consumer group, no offset management.
func Metadata(p MetadataParams) (*MetadataResult, error) {
	addr := hostPort(p.Host, p.Port)
	broker := sarama.NewBroker(addr)
	cfg := brokerConfig(p.DeadlineMs)
	if err := broker.Open(cfg); err != nil {
		return nil, ecode.New(ecode.Refused, "kafka: broker open failed: "+err.Error())
	}
	defer broker.Close()

	req := &sarama.MetadataRequest{}
	resp, err := broker.GetMetadata(req)
	if err != nil {
		if isTimeout(err) {
			return nil, ecode.New(ecode.Timeout, "kafka: metadata request timed out")
		}
		return nil, ecode.New(ecode.ProtocolError, "kafka: metadata request failed: "+err.Error())
	}

	res := &MetadataResult{ControllerID: resp.ControllerID, ClusterID: resp.ClusterID}
	for _, b := range resp.Brokers {
		res.Brokers = append(res.Brokers, BrokerInfo{ID: b.ID(), Host: b.Addr()})
	}
	for _, t := range resp.Topics {
		res.Topics = append(res.Topics, t.Name)
	}
	return res, nil
}

// SASLParams is the `/api/kafka/saslcheck` request.
type SASLParams struct {
	Host       string
	Port       int
	DeadlineMs int
	Mechanism  string // "PLAIN" or "SCRAM-SHA-256"
	Username   string
	Password   string
}

// SASLResult reports whether the broker accepted the credential.
type SASLResult struct {
	Authenticated bool
	Mechanism     string
}

// SASLCheck dials a single broker and runs a SASL handshake (PLAIN or
// SCRAM-SHA-256), reporting acceptance without performing any further
// broker operation.
func SASLCheck(p SASLParams) (*SASLResult, error) {
	addr := hostPort(p.Host, p.Port)
	cfg := brokerConfig(p.DeadlineMs)
	cfg.Net.SASL.Enable = true
	cfg.Net.SASL.User = p.Username
	cfg.Net.SASL.Password = p.Password

	switch p.Mechanism {
	case "SCRAM-SHA-256":
		cfg.Net.SASL.Mechanism = sarama.SASLTypeSCRAMSHA256
		cfg.Net.SASL.SCRAMClientGeneratorFunc = func() sarama.SCRAMClient {
			return &scramClient{HashGeneratorFcn: scram.SHA256}
		}
	default:
		cfg.Net.SASL.Mechanism = sarama.SASLTypePlaintext
	}

	broker := sarama.NewBroker(addr)
	if err := broker.Open(cfg); err != nil {
		return nil, ecode.New(ecode.AuthFail, "kafka: SASL handshake failed: "+err.Error())
	}
	defer broker.Close()

	connected, err := broker.Connected()
	if err != nil || !connected {
		return nil, ecode.New(ecode.AuthFail, "kafka: broker rejected SASL credential")
	}
	return &SASLResult{Authenticated: true, Mechanism: p.Mechanism}, nil
}

// scramClient adapts xdg-go/scram to sarama's SCRAMClient interface.
type scramClient struct {
	HashGeneratorFcn scram.HashGeneratorFcn
	conv             *scram.ClientConversation
}

func (c *scramClient) Begin(userName, password, authzID string) error {
	client, err := c.HashGeneratorFcn.NewClient(userName, password, authzID)
	if err != nil {
		return err
	}
	c.conv = client.NewConversation()
	return nil
}

func (c *scramClient) Step(challenge string) (string, error) {
	return c.conv.Step(challenge)
}

func (c *scramClient) Done() bool {
	return c.conv.Done()
}

func hostPort(host string, port int) string {
	return net.JoinHostPort(host, strconv.Itoa(port))
}

func isTimeout(err error) bool {
	type timeouter interface{ Timeout() bool }
	te, ok := err.(timeouter)
	return ok && te.Timeout()
}
