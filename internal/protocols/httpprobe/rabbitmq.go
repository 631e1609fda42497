/*************************************************************************
 * Copyright 2017 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

package httpprobe

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rossgg/portofcall/internal/engine/ecode"
	"github.com/rossgg/portofcall/internal/engine/session"
	"github.com/rossgg/portofcall/internal/engine/transport"
)

const rabbitmqResponseCap = 512 * 1024

// RabbitMQParams is the `/api/rabbitmq/overview` request: fetch the
// Management API's cluster overview with HTTP Basic Auth.
type RabbitMQParams struct {
	Target   transport.Target
	Username string
	Password string
}

// RabbitMQResult is a flattened slice of the overview JSON document.
type RabbitMQResult struct {
	ManagementVersion string
	RabbitMQVersion   string
	ClusterName       string
	StatusCode        int
}

// Overview fetches GET /api/overview from a RabbitMQ Management
// plugin listener.
func Overview(ctx context.Context, p RabbitMQParams) (*RabbitMQResult, error) {
	return session.Run(ctx, p.Target, nil, func(tr *transport.Transport) (*RabbitMQResult, error) {
		hostHeader := fmt.Sprintf("%s:%d", p.Target.Host, p.Target.Port)
		headers := [][2]string{{"Authorization", basicAuthHeader(p.Username, p.Password)}}
		req := buildRequest("GET", "/api/overview", hostHeader, headers, nil)
		resp, err := readResponse(tr, req, rabbitmqResponseCap)
		if err != nil {
			return nil, err
		}
		if err := requireSuccess(resp, "rabbitmq"); err != nil {
			return nil, err
		}

		var body struct {
			ManagementVersion string `json:"management_version"`
			RabbitMQVersion   string `json:"rabbitmq_version"`
			ClusterName       string `json:"cluster_name"`
		}
		if err := json.Unmarshal(resp.Body, &body); err != nil {
			return nil, ecode.Wrap(ecode.Malformed, err)
		}
		return &RabbitMQResult{
			ManagementVersion: body.ManagementVersion,
			RabbitMQVersion:   body.RabbitMQVersion,
			ClusterName:       body.ClusterName,
			StatusCode:        resp.StatusCode,
		}, nil
	})
}
