//go:build integration

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
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/rossgg/portofcall/internal/engine/transport"
)

// TestOverviewAgainstRealRabbitMQ spins up a RabbitMQ broker with the
// management plugin enabled and drives the Overview probe against it
// end-to-end, mirroring e2e/ use of testcontainers for
// indexer round-trips.
func TestOverviewAgainstRealRabbitMQ(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	req := testcontainers.ContainerRequest{
		Image:        "rabbitmq:3-management",
		ExposedPorts: []string{"15672/tcp"},
		WaitingFor:   wait.ForLog("Server startup complete").WithStartupTimeout(90 * time.Second),
	}
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	defer container.Terminate(ctx)

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "15672/tcp")
	require.NoError(t, err)

	result, err := Overview(ctx, RabbitMQParams{
		Target: transport.Target{
			Host:       host,
			Port:       port.Int(),
			DeadlineMs: 10000,
		},
		Username: "guest",
		Password: "guest",
	})
	require.NoError(t, err)
	require.NotEmpty(t, result.RabbitMQVersion)
	require.Equal(t, 200, result.StatusCode)
}
