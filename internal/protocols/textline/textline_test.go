/*************************************************************************
 * Copyright 2017 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

package textline

import (
	"net"
	"testing"
	"time"

	"github.com/rossgg/portofcall/internal/engine/framing"
	"github.com/stretchr/testify/require"
)

func pipeReader(t *testing.T, script string) (*framing.Reader, net.Conn) {
	t.Helper()
	server, client := net.Pipe()
	go func() {
		_, _ = server.Write([]byte(script))
	}()
	r := framing.NewReader(client, 64*1024)
	r.SetDeadline(time.Now().Add(2 * time.Second))
	return r, client
}

func TestReadSMTPResponseMultiline(t *testing.T) {
	r, c := pipeReader(t, "250-mail.example.com Hello\r\n250-PIPELINING\r\n250 SIZE 10485760\r\n")
	defer c.Close()
	code, lines, err := ReadSMTPResponse(r)
	require.NoError(t, err)
	require.Equal(t, 250, code)
	require.Len(t, lines, 3)
}

func TestReadSMTPResponseSingleLine(t *testing.T) {
	r, c := pipeReader(t, "220 mail.example.com ESMTP ready\r\n")
	defer c.Close()
	code, lines, err := ReadSMTPResponse(r)
	require.NoError(t, err)
	require.Equal(t, 220, code)
	require.Len(t, lines, 1)
}

func TestReadPOP3Line(t *testing.T) {
	r, c := pipeReader(t, "+OK POP3 ready\r\n")
	defer c.Close()
	ok, text, err := ReadPOP3Line(r)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "POP3 ready", text)
}

func TestReadPOP3MultilineUnstuffsDots(t *testing.T) {
	r, c := pipeReader(t, "Subject: hi\r\n..leading dot\r\nbody\r\n.\r\n")
	defer c.Close()
	lines, err := ReadPOP3Multiline(r)
	require.NoError(t, err)
	require.Equal(t, []string{"Subject: hi", ".leading dot", "body"}, lines)
}

func TestReadFTPResponseContinuation(t *testing.T) {
	r, c := pipeReader(t, "230-Welcome\r\n230 Logged in\r\n")
	defer c.Close()
	code, lines, err := ReadFTPResponse(r)
	require.NoError(t, err)
	require.Equal(t, 230, code)
	require.Len(t, lines, 2)
}
