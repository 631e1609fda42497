/*************************************************************************
 * Copyright 2017 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

package smb2

import (
	"context"
	"unicode/utf8"
)

// ListParams extends Params with the directory path to enumerate
// (empty string lists the share root).
type ListParams struct {
	Params
	Path string
}

// ListResult is the `/api/smb2/list` success payload.
type ListResult struct {
	Entries []DirEntry
}

// List opens Path as a directory and runs QUERY_DIRECTORY once.
func List(ctx context.Context, p ListParams) (*ListResult, error) {
	return runSMB2(ctx, p.Params, func(c *conn) (*ListResult, error) {
		if _, _, err := negotiateAndAuth(c, p.Params); err != nil {
			return nil, err
		}
		if _, err := connectTree(c, p.Target.Host, p.Share); err != nil {
			return nil, err
		}

		createReq, err := BuildCreateRequest(c.next(), c.sessionID, c.treeID, p.Path,
			AccessFileRead, 0, ShareAccessReadWriteDelete, DispositionOpen, OptionDirectoryFile)
		if err != nil {
			return nil, err
		}
		if err := c.send(createReq); err != nil {
			return nil, err
		}
		createPDU, err := c.recv()
		if err != nil {
			return nil, err
		}
		created, err := ParseCreateResponse(createPDU)
		if err != nil {
			return nil, err
		}
		if created.Status != StatusSuccess {
			return nil, statusError(created.Status, "open directory failed")
		}

		qdReq, err := BuildQueryDirectoryRequest(c.next(), c.sessionID, c.treeID, created.FileID, "*")
		if err != nil {
			return nil, err
		}
		if err := c.send(qdReq); err != nil {
			return nil, err
		}
		qdPDU, err := c.recv()
		if err != nil {
			return nil, err
		}
		entries, qdErr := ParseQueryDirectoryResponse(qdPDU)

		_ = c.send(BuildCloseRequest(c.next(), c.sessionID, c.treeID, created.FileID))
		_, _ = c.recv()

		if qdErr != nil {
			return nil, qdErr
		}
		return &ListResult{Entries: entries}, nil
	})
}

// ReadParams extends Params with the file path to read.
type ReadParams struct {
	Params
	Path string
}

// ReadResultOut is the `/api/smb2/read` success payload.
type ReadResultOut struct {
	BytesRead int
	IsText    bool
	Content   []byte // raw bytes; handler layer decides base64/truncation per spec's open question
}

// Read opens Path as a file and reads up to min(MaxReadChunk,
// server MaxReadSize) bytes from offset 0.
func Read(ctx context.Context, p ReadParams) (*ReadResultOut, error) {
	return runSMB2(ctx, p.Params, func(c *conn) (*ReadResultOut, error) {
		neg, _, err := negotiateAndAuth(c, p.Params)
		if err != nil {
			return nil, err
		}
		if _, err := connectTree(c, p.Target.Host, p.Share); err != nil {
			return nil, err
		}

		createReq, err := BuildCreateRequest(c.next(), c.sessionID, c.treeID, p.Path,
			AccessFileRead, 0, ShareAccessReadWriteDelete, DispositionOpen, OptionNonDirectoryFile)
		if err != nil {
			return nil, err
		}
		if err := c.send(createReq); err != nil {
			return nil, err
		}
		createPDU, err := c.recv()
		if err != nil {
			return nil, err
		}
		created, err := ParseCreateResponse(createPDU)
		if err != nil {
			return nil, err
		}
		if created.Status != StatusSuccess {
			return nil, statusError(created.Status, "open file failed")
		}

		readLen := uint32(MaxReadChunk)
		if neg.MaxReadSize > 0 && neg.MaxReadSize < readLen {
			readLen = neg.MaxReadSize
		}
		if err := c.send(BuildReadRequest(c.next(), c.sessionID, c.treeID, created.FileID, 0, readLen)); err != nil {
			return nil, err
		}
		readPDU, err := c.recv()
		if err != nil {
			return nil, err
		}
		rr, readErr := ParseReadResponse(readPDU)

		_ = c.send(BuildCloseRequest(c.next(), c.sessionID, c.treeID, created.FileID))
		_, _ = c.recv()

		if readErr != nil {
			return nil, readErr
		}
		if rr.Status != StatusSuccess {
			return nil, statusError(rr.Status, "read failed")
		}
		return &ReadResultOut{
			BytesRead: len(rr.Data),
			IsText:    utf8.Valid(rr.Data),
			Content:   rr.Data,
		}, nil
	})
}

// WriteParams extends Params with the file path and bytes to write.
type WriteParams struct {
	Params
	Path string
	Data []byte
}

// WriteResultOut is the `/api/smb2/write` success payload.
type WriteResultOut struct {
	BytesWritten int
}

// Write opens Path with FILE_OVERWRITE_IF and writes Data at offset 0.
func Write(ctx context.Context, p WriteParams) (*WriteResultOut, error) {
	return runSMB2(ctx, p.Params, func(c *conn) (*WriteResultOut, error) {
		if _, _, err := negotiateAndAuth(c, p.Params); err != nil {
			return nil, err
		}
		if _, err := connectTree(c, p.Target.Host, p.Share); err != nil {
			return nil, err
		}

		createReq, err := BuildCreateRequest(c.next(), c.sessionID, c.treeID, p.Path,
			AccessFileWrite, 0, ShareAccessRead, DispositionOverwriteIf, OptionNonDirectoryFile)
		if err != nil {
			return nil, err
		}
		if err := c.send(createReq); err != nil {
			return nil, err
		}
		createPDU, err := c.recv()
		if err != nil {
			return nil, err
		}
		created, err := ParseCreateResponse(createPDU)
		if err != nil {
			return nil, err
		}
		if created.Status != StatusSuccess {
			return nil, statusError(created.Status, "create file failed")
		}

		if err := c.send(BuildWriteRequest(c.next(), c.sessionID, c.treeID, created.FileID, p.Data)); err != nil {
			return nil, err
		}
		writePDU, err := c.recv()
		if err != nil {
			return nil, err
		}
		wr, writeErr := ParseWriteResponse(writePDU)

		_ = c.send(BuildCloseRequest(c.next(), c.sessionID, c.treeID, created.FileID))
		_, _ = c.recv()

		if writeErr != nil {
			return nil, writeErr
		}
		if wr.Status != StatusSuccess {
			return nil, statusError(wr.Status, "write failed")
		}
		return &WriteResultOut{BytesWritten: int(wr.Count)}, nil
	})
}

// StatParams extends Params with the path to stat.
type StatParams struct {
	Params
	Path string
}

// StatResult is the `/api/smb2/stat` success payload.
type StatResult struct {
	IsDir         bool
	Size          uint64
	ReadOnly      bool
	Hidden        bool
	System        bool
	Archive       bool
}

// Stat tries CREATE as a file first; if that fails with anything other
// than STATUS_FILE_IS_A_DIRECTORY, it retries as a directory, per spec
// §4.4.1.
func Stat(ctx context.Context, p StatParams) (*StatResult, error) {
	return runSMB2(ctx, p.Params, func(c *conn) (*StatResult, error) {
		if _, _, err := negotiateAndAuth(c, p.Params); err != nil {
			return nil, err
		}
		if _, err := connectTree(c, p.Target.Host, p.Share); err != nil {
			return nil, err
		}

		created, err := statCreate(c, p.Path, OptionNonDirectoryFile)
		if err != nil {
			return nil, err
		}
		if created.Status != StatusSuccess && created.Status != StatusFileIsADirectory {
			return nil, statusError(created.Status, "stat failed")
		}
		if created.Status == StatusFileIsADirectory {
			created, err = statCreate(c, p.Path, OptionDirectoryFile)
			if err != nil {
				return nil, err
			}
			if created.Status != StatusSuccess {
				return nil, statusError(created.Status, "stat failed")
			}
		}

		_ = c.send(BuildCloseRequest(c.next(), c.sessionID, c.treeID, created.FileID))
		_, _ = c.recv()

		return &StatResult{
			IsDir:    created.FileAttributes&AttrDirectory != 0,
			Size:     created.EndOfFile,
			ReadOnly: created.FileAttributes&AttrReadOnly != 0,
			Hidden:   created.FileAttributes&AttrHidden != 0,
			System:   created.FileAttributes&AttrSystem != 0,
			Archive:  created.FileAttributes&AttrArchive != 0,
		}, nil
	})
}

func statCreate(c *conn, path string, options uint32) (*CreateResult, error) {
	req, err := BuildCreateRequest(c.next(), c.sessionID, c.treeID, path, AccessFileRead, 0, ShareAccessReadWriteDelete, DispositionOpen, options)
	if err != nil {
		return nil, err
	}
	if err := c.send(req); err != nil {
		return nil, err
	}
	pdu, err := c.recv()
	if err != nil {
		return nil, err
	}
	return ParseCreateResponse(pdu)
}
