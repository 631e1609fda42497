/*************************************************************************
 * Copyright 2017 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

package iscsi

import "github.com/rossgg/portofcall/internal/engine/transport"

const responseCap = 64 * 1024

// readPDU reads one BHS plus its padded data segment off tr, using the
// BHS's own DataSegmentLength field rather than any outer framing —
// iSCSI has none.
func readPDU(tr *transport.Transport) (bhs []byte, data []byte, err error) {
	r := tr.NewCappedReader(responseCap)
	bhs, err = r.ReadExactly(bhsLen)
	if err != nil {
		return nil, nil, err
	}
	segLen, err := dataSegmentLength(bhs)
	if err != nil {
		return nil, nil, err
	}
	if segLen == 0 {
		return bhs, nil, nil
	}
	padded, err := r.ReadExactly(paddedLen(int(segLen)))
	if err != nil {
		return nil, nil, err
	}
	return bhs, padded[:segLen], nil
}
