/*************************************************************************
 * Copyright 2017 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

package iscsi

import "fmt"

// loginStatusText renders the RFC 3720 §10.13.2 status class/detail
// pair as a human string. Only class 0 is success; everything else is
// returned verbatim alongside its documented meaning where known.
func loginStatusText(class, detail byte) string {
	if class == 0 && detail == 0 {
		return "Success — Login successful"
	}
	label, ok := statusDetailLabels[[2]byte{class, detail}]
	if !ok {
		return fmt.Sprintf("class %d detail %d", class, detail)
	}
	return fmt.Sprintf("class %d detail %d — %s", class, detail, label)
}

var statusDetailLabels = map[[2]byte]string{
	{1, 1}: "Target moved temporarily",
	{1, 2}: "Target moved permanently",
	{2, 0}: "Initiator error",
	{2, 1}: "Authentication failure",
	{2, 2}: "Authorization failure",
	{2, 3}: "Not found",
	{2, 4}: "Target removed",
	{2, 5}: "Unsupported version",
	{2, 6}: "Too many connections",
	{2, 7}: "Missing parameter",
	{2, 8}: "Can't include in session",
	{2, 9}: "Session type not supported",
	{2, 10}: "Session does not exist",
	{2, 11}: "Invalid during login",
	{3, 0}: "Target error",
	{3, 1}: "Service unavailable",
	{3, 2}: "Out of resources",
}
