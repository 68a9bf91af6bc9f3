// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package gps

import "regexp"

// locationPattern matches a Quectel AT+QGPSLOC=1 answer:
//
//	+QGPSLOC: <utc>,<lat>,<N|S>,<lon>,<E|W>,<hdop>,<alt>,<fix>,<cog>,<spkm>,<spkn>,<date>,<nsat>
var locationPattern = regexp.MustCompile(
	`\+QGPSLOC:\s*(\d{6})(?:\.\d+)?,(\d+(?:\.\d+)?),([NS]),(\d+(?:\.\d+)?),([EW]),[^,]*,[^,]*,[^,]*,[^,]*,[^,]*,[^,]*,(\d{6})`)

// ParseLocationResponse decodes a modem location query response. A response
// without the +QGPSLOC marker (for example "+CME ERROR: 516" while the
// receiver is still searching) is not an error: it returns ok == false.
func ParseLocationResponse(resp string) (fix Fix, ok bool, err error) {
	m := locationPattern.FindStringSubmatch(resp)
	if m == nil {
		return Fix{}, false, nil
	}
	fix, err = decodeFields(m[1], m[2], m[3], m[4], m[5], m[6])
	if err != nil {
		return Fix{}, false, err
	}
	return fix, true, nil
}
