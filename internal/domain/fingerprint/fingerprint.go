// Package fingerprint derives a comparable digest from a client's device and network context.
package fingerprint

import "ventas/internal/util"

// Build hashes user agent, IP address and device name, in that order, into a SHA-256 hex digest.
// Missing values are passed as empty strings. The digest is only ever compared, never reversed.
func Build(userAgent, ipAddress, deviceName string) string {
	return util.SHA256Hex(userAgent, ipAddress, deviceName)
}
