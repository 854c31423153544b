// Package meta holds build metadata shared by the binary and doctor.
package meta

// Version is the release version reported in the MCP handshake, the
// banner, and doctor output.
const Version = "1.0.0"
