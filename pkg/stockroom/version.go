// Package stockroom carries release metadata for the stockroom binary.
package stockroom

// Version is the release version printed by "stockroom version".
const Version = "0.1.0"
