// Package assetledger carries module-wide metadata for the stockroom tools.
package assetledger

// Version is the semantic version of the stockroom CLI and library.
const Version = "0.2.0"
