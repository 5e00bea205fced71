// Package types defines the Store and Table interfaces, row references,
// the status lifecycle, the schema registry, and standard errors for the
// assetledger flat-file record store.
// See docs in DESIGN.md § Main Interface.
package types
