// Package flatfile implements the flat-file backend for the assetledger
// record store. Each table is one semicolon-delimited text file whose first
// row is the header. Mutations serialize per table, rewrite the whole file
// atomically, and keep the attachment reverse index and audit journal
// current.
package flatfile
