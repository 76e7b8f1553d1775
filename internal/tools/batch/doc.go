// Package batch provides helpers for tools that act on several Drive files,
// spreadsheets or documents in one call.
//
// Items are processed one at a time; a failure on one item is reported in its
// Result and does not stop the others.
package batch
