// Package google bootstraps authenticated HTTP clients for Google APIs.
//
// Credentials come from a service account key file when one is configured and
// from Application Default Credentials otherwise. Every client shares a
// token-bucket rate limiter so that the Drive, Sheets and Docs clients built
// from it stay under per-user quotas together.
package google
