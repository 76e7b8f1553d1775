// Package cloud_tools provides MCP tools for the Google Cloud services the
// automation engine uses besides Workspace: Cloud Storage, Pub/Sub, Cloud
// Scheduler, Cloud Tasks, Secret Manager, Firestore, BigQuery, Service Usage
// and Vertex AI.
//
// All of them need a project (GOOGLE_CLOUD_PROJECT). Clients are created on
// first use, so a server without a project still serves the Workspace tools.
//
// Listing tools and api_status are always registered. Everything that
// creates, publishes, runs, spends quota or reveals secret material is
// registered only when write tools are enabled.
package cloud_tools
