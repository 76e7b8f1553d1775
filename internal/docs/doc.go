// Package docs provides a client for the Google Docs v1 API: creating
// documents, reading them back as plain text and appending text to the
// end of the body.
package docs
