// Package drive provides a client for the Google Drive v3 API.
//
// It covers what the automation engine needs from Drive:
//   - Uploading content and creating empty files of any MIME type
//   - Creating folders
//   - Listing, reading, downloading and deleting files
//   - Moving and renaming files
//   - Granting, listing and removing permissions
//
// The client is built from google.golang.org/api options, normally
// option.WithHTTPClient with the service account client from the google
// package:
//
//	client, err := drive.NewClient(ctx, option.WithHTTPClient(httpClient))
//	if err != nil {
//	    return err
//	}
//	folder, err := client.CreateFolder(ctx, "Reports", nil)
package drive
