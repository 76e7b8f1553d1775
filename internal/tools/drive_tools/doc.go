// Package drive_tools provides MCP tools for Google Drive.
//
// Read tools are always registered:
//   - drive_list_files, drive_get_files, drive_download_file
//   - drive_list_permissions
//
// Write tools need --yolo:
//   - drive_upload_file, drive_create_file, drive_create_folder
//   - drive_move_file, drive_delete_files
//   - drive_share_files, drive_share_with_owner, drive_remove_permission
//
// Files and folders created through these tools are shared with the
// configured owner exactly like those created from the CLI.
package drive_tools
