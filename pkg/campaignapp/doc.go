// Package campaignapp covers the campaign application result screen: the
// application record, the file operation results, the summary projection
// rendered after a create or edit, and the HTTP client for the application
// files.
package campaignapp
