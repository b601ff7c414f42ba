// Package render holds the renderer contract and the request-scoped helpers
// renderers share: translation of form declarations, hidden inputs and the
// mapping of server error payloads onto fields.
package render
