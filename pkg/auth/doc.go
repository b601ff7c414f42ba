// Package auth checks account credentials against the platform API and keeps
// the resulting session. Claims are read from the access token without
// verifying its signature; the API that issued it is trusted.
package auth
