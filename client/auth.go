package client

import "encoding/base64"

// basicAuth renders RFC 7617 HTTP Basic credentials.
func basicAuth(c Credentials) string {
	raw := c.User + ":" + c.Password
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(raw))
}
