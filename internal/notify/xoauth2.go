package notify

import (
	"encoding/base64"
	"fmt"
	"net/smtp"
)

// xoauth2Raw is the unencoded SASL XOAUTH2 initial response
func xoauth2Raw(user, accessToken string) string {
	return fmt.Sprintf("user=%s\x01auth=Bearer %s\x01\x01", user, accessToken)
}

// XOAuth2String returns base64("user=<user>\x01auth=Bearer <token>\x01\x01")
func XOAuth2String(user, accessToken string) string {
	return base64.StdEncoding.EncodeToString([]byte(xoauth2Raw(user, accessToken)))
}

// xoauth2Auth implements smtp.Auth for the XOAUTH2 mechanism
type xoauth2Auth struct {
	user  string
	token string
}

var _ smtp.Auth = (*xoauth2Auth)(nil)

// Start returns the raw initial response; net/smtp base64-encodes it
func (a *xoauth2Auth) Start(server *smtp.ServerInfo) (string, []byte, error) {
	return "XOAUTH2", []byte(xoauth2Raw(a.user, a.token)), nil
}

// Next aborts on a challenge; for XOAUTH2 a challenge only ever carries the
// server's JSON error description.
func (a *xoauth2Auth) Next(fromServer []byte, more bool) ([]byte, error) {
	if more {
		return nil, fmt.Errorf("xoauth2 rejected: %s", fromServer)
	}
	return nil, nil
}
