// Package sign builds the canonical signing string for a connection
// request and obtains the platform signature through an injected Signer.
package sign

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"net/url"
	"strings"

	"github.com/dymon-dev/dymon/internal/domain"
)

// signParams is the fixed ordered list of query parameters covered by the
// signature. The order is part of the contract; it is neither alphabetical
// nor the order parameters appear in the URL.
var signParams = []string{
	"live_id", "aid", "version_code", "webcast_sdk_version",
	"room_id", "sub_room_id", "sub_channel_id", "did_rule",
	"user_unique_id", "device_platform", "device_type", "ac",
	"identity",
}

// CanonicalString renders the signed parameters as "name=value" pairs
// joined by commas, in the fixed order. Parameters absent from the query
// render with an empty value.
func CanonicalString(query url.Values) string {
	parts := make([]string, 0, len(signParams))
	for _, name := range signParams {
		parts = append(parts, name+"="+query.Get(name))
	}
	return strings.Join(parts, ",")
}

// Digest returns the lowercase hex md5 of s.
func Digest(s string) string {
	sum := md5.Sum([]byte(s))
	return hex.EncodeToString(sum[:])
}

// SignURL computes the signature for a connection URL and returns the URL
// with the signature parameter appended. The signer's output is appended
// verbatim. On signer failure no URL is returned; the caller must not
// connect unsigned.
func SignURL(wss string, signer domain.Signer) (string, error) {
	u, err := url.Parse(wss)
	if err != nil {
		return "", fmt.Errorf("parse connection url: %w", err)
	}
	sig, err := signer.Sign(Digest(CanonicalString(u.Query())))
	if err != nil {
		return "", fmt.Errorf("sign connection url: %w", err)
	}
	return wss + "&signature=" + sig, nil
}

// SignerFunc adapts a plain function to the domain.Signer interface.
type SignerFunc func(hexDigest string) (string, error)

// Sign calls f.
func (f SignerFunc) Sign(hexDigest string) (string, error) { return f(hexDigest) }
