package wacloud

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	apperrors "github.com/Sayansh2004/IAA-WhatsappChatbot-SC/internal/errors"
)

// signaturePrefix is the scheme tag Meta prepends to the hex digest in
// the X-Hub-Signature-256 header.
const signaturePrefix = "sha256="

// ValidateSignature verifies the X-Hub-Signature-256 header of a webhook
// delivery against the raw request body. Comparison is constant time.
func ValidateSignature(body []byte, header, appSecret string) error {
	if appSecret == "" {
		return fmt.Errorf("%w: app secret not configured", apperrors.ErrInvalidSignature)
	}
	if header == "" {
		return fmt.Errorf("%w: missing signature header", apperrors.ErrInvalidSignature)
	}

	hexDigest, ok := strings.CutPrefix(header, signaturePrefix)
	if !ok {
		return fmt.Errorf("%w: unexpected signature scheme", apperrors.ErrInvalidSignature)
	}

	got, err := hex.DecodeString(hexDigest)
	if err != nil {
		return fmt.Errorf("%w: malformed hex digest", apperrors.ErrInvalidSignature)
	}

	mac := hmac.New(sha256.New, []byte(appSecret))
	mac.Write(body)
	want := mac.Sum(nil)

	if !hmac.Equal(got, want) {
		return fmt.Errorf("%w: digest mismatch", apperrors.ErrInvalidSignature)
	}
	return nil
}

// SignBody computes the X-Hub-Signature-256 header value for a body.
// Used by tests and local tooling to produce valid deliveries.
func SignBody(body []byte, appSecret string) string {
	mac := hmac.New(sha256.New, []byte(appSecret))
	mac.Write(body)
	return signaturePrefix + hex.EncodeToString(mac.Sum(nil))
}
