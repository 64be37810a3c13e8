package wacloud

import (
	"errors"
	"strings"
	"testing"

	apperrors "github.com/Sayansh2004/IAA-WhatsappChatbot-SC/internal/errors"
)

const testSecret = "test-app-secret"

func TestValidateSignatureRoundTrip(t *testing.T) {
	body := []byte(`{"object":"whatsapp_business_account"}`)
	header := SignBody(body, testSecret)

	if !strings.HasPrefix(header, "sha256=") {
		t.Fatalf("SignBody() = %q, want sha256= prefix", header)
	}
	if err := ValidateSignature(body, header, testSecret); err != nil {
		t.Errorf("ValidateSignature() = %v, want nil", err)
	}
}

func TestValidateSignatureRejects(t *testing.T) {
	body := []byte(`{"object":"whatsapp_business_account"}`)
	valid := SignBody(body, testSecret)

	tests := []struct {
		name   string
		body   []byte
		header string
		secret string
	}{
		{"tampered body", []byte(`{"object":"evil"}`), valid, testSecret},
		{"wrong secret", body, valid, "other-secret"},
		{"missing header", body, "", testSecret},
		{"wrong scheme", body, "sha1=abcdef", testSecret},
		{"malformed hex", body, "sha256=not-hex!", testSecret},
		{"empty secret", body, valid, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSignature(tt.body, tt.header, tt.secret)
			if !errors.Is(err, apperrors.ErrInvalidSignature) {
				t.Errorf("ValidateSignature() = %v, want ErrInvalidSignature", err)
			}
		})
	}
}
