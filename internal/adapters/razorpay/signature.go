package razorpay

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// SignatureVerifier validates checkout callback signatures.
type SignatureVerifier struct{}

// NewSignatureVerifier creates a new signature verifier.
func NewSignatureVerifier() *SignatureVerifier {
	return &SignatureVerifier{}
}

// Verify checks razorpay_signature against the key secret.
// The signature is the hex HMAC-SHA256 of: <order_id>|<payment_id>
func (v *SignatureVerifier) Verify(orderID, paymentID, signature, secret string) bool {
	if signature == "" || secret == "" {
		return false
	}

	expected := Sign(orderID, paymentID, secret)

	// Compare signatures (constant-time comparison)
	return hmac.Equal([]byte(signature), []byte(expected))
}

// Sign computes the signature the gateway attaches to a completed payment.
func Sign(orderID, paymentID, secret string) string {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(h.Sum(nil))
}
