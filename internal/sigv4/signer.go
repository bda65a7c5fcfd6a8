package sigv4

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"time"
)

// =============================================================================
// Signing Key Generation
// =============================================================================

// SigningKey derives the signing key for AWS v4 signatures:
// HMAC(HMAC(HMAC(HMAC("AWS4"+secret, date), region), service), "aws4_request")
func SigningKey(secretKey string, date time.Time, region, service string) []byte {
	kDate := hmacSHA256([]byte(keyPrefix+secretKey), []byte(date.UTC().Format(YYYYMMDD)))
	kRegion := hmacSHA256(kDate, []byte(region))
	kService := hmacSHA256(kRegion, []byte(service))
	return hmacSHA256(kService, []byte(AWS4Request))
}

// hmacSHA256 computes HMAC-SHA256.
func hmacSHA256(key, data []byte) []byte {
	h := hmac.New(sha256.New, key)
	h.Write(data)
	return h.Sum(nil)
}

// =============================================================================
// Policy Signing
// =============================================================================

// SignedPolicy is the output of Sign.
type SignedPolicy struct {
	// Policy is the standard (padded) base64 encoding of the policy JSON.
	Policy string

	// Signature is the lowercase hex HMAC-SHA256 of Policy under the signing key.
	Signature string
}

// Sign encodes the policy and signs it. It performs no I/O and never retries.
func Sign(policy PolicyDocument, creds Credentials, scope SigningScope) (SignedPolicy, error) {
	if err := checkInputs(policy, creds, scope); err != nil {
		return SignedPolicy{}, err
	}

	raw, err := policy.Encode()
	if err != nil {
		return SignedPolicy{}, fmt.Errorf("%w: %v", ErrPolicyEncoding, err)
	}

	encoded := base64.StdEncoding.EncodeToString(raw)
	key := SigningKey(creds.SecretAccessKey.Expose(), scope.Date, scope.Region, scope.Service)

	return SignedPolicy{
		Policy:    encoded,
		Signature: hex.EncodeToString(hmacSHA256(key, []byte(encoded))),
	}, nil
}

func checkInputs(policy PolicyDocument, creds Credentials, scope SigningScope) error {
	switch {
	case creds.SecretAccessKey.IsZero():
		return fmt.Errorf("%w: empty secret access key", ErrSigningInvariantViolation)
	case creds.AccessKeyID == "":
		return fmt.Errorf("%w: empty access key id", ErrSigningInvariantViolation)
	case scope.Region == "":
		return fmt.Errorf("%w: empty region", ErrSigningInvariantViolation)
	case scope.Service == "":
		return fmt.Errorf("%w: empty service", ErrSigningInvariantViolation)
	case scope.Date.IsZero():
		return fmt.Errorf("%w: zero signing date", ErrSigningInvariantViolation)
	case !policy.Expiration.After(scope.Date):
		return fmt.Errorf("%w: expiration %s is not after %s", ErrSigningInvariantViolation,
			policy.Expiration.UTC().Format(ExpirationFormat), scope.AmzDate())
	}
	return nil
}
