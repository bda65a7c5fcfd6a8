package sigv4

import (
	"bytes"
	"encoding/json"
	"time"
)

// =============================================================================
// Conditions
// =============================================================================

// ConditionOp identifies how a POST policy condition is matched.
type ConditionOp string

const (
	// OpEquals requires the form field to equal the value exactly.
	OpEquals ConditionOp = "eq"

	// OpStartsWith requires the form field to start with the value.
	OpStartsWith ConditionOp = "starts-with"

	// OpContentLengthRange bounds the uploaded object's size.
	OpContentLengthRange ConditionOp = "content-length-range"
)

// Condition is a single POST policy condition.
type Condition struct {
	Op    ConditionOp
	Field string
	Value string
	Min   int64
	Max   int64
}

// MarshalJSON renders the condition in the S3 policy grammar:
// exact matches as {"field":"value"}, the rest as arrays.
func (c Condition) MarshalJSON() ([]byte, error) {
	switch c.Op {
	case OpEquals:
		return encodeJSON(map[string]string{c.Field: c.Value})
	case OpStartsWith:
		return encodeJSON([]any{string(OpStartsWith), "$" + c.Field, c.Value})
	case OpContentLengthRange:
		return encodeJSON([]any{string(OpContentLengthRange), c.Min, c.Max})
	default:
		return nil, &json.UnsupportedValueError{Str: string(c.Op)}
	}
}

// =============================================================================
// Policy Document
// =============================================================================

// PolicyDocument is an S3 POST policy. Condition order is significant and is
// preserved byte for byte by Encode.
type PolicyDocument struct {
	Expiration time.Time
	Conditions []Condition
}

// policyWire fixes the serialized key order: conditions, then expiration.
type policyWire struct {
	Conditions []Condition `json:"conditions"`
	Expiration string      `json:"expiration"`
}

// BuildPolicy assembles the policy for a single object upload. The scope's
// Date is the one time sample for the request: it yields X-Amz-Date, the
// credential date and, shifted by window, the expiration.
func BuildPolicy(bucket, objectKey, accessKeyID string, scope SigningScope, window time.Duration) PolicyDocument {
	now := scope.Date.UTC()
	return PolicyDocument{
		Expiration: now.Add(window),
		Conditions: []Condition{
			{Op: OpEquals, Field: "bucket", Value: bucket},
			{Op: OpStartsWith, Field: "key", Value: objectKey},
			{Op: OpEquals, Field: "x-amz-credential", Value: scope.Credential(accessKeyID)},
			{Op: OpEquals, Field: "x-amz-algorithm", Value: Algorithm},
			{Op: OpEquals, Field: "x-amz-date", Value: scope.AmzDate()},
			{Op: OpContentLengthRange, Min: MinContentLength, Max: MaxContentLength},
		},
	}
}

// Encode returns the canonical JSON serialization of the policy.
func (p PolicyDocument) Encode() ([]byte, error) {
	return encodeJSON(policyWire{
		Conditions: p.Conditions,
		Expiration: p.Expiration.UTC().Format(ExpirationFormat),
	})
}

// encodeJSON marshals v compactly without HTML escaping.
func encodeJSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}
