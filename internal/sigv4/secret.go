package sigv4

import "github.com/rs/zerolog"

const redacted = "[REDACTED]"

// Secret holds sensitive material. Every default rendering (fmt verbs, JSON,
// zerolog) prints a placeholder; only Expose returns the value.
type Secret struct {
	value string
}

// NewSecret wraps value.
func NewSecret(value string) Secret {
	return Secret{value: value}
}

// Expose returns the wrapped value.
func (s Secret) Expose() string {
	return s.value
}

// IsZero reports whether the secret is empty.
func (s Secret) IsZero() bool {
	return s.value == ""
}

func (s Secret) String() string {
	return redacted
}

func (s Secret) GoString() string {
	return redacted
}

func (s Secret) MarshalJSON() ([]byte, error) {
	return []byte(`"` + redacted + `"`), nil
}

func (s Secret) MarshalText() ([]byte, error) {
	return []byte(redacted), nil
}

// MarshalZerologObject lets the secret be passed to Event.Object safely.
func (s Secret) MarshalZerologObject(e *zerolog.Event) {
	e.Str("value", redacted)
}

var (
	_ zerolog.LogObjectMarshaler = Secret{}
)
