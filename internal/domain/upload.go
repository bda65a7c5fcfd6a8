package domain

import (
	"time"

	"github.com/google/uuid"
)

// FormField is a single name/value pair the client must send, in order,
// as part of its multipart/form-data upload.
type FormField struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// PresignedUploadGrant authorizes one direct upload to object storage.
// The client POSTs Fields followed by a "file" part to Endpoint.
type PresignedUploadGrant struct {
	Endpoint  string      `json:"endpoint"`
	Fields    []FormField `json:"form_data_fields"`
	ExpiresAt time.Time   `json:"expires_at"`
}

// Field returns the value of the named form field.
func (g *PresignedUploadGrant) Field(name string) (string, bool) {
	for _, f := range g.Fields {
		if f.Name == name {
			return f.Value, true
		}
	}
	return "", false
}

// UploadRequest identifies a single upload.
type UploadRequest struct {
	RequesterID uuid.UUID
	Bucket      string

	// ObjectKey is a fresh random UUID, generated once per grant.
	ObjectKey string
}

// VideoUpload is the result of starting an upload.
type VideoUpload struct {
	// VideoID is the object key the client will upload to.
	VideoID string                `json:"video_id"`
	Grant   *PresignedUploadGrant `json:"presigned_url"`
}
