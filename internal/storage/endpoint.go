package storage

import (
	"errors"
	"net/url"
	"strings"
)

// ErrInvalidEndpoint indicates a base endpoint that cannot be used for addressing.
var ErrInvalidEndpoint = errors.New("invalid storage endpoint")

// DefaultProviderEndpoint is the production S3 endpoint.
const DefaultProviderEndpoint = "https://s3.amazonaws.com"

// EndpointConfig selects how bucket URLs are built.
type EndpointConfig struct {
	// BaseURL is the storage endpoint, e.g. "http://localhost:4566" for a
	// local emulator or "https://s3.amazonaws.com" in production.
	BaseURL string

	// PathStyle addresses buckets as {base}/{bucket} instead of the
	// virtual-hosted {scheme}://{bucket}.{host}.
	PathStyle bool
}

// LocalEndpoint returns a path-style config for a local emulator.
func LocalEndpoint(baseURL string) EndpointConfig {
	return EndpointConfig{BaseURL: baseURL, PathStyle: true}
}

// ProviderEndpoint returns a virtual-hosted config for the provider endpoint.
func ProviderEndpoint(baseURL string) EndpointConfig {
	if baseURL == "" {
		baseURL = DefaultProviderEndpoint
	}
	return EndpointConfig{BaseURL: baseURL}
}

// Validate checks that BaseURL is an absolute http(s) URL.
func (c EndpointConfig) Validate() error {
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return errors.Join(ErrInvalidEndpoint, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return ErrInvalidEndpoint
	}
	return nil
}

// BucketURL returns the URL uploads to bucket are POSTed to.
//
// Example:
//
//	path-style:     http://localhost:4566/videos
//	virtual-hosted: https://videos.s3.amazonaws.com
func (c EndpointConfig) BucketURL(bucket string) (string, error) {
	u, err := url.Parse(strings.TrimSuffix(c.BaseURL, "/"))
	if err != nil || u.Host == "" {
		return "", ErrInvalidEndpoint
	}

	if c.PathStyle {
		u.Path = strings.TrimSuffix(u.Path, "/") + "/" + bucket
		return u.String(), nil
	}

	u.Host = bucket + "." + u.Host
	return u.String(), nil
}

// ObjectURL returns the public URL of key within bucket.
func (c EndpointConfig) ObjectURL(bucket, key string) (string, error) {
	base, err := c.BucketURL(bucket)
	if err != nil {
		return "", err
	}

	segments := strings.Split(key, "/")
	for i, segment := range segments {
		segments[i] = url.PathEscape(segment)
	}
	return base + "/" + strings.Join(segments, "/"), nil
}
