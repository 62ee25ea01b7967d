package objectstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatFor(t *testing.T) {
	assert.Equal(t, "jpg", FormatFor("image/jpeg"))
	assert.Equal(t, "png", FormatFor("IMAGE/PNG; charset=binary"))
	assert.Equal(t, "tiff", FormatFor("image/tiff"))
	assert.Equal(t, "", FormatFor("garbage"))
}

func TestResourceTypeFor(t *testing.T) {
	assert.Equal(t, "image", ResourceTypeFor("image/png"))
	assert.Equal(t, "raw", ResourceTypeFor(""))
}

func TestObjectKey(t *testing.T) {
	assert.Equal(t, "library/abc.png", ObjectKey("library", "abc", "png"))
	assert.Equal(t, "abc", ObjectKey("", "abc", ""))
}

func TestPublicBase(t *testing.T) {
	assert.Equal(t, "http://minio:9000/avatars", publicBase(S3Config{Endpoint: "http://minio:9000/", Bucket: "avatars"}))
	assert.Equal(t, "https://cdn.example.com", publicBase(S3Config{PublicURL: "https://cdn.example.com/", Bucket: "b"}))
	assert.Equal(t, "https://b.s3.eu-west-1.amazonaws.com", publicBase(S3Config{Bucket: "b", Region: "eu-west-1"}))
}
