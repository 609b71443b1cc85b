package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// Delete must accept both plain object keys and full public URLs from
// records written by older deployments.
func TestMinioStore_ObjectKey(t *testing.T) {
	store := &MinioStore{bucket: "matreshka-photos", publicEndpoint: "cdn.example.com", publicSSL: true}

	tests := []struct {
		name string
		ref  string
		want string
	}{
		{"plain key", "20250901_120000_abc.jpg", "20250901_120000_abc.jpg"},
		{"thumb key", "thumbs/a.jpg", "thumbs/a.jpg"},
		{"public url", "https://cdn.example.com/matreshka-photos/20250901_120000_abc.jpg", "20250901_120000_abc.jpg"},
		{"escaped url", "https://cdn.example.com/matreshka-photos/thumbs%2Fa.jpg", "thumbs/a.jpg"},
		{"foreign url keeps tail", "https://other.example.com/unrelated/key.jpg", "unrelated/key.jpg"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, store.objectKey(tt.ref))
		})
	}
}

func TestMinioStore_URL(t *testing.T) {
	store := &MinioStore{bucket: "matreshka-photos", publicEndpoint: "cdn.example.com", publicSSL: true}
	assert.Equal(t, "https://cdn.example.com/matreshka-photos/a.jpg", store.URL("a.jpg"))
	assert.Equal(t, "https://cdn.example.com/matreshka-photos/thumbs/a.jpg", store.URL("thumbs/a.jpg"))

	plain := &MinioStore{bucket: "b", publicEndpoint: "localhost:9000", publicSSL: false}
	assert.Equal(t, "http://localhost:9000/b/x.jpg", plain.URL("x.jpg"))
}
