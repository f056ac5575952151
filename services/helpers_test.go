package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateCode(t *testing.T) {
	code, err := generateCode()

	assert.NoError(t, err)
	assert.Len(t, code, 8)
	assert.Equal(t, strings.ToUpper(code), code)
}

func TestHashCodeNormalizes(t *testing.T) {
	reference := hashCode("A1B2C3D4")

	assert.Equal(t, reference, hashCode("a1b2c3d4"))
	assert.Equal(t, reference, hashCode("  A1B2C3D4\n"))
	assert.NotEqual(t, reference, hashCode("A1B2C3D5"))
	assert.Len(t, reference, 64)
}

func TestGetExtensionFromContentType(t *testing.T) {
	tests := []struct {
		contentType string
		want        string
		wantErr     bool
	}{
		{contentType: "image/jpeg", want: ".jpg"},
		{contentType: "image/jpg", want: ".jpg"},
		{contentType: "image/png", want: ".png"},
		{contentType: "image/gif", want: ".gif"},
		{contentType: "image/webp", want: ".webp"},
		{contentType: "application/pdf", wantErr: true},
		{contentType: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.contentType, func(t *testing.T) {
			ext, err := GetExtensionFromContentType(tt.contentType)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, ext)
		})
	}
}
