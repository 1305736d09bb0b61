package cloudinary

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPublicID(t *testing.T) {
	tests := []struct {
		name       string
		filename   string
		wantPrefix string
	}{
		{name: "plain", filename: "avatar.png", wantPrefix: "avatar-"},
		{name: "spaces", filename: "my photo.jpg", wantPrefix: "my-photo-"},
		{name: "path", filename: "../../etc/passwd", wantPrefix: "passwd-"},
		{name: "empty", filename: "", wantPrefix: "image-"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PublicID(tt.filename)
			assert.True(t, strings.HasPrefix(got, tt.wantPrefix), got)
			assert.NotContains(t, got, "/")
		})
	}

	assert.NotEqual(t, PublicID("a.png"), PublicID("a.png"))
}
