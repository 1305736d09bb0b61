package cloudinary

import (
	"bytes"
	"context"
	"errors"
	"path"
	"strings"

	cld "github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/google/uuid"
)

type CloudinaryUploader struct {
	cld        *cld.Cloudinary
	rootFolder string
}

func NewCloudinaryUploader(cloud *cld.Cloudinary, rootFolder string) *CloudinaryUploader {
	return &CloudinaryUploader{cld: cloud, rootFolder: strings.Trim(rootFolder, "/")}
}

func boolPtr(b bool) *bool {
	return &b
}

// UploadBytes stores b under <root>/<folder>/<name>-<uuid> and returns the
// https URL.
func (u *CloudinaryUploader) UploadBytes(
	ctx context.Context,
	folder string,
	filename string,
	b []byte,
) (string, error) {
	if len(b) == 0 {
		return "", errors.New("empty upload")
	}

	res, err := u.cld.Upload.Upload(
		ctx,
		bytes.NewReader(b),
		uploader.UploadParams{
			Folder:       path.Join(u.rootFolder, folder),
			PublicID:     PublicID(filename),
			ResourceType: "image",
			Overwrite:    boolPtr(false),
		},
	)
	if err != nil {
		return "", err
	}
	if res.Error.Message != "" {
		return "", errors.New(res.Error.Message)
	}
	if res.SecureURL == "" {
		return "", errors.New("cloudinary returned no url")
	}

	return res.SecureURL, nil
}

// PublicID strips the extension and appends a uuid so re-uploads never
// collide.
func PublicID(filename string) string {
	base := strings.TrimSuffix(path.Base(filename), path.Ext(filename))
	base = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '-'
		}
	}, base)
	if base == "" || base == "." || base == "-" {
		base = "image"
	}
	return base + "-" + uuid.NewString()
}
