package interfaces

import "context"

// Uploader stores an image on the media host and returns its public URL.
type Uploader interface {
	UploadBytes(ctx context.Context, folder string, filename string, b []byte) (string, error)
}
