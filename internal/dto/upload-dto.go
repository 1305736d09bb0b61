package dto

// FileUpload is a multipart file already read into memory.
type FileUpload struct {
	Filename    string
	ContentType string
	Bytes       []byte
}

func (f *FileUpload) Empty() bool {
	return f == nil || len(f.Bytes) == 0
}
