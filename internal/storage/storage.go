package storage

import "io"

type FileInfo struct {
	Filename    string
	ContentType string
	Size        int64
}

// Storage abstracts where uploaded lecture files live. SaveFile
// returns the stored name; FilePath resolves a stored name to a path
// the processing pipeline can read.
type Storage interface {
	SaveFile(r io.Reader, info FileInfo) (string, error)
	OpenFile(name string) (io.ReadSeekCloser, error)
	DeleteFile(name string) error
	FilePath(name string) string
}
