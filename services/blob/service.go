// Package blob stores uploaded binary assets (profile photos) on an afero
// filesystem and hands back durable public URLs.
package blob

import (
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/spf13/afero"
)

const photoDir = "profile_photos"

var (
	ErrUserIDRequired = errors.New("user id is required")
	ErrNotAnImage     = errors.New("uploaded file is not an image")
)

// Service writes assets under a filesystem root and maps them to URLs under
// baseURL.
type Service struct {
	fs      afero.Fs
	baseURL string
}

// NewService creates a blob service. baseURL is the public prefix served in
// front of the filesystem root.
func NewService(fs afero.Fs, baseURL string) (*Service, error) {
	if fs == nil {
		return nil, errors.New("filesystem is required")
	}
	if err := fs.MkdirAll(photoDir, 0o755); err != nil {
		return nil, fmt.Errorf("create photo dir: %w", err)
	}
	return &Service{fs: fs, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

// StoreProfilePhoto sniffs the payload, rejects non-images, writes the
// photo at a path keyed by uid and returns its public URL. Re-uploading
// overwrites the previous photo.
func (s *Service) StoreProfilePhoto(uid string, r io.Reader) (string, error) {
	uid = strings.TrimSpace(uid)
	if uid == "" {
		return "", ErrUserIDRequired
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("read upload: %w", err)
	}

	mime := mimetype.Detect(data)
	if !strings.HasPrefix(mime.String(), "image/") {
		return "", ErrNotAnImage
	}

	name := path.Join(photoDir, uid+mime.Extension())
	if err := afero.WriteFile(s.fs, name, data, 0o644); err != nil {
		return "", fmt.Errorf("write photo: %w", err)
	}

	return s.baseURL + "/" + name, nil
}
