package mail

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrAssetMissing marks a failure to read the local PDF. Callers use
// errors.Is to distinguish it from a transport failure: asset-missing is a
// deployment defect, transport failure is the provider's problem.
var ErrAssetMissing = errors.New("guide asset missing")

// AssetLoader supplies the PDF attachment in attachment mode.
// Tests inject a stub; production uses NewFileAsset.
type AssetLoader interface {
	Load() (Attachment, error)
}

// fileAsset reads the PDF from a fixed local path on every load. The file
// is small and deliveries are rare, so no caching.
type fileAsset struct {
	path string
}

// NewFileAsset returns an AssetLoader backed by the file at path.
func NewFileAsset(path string) AssetLoader {
	return &fileAsset{path: path}
}

func (f *fileAsset) Load() (Attachment, error) {
	content, err := os.ReadFile(f.path)
	if err != nil {
		return Attachment{}, fmt.Errorf("%w: read %s: %v", ErrAssetMissing, f.path, err)
	}
	return Attachment{
		Filename:    filepath.Base(f.path),
		ContentType: "application/pdf",
		Content:     content,
	}, nil
}
