package post

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"

	_ "golang.org/x/image/webp"
)

// Thumbnail is the outcome of resolving a thumbnail path.
type Thumbnail struct {
	// Path is the usable file, empty when the thumbnail is skipped
	Path string

	// Requested is true when the caller supplied a path at all
	Requested bool

	// Reason explains why the thumbnail was skipped
	Reason string

	Format string
	Width  int
	Height int
}

// Present reports whether there is a file to upload.
func (t Thumbnail) Present() bool {
	return t.Path != ""
}

// ResolveThumbnail checks that path names a readable image. Anything else is
// reported as absent with a reason; it is never an error because the
// thumbnail is optional.
func ResolveThumbnail(path string) Thumbnail {
	// Shell wrappers pass these through when the variable was unset
	if path == "" || path == "null" || path == "undefined" {
		return Thumbnail{Reason: "no thumbnail given"}
	}

	info, err := os.Stat(path)
	if err != nil {
		return Thumbnail{Requested: true, Reason: fmt.Sprintf("image not found at %s", path)}
	}
	if info.IsDir() {
		return Thumbnail{Requested: true, Reason: fmt.Sprintf("image path %s is a directory", path)}
	}

	file, err := os.Open(path)
	if err != nil {
		return Thumbnail{Requested: true, Reason: fmt.Sprintf("image at %s is not readable: %v", path, err)}
	}
	defer file.Close()

	cfg, format, err := image.DecodeConfig(file)
	if err != nil {
		return Thumbnail{Requested: true, Reason: fmt.Sprintf("file at %s is not a supported image: %v", path, err)}
	}

	return Thumbnail{
		Path:      path,
		Requested: true,
		Format:    format,
		Width:     cfg.Width,
		Height:    cfg.Height,
	}
}
