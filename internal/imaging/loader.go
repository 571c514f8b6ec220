package imaging

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder
	"os"
	"sync"
)

// Blueprint is a decoded drawing held in memory together with its raw bytes.
//
// A Blueprint is immutable after decoding and may be shared by any number of
// goroutines. Region extraction allocates a private buffer per call.
type Blueprint struct {
	img    image.Image
	data   []byte
	format string
}

// DecodeBlueprint decodes raw PNG, JPEG, or GIF bytes into a Blueprint.
//
// The raw bytes are retained (not copied) so callers that need to forward the
// original encoding, such as a vision detector, do not have to re-encode.
func DecodeBlueprint(data []byte) (*Blueprint, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("failed to decode image: empty input")
	}
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return &Blueprint{img: img, data: data, format: format}, nil
}

// Image returns the decoded image.
func (b *Blueprint) Image() image.Image { return b.img }

// Bytes returns the original encoded bytes.
func (b *Blueprint) Bytes() []byte { return b.data }

// Format is the decoder name reported by image.Decode ("png", "jpeg", "gif").
func (b *Blueprint) Format() string { return b.format }

// Dimensions returns the pixel width and height of the decoded image.
func (b *Blueprint) Dimensions() (width, height int) {
	bounds := b.img.Bounds()
	return bounds.Dx(), bounds.Dy()
}

// MimeType maps the decoded format to its MIME type.
func (b *Blueprint) MimeType() string {
	switch b.format {
	case "png":
		return "image/png"
	case "jpeg":
		return "image/jpeg"
	case "gif":
		return "image/gif"
	default:
		return "application/octet-stream"
	}
}

// ImageCache provides thread-safe caching of decoded blueprints keyed by path.
//
// Cached blueprints remain in memory until Evict or Clear is called. The MCP
// server keeps one cache for its lifetime so repeated tool calls against the
// same drawing skip disk reads and decoding.
//
//	cache := imaging.NewImageCache()
//	bp, err := cache.Load("/drawings/level2-mech.png")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	w, h := bp.Dimensions()
type ImageCache struct {
	mu     sync.RWMutex
	images map[string]*Blueprint
}

// NewImageCache creates and initializes a new empty image cache.
func NewImageCache() *ImageCache {
	return &ImageCache{
		images: make(map[string]*Blueprint),
	}
}

// Load retrieves a blueprint from the cache or reads and decodes it from disk.
//
// The blueprint is cached under the exact path string provided; a relative and
// an absolute path to the same file produce separate entries.
func (c *ImageCache) Load(path string) (*Blueprint, error) {
	c.mu.RLock()
	if bp, ok := c.images[path]; ok {
		c.mu.RUnlock()
		return bp, nil
	}
	c.mu.RUnlock()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}

	bp, err := DecodeBlueprint(data)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.images[path] = bp
	c.mu.Unlock()

	return bp, nil
}

// Len reports the number of cached blueprints.
func (c *ImageCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.images)
}

// Clear removes all blueprints from the cache.
func (c *ImageCache) Clear() {
	c.mu.Lock()
	c.images = make(map[string]*Blueprint)
	c.mu.Unlock()
}

// Evict removes a single blueprint from the cache. Unknown paths are ignored.
func (c *ImageCache) Evict(path string) {
	c.mu.Lock()
	delete(c.images, path)
	c.mu.Unlock()
}

// ImageInfo contains metadata about a loaded blueprint.
type ImageInfo struct {
	// Width is the image width in pixels.
	Width int `json:"width"`

	// Height is the image height in pixels.
	Height int `json:"height"`

	// Format is the detected image format: "png", "jpeg", or "gif".
	// Detection is based on file contents, not the extension.
	Format string `json:"format"`

	// MimeType is the MIME type matching Format.
	MimeType string `json:"mime_type"`

	// FileSizeBytes is the size of the encoded image in bytes.
	FileSizeBytes int64 `json:"file_size_bytes"`
}

// LoadImageInfo loads a blueprint through the cache and reports its metadata.
func LoadImageInfo(cache *ImageCache, path string) (*ImageInfo, error) {
	bp, err := cache.Load(path)
	if err != nil {
		return nil, err
	}

	w, h := bp.Dimensions()
	return &ImageInfo{
		Width:         w,
		Height:        h,
		Format:        bp.Format(),
		MimeType:      bp.MimeType(),
		FileSizeBytes: int64(len(bp.Bytes())),
	}, nil
}
