package imaging

import (
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultCacheSize is the number of frames a FrameCache holds when no size is
// configured.
const DefaultCacheSize = 32

// FrameCache keeps recently used decoded camera frames in memory keyed by file
// path, so that detect, overlay and edge requests against the same frame
// decode it once. Once size frames are cached the least recently used one is
// dropped.
//
// FrameCache is safe for concurrent use.
type FrameCache struct {
	frames *lru.Cache[string, image.Image]
}

// NewFrameCache creates an empty cache holding at most size frames. A size
// below 1 uses DefaultCacheSize.
func NewFrameCache(size int) *FrameCache {
	if size < 1 {
		size = DefaultCacheSize
	}
	// lru.New only fails for non-positive sizes
	frames, _ := lru.New[string, image.Image](size)
	return &FrameCache{frames: frames}
}

// Load returns the decoded frame at path, reading it from disk on the first
// request. EXIF orientation is applied on decode so that dashcam JPEGs shot
// in portrait come back upright.
//
// Errors wrap the underlying open or decode failure.
func (c *FrameCache) Load(path string) (image.Image, error) {
	if img, ok := c.frames.Get(path); ok {
		return img, nil
	}

	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}

	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	c.frames.Add(path, img)
	return img, nil
}

// Len reports how many frames are cached.
func (c *FrameCache) Len() int {
	return c.frames.Len()
}

// Clear drops every cached frame.
func (c *FrameCache) Clear() {
	c.frames.Purge()
}

// Evict drops the frame cached under path and reports whether it was cached.
func (c *FrameCache) Evict(path string) bool {
	return c.frames.Remove(path)
}

// FrameInfo describes a frame on disk.
type FrameInfo struct {
	// Width is the frame width in pixels after orientation is applied.
	Width int `json:"width"`

	// Height is the frame height in pixels after orientation is applied.
	Height int `json:"height"`

	// Format is "png", "jpeg", "gif" or "unknown", judged by file extension.
	Format string `json:"format"`

	// FileSizeBytes is the size of the file on disk.
	FileSizeBytes int64 `json:"file_size_bytes"`
}

// LoadFrameInfo loads the frame at path through cache and reports its
// dimensions, format and size.
func LoadFrameInfo(cache *FrameCache, path string) (*FrameInfo, error) {
	img, err := cache.Load(path)
	if err != nil {
		return nil, err
	}

	stat, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	format := "unknown"
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		format = "png"
	case ".jpg", ".jpeg":
		format = "jpeg"
	case ".gif":
		format = "gif"
	}

	bounds := img.Bounds()
	return &FrameInfo{
		Width:         bounds.Dx(),
		Height:        bounds.Dy(),
		Format:        format,
		FileSizeBytes: stat.Size(),
	}, nil
}
