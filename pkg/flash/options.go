package flash

import (
	"github.com/hempflower/openocd-agdi/pkg/log"
	"github.com/hempflower/openocd-agdi/pkg/rsp"
)

// DefaultBlockSize is the erase-alignment unit assumed when the target's
// memory map does not announce a blocksize for the region.
const DefaultBlockSize = 1024

// config holds the downloader configuration.
type config struct {
	logger           log.Logger
	progress         ProgressSink
	chunkSize        int
	defaultBlockSize uint64
	label            string
}

func defaultConfig() config {
	return config{
		logger:           log.NewNoopLogger(),
		progress:         NoopProgress{},
		chunkSize:        rsp.DefaultChunkSize,
		defaultBlockSize: DefaultBlockSize,
		label:            "Loading...",
	}
}

// Option is a functional option for configuring a Downloader.
type Option func(*config)

// WithLogger sets a logger for download diagnostics.
// If not provided, a no-op logger is used.
func WithLogger(logger log.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// WithProgress sets the sink that receives progress notifications.
// If not provided, progress reports are discarded.
func WithProgress(sink ProgressSink) Option {
	return func(c *config) {
		if sink != nil {
			c.progress = sink
		}
	}
}

// WithChunkSize sets the vFlashWrite chunk size. The size must be a
// positive multiple of the 4-byte flash word size; anything else is
// ignored, because the write address advances by the word-padded chunk
// length and an unaligned size would skip real image bytes.
func WithChunkSize(size int) Option {
	return func(c *config) {
		if size > 0 && size%4 == 0 {
			c.chunkSize = size
		}
	}
}

// WithDefaultBlockSize sets the erase-alignment unit used when the memory
// map carries no blocksize property.
func WithDefaultBlockSize(size uint64) Option {
	return func(c *config) {
		if size > 0 {
			c.defaultBlockSize = size
		}
	}
}

// WithLabel sets the label shown by the Init progress notification.
func WithLabel(label string) Option {
	return func(c *config) {
		c.label = label
	}
}
