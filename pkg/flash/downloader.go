package flash

import (
	"fmt"

	"github.com/hempflower/openocd-agdi/pkg/log"
	"github.com/hempflower/openocd-agdi/pkg/rsp"
)

// Downloader drives the full flash download sequence against one client.
// A Downloader runs one download at a time and is not safe for concurrent
// use. It never connects or disconnects the client; both are the caller's
// responsibility.
type Downloader struct {
	client *rsp.Client
	cfg    config

	logger log.Logger
	state  State
}

// NewDownloader creates a downloader over an already constructed client.
func NewDownloader(client *rsp.Client, opts ...Option) *Downloader {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Downloader{
		client: client,
		cfg:    cfg,
		logger: cfg.logger,
		state:  StateInit,
	}
}

// State returns the position of the current or last download in its
// sequence. After Download returns it is either StateSucceeded or
// StateFailed.
func (d *Downloader) State() State {
	return d.state
}

// Download runs the whole sequence: discover flash regions, erase, stream
// segments from source, finalize. Progress is reported through the
// configured sink; the Kill notification is emitted only on success.
//
// Any failure aborts the remaining sequence immediately and is returned
// with its full detail preserved; no command is ever retried. The client
// connection is left as-is on every path — disconnecting is up to the
// caller.
func (d *Downloader) Download(source SegmentSource) error {
	d.state = StateInit
	d.cfg.progress.Report(ProgressReport{
		Job:   ProgressInit,
		Low:   0,
		High:  100,
		Label: d.cfg.label,
	})

	regions, err := d.client.FlashRegions()
	if err != nil {
		return d.fail(fmt.Errorf("discover flash regions: %w", err))
	}
	if len(regions) == 0 {
		return d.fail(ErrNoFlashRegion)
	}
	d.advance(StateRegionsDiscovered)

	// Erase alignment comes from the first region; the original driver
	// never looked further and targets in the field only announce one.
	blockSize := d.cfg.defaultBlockSize
	if regions[0].BlockSize != nil {
		blockSize = *regions[0].BlockSize
	}
	d.logger.Info("flash region discovered",
		log.Hex("start", regions[0].Start),
		log.Hex("length", regions[0].Length),
		log.Uint64("block_size", blockSize),
	)

	seg, err := source.Next()
	if err != nil {
		return d.fail(fmt.Errorf("fetch first segment: %w", err))
	}

	// One erase covers the whole download, sized from the first segment's
	// declared total rounded up to the block boundary.
	if len(seg.Data) != 0 {
		eraseLen := alignUp(seg.TotalSize, uint32(blockSize))
		if err := d.client.FlashErase(seg.Addr, eraseLen); err != nil {
			return d.fail(fmt.Errorf("erase: %w", err))
		}
	}
	d.advance(StateErased)
	d.advance(StateWriting)

	var written uint32
	for len(seg.Data) != 0 {
		if err := d.client.FlashWrite(seg.Addr, seg.Data, d.cfg.chunkSize); err != nil {
			return d.fail(fmt.Errorf("write segment @0x%x: %w", seg.Addr, err))
		}
		written += uint32(len(seg.Data))

		if seg.TotalSize > 0 {
			d.cfg.progress.Report(ProgressReport{
				Job:  ProgressSetPos,
				Pos:  progressPercent(written, seg.TotalSize),
				Low:  0,
				High: 100,
			})
		}

		seg, err = source.Next()
		if err != nil {
			return d.fail(fmt.Errorf("fetch next segment: %w", err))
		}
	}

	if err := d.client.FlashDone(); err != nil {
		return d.fail(fmt.Errorf("finalize: %w", err))
	}
	d.advance(StateDone)

	d.cfg.progress.Report(ProgressReport{Job: ProgressKill, Low: 0, High: 100})
	d.advance(StateSucceeded)

	d.logger.Info("flash download complete", log.Uint32("bytes", written))
	return nil
}

// fail marks the download failed and passes the error through unchanged
// for the caller to inspect.
func (d *Downloader) fail(err error) error {
	d.state = StateFailed
	d.logger.Error("flash download failed", log.Err(err))
	return err
}

// progressPercent returns written as a percentage of total. Computed in
// 64 bits; written*100 overflows uint32 for images over ~42 MiB.
func progressPercent(written, total uint32) int {
	return int(uint64(written) * 100 / uint64(total))
}

// alignUp rounds value up to the next multiple of align.
func alignUp(value, align uint32) uint32 {
	if align == 0 {
		return value
	}
	return (value + align - 1) / align * align
}
