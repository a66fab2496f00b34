// Package agdi programs firmware images into embedded targets through a
// GDB remote stub such as OpenOCD.
//
// Example usage:
//
//	t := transport.NewTCP("localhost", 3333)
//	image, err := os.ReadFile("firmware.bin")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := agdi.Flash(t, 0x08000000, image); err != nil {
//	    log.Fatal(err)
//	}
package agdi

import (
	"github.com/hempflower/openocd-agdi/pkg/flash"
	"github.com/hempflower/openocd-agdi/pkg/rsp"
	"github.com/hempflower/openocd-agdi/pkg/transport"
)

// ProgressReport describes one progress notification during a download.
type ProgressReport = flash.ProgressReport

// ProgressSink receives progress notifications during a download.
type ProgressSink = flash.ProgressSink

// FlashRegion describes one flash bank announced by the target.
type FlashRegion = rsp.FlashRegion

// Option configures a download.
type Option = flash.Option

// Download options, re-exported for callers of Flash.
var (
	WithLogger           = flash.WithLogger
	WithProgress         = flash.WithProgress
	WithChunkSize        = flash.WithChunkSize
	WithDefaultBlockSize = flash.WithDefaultBlockSize
	WithLabel            = flash.WithLabel
)

// Flash connects through t, programs image into the target's flash at
// addr, and disconnects. Callers needing finer control over the client
// or segmenting should use the rsp and flash packages directly.
func Flash(t transport.Transport, addr uint32, image []byte, opts ...Option) error {
	client := rsp.NewClient(t)
	if err := client.Connect(); err != nil {
		return err
	}
	defer client.Disconnect()

	d := flash.NewDownloader(client, opts...)
	return d.Download(flash.NewBytesSource(addr, image, flash.DefaultSegmentSize))
}
