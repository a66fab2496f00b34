package rsp

import (
	"bytes"
	"fmt"

	"github.com/hempflower/openocd-agdi/pkg/log"
)

// DefaultChunkSize is the vFlashWrite chunk size used by the download
// orchestrator.
const DefaultChunkSize = 256

// flashWordSize is the write granularity of the target flash. Chunks are
// padded to this boundary with erased-state bytes before transmission;
// this is a hardware requirement, not a protocol one.
const (
	flashWordSize = 4
	flashPadByte  = 0xFF
)

var responseOK = []byte("OK")

// FlashErase erases length bytes of target flash starting at addr.
func (c *Client) FlashErase(addr, length uint32) error {
	cmd := fmt.Sprintf("vFlashErase:%x,%x", addr, length)
	resp, err := c.SendCommand(cmd, nil)
	if err != nil {
		return err
	}
	if !bytes.Equal(resp, responseOK) {
		return &RemoteRejectedError{Command: cmd, Response: resp}
	}
	c.logger.Debug("flash erased", log.Hex("addr", uint64(addr)), log.Hex("len", uint64(length)))
	return nil
}

// FlashWrite programs data into target flash at addr, splitting it into
// chunks of at most chunkSize bytes. Each chunk is padded to a multiple of
// the flash word size before escaping, and the write address advances by
// the padded length. A chunkSize of zero or less selects DefaultChunkSize.
func (c *Client) FlashWrite(addr uint32, data []byte, chunkSize int) error {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}

	offset := 0
	for offset < len(data) {
		end := offset + chunkSize
		if end > len(data) {
			end = len(data)
		}

		block := make([]byte, end-offset)
		copy(block, data[offset:end])
		if rem := len(block) % flashWordSize; rem != 0 {
			for i := rem; i < flashWordSize; i++ {
				block = append(block, flashPadByte)
			}
		}

		chunkAddr := addr + uint32(offset)
		cmd := fmt.Sprintf("vFlashWrite:%x:", chunkAddr)
		resp, err := c.SendCommand(cmd, Escape(block))
		if err != nil {
			return err
		}
		if !bytes.Equal(resp, responseOK) {
			return &RemoteRejectedError{
				Command:  fmt.Sprintf("vFlashWrite @0x%x", chunkAddr),
				Response: resp,
			}
		}

		offset += len(block)
	}

	c.logger.Debug("flash written", log.Hex("addr", uint64(addr)), log.Int("bytes", len(data)))
	return nil
}

// FlashDone tells the target that the flash download is complete and any
// buffered writes must be committed.
func (c *Client) FlashDone() error {
	resp, err := c.SendCommand("vFlashDone", nil)
	if err != nil {
		return err
	}
	if !bytes.Equal(resp, responseOK) {
		return &RemoteRejectedError{Command: "vFlashDone", Response: resp}
	}
	return nil
}

// ReadMemory reads length bytes of target memory at addr and returns the
// raw hex digit string reported by the target. Diagnostic helper; the
// response is not validated further.
func (c *Client) ReadMemory(addr, length uint32) (string, error) {
	resp, err := c.SendCommand(fmt.Sprintf("m%x,%x", addr, length), nil)
	if err != nil {
		return "", err
	}
	return string(resp), nil
}
