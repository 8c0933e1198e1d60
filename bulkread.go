package zkterm

import (
	"context"
	"encoding/binary"
	"fmt"
)

// readWithBuffer implements the chunked bulk-transfer subprotocol: prepare
// the device-side buffer, learn the dataset size, pull it in MAX_CHUNK
// pieces, then free the buffer. The caller must hold c.mu.
//
// This path is what the teacher's GetUsers/GetAttendances call but never
// implement; its shape follows the original implementation's
// readWithBuffer/receiveChunk/readChunk.
func (c *Client) readWithBuffer(ctx context.Context, subCmd, fct, ext int) ([]byte, error) {
	prep := make([]byte, 1+2+4+4)
	prep[0] = 1
	binary.LittleEndian.PutUint16(prep[1:3], uint16(subCmd))
	binary.LittleEndian.PutUint32(prep[3:7], uint32(fct))
	binary.LittleEndian.PutUint32(prep[7:11], uint32(ext))

	res, err := c.command(ctx, CMD_PREPARE_BUFFER, prep, 1024)
	if err != nil {
		return nil, err
	}
	if !res.Status {
		return nil, newErr(KindProtocol, "readWithBuffer", res.Code, nil)
	}

	if res.Code == CMD_DATA {
		data := res.Data
		// TCPLength counts the 8-byte frame header as well as the payload.
		if c.tr.isTCP && res.TCPLength-8 > len(data) {
			extra, err := c.tr.recvMore(res.TCPLength - 8 - len(data))
			if err != nil {
				return nil, err
			}
			data = append(data, extra...)
		}
		return data, nil
	}

	if len(res.Data) < 5 {
		return nil, newErr(KindFraming, "readWithBuffer", res.Code, nil)
	}
	// Byte 0 is a status flag; the 32-bit size follows at offset 1, not 0.
	totalSize := int(binary.LittleEndian.Uint32(res.Data[1:5]))

	out := make([]byte, 0, totalSize)
	maxChunk := MaxChunkUDP
	if c.tr.isTCP {
		maxChunk = MaxChunkTCP
	}

	remaining := totalSize
	start := 0
	for remaining > 0 {
		size := remaining
		if size > maxChunk {
			size = maxChunk
		}

		chunk, err := c.readChunk(ctx, start, size)
		if err != nil {
			return nil, err
		}
		out = append(out, chunk...)

		start += size
		remaining -= size
	}

	if _, err := c.command(ctx, CMD_FREE_DATA, nil, 8); err != nil {
		c.log.Debugf("CMD_FREE_DATA failed: %v", err)
	}

	return out, nil
}

// readChunk fetches one slice of the buffered dataset, retrying up to three
// times on a transport or framing failure before giving up.
func (c *Client) readChunk(ctx context.Context, start, size int) ([]byte, error) {
	req := make([]byte, 8)
	binary.LittleEndian.PutUint32(req[0:4], uint32(start))
	binary.LittleEndian.PutUint32(req[4:8], uint32(size))

	var lastErr error
	for attempt := 0; attempt < 3; attempt++ {
		data, err := c.readChunkOnce(ctx, req, size)
		if err == nil {
			return data, nil
		}
		lastErr = err
		c.log.Debugf("readChunk attempt %d failed: %v", attempt+1, err)
	}
	return nil, newErr(KindTransport, "readChunk", 0, fmt.Errorf("%w: %v", ErrBulkReadExhausted, lastErr))
}

func (c *Client) readChunkOnce(ctx context.Context, req []byte, size int) ([]byte, error) {
	expect := size + 32
	if !c.tr.isTCP {
		expect = 1032
	}

	res, err := c.command(ctx, CMD_READ_BUFFER, req, expect)
	if err != nil {
		return nil, err
	}
	if res.Code != CMD_PREPARE_DATA && res.Code != CMD_DATA {
		return nil, newErr(KindProtocol, "readChunkOnce", res.Code, nil)
	}

	data := res.Data

	if c.tr.isTCP {
		for len(data) < size {
			more, err := c.tr.recvMore(size - len(data))
			if err != nil {
				return nil, err
			}
			if len(more) == 0 {
				break
			}
			data = append(data, more...)
		}
		if len(data) < size {
			return nil, newErr(KindFraming, "readChunkOnce", 0, nil)
		}
		data = data[:size]

		trailer, err := c.tr.recvMore(16)
		if err != nil {
			return nil, err
		}
		if len(trailer) >= 16 {
			hdr, err := parseFrameHeader(trailer[8:16])
			if err == nil && hdr.Code != CMD_ACK_OK {
				c.log.Debugf("chunk trailer code=%d, expected ACK_OK", hdr.Code)
			}
		}
		return data, nil
	}

	// UDP: loop datagrams until ACK_OK terminates the chunk.
	out := append([]byte{}, data...)
	for len(out) < size {
		raw, _, err := c.tr.recv(1032)
		if err != nil {
			return nil, err
		}
		hdr, err := parseFrameHeader(raw)
		if err != nil {
			return nil, err
		}
		if hdr.Code == CMD_ACK_OK {
			break
		}
		out = append(out, raw[8:]...)
	}
	if len(out) > size {
		out = out[:size]
	}
	return out, nil
}
