package zkterm

import (
	"context"
	"encoding/binary"
	"strconv"
)

// regEvent registers (flags != 0) or unregisters (flags == 0) this session
// for push event frames.
func (c *Client) regEvent(ctx context.Context, flags int) error {
	payload := make([]byte, 4)
	binary.LittleEndian.PutUint32(payload, uint32(flags))
	_, err := c.requireOK(ctx, "regEvent", CMD_REG_EVENT, payload)
	return err
}

// StartLiveCapture begins receiving push attendance events. It fetches the
// user list first (events carry only a uid/user-id, not a name), cancels
// any stray enroll/verify state, re-enables the device if needed, and
// registers for CMD_REG_EVENT. Any stale frames already queued on the
// socket are drained and acknowledged before returning.
func (c *Client) StartLiveCapture(ctx context.Context) error {
	if c.IsLiveCaptureActive() {
		return newErr(KindUsage, "StartLiveCapture", 0, ErrCapturing)
	}
	if _, err := c.GetUsers(ctx); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.capturing {
		return newErr(KindUsage, "StartLiveCapture", 0, ErrCapturing)
	}
	if c.tr == nil {
		return newErr(KindUsage, "StartLiveCapture", 0, ErrNotConnected)
	}

	if _, err := c.command(ctx, CMD_CANCELCAPTURE, nil, 8); err != nil {
		c.log.Debugf("CMD_CANCELCAPTURE best-effort failed: %v", err)
	}
	if _, err := c.command(ctx, CMD_STARTVERIFY, nil, 8); err != nil {
		c.log.Debugf("CMD_STARTVERIFY best-effort failed: %v", err)
	}
	if c.disabled {
		if _, err := c.requireOK(ctx, "StartLiveCapture", CMD_ENABLEDEVICE, nil); err != nil {
			c.log.Debugf("re-enable device best-effort failed: %v", err)
		} else {
			c.disabled = false
		}
	}

	if err := c.regEvent(ctx, EF_ATTLOG); err != nil {
		return err
	}

	c.eventBuf = nil
	c.eventQ = nil
	c.eventFrameSize = 0
	c.capturing = true

	c.drainStale(ctx)

	return c.tr.setNonBlockingPoll()
}

// drainStale reads any event frames already sitting in the socket buffer
// from before capture started, acknowledging each so the device doesn't
// retransmit them once polling begins.
func (c *Client) drainStale(ctx context.Context) {
	_ = c.tr.setNonBlockingPoll()
	for {
		raw, _, err := c.tr.recv(1032)
		if err != nil {
			break
		}
		hdr, err := parseFrameHeader(raw)
		if err != nil {
			break
		}
		c.ackEvent(hdr)
		if hdr.Code == CMD_REG_EVENT {
			c.eventBuf = append(c.eventBuf, raw[8:]...)
		}
	}
	c.drainEventBuffer()
	c.eventBuf = nil
}

// ackEvent sends a send-only acknowledgment for a received push frame,
// copying the session and reply id straight from the frame that arrived —
// the device uses its own ids on push frames, not whatever this session's
// counter currently holds.
func (c *Client) ackEvent(hdr frameHeader) {
	frame, err := buildFrame(CMD_ACK_OK, hdr.SessionID, hdr.ReplyID, nil)
	if err != nil {
		return
	}
	_ = c.tr.send(frame)
}

// NextLiveEvent is a pull operation: it returns the next queued attendance
// event, or polls the socket once (non-blocking) for a fresh push frame. A
// nil Attendance with a nil error means no event is available right now —
// it is not an error condition.
func (c *Client) NextLiveEvent(ctx context.Context) (*Attendance, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.capturing {
		return nil, newErr(KindUsage, "NextLiveEvent", 0, ErrNotCapturing)
	}

	if len(c.eventQ) > 0 {
		ev := c.eventQ[0]
		c.eventQ = c.eventQ[1:]
		return ev, nil
	}

	raw, _, err := c.tr.recv(1032)
	if err != nil {
		if isTimeout(err) {
			return nil, nil
		}
		return nil, err
	}

	hdr, err := parseFrameHeader(raw)
	if err != nil {
		return nil, nil
	}
	if hdr.Code != CMD_REG_EVENT {
		return nil, nil
	}

	c.ackEvent(hdr)
	c.eventBuf = append(c.eventBuf, raw[8:]...)
	c.drainEventBuffer()

	if len(c.eventQ) == 0 {
		return nil, nil
	}
	ev := c.eventQ[0]
	c.eventQ = c.eventQ[1:]
	return ev, nil
}

// knownEventFrameSizes lists the event-frame lengths this device family is
// known to emit, longest first. A device picks one layout and emits it for
// the life of a capture session; it never mixes layouts within one stream.
var knownEventFrameSizes = []int{52, 37, 36, 32, 14, 12, 10}

// detectEventFrameSize picks the frame size a buffer of length remaining is
// using: an exact match wins outright (it can only be one frame), otherwise
// the first known size that divides remaining evenly is assumed to repeat
// for the whole buffer. Returns 0 if nothing fits, which means the caller
// should wait for more bytes.
func detectEventFrameSize(remaining int) int {
	for _, size := range knownEventFrameSizes {
		if remaining == size {
			return size
		}
	}
	for _, size := range knownEventFrameSizes {
		if remaining >= size && remaining%size == 0 {
			return size
		}
	}
	return 0
}

// drainEventBuffer parses as many complete event frames as c.eventBuf holds
// and appends them to c.eventQ, consuming their bytes. An unrecognized
// length stops the loop and leaves the remainder for the next read.
func (c *Client) drainEventBuffer() {
	for len(c.eventBuf) >= 10 {
		size := c.eventFrameSize
		if size == 0 {
			size = detectEventFrameSize(len(c.eventBuf))
			if size == 0 {
				return
			}
			c.eventFrameSize = size
		}
		if len(c.eventBuf) < size {
			return
		}

		var ev Attendance
		switch size {
		case 10:
			v := mustUnpack([]string{"H", "B", "B", "6s"}, c.eventBuf[:10])
			ev = c.decodeEventNumeric(v[0].(int), v[1].(int), v[2].(int), []byte(v[3].(string)))
		case 12:
			v := mustUnpack([]string{"I", "B", "B", "6s"}, c.eventBuf[:12])
			ev = c.decodeEventNumeric(v[0].(int), v[1].(int), v[2].(int), []byte(v[3].(string)))
		case 14:
			v := mustUnpack([]string{"H", "B", "B", "6s", "4s"}, c.eventBuf[:14])
			ev = c.decodeEventNumeric(v[0].(int), v[1].(int), v[2].(int), []byte(v[3].(string)))
		case 32:
			v := mustUnpack([]string{"24s", "B", "B", "6s"}, c.eventBuf[:32])
			ev = c.decodeEventString(v[0].(string), v[1].(int), v[2].(int), []byte(v[3].(string)))
		case 36:
			v := mustUnpack([]string{"24s", "B", "B", "6s", "4s"}, c.eventBuf[:36])
			ev = c.decodeEventString(v[0].(string), v[1].(int), v[2].(int), []byte(v[3].(string)))
		case 37:
			v := mustUnpack([]string{"24s", "B", "B", "6s", "5s"}, c.eventBuf[:37])
			ev = c.decodeEventString(v[0].(string), v[1].(int), v[2].(int), []byte(v[3].(string)))
		case 52:
			v := mustUnpack([]string{"24s", "B", "B", "6s", "20s"}, c.eventBuf[:52])
			ev = c.decodeEventString(v[0].(string), v[1].(int), v[2].(int), []byte(v[3].(string)))
		}

		ev.SensorID = 0
		c.eventQ = append(c.eventQ, &ev)
		c.eventBuf = c.eventBuf[size:]
	}
}

func (c *Client) decodeEventNumeric(uid, status, verify int, timeHex []byte) Attendance {
	return Attendance{
		UID:          uid,
		UserID:       strconv.Itoa(uid),
		Status:       status,
		VerifyMethod: verify,
		Timestamp:    decodeTimeHex(timeHex, c.loc),
	}
}

func (c *Client) decodeEventString(userIDRaw string, status, verify int, timeHex []byte) Attendance {
	userID := trimNull(userIDRaw)
	uid := 0
	for _, u := range c.users {
		if u.UserID == userID {
			uid = u.UID
			break
		}
	}
	return Attendance{
		UID:          uid,
		UserID:       userID,
		Status:       status,
		VerifyMethod: verify,
		Timestamp:    decodeTimeHex(timeHex, c.loc),
	}
}

// StopLiveCapture unregisters events, restores blocking socket mode, and
// clears captured state.
func (c *Client) StopLiveCapture(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.capturing {
		return newErr(KindUsage, "StopLiveCapture", 0, ErrNotCapturing)
	}

	if err := c.regEvent(ctx, 0); err != nil {
		c.log.Debugf("unregister events best-effort failed: %v", err)
	}
	if c.tr != nil {
		_ = c.tr.setBlocking()
	}

	c.capturing = false
	c.eventBuf = nil
	c.eventQ = nil
	c.eventFrameSize = 0
	return nil
}

// IsLiveCaptureActive reports whether a live-capture session is open.
func (c *Client) IsLiveCaptureActive() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.capturing
}
