package zkterm

import (
	"context"
	"encoding/binary"
	"time"
)

// EnableDevice re-enables a previously disabled device.
func (c *Client) EnableDevice(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, err := c.requireOK(ctx, "EnableDevice", CMD_ENABLEDEVICE, nil)
	if err == nil {
		c.disabled = false
	}
	return err
}

// DisableDevice disables the device (used to keep it quiet while writing).
func (c *Client) DisableDevice(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, err := c.requireOK(ctx, "DisableDevice", CMD_DISABLEDEVICE, nil)
	if err == nil {
		c.disabled = true
	}
	return err
}

// Restart reboots the device.
func (c *Client) Restart(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, err := c.requireOK(ctx, "Restart", CMD_RESTART, nil)
	return err
}

// Unlock pulses the door relay for the given duration.
func (c *Client) Unlock(ctx context.Context, seconds int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	payload := make([]byte, 4)
	binary.LittleEndian.PutUint32(payload, uint32(seconds*10))
	_, err := c.requireOK(ctx, "Unlock", CMD_UNLOCK, payload)
	return err
}

// GetLockState reports whether the door is currently reported locked.
func (c *Client) GetLockState(ctx context.Context) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	res, err := c.command(ctx, CMD_DOORSTATE_RRQ, nil, 1024)
	if err != nil {
		return false, err
	}
	if !res.Status {
		return false, newErr(KindProtocol, "GetLockState", res.Code, nil)
	}
	return len(res.Data) > 0 && res.Data[0] != 0, nil
}

// TestVoice plays one of the device's built-in prompt sounds by index.
func (c *Client) TestVoice(ctx context.Context, index int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	payload := make([]byte, 4)
	binary.LittleEndian.PutUint32(payload, uint32(index))
	_, err := c.requireOK(ctx, "TestVoice", CMD_TESTVOICE, payload)
	return err
}

// SetTime pushes the given wall-clock time to the device, encoded per the
// lossy device-epoch scheme in time.go.
func (c *Client) SetTime(ctx context.Context, t time.Time) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	payload := make([]byte, 4)
	binary.LittleEndian.PutUint32(payload, encodeTime(t))
	_, err := c.requireOK(ctx, "SetTime", CMD_SET_TIME, payload)
	return err
}
