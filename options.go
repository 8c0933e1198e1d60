package zkterm

import (
	"context"
	"encoding/binary"
	"fmt"
	"strings"
)

// getOption issues CMD_OPTIONS_RRQ for a single ASCII "key=value\0" option
// and returns the value part.
func (c *Client) getOption(ctx context.Context, key string) (string, error) {
	payload := append([]byte(key), 0)
	res, err := c.command(ctx, CMD_OPTIONS_RRQ, payload, 1024)
	if err != nil {
		return "", err
	}
	if !res.Status {
		return "", newErr(KindProtocol, "getOption", res.Code, nil)
	}

	s := trimNull(string(res.Data))
	if idx := strings.IndexByte(s, '='); idx >= 0 {
		return s[idx+1:], nil
	}
	return s, nil
}

// setOption issues CMD_OPTIONS_WRQ for a single "key=value\0" option.
func (c *Client) setOption(ctx context.Context, key, value string) error {
	payload := append([]byte(fmt.Sprintf("%s=%s", key, value)), 0)
	_, err := c.requireOK(ctx, "setOption", CMD_OPTIONS_WRQ, payload)
	return err
}

// getFirmwareVersion issues CMD_VERSION, a distinct wire command from the
// "~ZKFPVersion" option: the reply is a plain NUL-terminated string, not a
// "key=value" pair.
func (c *Client) getFirmwareVersion(ctx context.Context) (string, error) {
	res, err := c.command(ctx, CMD_VERSION, nil, 1024)
	if err != nil {
		return "", err
	}
	if !res.Status {
		return "", newErr(KindProtocol, "getFirmwareVersion", res.Code, nil)
	}
	return trimNull(string(res.Data)), nil
}

// GetDeviceInfo aggregates the individual option getters into one bag.
func (c *Client) GetDeviceInfo(ctx context.Context) (DeviceInfo, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var info DeviceInfo
	var err error

	if info.FirmwareVersion, err = c.getFirmwareVersion(ctx); err != nil {
		c.log.Debugf("get firmware version: %v", err)
	}
	if info.SerialNumber, err = c.getOption(ctx, "~SerialNumber"); err != nil {
		c.log.Debugf("get serial number: %v", err)
	}
	if info.Platform, err = c.getOption(ctx, "~Platform"); err != nil {
		c.log.Debugf("get platform: %v", err)
	}
	if info.DeviceName, err = c.getOption(ctx, "~DeviceName"); err != nil {
		c.log.Debugf("get device name: %v", err)
	}
	if info.MacAddress, err = c.getOption(ctx, "MAC"); err != nil {
		c.log.Debugf("get mac address: %v", err)
	}
	if info.FaceVersion, err = c.getOption(ctx, "ZKFaceVersion"); err != nil {
		c.log.Debugf("get face version: %v", err)
	}
	if info.FPVersion, err = c.getOption(ctx, "~ZKFPVersion"); err != nil {
		c.log.Debugf("get fp version: %v", err)
	}

	res, err := c.command(ctx, CMD_GET_TIME, nil, 1024)
	if err == nil && res.Status && len(res.Data) >= 4 {
		info.DeviceTime = decodeTime(binary.LittleEndian.Uint32(res.Data[0:4]), c.loc)
	}

	return info, nil
}

// SetDeviceName writes the device's display name via CMD_OPTIONS_WRQ.
func (c *Client) SetDeviceName(ctx context.Context, name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.setOption(ctx, "~DeviceName", name)
}

// readSizesLocked issues CMD_GET_FREE_SIZES and decodes the memory-info
// layout. Caller must hold c.mu.
func (c *Client) readSizesLocked(ctx context.Context) (MemoryInfo, error) {
	res, err := c.command(ctx, CMD_GET_FREE_SIZES, nil, 1024)
	if err != nil {
		return MemoryInfo{}, err
	}
	if !res.Status || len(res.Data) < 80 {
		return MemoryInfo{}, newErr(KindFraming, "readSizes", res.Code, nil)
	}

	f := func(i int) int { return int(binary.LittleEndian.Uint32(res.Data[i*4 : i*4+4])) }

	var mi MemoryInfo
	mi.UsedUsers = f(4)
	mi.UsedFingers = f(6)
	mi.UsedRecords = f(8)
	mi.Cards = f(12)
	if len(res.Data) >= 80 {
		mi.FingerCap = f(14)
		mi.UserCap = f(15)
		mi.RecordCap = f(16)
		mi.FingerAvail = f(17)
		mi.UserAvail = f(18)
		mi.RecordAvail = f(19)
	}
	if len(res.Data) >= 92 {
		f2 := func(i int) int { return int(binary.LittleEndian.Uint32(res.Data[80+i*4 : 80+i*4+4])) }
		mi.FaceUsed = f2(0)
		mi.FaceCap = f2(2)
		mi.FaceAvail = mi.FaceCap - mi.FaceUsed
		mi.HasFaceCounts = true
	}

	return mi, nil
}

// GetMemoryInfo is the exported form of readSizesLocked.
func (c *Client) GetMemoryInfo(ctx context.Context) (MemoryInfo, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.readSizesLocked(ctx)
}
