package zkterm

import (
	"context"
	"encoding/binary"
)

// GetTemplates fetches every fingerprint template on the device. Unlike
// users and attendance, template records are self-delimiting: the first
// 16-bit word of each record is the record's own total length (including
// its 6-byte header), so no record-size discovery step is needed.
func (c *Client) GetTemplates(ctx context.Context) ([]Template, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	data, err := c.readWithBuffer(ctx, CMD_USERTEMP_RRQ, FCT_FINGERTMP, 0)
	if err != nil {
		return nil, err
	}
	if len(data) < 4 {
		return nil, nil
	}

	// As with users and attendance, the buffered dataset carries a 20-byte
	// header before the self-delimiting template records; a device that
	// omits the extra 16 bytes falls back to a plain 4-byte size skip.
	headerSkip := 20
	if len(data) < headerSkip+6 {
		headerSkip = 4
	}
	if len(data) <= headerSkip {
		return nil, nil
	}
	data = data[headerSkip:]

	var out []Template
	for len(data) >= 6 {
		size := int(binary.LittleEndian.Uint16(data[0:2]))
		if size < 6 || size > len(data) {
			break
		}
		rec := data[:size]
		uid := int(binary.LittleEndian.Uint16(rec[2:4]))
		fid := int(rec[4])
		valid := rec[5] != 0
		blob := append([]byte{}, rec[6:]...)

		out = append(out, Template{UID: uid, Index: fid, Valid: valid, Data: blob})
		data = data[size:]
	}
	return out, nil
}

// GetUserTemplate fetches a single finger template for uid/fingerIndex,
// retrying up to three times as the original implementation does, and
// stripping the trailing 6 zero-padding bytes the device appends.
func (c *Client) GetUserTemplate(ctx context.Context, uid, fingerIndex int) (Template, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	payload := make([]byte, 3)
	binary.LittleEndian.PutUint16(payload[0:2], uint16(uid))
	payload[2] = byte(fingerIndex)

	var lastErr error
	for attempt := 0; attempt < 3; attempt++ {
		res, err := c.command(ctx, CMD_USERTEMP_RRQ, payload, 1024)
		if err != nil {
			lastErr = err
			continue
		}
		if !res.Status {
			// The device answered definitively: no template at this
			// uid/finger-index. Retrying won't change that.
			return Template{}, newErr(KindSemantic, "GetUserTemplate", res.Code, ErrNotFound)
		}
		if len(res.Data) < 6 {
			lastErr = newErr(KindProtocol, "GetUserTemplate", res.Code, nil)
			continue
		}

		blob := res.Data[6:]
		if len(blob) >= 6 {
			blob = blob[:len(blob)-6]
		}
		return Template{UID: uid, Index: fingerIndex, Valid: true, Data: blob}, nil
	}

	return Template{}, newErr(KindUsage, "GetUserTemplate", 0, lastErr)
}

// DeleteUserTemplate removes one finger template. Over TCP the device
// accepts a user-id keyed delete (CMD_DEL_USER_TEMP); elsewhere the uid
// keyed form (CMD_DELETE_USERTEMP) is used.
func (c *Client) DeleteUserTemplate(ctx context.Context, uid int, userID string, fingerIndex int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.tr != nil && c.tr.isTCP && userID != "" {
		payload := make([]byte, 25)
		copy(payload[0:24], []byte(userID))
		payload[24] = byte(fingerIndex)
		_, err := c.requireOK(ctx, "DeleteUserTemplate", CMD_DEL_USER_TEMP, payload)
		return err
	}

	payload := make([]byte, 3)
	binary.LittleEndian.PutUint16(payload[0:2], uint16(uid))
	payload[2] = byte(fingerIndex)
	_, err := c.requireOK(ctx, "DeleteUserTemplate", CMD_DELETE_USERTEMP, payload)
	return err
}
