package zkterm

import (
	"context"
	"encoding/binary"
	"fmt"
	"strconv"

	iconv "github.com/djimenez/iconv-go"
)

// GetUsers fetches the full user table. The wire packet format — 28 bytes
// or 72 bytes per record — is discovered at runtime by dividing the
// reported payload size by the user count; it is not a protocol constant.
func (c *Client) GetUsers(ctx context.Context) ([]User, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	sizes, err := c.readSizesLocked(ctx)
	if err != nil {
		return nil, err
	}

	data, err := c.readWithBuffer(ctx, CMD_USERTEMP_RRQ, FCT_USER, 0)
	if err != nil {
		return nil, err
	}
	if len(data) <= 4 || sizes.UsedUsers == 0 {
		return nil, nil
	}

	// The buffered dataset carries its own 4-byte size field plus a further
	// 16 bytes of device-specific header before the actual user records
	// start; neither is a protocol constant, both are discovered here the
	// same way the original client discovered them empirically.
	const headerSkip = 20
	recordSize := 0
	if len(data) > headerSkip {
		recordSize = (len(data) - headerSkip) / sizes.UsedUsers
	}
	if recordSize != 28 && recordSize != 72 {
		c.log.Debugf("unexpected user record size %d, proceeding with best-effort 28-byte layout", recordSize)
		recordSize = 28
	}
	if len(data) > headerSkip {
		data = data[headerSkip:]
	} else {
		data = nil
	}
	c.recordSizeUser = recordSize

	users := make([]User, 0, sizes.UsedUsers)
	maxUID := 0
	for len(data) >= recordSize {
		rec := data[:recordSize]
		u := c.decodeUser(rec, recordSize)
		if u.Name == "" {
			u.Name = fmt.Sprintf("NN-%s", u.UserID)
		}
		if u.UID > maxUID {
			maxUID = u.UID
		}
		users = append(users, u)
		data = data[recordSize:]
	}

	c.users = users
	return users, nil
}

func (c *Client) decodeUser(rec []byte, recordSize int) User {
	var u User
	u.UID = int(binary.LittleEndian.Uint16(rec[0:2]))
	u.Privilege = int(rec[2])

	if recordSize == 72 {
		u.Password = trimNull(string(rec[3:11]))
		u.Name = c.transcode(trimNull(string(rec[11:35])))
		u.Card = binary.LittleEndian.Uint32(rec[35:39])
		u.GroupID = int(rec[39])
		u.UserID = trimNull(string(rec[48:72]))
	} else {
		u.Password = trimNull(string(rec[3:8]))
		u.Name = c.transcode(trimNull(string(rec[8:16])))
		u.Card = binary.LittleEndian.Uint32(rec[16:20])
		u.GroupID = int(rec[21])
		uid32 := binary.LittleEndian.Uint32(rec[24:28])
		u.UserID = strconv.FormatUint(uint64(uid32), 10)
	}
	return u
}

// transcode converts s from the client's configured source charset to
// UTF-8. A conversion failure returns s unchanged rather than failing the
// whole read — one mis-decoded name must not sink an entire user-list
// fetch.
func (c *Client) transcode(s string) string {
	if c.charset == "" {
		return s
	}
	out, err := iconv.ConvertString(s, c.charset, "utf-8")
	if err != nil {
		return s
	}
	return out
}

// nextUserID returns a user id not currently assigned to any known user,
// starting just above the highest numeric uid seen.
func (c *Client) nextUserID() string {
	max := 0
	for _, u := range c.users {
		if u.UID > max {
			max = u.UID
		}
	}
	candidate := max + 1
	taken := make(map[string]bool, len(c.users))
	for _, u := range c.users {
		taken[u.UserID] = true
	}
	for taken[strconv.Itoa(candidate)] {
		candidate++
	}
	return strconv.Itoa(candidate)
}

// encodeUser packs a User into the wire format, preferring the 72-byte
// layout the device most commonly uses unless a prior read on this session
// discovered 28-byte records.
func encodeUser(u User, recordSize int) []byte {
	if recordSize == 0 {
		recordSize = 72
	}

	rec := make([]byte, recordSize)
	binary.LittleEndian.PutUint16(rec[0:2], uint16(u.UID))
	rec[2] = byte(u.Privilege)

	if recordSize == 72 {
		copy(rec[3:11], []byte(u.Password))
		copy(rec[11:35], []byte(u.Name))
		binary.LittleEndian.PutUint32(rec[35:39], u.Card)
		rec[39] = byte(u.GroupID)
		copy(rec[48:72], []byte(u.UserID))
	} else {
		copy(rec[3:8], []byte(u.Password))
		copy(rec[8:16], []byte(u.Name))
		binary.LittleEndian.PutUint32(rec[16:20], u.Card)
		rec[21] = byte(u.GroupID)
		uid32, _ := strconv.ParseUint(u.UserID, 10, 32)
		binary.LittleEndian.PutUint32(rec[24:28], uint32(uid32))
	}
	return rec
}

// SetUser writes or updates one user record.
func (c *Client) SetUser(ctx context.Context, u User) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if u.UserID == "" {
		u.UserID = c.nextUserID()
	}

	payload := encodeUser(u, c.recordSizeUser)
	res, err := c.command(ctx, CMD_USER_WRQ, payload, 8)
	if err != nil {
		return err
	}
	if !res.Status && res.Code != 2007 {
		if mi, sizeErr := c.readSizesLocked(ctx); sizeErr == nil && mi.UserCap > 0 && mi.UsedUsers >= mi.UserCap {
			return newErr(KindSemantic, "SetUser", res.Code, ErrCapacityExhausted)
		}
		return newErr(KindProtocol, "SetUser", res.Code, nil)
	}
	return nil
}

// DeleteUser removes a user by uid.
func (c *Client) DeleteUser(ctx context.Context, uid int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	payload := make([]byte, 2)
	binary.LittleEndian.PutUint16(payload, uint16(uid))
	_, err := c.requireOK(ctx, "DeleteUser", CMD_DELETE_USER, payload)
	return err
}
