package zkterm

import (
	"context"
	"encoding/binary"
	"strconv"
	"time"
)

// GetAttendance fetches the full attendance log. Record layout (8, 16, or
// 40 bytes) is discovered the same way user records are: total payload size
// divided by the record count from CMD_GET_FREE_SIZES. Rows are linked back
// to a user by UserID when a user list was already fetched this session.
func (c *Client) GetAttendance(ctx context.Context) ([]Attendance, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	sizes, err := c.readSizesLocked(ctx)
	if err != nil {
		return nil, err
	}

	data, err := c.readWithBuffer(ctx, CMD_ATTLOG_RRQ, FCT_ATTLOG, 0)
	if err != nil {
		return nil, err
	}
	if len(data) < 4 || sizes.UsedRecords == 0 {
		return []Attendance{}, nil
	}

	headerSkip, recordSize := detectAttendanceLayout(len(data), sizes.UsedRecords)
	if len(data) > headerSkip {
		data = data[headerSkip:]
	} else {
		data = nil
	}

	byUserID := make(map[string]int, len(c.users))
	for _, u := range c.users {
		byUserID[u.UserID] = u.UID
	}

	var rows []Attendance
	switch recordSize {
	case 8:
		for len(data) >= 8 {
			rows = append(rows, decodeAttendance8(data[:8], c.loc))
			data = data[8:]
		}
	case 16:
		for len(data) >= 16 {
			rows = append(rows, decodeAttendance16(data[:16], byUserID, c.loc))
			data = data[16:]
		}
	case 40:
		for len(data) >= 40 {
			rows = append(rows, decodeAttendance40(data[:40], byUserID, c.loc))
			data = data[40:]
		}
	default:
		return nil, newErr(KindSemantic, "GetAttendance", 0, nil)
	}

	return rows, nil
}

// decodeAttendance8 decodes the 8-byte record layout: 2-byte little-endian
// uid, 1-byte status, 4-byte packed timestamp, 1-byte verify method. This
// layout carries no string user id, so UserID is just the uid rendered as
// decimal.
func decodeAttendance8(rec []byte, loc *time.Location) Attendance {
	uid := int(binary.LittleEndian.Uint16(rec[0:2]))
	status := int(rec[2])
	ts := decodeTime(binary.LittleEndian.Uint32(rec[3:7]), loc)
	verify := int(rec[7])
	return Attendance{UID: uid, UserID: strconv.Itoa(uid), Timestamp: ts, Status: status, VerifyMethod: verify}
}

// decodeAttendance16 decodes the 16-byte record layout: 9-byte NUL-padded
// user id string, 1-byte status, 4-byte packed timestamp, 2 bytes unused.
// uid is looked up by user id since this layout doesn't carry it directly.
func decodeAttendance16(rec []byte, byUserID map[string]int, loc *time.Location) Attendance {
	userID := trimNull(string(rec[0:9]))
	status := int(rec[9])
	ts := decodeTime(binary.LittleEndian.Uint32(rec[10:14]), loc)
	return Attendance{UserID: userID, UID: byUserID[userID], Timestamp: ts, Status: status}
}

// decodeAttendance40 decodes the 40-byte record layout: 2 bytes unused,
// 24-byte NUL-padded user id string, 1-byte status, 4-byte packed
// timestamp, 1-byte verify method, 8 bytes unused.
func decodeAttendance40(rec []byte, byUserID map[string]int, loc *time.Location) Attendance {
	v := mustUnpack([]string{"H", "24s", "B", "4s", "B", "8s"}, rec)
	userID := trimNull(v[1].(string))
	status := v[2].(int)
	tsBytes := []byte(v[3].(string))
	ts := decodeTime(binary.LittleEndian.Uint32(tsBytes), loc)
	verify := v[4].(int)
	return Attendance{UID: byUserID[userID], UserID: userID, Timestamp: ts, Status: status, VerifyMethod: verify}
}

// detectAttendanceLayout picks a header-skip/record-size pair for a
// buffered attendance dataset. The 20-byte skip (4-byte size field + 16
// bytes of device-specific header) is the common case; when that doesn't
// divide evenly into one of the known record sizes, a handful of nearby
// skip values are tried, matching the auto-detection heuristic the
// original client uses for devices that omit or pad that header
// differently.
func detectAttendanceLayout(dataLen, records int) (headerSkip, recordSize int) {
	const defaultSkip = 20
	if dataLen > defaultSkip {
		if rs := (dataLen - defaultSkip) / records; rs == 8 || rs == 16 || rs == 40 {
			return defaultSkip, rs
		}
	}
	for skip := 4; skip <= 30; skip++ {
		if dataLen <= skip {
			continue
		}
		if rs := (dataLen - skip) / records; rs == 8 || rs == 16 || rs == 40 {
			return skip, rs
		}
	}
	return defaultSkip, 0
}

// ClearAttendance wipes the device's attendance log.
func (c *Client) ClearAttendance(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, err := c.requireOK(ctx, "ClearAttendance", CMD_CLEAR_ATTLOG, nil)
	return err
}
