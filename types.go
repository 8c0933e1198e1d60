package zkterm

import (
	"fmt"
	"time"
)

// Response is the classified result of a single command/reply exchange.
type Response struct {
	Status    bool
	Code      int
	TCPLength int
	SessionID int
	ReplyID   int
	Data      []byte
}

func (r Response) String() string {
	return fmt.Sprintf("Status %v Code %d", r.Status, r.Code)
}

// User mirrors one record of the device's user table.
type User struct {
	UID       int
	UserID    string
	Name      string
	Privilege int
	Password  string
	GroupID   int
	Card      uint32
}

// Attendance is one row of the device's attendance log, or one live-capture
// event once decoded.
type Attendance struct {
	UID          int
	UserID       string
	Timestamp    time.Time
	Status       int
	VerifyMethod int
	SensorID     int
}

// Template is a single fingerprint template record.
type Template struct {
	UID   int
	Index int
	Valid bool
	Data  []byte
}

// DeviceInfo aggregates the option-string getters behind one call.
type DeviceInfo struct {
	FirmwareVersion string
	SerialNumber    string
	Platform        string
	DeviceName      string
	MacAddress      string
	FaceVersion     string
	FPVersion       string
	DeviceTime      time.Time
}

// MemoryInfo reports device capacity and usage, decoded from
// CMD_GET_FREE_SIZES.
type MemoryInfo struct {
	UsedUsers      int
	UsedFingers    int
	UsedRecords    int
	Cards          int
	FingerCap      int
	UserCap        int
	RecordCap      int
	FingerAvail    int
	UserAvail      int
	RecordAvail    int
	FaceUsed       int
	FaceCap        int
	FaceAvail      int
	HasFaceCounts  bool
}
