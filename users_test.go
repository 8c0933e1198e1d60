package zkterm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUserRoundTrip28Byte(t *testing.T) {
	c := &Client{}
	want := User{UID: 7, Privilege: LEVEL_ADMIN, Password: "1234", Name: "Alice", Card: 555, GroupID: 3, UserID: "42"}

	rec := encodeUser(want, 28)
	got := c.decodeUser(rec, 28)

	assert.Equal(t, want, got)
}

func TestUserRoundTrip72Byte(t *testing.T) {
	c := &Client{}
	want := User{UID: 1324, Privilege: LEVEL_USER, Password: "", Name: "Siwapong Longworth", Card: 9876543, GroupID: 0, UserID: "1324"}

	rec := encodeUser(want, 72)
	got := c.decodeUser(rec, 72)

	assert.Equal(t, want, got)
}

func TestNextUserIDAvoidsExisting(t *testing.T) {
	c := &Client{users: []User{{UID: 1, UserID: "1"}, {UID: 2, UserID: "3"}}}
	next := c.nextUserID()
	assert.NotEqual(t, "1", next)
	assert.NotEqual(t, "3", next)
}

func TestDetectAttendanceLayoutCommonCase(t *testing.T) {
	skip, size := detectAttendanceLayout(20+40*10, 10)
	assert.Equal(t, 20, skip)
	assert.Equal(t, 40, size)
}
