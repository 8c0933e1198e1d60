package zkterm

import (
	"encoding/hex"
	"fmt"
	"time"
)

// hexDump renders buf as a hex string for debug logging.
func hexDump(title string, buf []byte) string {
	return fmt.Sprintf("%s %q", title, hex.EncodeToString(buf))
}

// loadLocation resolves a timezone name, falling back to the local zone if
// the name is empty or unknown.
func loadLocation(timezone string) *time.Location {
	if timezone == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// mustUnpack unpacks fixed-width fields and panics on error; used only for
// decodes whose length has already been validated by the caller, mirroring
// the teacher's own helper of the same name.
func mustUnpack(pad []string, data []byte) []interface{} {
	value, err := newBP().UnPack(pad, data)
	if err != nil {
		panic(err)
	}
	return value
}

// trimNull truncates s at its first NUL byte (ASCII/Latin-1 device strings
// are NUL-padded to a fixed field width) and trims surrounding whitespace.
func trimNull(s string) string {
	for i := 0; i < len(s); i++ {
		if s[i] == 0 {
			s = s[:i]
			break
		}
	}
	for len(s) > 0 && (s[len(s)-1] == ' ' || s[len(s)-1] == '\t') {
		s = s[:len(s)-1]
	}
	for len(s) > 0 && (s[0] == ' ' || s[0] == '\t') {
		s = s[1:]
	}
	return s
}
