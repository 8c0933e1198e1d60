package zkterm

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTimeEncodeDecodeRoundTrip(t *testing.T) {
	cases := []time.Time{
		time.Date(2023, time.July, 4, 9, 15, 18, 0, time.UTC),
		time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2031, time.December, 31, 23, 59, 59, 0, time.UTC),
	}

	for _, want := range cases {
		got := decodeTime(encodeTime(want), time.UTC)
		assert.True(t, want.Equal(got), "want %v got %v", want, got)
	}
}

func TestDecodeTimeHexRejectsOutOfRange(t *testing.T) {
	got := decodeTimeHex([]byte{30, 13, 40, 0, 0, 0}, time.UTC)
	assert.Equal(t, time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC), got)
}

func TestDecodeTimeHexValid(t *testing.T) {
	got := decodeTimeHex([]byte{24, 6, 15, 10, 30, 45}, time.UTC)
	assert.Equal(t, time.Date(2024, time.June, 15, 10, 30, 45, 0, time.UTC), got)
}
