package zkterm

import (
	binarypack "github.com/canhlinh/go-binary-pack"
)

func newBP() *binarypack.BinaryPack {
	return &binarypack.BinaryPack{}
}

// checksum computes the terminal's 16-bit ones-complement checksum over p.
// This is NOT a textbook Internet checksum: the end-around carry subtracts
// 0xFFFF (USHRT_MAX), not 0x10000, whenever the running sum overflows a
// 16-bit word. Reproducing the carry with the standard 0x10000 step yields a
// checksum the device rejects.
func checksum(p []byte) (int, error) {
	sum := 0
	i := 0
	n := len(p)

	for n > 1 {
		word, err := newBP().UnPack([]string{"H"}, p[i:i+2])
		if err != nil {
			return 0, err
		}
		sum += word[0].(int)
		i += 2
		n -= 2
		if sum > USHRT_MAX {
			sum -= USHRT_MAX
		}
	}

	if n > 0 {
		sum += int(p[i])
	}

	for sum > USHRT_MAX {
		sum -= USHRT_MAX
	}

	sum = ^sum
	for sum < 0 {
		sum += USHRT_MAX
	}

	return sum & USHRT_MAX, nil
}
