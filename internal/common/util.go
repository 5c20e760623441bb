package common

// WipeByteArray zeroes the buffer in place. Callers use it to drop password
// bytes as soon as they are no longer needed.
func WipeByteArray(b []byte) {
	if b == nil {
		return
	}
	for i := range b {
		b[i] = 0
	}
}
