package common

// Wipe overwrites the contents of the provided byte slice with zeros.
// Useful for removing passphrases and derived keys from memory after use.
//
// If the slice is nil, the function does nothing.
func Wipe(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
