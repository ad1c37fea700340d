package statement

import (
	"crypto/md5"
	"encoding/hex"
)

// Fingerprint is the dedup identity of a row: hex MD5 over the raw date,
// description and raw amount exactly as they appeared in the export.
//
// Two genuinely distinct purchases with the same date, description and
// amount share a fingerprint; the later one is treated as a duplicate.
func Fingerprint(rawDate, description, rawAmount string) string {
	sum := md5.Sum([]byte(rawDate + description + rawAmount))
	return hex.EncodeToString(sum[:])
}
