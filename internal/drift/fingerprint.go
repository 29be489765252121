package drift

import (
	"encoding/hex"
	"strconv"

	"github.com/zeebo/blake3"
)

// Fingerprint returns a stable identity for a finding across runs. Ids are
// only unique within one report; the fingerprint depends on what was found
// and where, not on detection order.
func Fingerprint(f Finding) string {
	h := blake3.New()
	for _, part := range []string{string(f.Category), f.File, strconv.Itoa(f.Line), f.Message} {
		_, _ = h.Write([]byte(part))
		_, _ = h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))[:16]
}
