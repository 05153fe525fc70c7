package license

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// NewLicenseKey generates a time-seeded, human-shareable license key:
// LICENSE-<unix millis>-<9 uppercase hex chars>. The format is cosmetic;
// it only has to be unique enough to avoid operational confusion, not
// unguessable.
func NewLicenseKey(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))[:9]
	return fmt.Sprintf("LICENSE-%d-%s", now.UnixMilli(), suffix)
}
