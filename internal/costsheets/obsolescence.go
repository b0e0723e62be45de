package costsheets

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rashidkhoury/fleetquote-backend/pkg/db/models"
)

// LineFingerprint hashes the cost-relevant fields of a quote's vehicle lines.
// Two line sets produce the same fingerprint iff a cost sheet computed for
// one is still valid for the other. Header-only quote edits never change it.
func LineFingerprint(lines []models.VehicleLine) string {
	sorted := make([]models.VehicleLine, len(lines))
	copy(sorted, lines)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].LineNo < sorted[j].LineNo })

	var b strings.Builder
	fmt.Fprintf(&b, "n=%d", len(sorted))
	for _, line := range sorted {
		fmt.Fprintf(&b, "|%d:%s:%s:%s:%s:%s",
			line.LineNo,
			line.VehicleRef,
			formatTime(line.PickupAt),
			formatTime(line.ReturnAt),
			line.Rate.String(),
			line.RateType,
		)
	}

	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}

func formatTime(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.UTC().Format(time.RFC3339)
}
