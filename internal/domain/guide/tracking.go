package guide

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DefaultTrackingPrefix prefijo del número de guía.
const DefaultTrackingPrefix = "GU"

// NewTrackingNumber genera PREFIJO-AAAAMMDD-XXXXXXXX (8 hex en mayúsculas).
// La unicidad final la garantiza el índice único de persistencia.
func NewTrackingNumber(prefix string, at time.Time) string {
	if prefix == "" {
		prefix = DefaultTrackingPrefix
	}
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:8])
	return fmt.Sprintf("%s-%s-%s", prefix, at.Format("20060102"), suffix)
}
