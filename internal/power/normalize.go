package power

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrIncomplete is returned by Normalize when a required field is absent.
var ErrIncomplete = errors.New("incomplete fields")

// Normalize builds the canonical record for region from the extracted fields.
// It returns ErrIncomplete (wrapped with the missing field names) unless all
// three fields are present.
func Normalize(region Region, url string, runDate time.Time, f ExtractedFields) (RegionRecord, error) {
	if missing := f.Missing(); len(missing) > 0 {
		return RegionRecord{}, fmt.Errorf("%w: missing %s", ErrIncomplete, strings.Join(missing, ", "))
	}

	return RegionRecord{
		URL:                url,
		Key:                region.Slug(),
		KeyName:            SourceKeyName,
		TimeBlock:          f.TimeBlock,
		Date:               runDate.Format(DateLayout),
		IsManual:           1,
		DemandMetYesterday: f.DemandMetYesterday,
		DemandMetCurrent:   f.DemandMetCurrent,
	}, nil
}
