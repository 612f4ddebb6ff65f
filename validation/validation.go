package validation

import (
	"fmt"
	"time"
)

type Violations map[string]string

func (v Violations) Empty() bool { return len(v) == 0 }

// ChronologicalDates checks that a sequence of optional stage dates is in
// strictly non-decreasing order. A violation names the two offending stages
// so the settings UI can point at both fields; nil dates are skipped.
func ChronologicalDates(fields []string, dates []*time.Time, v Violations) {
	lastIdx := -1
	for i, d := range dates {
		if d == nil {
			continue
		}
		if lastIdx >= 0 && d.Before(*dates[lastIdx]) {
			v[fields[i]] = fmt.Sprintf("must_be_after_%s", fields[lastIdx])
		}
		lastIdx = i
	}
}
