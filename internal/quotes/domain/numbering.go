package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// NumberPrefix returns the month scope of quote numbers, e.g. "SQ-2405-".
func NumberPrefix(now time.Time) string {
	return fmt.Sprintf("SQ-%02d%02d-", now.Year()%100, int(now.Month()))
}

// NextNumber returns the next SQ-YYMM-NNN number for the month of now.
// Numbers outside that month or with a non-numeric suffix are ignored.
func NextNumber(now time.Time, existing []string) string {
	prefix := NumberPrefix(now)
	maxSeq := 0
	for _, number := range existing {
		suffix, ok := strings.CutPrefix(number, prefix)
		if !ok {
			continue
		}
		seq, err := strconv.Atoi(suffix)
		if err != nil || seq < 0 {
			continue
		}
		if seq > maxSeq {
			maxSeq = seq
		}
	}
	return fmt.Sprintf("%s%03d", prefix, maxSeq+1)
}
