package domain

import (
	"fmt"
	"testing"
	"time"
)

func TestNextNumberContinuesMonthSequence(t *testing.T) {
	may := time.Date(2024, time.May, 20, 10, 0, 0, 0, time.UTC)
	existing := make([]string, 0, 9)
	for i := 1; i <= 9; i++ {
		existing = append(existing, fmt.Sprintf("SQ-2405-%03d", i))
	}

	if got := NextNumber(may, existing); got != "SQ-2405-010" {
		t.Fatalf("expected SQ-2405-010, got %s", got)
	}
}

func TestNextNumberResetsForNewMonth(t *testing.T) {
	june := time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)
	existing := []string{"SQ-2405-001", "SQ-2405-009"}

	if got := NextNumber(june, existing); got != "SQ-2406-001" {
		t.Fatalf("expected SQ-2406-001, got %s", got)
	}
}

func TestNextNumberUsesNumericMaximum(t *testing.T) {
	now := time.Date(2024, time.May, 2, 0, 0, 0, 0, time.UTC)
	existing := []string{"SQ-2405-999", "SQ-2405-1000", "SQ-2405-abc", "SQ-2405-002"}

	if got := NextNumber(now, existing); got != "SQ-2405-1001" {
		t.Fatalf("expected SQ-2405-1001, got %s", got)
	}
}

func TestNextNumberIsStrictlyIncreasing(t *testing.T) {
	now := time.Date(2025, time.January, 15, 0, 0, 0, 0, time.UTC)
	var issued []string
	prev := ""
	for i := 0; i < 25; i++ {
		next := NextNumber(now, issued)
		if prev != "" && next <= prev {
			t.Fatalf("expected %s > %s", next, prev)
		}
		issued = append(issued, next)
		prev = next
	}
	if prev != "SQ-2501-025" {
		t.Fatalf("expected SQ-2501-025, got %s", prev)
	}
}
