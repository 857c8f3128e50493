package booking

import (
	"sort"
	"time"

	"github.com/iliyamo/hotel-reservation/internal/model"
)

// DateFormat is the wire format for check-in/check-out dates.  The
// engine works at date-only granularity; times of day never matter.
const DateFormat = "2006-01-02"

// DateOnly truncates t to midnight UTC.  All dates entering the
// engine pass through this so that comparisons are exact.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Nights returns the number of calendar nights between check-in and
// check-out.  A valid stay has at least one night.
func Nights(checkIn, checkOut time.Time) int {
	return int(DateOnly(checkOut).Sub(DateOnly(checkIn)).Hours() / 24)
}

// Overlaps reports whether the half-open ranges [aStart, aEnd) and
// [bStart, bEnd) intersect.  Touching ranges do not overlap, so the
// check-out day of one booking may be the check-in day of the next.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}

// overlapping filters bookings whose [CheckIn, CheckOut) intersects
// [start, end), skipping the booking with excludeID (used by extend
// and date updates to ignore the booking being changed).
func overlapping(bookings []model.Booking, start, end time.Time, excludeID uint64) []model.Booking {
	var out []model.Booking
	for _, b := range bookings {
		if excludeID != 0 && b.ID == excludeID {
			continue
		}
		if Overlaps(start, end, b.CheckIn, b.CheckOut) {
			out = append(out, b)
		}
	}
	return out
}

// DateRange is a half-open occupied interval returned by the
// booked-dates query for calendar rendering.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// MergeRanges sorts the given ranges and coalesces overlapping or
// touching ones into a minimal occupied set.  [Jan 1, Jan 5) and
// [Jan 5, Jan 8) merge into [Jan 1, Jan 8): a calendar cannot fit a
// stay between them anyway.
func MergeRanges(ranges []DateRange) []DateRange {
	if len(ranges) == 0 {
		return []DateRange{}
	}
	sorted := make([]DateRange, len(ranges))
	copy(sorted, ranges)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Start.Before(sorted[j].Start) })

	merged := []DateRange{sorted[0]}
	for _, r := range sorted[1:] {
		last := &merged[len(merged)-1]
		if !r.Start.After(last.End) {
			if r.End.After(last.End) {
				last.End = r.End
			}
			continue
		}
		merged = append(merged, r)
	}
	return merged
}
