package rescuefat

import (
	"time"
)

// ParseDate decodes a FAT directory date stamp, a 16 bit field relative to
// the MS-DOS epoch of 01/01/1980:
//
//	Bits 0-4:  day of month, 1-31
//	Bits 5-8:  month of year, 1-12
//	Bits 9-15: years since 1980, 0-127
//
// A day or month of 0 does not encode a valid date; in that case the zero
// time.Time is returned so callers can use time.Time.IsZero.
func ParseDate(input uint16) time.Time {
	day := input & 0x1F
	month := input & 0x1E0 >> 5
	year := input & 0xFE00 >> 9

	if day == 0 || month == 0 {
		return time.Time{}
	}

	return time.Date(1980+int(year), time.Month(month), int(day), 0, 0, 0, 0, time.UTC)
}

// ParseTime decodes a FAT directory time stamp, a 16 bit field with a
// granularity of two seconds:
//
//	Bits 0-4:   two-second count, 0-29
//	Bits 5-10:  minutes, 0-59
//	Bits 11-15: hours, 0-23
//
// The result always carries the date January 1, year 1, so midnight maps to
// the zero time.Time. Out-of-range values are clamped to 23:59:59.
func ParseTime(input uint16) time.Time {
	seconds := int(input&0x1F) * 2
	minutes := input & 0x7E0 >> 5
	hours := input & 0xF800 >> 11

	result := time.Date(1, 1, 1, int(hours), int(minutes), seconds, 0, time.UTC)

	// Overflowing values would spill into the next day.
	if result.Day() > 1 {
		return time.Date(1, 1, 1, 23, 59, 59, 0, time.UTC)
	}

	return result
}
