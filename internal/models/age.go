package models

import "time"

// CalculateAge returns the number of whole years between dob and today.
// Only the calendar dates matter; the clock parts are ignored.
func CalculateAge(dob, today time.Time) int {
	age := today.Year() - dob.Year()
	if today.Month() < dob.Month() || (today.Month() == dob.Month() && today.Day() < dob.Day()) {
		age--
	}
	return age
}

// Date truncates t to midnight UTC of its calendar date
func Date(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// subtractYears moves a date back n years, mapping Feb 29 onto Feb 28
// when the target year has no leap day.
func subtractYears(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	y -= n
	if m == time.February && d == 29 && !isLeap(y) {
		d = 28
	}
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func isLeap(y int) bool {
	return y%4 == 0 && (y%100 != 0 || y%400 == 0)
}

// MinBirthDate is the earliest birth date a range resolves to. Ages beyond
// it are treated as unbounded.
var MinBirthDate = time.Date(1, time.January, 1, 0, 0, 0, 0, time.UTC)

// BirthDateRange converts an inclusive age range into the inclusive range of
// birth dates whose CalculateAge on today falls inside it. An inverted age
// range yields an inverted (empty) date range. Negative ages count as 0.
func BirthDateRange(minAge, maxAge int, today time.Time) (minDOB, maxDOB time.Time) {
	today = Date(today)
	if minAge < 0 {
		minAge = 0
	}

	// oldest is the age on today of someone born on MinBirthDate
	oldest := CalculateAge(MinBirthDate, today)
	if maxAge < minAge || minAge > oldest {
		return today.AddDate(0, 0, 1), today
	}

	if maxAge >= oldest {
		minDOB = MinBirthDate
	} else {
		minDOB = subtractYears(today, maxAge+1).AddDate(0, 0, 1)
	}
	maxDOB = subtractYears(today, minAge)
	return minDOB, maxDOB
}
