package games

import "time"

// Classify derives the game type from the calendar date and week number.
// Upstream schedule feeds occasionally mis-tag August exhibition games as
// playoffs and January playoff rounds as regular season; classification runs
// once at ingestion time and the result is stored, never re-derived ad hoc.
//
// Schedule patterns this encodes:
//   - August (and early September with week <= 0) is preseason.
//   - Weeks 1-18 are regular season.
//   - Weekless January dates fall into playoff rounds by day range; a
//     weekless February 8-15 date is the Super Bowl.
//   - Early January with a week number is the tail of the regular season.
func Classify(date time.Time, week *int) Type {
	month := date.Month()
	day := date.Day()

	if month == time.August {
		return Preseason
	}
	if month == time.September && day <= 10 && (week == nil || *week <= 0) {
		return Preseason
	}

	if week != nil && *week >= 1 && *week <= 18 {
		return Regular
	}

	if week == nil {
		switch month {
		case time.January:
			switch {
			case day >= 13 && day <= 16:
				return Wildcard
			case day >= 20 && day <= 22:
				return Divisional
			case day >= 28 && day <= 31:
				return Conference
			}
		case time.February:
			if day >= 8 && day <= 15 {
				return SuperBowl
			}
		}
	}

	if month >= time.September && month <= time.December {
		return Regular
	}
	if month == time.January && day <= 8 {
		return Regular
	}

	return Regular
}
