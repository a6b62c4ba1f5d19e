package schedule

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// DefaultTimezone is the civil calendar all "mañana"/"viernes" math resolves
// against. DST transitions (UTC-6 winter / UTC-5 summer) come from the tzdata
// rules, never from a fixed offset.
const DefaultTimezone = "America/Mexico_City"

// Location returns the *time.Location for a timezone string.
// Falls back to UTC if the timezone is invalid or empty.
func Location(timezone string) *time.Location {
	if timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

var weekdaysByToken = map[string]time.Weekday{
	"domingo":   time.Sunday,
	"lunes":     time.Monday,
	"martes":    time.Tuesday,
	"miercoles": time.Wednesday,
	"jueves":    time.Thursday,
	"viernes":   time.Friday,
	"sabado":    time.Saturday,
}

var monthsByName = map[string]time.Month{
	"enero": time.January, "febrero": time.February, "marzo": time.March,
	"abril": time.April, "mayo": time.May, "junio": time.June,
	"julio": time.July, "agosto": time.August, "septiembre": time.September,
	"octubre": time.October, "noviembre": time.November, "diciembre": time.December,
}

// WeekdayNamesES maps time.Weekday to the Spanish name used in user-facing text.
var WeekdayNamesES = map[time.Weekday]string{
	time.Sunday: "domingo", time.Monday: "lunes", time.Tuesday: "martes",
	time.Wednesday: "miércoles", time.Thursday: "jueves",
	time.Friday: "viernes", time.Saturday: "sábado",
}

var monthNamesES = []string{"enero", "febrero", "marzo", "abril", "mayo", "junio",
	"julio", "agosto", "septiembre", "octubre", "noviembre", "diciembre"}

// midnight truncates t to the start of its civil day, keeping the location.
func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// NextWeekday returns the next occurrence of w strictly after now's date.
// If today is w, it rolls forward a full week; a named weekday never means today.
func NextWeekday(now time.Time, w time.Weekday) time.Time {
	days := int(w) - int(now.Weekday())
	if days <= 0 {
		days += 7
	}
	return midnight(now).AddDate(0, 0, days)
}

// ParseRelativeDay resolves a relative day token ("hoy", "mañana", "pasado
// mañana", weekday names) to a calendar date in now's location. The token is
// expected to be pre-normalized (see Normalize). Returns false when the token
// is not a recognized day expression.
func ParseRelativeDay(token string, now time.Time) (time.Time, bool) {
	token = strings.TrimSpace(strings.ToLower(token))
	switch {
	case token == "hoy":
		return midnight(now), true
	case token == "pasado manana", token == "pasado mañana", token == "pasado":
		return midnight(now).AddDate(0, 0, 2), true
	case token == "manana", token == "mañana":
		return midnight(now).AddDate(0, 0, 1), true
	}
	if w, ok := weekdaysByToken[deaccent(token)]; ok {
		return NextWeekday(now, w), true
	}
	return time.Time{}, false
}

var (
	slashDateRe = regexp.MustCompile(`(\d{1,2})[/\-](\d{1,2})`)
	isoDateRe   = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
)

// ParseFreeformDate resolves free-text date expressions used by intent
// detection: relative/weekday tokens anywhere in the text, plus absolute forms
// "15 de enero", "enero 15" and "15/01". Absolute dates already past roll into
// next year.
func ParseFreeformDate(text string, now time.Time) (time.Time, bool) {
	lower := deaccent(strings.ToLower(text))

	if isoDateRe.MatchString(strings.TrimSpace(lower)) {
		d, err := time.ParseInLocation("2006-01-02", strings.TrimSpace(lower), now.Location())
		if err == nil {
			return d, true
		}
	}

	// Relative tokens take priority; "pasado manana" must win over "manana".
	switch {
	case strings.Contains(lower, "pasado manana"):
		return midnight(now).AddDate(0, 0, 2), true
	case strings.Contains(lower, "manana"):
		return midnight(now).AddDate(0, 0, 1), true
	case strings.Contains(lower, "hoy"):
		return midnight(now), true
	}
	for token, w := range weekdaysByToken {
		if strings.Contains(lower, token) {
			return NextWeekday(now, w), true
		}
	}

	// "15 de enero" / "enero 15"
	for name, month := range monthsByName {
		re := regexp.MustCompile(`(\d{1,2})\s*(?:de\s*)?` + name + `|` + name + `\s*(\d{1,2})`)
		m := re.FindStringSubmatch(lower)
		if m == nil {
			continue
		}
		dayStr := m[1]
		if dayStr == "" {
			dayStr = m[2]
		}
		day, err := strconv.Atoi(dayStr)
		if err != nil || day < 1 || day > 31 {
			continue
		}
		d := time.Date(now.Year(), month, day, 0, 0, 0, 0, now.Location())
		if d.Before(midnight(now)) {
			d = d.AddDate(1, 0, 0)
		}
		return d, true
	}

	// "15/01" / "15-01" (day/month)
	if m := slashDateRe.FindStringSubmatch(lower); m != nil {
		day, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		if day >= 1 && day <= 31 && month >= 1 && month <= 12 {
			d := time.Date(now.Year(), time.Month(month), day, 0, 0, 0, 0, now.Location())
			if d.Before(midnight(now)) {
				d = d.AddDate(1, 0, 0)
			}
			return d, true
		}
	}

	return time.Time{}, false
}

// ClockTime is a resolved 24-hour time of day.
type ClockTime struct {
	Hour   int
	Minute int
	// HeuristicUsed marks that no meridiem was given and the PM-assumption
	// heuristic decided; callers should count these so real-world accuracy of
	// the guess can be measured.
	HeuristicUsed bool
}

// String renders HH:MM:SS with seconds zeroed.
func (c ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d:00", c.Hour, c.Minute)
}

// ResolveClock converts parsed hour/minute/meridiem tokens to a 24-hour time.
// pm and hour<12 adds 12; am and hour==12 is midnight. Without a meridiem,
// hours 1..pmCutoff are assumed PM (pmCutoff 0 disables the assumption and the
// hour is taken as given).
func ResolveClock(hourToken, minuteToken, meridiem string, pmCutoff int) (ClockTime, error) {
	hour, err := strconv.Atoi(strings.TrimSpace(hourToken))
	if err != nil {
		return ClockTime{}, fmt.Errorf("schedule: invalid hour %q", hourToken)
	}
	if hour < 0 || hour > 23 {
		return ClockTime{}, fmt.Errorf("schedule: hour %d out of range", hour)
	}
	minute := 0
	if minuteToken != "" {
		minute, err = strconv.Atoi(minuteToken)
		if err != nil || minute < 0 || minute > 59 {
			return ClockTime{}, fmt.Errorf("schedule: invalid minutes %q", minuteToken)
		}
	}

	ct := ClockTime{Hour: hour, Minute: minute}
	switch strings.ToLower(strings.TrimSpace(meridiem)) {
	case "pm":
		if ct.Hour < 12 {
			ct.Hour += 12
		}
	case "am":
		if ct.Hour == 12 {
			ct.Hour = 0
		}
	case "":
		if pmCutoff > 0 && ct.Hour >= 1 && ct.Hour <= pmCutoff {
			ct.Hour += 12
			ct.HeuristicUsed = true
		}
	default:
		return ClockTime{}, fmt.Errorf("schedule: invalid meridiem %q", meridiem)
	}
	return ct, nil
}

// FormatDateES renders a date as "lunes 15 de enero" for WhatsApp replies.
func FormatDateES(d time.Time) string {
	return fmt.Sprintf("%s %d de %s", WeekdayNamesES[d.Weekday()], d.Day(), monthNamesES[int(d.Month())-1])
}

// FormatClock12 renders a 24-hour clock time as "3:00 PM".
func FormatClock12(hour, minute int) string {
	suffix := "AM"
	if hour >= 12 {
		suffix = "PM"
	}
	h := hour % 12
	if h == 0 {
		h = 12
	}
	return fmt.Sprintf("%d:%02d %s", h, minute, suffix)
}

// deaccent folds the accented letters that show up in Spanish day/month names.
func deaccent(s string) string {
	r := strings.NewReplacer("á", "a", "é", "e", "í", "i", "ó", "o", "ú", "u", "ü", "u", "ñ", "n")
	return r.Replace(s)
}
