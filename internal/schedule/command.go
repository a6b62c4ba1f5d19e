package schedule

import (
	"regexp"
	"strings"
)

// WhatsApp commands arrive as free text typed on a phone, so parsing is
// forgiving: common misspellings are folded before matching and filler words
// ("a las", "para el") are stripped.

var typoFixes = []struct {
	re   *regexp.Regexp
	with string
}{
	{regexp.MustCompile(`(?i)mañnaa|mañaan|manana|mannana|mñana|ma[ñn]a+na`), "mañana"},
	{regexp.MustCompile(`(?i)lune?s?\b`), "lunes"},
	{regexp.MustCompile(`(?i)marte?s?\b`), "martes"},
	{regexp.MustCompile(`(?i)miercole?s?|miércole?s?`), "miercoles"},
	{regexp.MustCompile(`(?i)jueve?s?\b`), "jueves"},
	{regexp.MustCompile(`(?i)vierne?s?\b`), "viernes"},
	{regexp.MustCompile(`(?i)s[aá]bad?o?|sabádo?`), "sabado"},
	{regexp.MustCompile(`(?i)doming?o?\b`), "domingo"},
}

var fillerFixes = []struct {
	re   *regexp.Regexp
	with string
}{
	{regexp.MustCompile(`(?i)(?:^|\s+)a\s*(?:las?|kas?|l|k)\s+`), " "},
	{regexp.MustCompile(`(?i)(?:^|\s+)alas\s+`), " "},
	{regexp.MustCompile(`(?i)(?:^|\s+)(?:para\s+el|para|el)\s+`), " "},
	{regexp.MustCompile(`\s+`), " "},
}

// Normalize lowercases text, repairs common misspellings of day words and
// strips time filler ("a las 3" becomes "3").
func Normalize(input string) string {
	text := strings.ToLower(strings.TrimSpace(input))
	for _, f := range typoFixes {
		text = f.re.ReplaceAllString(text, f.with)
	}
	for _, f := range fillerFixes {
		text = f.re.ReplaceAllString(text, f.with)
	}
	return strings.TrimSpace(text)
}

// dayTokens is checked in order; "pasado mañana" must be tried before
// "mañana" so day-after-tomorrow does not collapse into tomorrow.
var dayTokens = []string{
	"pasado mañana", "pasado", "hoy", "mañana",
	"lunes", "martes", "miercoles", "jueves", "viernes", "sabado", "domingo",
}

func findDayToken(text string) (token string, index int) {
	for _, d := range dayTokens {
		if idx := strings.Index(text, d); idx != -1 {
			return d, idx
		}
	}
	return "", -1
}

// ClockTokens holds raw hour/minute/meridiem fragments before resolution.
type ClockTokens struct {
	Hour     string
	Minutes  string
	Meridiem string
}

var (
	clockColonMeridiemRe = regexp.MustCompile(`(?i)(\d{1,2}):(\d{2})\s*(am|pm)`)
	clockPackedRe        = regexp.MustCompile(`(?i)(\d{1,2})(\d{2})(am|pm)`)
	clockHourMeridiemRe  = regexp.MustCompile(`(?i)(\d{1,2})\s*(am|pm)`)
	clockColonRe         = regexp.MustCompile(`(\d{1,2}):(\d{2})([^\d]|$)`)
	clockBareRe          = regexp.MustCompile(`\b(\d{1,2})\b([^\d:]|$)`)
)

// ParseClock extracts a clock time from free text. Accepted shapes, tried in
// order: "9:45am", "945am" (packed), "9am", "9:45", bare "9". An empty
// Meridiem means the sender gave no am/pm and ResolveClock must decide.
func ParseClock(text string) (ClockTokens, bool) {
	t := strings.ToLower(text)

	if m := clockColonMeridiemRe.FindStringSubmatch(t); m != nil {
		return ClockTokens{Hour: m[1], Minutes: m[2], Meridiem: strings.ToLower(m[3])}, true
	}
	if m := clockPackedRe.FindStringSubmatch(t); m != nil {
		return ClockTokens{Hour: m[1], Minutes: m[2], Meridiem: strings.ToLower(m[3])}, true
	}
	if m := clockHourMeridiemRe.FindStringSubmatch(t); m != nil {
		return ClockTokens{Hour: m[1], Minutes: "00", Meridiem: strings.ToLower(m[2])}, true
	}
	if m := clockColonRe.FindStringSubmatch(t); m != nil {
		return ClockTokens{Hour: m[1], Minutes: m[2]}, true
	}
	if m := clockBareRe.FindStringSubmatch(t); m != nil {
		tok := ClockTokens{Hour: m[1], Minutes: "00"}
		after := strings.TrimSpace(t[strings.Index(t, m[1])+len(m[1]):])
		if strings.HasPrefix(after, "am") {
			tok.Meridiem = "am"
		} else if strings.HasPrefix(after, "pm") {
			tok.Meridiem = "pm"
		}
		return tok, true
	}
	return ClockTokens{}, false
}

// ScheduleParams are the pieces parsed out of an "agendar cita" command.
type ScheduleParams struct {
	LeadName string
	DayToken string
	Clock    ClockTokens
	HasClock bool
}

var schedulePrefixRe = regexp.MustCompile(`(?i)^agendar?\s+cita\s+(con\s+)?`)

// ParseScheduleParams parses "agendar cita con juan mañana 4pm". The lead
// name is everything between the command prefix and the day token.
func ParseScheduleParams(body string) ScheduleParams {
	text := schedulePrefixRe.ReplaceAllString(Normalize(body), "")
	text = strings.TrimSpace(text)

	var p ScheduleParams
	day, idx := findDayToken(text)
	if idx > 0 {
		p.LeadName = strings.TrimSpace(text[:idx])
	} else if day == "" {
		p.LeadName = nameBeforeDigits(text)
	}
	p.DayToken = day
	p.Clock, p.HasClock = ParseClock(text)
	return p
}

// nameBeforeDigits covers absolute dates ("juan 15 de enero 4pm") where no
// day word marks the end of the name.
func nameBeforeDigits(text string) string {
	if idx := strings.IndexAny(text, "0123456789"); idx > 0 {
		return strings.TrimSpace(text[:idx])
	}
	return ""
}

// RescheduleParams are the pieces parsed out of a "reagendar" command.
type RescheduleParams struct {
	LeadName string
	DayToken string
	Clock    ClockTokens
	HasClock bool
}

var reschedulePrefixRe = regexp.MustCompile(`(?i)^re\s?-?agendar?\s+(cita\s+)?((con|de)\s+)?`)

// ParseRescheduleParams parses "reagendar juan mañana 4pm" and the longer
// "reagendar cita de juan para el lunes a las 10am".
func ParseRescheduleParams(body string) RescheduleParams {
	text := reschedulePrefixRe.ReplaceAllString(Normalize(body), "")
	text = strings.TrimSpace(text)

	var p RescheduleParams
	day, idx := findDayToken(text)
	if idx > 0 {
		p.LeadName = strings.TrimSpace(text[:idx])
	} else if day == "" {
		p.LeadName = nameBeforeDigits(text)
	}
	p.DayToken = day
	p.Clock, p.HasClock = ParseClock(text)
	return p
}

var cancelRe = regexp.MustCompile(`cancelar\s+cita\s+(?:con|de)\s+([a-záéíóúñ\s]+)`)

// ParseCancelName extracts the lead name from "cancelar cita con <nombre>".
func ParseCancelName(body string) (string, bool) {
	m := cancelRe.FindStringSubmatch(strings.ToLower(strings.TrimSpace(body)))
	if m == nil {
		return "", false
	}
	name := strings.TrimSpace(m[1])
	if name == "" {
		return "", false
	}
	return name, true
}
