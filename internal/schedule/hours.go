package schedule

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// WorkHours describes a vendor's bookable window. Zero-value fields fall back
// to branch defaults at validation time, so rows with NULL CRM columns still
// validate.
type WorkHours struct {
	StartHour       int
	EndHour         int
	SaturdayEndHour int
	WorkingDays     []time.Weekday
}

// Branch-wide defaults when the vendor row carries no schedule.
const (
	DefaultStartHour       = 9
	DefaultEndHour         = 18
	DefaultSaturdayEndHour = 14
)

func defaultWorkingDays() []time.Weekday {
	return []time.Weekday{time.Monday, time.Tuesday, time.Wednesday,
		time.Thursday, time.Friday, time.Saturday}
}

// ParseCRMHour reads a CRM hour column that may hold "9", "9:00" or be empty.
func ParseCRMHour(value string, fallback int) int {
	if value == "" {
		return fallback
	}
	head := strings.SplitN(value, ":", 2)[0]
	h, err := strconv.Atoi(strings.TrimSpace(head))
	if err != nil {
		return fallback
	}
	return h
}

// ParseCRMDays reads a comma-separated working-days column ("1,2,3,4,5,6",
// 0=Sunday). Empty or garbage input means Monday through Saturday.
func ParseCRMDays(value string) []time.Weekday {
	if value == "" {
		return defaultWorkingDays()
	}
	var days []time.Weekday
	for _, part := range strings.Split(value, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || n < 0 || n > 6 {
			continue
		}
		days = append(days, time.Weekday(n))
	}
	if len(days) == 0 {
		return defaultWorkingDays()
	}
	return days
}

// SlotCheck is the outcome of validating a requested slot, with user-facing
// Spanish text ready for the WhatsApp reply.
type SlotCheck struct {
	Valid      bool
	Error      string
	Suggestion string
}

// ValidateSlot checks hour (24h) on date against the vendor's work hours.
// Saturdays cap the end hour at SaturdayEndHour regardless of the vendor's
// weekday end. The end hour itself is not bookable.
func ValidateSlot(hour int, date time.Time, wh WorkHours) SlotCheck {
	start := wh.StartHour
	if start == 0 {
		start = DefaultStartHour
	}
	end := wh.EndHour
	if end == 0 {
		end = DefaultEndHour
	}
	satEnd := wh.SaturdayEndHour
	if satEnd == 0 {
		satEnd = DefaultSaturdayEndHour
	}
	days := wh.WorkingDays
	if len(days) == 0 {
		days = defaultWorkingDays()
	}

	day := date.Weekday()
	isSaturday := day == time.Saturday
	if isSaturday {
		end = satEnd
	}

	working := false
	for _, d := range days {
		if d == day {
			working = true
			break
		}
	}
	if !working {
		names := make([]string, 0, len(days))
		for _, d := range days {
			names = append(names, WeekdayNamesES[d])
		}
		msg := "Día no laboral"
		if day == time.Sunday {
			msg = "No trabajamos los domingos"
		}
		return SlotCheck{
			Error:      msg,
			Suggestion: "Días disponibles: " + strings.Join(names, ", "),
		}
	}

	if hour < start || hour >= end {
		endText := FormatClock12(end, 0)
		dayText := ""
		if isSaturday {
			dayText = " los sábados"
		}
		return SlotCheck{
			Error:      fmt.Sprintf("La hora %d:00 está fuera del horario de atención%s", hour, dayText),
			Suggestion: fmt.Sprintf("Horario disponible%s: %d:00 AM a %s", dayText, start, endText),
		}
	}

	return SlotCheck{Valid: true}
}
