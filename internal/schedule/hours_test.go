package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func dateOn(weekday time.Weekday) time.Time {
	// Week of January 11-17, 2026; the 11th is a Sunday.
	loc := Location(DefaultTimezone)
	return time.Date(2026, time.January, 11+int(weekday), 0, 0, 0, 0, loc)
}

func TestValidateSlot(t *testing.T) {
	tests := []struct {
		name       string
		hour       int
		day        time.Weekday
		wh         WorkHours
		valid      bool
		wantErr    string
		wantSugg   string
	}{
		{
			name: "entre semana dentro de horario", hour: 10, day: time.Tuesday,
			valid: true,
		},
		{
			name: "inicio exacto es valido", hour: 9, day: time.Monday,
			valid: true,
		},
		{
			name: "hora de cierre no es agendable", hour: 18, day: time.Monday,
			wantErr:  "La hora 18:00 está fuera del horario de atención",
			wantSugg: "Horario disponible: 9:00 AM a 6:00 PM",
		},
		{
			name: "antes de abrir", hour: 8, day: time.Wednesday,
			wantErr:  "La hora 8:00 está fuera del horario de atención",
			wantSugg: "Horario disponible: 9:00 AM a 6:00 PM",
		},
		{
			name: "sabado corta a las 14", hour: 15, day: time.Saturday,
			wantErr:  "La hora 15:00 está fuera del horario de atención los sábados",
			wantSugg: "Horario disponible los sábados: 9:00 AM a 2:00 PM",
		},
		{
			name: "sabado en la manana", hour: 10, day: time.Saturday,
			valid: true,
		},
		{
			name: "domingo", hour: 10, day: time.Sunday,
			wantErr:  "No trabajamos los domingos",
			wantSugg: "Días disponibles: lunes, martes, miércoles, jueves, viernes, sábado",
		},
		{
			name: "horario del vendedor manda", hour: 16, day: time.Tuesday,
			wh:      WorkHours{StartHour: 10, EndHour: 15},
			wantErr: "La hora 16:00 está fuera del horario de atención",
		},
		{
			name: "cierre al mediodia se muestra como PM", hour: 13, day: time.Tuesday,
			wh:       WorkHours{EndHour: 12},
			wantErr:  "La hora 13:00 está fuera del horario de atención",
			wantSugg: "Horario disponible: 9:00 AM a 12:00 PM",
		},
		{
			name: "sabado con cierre propio del vendedor", hour: 13, day: time.Saturday,
			wh:       WorkHours{SaturdayEndHour: 12},
			wantErr:  "La hora 13:00 está fuera del horario de atención los sábados",
			wantSugg: "Horario disponible los sábados: 9:00 AM a 12:00 PM",
		},
		{
			name: "dia no laboral del vendedor", hour: 10, day: time.Saturday,
			wh: WorkHours{WorkingDays: []time.Weekday{
				time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday,
			}},
			wantErr:  "Día no laboral",
			wantSugg: "Días disponibles: lunes, martes, miércoles, jueves, viernes",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ValidateSlot(tt.hour, dateOn(tt.day), tt.wh)
			assert.Equal(t, tt.valid, got.Valid)
			if tt.wantErr != "" {
				assert.Equal(t, tt.wantErr, got.Error)
			}
			if tt.wantSugg != "" {
				assert.Equal(t, tt.wantSugg, got.Suggestion)
			}
		})
	}
}

func TestParseCRMHour(t *testing.T) {
	assert.Equal(t, 9, ParseCRMHour("", 9))
	assert.Equal(t, 10, ParseCRMHour("10", 9))
	assert.Equal(t, 10, ParseCRMHour("10:30", 9))
	assert.Equal(t, 9, ParseCRMHour("mediodía", 9))
}

func TestParseCRMDays(t *testing.T) {
	assert.Equal(t, defaultWorkingDays(), ParseCRMDays(""))
	assert.Equal(t, []time.Weekday{time.Monday, time.Wednesday}, ParseCRMDays("1, 3"))
	assert.Equal(t, defaultWorkingDays(), ParseCRMDays("x,y"))
}
