package schedule

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"MAÑANA", "mañana"},
		{"manana", "mañana"},
		{"mañnaa", "mañana"},
		{"el lunes a las 4", "lunes 4"},
		{"para el martes alas 10", "martes 10"},
		{"miércoles a kas 3", "miercoles 3"},
		{"sabádo", "sabado"},
		{"juan   viernes    5pm", "juan viernes 5pm"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}

func TestParseClock(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want ClockTokens
		ok   bool
	}{
		{"colon y meridiano", "juan 9:45am", ClockTokens{"9", "45", "am"}, true},
		{"colon espacio meridiano", "10:30 pm", ClockTokens{"10", "30", "pm"}, true},
		{"pegado", "945am", ClockTokens{"9", "45", "am"}, true},
		{"pegado cuatro digitos", "1030pm", ClockTokens{"10", "30", "pm"}, true},
		{"hora y meridiano", "3pm", ClockTokens{"3", "00", "pm"}, true},
		{"hora espacio meridiano", "10 pm", ClockTokens{"10", "00", "pm"}, true},
		{"colon sin meridiano", "15:30", ClockTokens{"15", "30", ""}, true},
		{"solo numero", "mañana 9", ClockTokens{"9", "00", ""}, true},
		{"numero y pm despues", "9 pm por favor", ClockTokens{"9", "00", "pm"}, true},
		{"sin hora", "mañana temprano", ClockTokens{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseClock(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseScheduleParams(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		wantLead string
		wantDay  string
		wantHour string
		wantMer  string
	}{
		{"basico", "agendar cita con juan mañana 4pm", "juan", "mañana", "4", "pm"},
		{"sin con", "agendar cita pedro lunes 9:45am", "pedro", "lunes", "9", "am"},
		{"agenda variante", "agenda cita con maria viernes a las 5", "maria", "viernes", "5", ""},
		{"nombre compuesto", "agendar cita con ana lopez jueves 11am", "ana lopez", "jueves", "11", "am"},
		{"con typo de dia", "agendar cita con luis miercoles 10am", "luis", "miercoles", "10", "am"},
		{"fecha absoluta", "agendar cita con carla 15 de enero 4pm", "carla", "", "4", "pm"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := ParseScheduleParams(tt.in)
			assert.Equal(t, tt.wantLead, p.LeadName)
			assert.Equal(t, tt.wantDay, p.DayToken)
			if tt.wantHour != "" {
				assert.True(t, p.HasClock)
				assert.Equal(t, tt.wantHour, p.Clock.Hour)
				assert.Equal(t, tt.wantMer, p.Clock.Meridiem)
			}
		})
	}
}

func TestParseRescheduleParams(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		wantLead string
		wantDay  string
		wantHour string
	}{
		{"corto", "reagendar juan mañana 4pm", "juan", "mañana", "4"},
		{"con cita de", "reagendar cita de ana para el lunes a las 10am", "ana", "lunes", "10"},
		{"re separado", "re agendar maria viernes 9:45am", "maria", "viernes", "9"},
		{"solo dia", "reagendar pedro sabado", "pedro", "sabado", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := ParseRescheduleParams(tt.in)
			assert.Equal(t, tt.wantLead, p.LeadName)
			assert.Equal(t, tt.wantDay, p.DayToken)
			if tt.wantHour == "" {
				assert.False(t, p.HasClock)
			} else {
				assert.Equal(t, tt.wantHour, p.Clock.Hour)
			}
		})
	}
}

func TestParseCancelName(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
		ok   bool
	}{
		{"con", "cancelar cita con juan", "juan", true},
		{"de", "cancelar cita de maría gonzález", "maría gonzález", true},
		{"mayusculas", "Cancelar cita con Pedro", "pedro", true},
		{"sin nombre", "cancelar cita", "", false},
		{"otro comando", "agendar cita con juan", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseCancelName(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
