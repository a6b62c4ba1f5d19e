package templates

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/vivenda/crm-platform/internal/appointments"
	"github.com/vivenda/crm-platform/internal/schedule"
)

func sampleAppointment() *appointments.Appointment {
	loc := schedule.Location(schedule.DefaultTimezone)
	return &appointments.Appointment{
		LeadName: "Juan Pérez",
		Property: "Monte Verde",
		Date:     time.Date(2026, time.January, 15, 0, 0, 0, 0, loc),
		Time:     schedule.ClockTime{Hour: 16},
	}
}

func TestFormatters(t *testing.T) {
	a := sampleAppointment()
	assert.Equal(t, "jueves 15 de enero", FormatDate(a))
	assert.Equal(t, "4:00 PM", FormatHour(a))
}

func TestScheduleSuccess(t *testing.T) {
	msg := ScheduleSuccess("Juan Pérez", "+52 1 811-122-2333", "jueves 15 de enero", "4:00 PM", "Monte Verde")
	assert.Contains(t, msg, "✅ *Cita agendada*")
	assert.Contains(t, msg, "👤 Juan Pérez")
	assert.Contains(t, msg, "📱 8111222333")
	assert.Contains(t, msg, "📅 jueves 15 de enero")
	assert.Contains(t, msg, "🕐 4:00 PM")
	assert.Contains(t, msg, "📍 Monte Verde")
	assert.Contains(t, msg, "¿Le aviso a Juan Pérez?")
}

func TestScheduleSuccessOmitsEmptyFields(t *testing.T) {
	msg := ScheduleSuccess("Ana", "", "lunes 19 de enero", "10:00 AM", "Por confirmar")
	assert.NotContains(t, msg, "📱")
	assert.NotContains(t, msg, "📍")
}

func TestRescheduleSuccess(t *testing.T) {
	msg := RescheduleSuccess("Ana", "lunes 19 de enero", "10:00 AM")
	assert.Contains(t, msg, "✅ *Cita reagendada*")
	assert.Contains(t, msg, "📅 Nueva fecha: lunes 19 de enero")
	assert.Contains(t, msg, "🕐 Nueva hora: 10:00 AM")
}

func TestCancelled(t *testing.T) {
	msg := Cancelled("Juan Pérez", "jueves 15 de enero", "4:00 PM")
	assert.Contains(t, msg, "❌ *Cita cancelada:*")
	assert.Contains(t, msg, "📅 Era: jueves 15 de enero, 4:00 PM")
}

func TestMultipleLeads(t *testing.T) {
	msg := MultipleLeads(
		[]string{"Juan Pérez", "Juana García"},
		[]string{"+5218111222333", ""},
		"cancelar",
	)
	assert.Contains(t, msg, "Encontré 2 leads")
	assert.Contains(t, msg, "1. Juan Pérez (...2333)")
	assert.Contains(t, msg, "2. Juana García (...????)")
	assert.Contains(t, msg, "Responde con el *número* para cancelar.")
}

func TestOutsideHours(t *testing.T) {
	check := schedule.ValidateSlot(20, time.Date(2026, time.January, 15, 0, 0, 0, 0, time.UTC), schedule.WorkHours{})
	msg := OutsideHours(check)
	assert.Contains(t, msg, "fuera del horario de atención")
	assert.Contains(t, msg, "Horario disponible: 9:00 AM a 6:00 PM")
}

func TestTodaysAppointments(t *testing.T) {
	assert.Equal(t, "📅 No tienes citas agendadas para hoy.", TodaysAppointments(nil))

	msg := TodaysAppointments([]*appointments.Appointment{sampleAppointment()})
	assert.Contains(t, msg, "Tus citas de hoy (1)")
	assert.Contains(t, msg, "4:00 PM — Juan Pérez · Monte Verde")
}

func TestLeadConfirmationUsesShortName(t *testing.T) {
	msg := LeadConfirmation("Juan Pérez", "Monte Verde", "jueves 15 de enero", "4:00 PM", "Laura Méndez", "+5218111222333")
	assert.Contains(t, msg, "¡Juan, tu cita está confirmada!")
	assert.Contains(t, msg, "*Te atiende:* Laura Méndez")
}

func TestLeadRescheduledDefaultsProperty(t *testing.T) {
	msg := LeadRescheduled("Ana", "lunes 19 de enero", "10:00 AM", "", "Laura", "+5218111222333")
	assert.Contains(t, msg, "📍 *Por confirmar*")
	assert.Contains(t, msg, "Tu cita ha sido reprogramada")
}

func TestNeedsSlot(t *testing.T) {
	msg := NeedsSlot("Reagendar", "Ana")
	assert.Contains(t, msg, "*Reagendar cita de Ana*")
	assert.Contains(t, msg, "reagendar Ana mañana 4pm")
}

func TestInvalidSelection(t *testing.T) {
	assert.Equal(t, "Número inválido. Responde con un número del 1 al 3.", InvalidSelection(3))
}

func TestLeadCancelled(t *testing.T) {
	msg := LeadCancelled("Juan Pérez", "viernes 16 de enero", "10:00 AM", "Laura Méndez")
	assert.Contains(t, msg, "Hola Juan Pérez")
	assert.Contains(t, msg, "del viernes 16 de enero a las 10:00 AM fue cancelada")
	assert.Contains(t, msg, "Laura Méndez con gusto te atiende")
}

func TestNotifyReplies(t *testing.T) {
	assert.Equal(t, "✅ Listo, le avisé a Ana. 📬", NotifySent("Ana"))
	assert.Equal(t, "👍 Ok, tú le avisas.", NotifySkipped())
}

func TestNoActiveAppointmentWording(t *testing.T) {
	assert.Equal(t, "❌ Juan no tiene citas pendientes.", NoActiveAppointment("Juan"))
}
