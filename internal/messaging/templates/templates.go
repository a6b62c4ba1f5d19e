// Package templates renders the Spanish WhatsApp texts sent to vendors and
// leads. Wording is part of the product surface; change it deliberately.
package templates

import (
	"fmt"
	"strings"
	"text/template"

	"github.com/vivenda/crm-platform/internal/appointments"
	"github.com/vivenda/crm-platform/internal/schedule"
)

// FormatDate renders "jueves 15 de enero".
func FormatDate(a *appointments.Appointment) string {
	return schedule.FormatDateES(a.Date)
}

// FormatHour renders "4:00 PM".
func FormatHour(a *appointments.Appointment) string {
	return schedule.FormatClock12(a.Time.Hour, a.Time.Minute)
}

func lastDigits(phone string, n int) string {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, phone)
	if len(digits) <= n {
		return digits
	}
	return digits[len(digits)-n:]
}

// ScheduleSuccess confirms a new visit to the vendor and offers to notify the
// lead.
func ScheduleSuccess(leadName, leadPhone, date, hour, property string) string {
	var b strings.Builder
	b.WriteString("✅ *Cita agendada*\n\n")
	b.WriteString("👤 " + leadName)
	if p := lastDigits(leadPhone, 10); p != "" {
		b.WriteString("\n📱 " + p)
	}
	b.WriteString("\n📅 " + date)
	b.WriteString("\n🕐 " + hour)
	if property != "" && property != "Por confirmar" {
		b.WriteString("\n📍 " + property)
	}
	b.WriteString("\n\n¿Le aviso a " + leadName + "?\n*1.* Sí, mándale mensaje\n*2.* No, yo le aviso")
	return b.String()
}

// RescheduleSuccess confirms the moved visit to the vendor.
func RescheduleSuccess(leadName, newDate, newHour string) string {
	return fmt.Sprintf(`✅ *Cita reagendada*

👤 %s
📅 Nueva fecha: %s
🕐 Nueva hora: %s

¿Le aviso a %s?
*1.* Sí, mándale mensaje
*2.* No, yo le aviso`, leadName, newDate, newHour, leadName)
}

// Cancelled confirms the cancellation to the vendor.
func Cancelled(leadName, oldDate, oldHour string) string {
	return fmt.Sprintf(`❌ *Cita cancelada:*

👤 %s
📅 Era: %s, %s

¿Le aviso a %s?
*1.* Sí, mándale
*2.* No, yo le aviso`, leadName, oldDate, oldHour, leadName)
}

// MultipleLeads lists ambiguous name matches as a numbered menu.
func MultipleLeads(names, phones []string, action string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🤝 Encontré %d leads:\n\n", len(names))
	for i, name := range names {
		last := "????"
		if i < len(phones) && phones[i] != "" {
			last = lastDigits(phones[i], 4)
		}
		fmt.Fprintf(&b, "%d. %s (...%s)\n", i+1, name, last)
	}
	fmt.Fprintf(&b, "\nResponde con el *número* para %s.", action)
	return b.String()
}

// LeadNotFound tells the vendor the name matched nothing.
func LeadNotFound(name string) string {
	return fmt.Sprintf("No encontré a %q en tus leads.", name)
}

// NoActiveAppointment tells the vendor there is nothing to move or cancel.
func NoActiveAppointment(leadName string) string {
	return fmt.Sprintf("❌ %s no tiene citas pendientes.", leadName)
}

// OutsideHours explains the rejected slot and the valid window.
func OutsideHours(check schedule.SlotCheck) string {
	return fmt.Sprintf(`⚠️ %s.

📅 *%s*

¿A qué hora dentro de este horario te gustaría visitarnos? 😊`, check.Error, check.Suggestion)
}

// HelpSchedule teaches the command shape after an unparseable attempt.
func HelpSchedule() string {
	return `📅 *Para agendar cita escribe:*

"agendar cita con [nombre] [día] [hora]"

*Ejemplos:*
• agendar cita con Ana mañana 4pm
• agendar Juan lunes 10am
• agendar María viernes 3pm`
}

// HelpReschedule teaches the reagendar shape.
func HelpReschedule() string {
	return `📅 *Para reagendar cita escribe:*

"reagendar [nombre] [día] [hora]"

*Ejemplos:*
• reagendar Ana mañana 4pm
• reagendar Juan lunes 10am
• reagendar María viernes 3pm`
}

// HelpCancel teaches the cancelar shape.
func HelpCancel() string {
	return `❌ *Para cancelar cita escribe:*

"cancelar cita con [nombre]"

*Ejemplo:*
cancelar cita con Juan`
}

// NeedsSlot asks for the missing day and hour once the lead is known.
func NeedsSlot(action, leadName string) string {
	return fmt.Sprintf(`📅 *%s cita de %s*

¿Para cuándo?

*Escribe:*
"%s %s [día] [hora]"

*Ejemplo:*
%s %s mañana 4pm`, action, leadName, strings.ToLower(action), leadName, strings.ToLower(action), leadName)
}

// InvalidDate reports an unparseable day expression.
func InvalidDate(token string) string {
	if token == "" {
		return "No entendí la fecha. Intenta con: mañana, lunes, martes, etc."
	}
	return fmt.Sprintf("No entendí la fecha %q. Intenta con: mañana, lunes, martes, etc.", token)
}

// InvalidHour reports an unparseable hour expression.
func InvalidHour() string {
	return "No entendí la hora. Ejemplo: 4pm, 10am"
}

// InvalidSelection rejects a numbered reply outside the offered range.
func InvalidSelection(max int) string {
	return fmt.Sprintf("Número inválido. Responde con un número del 1 al %d.", max)
}

// Help lists every appointment command.
func Help() string {
	return `🤖 *Comandos disponibles:*

📅 *citas* — tus citas de hoy
✅ *agendar cita con [nombre] [día] [hora]*
🔄 *reagendar [nombre] [día] [hora]*
❌ *cancelar cita con [nombre]*

*Ejemplo:*
agendar cita con Ana mañana 4pm`
}

// TodaysAppointments renders the vendor's agenda for the day.
func TodaysAppointments(appts []*appointments.Appointment) string {
	if len(appts) == 0 {
		return "📅 No tienes citas agendadas para hoy."
	}
	var b strings.Builder
	fmt.Fprintf(&b, "📅 *Tus citas de hoy (%d):*\n", len(appts))
	for _, a := range appts {
		fmt.Fprintf(&b, "\n🕐 %s — %s", FormatHour(a), a.LeadName)
		if a.Property != "" {
			b.WriteString(" · " + a.Property)
		}
	}
	return b.String()
}

// LeadConfirmation is the message forwarded to the lead after booking.
func LeadConfirmation(clientName, property, date, hour, vendorName, vendorPhone string) string {
	short := clientName
	if i := strings.IndexByte(clientName, ' '); i > 0 {
		short = clientName[:i]
	}
	return fmt.Sprintf(`🎉 *¡%s, tu cita está confirmada!*

📅 *%s*
🕐 *%s*
📍 *%s*

👤 *Te atiende:* %s
📱 *Contacto:* %s

¡Te esperamos! 🏠`, short, date, hour, property, vendorName, vendorPhone)
}

// leadRescheduledTmpl is the one message the business edits per campaign, so
// it stays a template rather than a Sprintf.
var leadRescheduledTmpl = template.Must(template.New("lead_rescheduled").Parse(`¡Hola {{.Name}}! 👋

Tu cita ha sido reprogramada:

📅 *{{.Date}}*
🕐 *{{.Hour}}*
📍 *{{.Property}}*

👤 Te atiende: *{{.VendorName}}*
📱 {{.VendorPhone}}

¡Te esperamos! 🏠`))

// LeadRescheduled is the message forwarded to the lead after a move.
func LeadRescheduled(clientName, newDate, newHour, property, vendorName, vendorPhone string) string {
	if property == "" {
		property = "Por confirmar"
	}
	var b strings.Builder
	_ = leadRescheduledTmpl.Execute(&b, struct {
		Name, Date, Hour, Property, VendorName, VendorPhone string
	}{clientName, newDate, newHour, property, vendorName, vendorPhone})
	return b.String()
}

// LeadCancelled is the message forwarded to the lead after a cancellation.
func LeadCancelled(clientName, oldDate, oldHour, vendorName string) string {
	return fmt.Sprintf(`Hola %s 👋

Tu cita del %s a las %s fue cancelada.

Si quieres reagendar, %s con gusto te atiende. 🏠`, clientName, oldDate, oldHour, vendorName)
}

// NotifySent confirms to the vendor that the lead was messaged.
func NotifySent(leadName string) string {
	return fmt.Sprintf("✅ Listo, le avisé a %s. 📬", leadName)
}

// NotifySkipped acknowledges the vendor will tell the lead themselves.
func NotifySkipped() string {
	return "👍 Ok, tú le avisas."
}
