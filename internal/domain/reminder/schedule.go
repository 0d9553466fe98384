// Package reminder decide quando um lembrete vence e como interpretar a
// resposta do cliente.
package reminder

import "time"

const DefaultLead = 24 * time.Hour

const (
	ChannelEmail   = "email"
	ChannelMessage = "message"
)

// DueAt devolve o momento do disparo: lead antes do início, ou agora se
// o agendamento já está dentro da janela.
func DueAt(start, now time.Time, lead time.Duration) time.Time {
	due := start.Add(-lead)
	if due.Before(now) {
		return now
	}
	return due
}
