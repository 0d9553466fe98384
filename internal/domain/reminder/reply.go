package reminder

import (
	"strings"
	"unicode"

	domain "github.com/BruksfildServices01/institute-scheduler/internal/domain/appointment"
)

type Intent string

const (
	IntentConfirm    Intent = "confirm"
	IntentReschedule Intent = "reschedule"
	IntentCancel     Intent = "cancel"
	IntentUnknown    Intent = "unknown"
)

// Palavras inteiras e radicais. A ordem de checagem é fixa:
// confirmação, depois reagendamento, depois cancelamento.
type keywordSet struct {
	words []string
	stems []string
}

var (
	affirmative = keywordSet{
		words: []string{"oui", "ok", "okay", "yes", "daccord", "parfait", "1"},
		stems: []string{"confirm", "d'accord", "je serai là", "je viens"},
	}
	reschedule = keywordSet{
		words: []string{"2", "décaler", "decaler"},
		stems: []string{"report", "reprogramm", "reschedul", "changer", "autre date", "autre jour", "modifier"},
	}
	cancel = keywordSet{
		words: []string{"non", "no", "3", "stop"},
		stems: []string{"annul", "cancel"},
	}
)

// ParseReply classifica o texto livre recebido.
func ParseReply(text string) Intent {
	lower := strings.ToLower(strings.TrimSpace(text))
	if lower == "" {
		return IntentUnknown
	}

	tokens := map[string]bool{}
	for _, t := range strings.FieldsFunc(lower, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '\''
	}) {
		tokens[strings.ReplaceAll(t, "'", "")] = true
	}

	switch {
	case affirmative.match(lower, tokens):
		return IntentConfirm
	case reschedule.match(lower, tokens):
		return IntentReschedule
	case cancel.match(lower, tokens):
		return IntentCancel
	}
	return IntentUnknown
}

func (k keywordSet) match(lower string, tokens map[string]bool) bool {
	for _, w := range k.words {
		if tokens[w] {
			return true
		}
	}
	for _, s := range k.stems {
		if strings.Contains(lower, s) {
			return true
		}
	}
	return false
}

// TargetStatus é a transição aplicada para cada intenção.
func (i Intent) TargetStatus() (domain.Status, bool) {
	switch i {
	case IntentConfirm:
		return domain.StatusConfirmed, true
	case IntentReschedule:
		return domain.StatusToReschedule, true
	case IntentCancel:
		return domain.StatusCancelled, true
	}
	return "", false
}
