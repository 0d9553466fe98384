package loyalty

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Kind é o tipo de visita contabilizada.
type Kind string

const (
	KindSoin    Kind = "soin"
	KindForfait Kind = "forfait"
)

// Rule classifica uma categoria do catálogo.
type Rule string

const (
	RuleExcluded  Rule = "excluded"
	RuleSoin      Rule = "soin"
	RuleForfait   Rule = "forfait"
	RuleAmbiguous Rule = "ambiguous"
)

func ParseRule(s string) (Rule, bool) {
	switch r := Rule(strings.ToLower(strings.TrimSpace(s))); r {
	case RuleExcluded, RuleSoin, RuleForfait, RuleAmbiguous:
		return r, true
	}
	return "", false
}

type Classifier struct {
	Rules              map[string]Rule
	HighPriceThreshold decimal.Decimal
}

// Classify resolve a categoria. ok=false quando a categoria não conta
// para fidelidade. Categoria desconhecida conta como soin.
//
// Ambígua vira forfait se o preço passar do limiar ou se o agendamento
// fizer parte de um pacote.
func (c Classifier) Classify(category string, price decimal.Decimal, isPackage bool) (Kind, bool) {
	rule, found := c.Rules[strings.ToLower(strings.TrimSpace(category))]
	if !found {
		rule = RuleSoin
	}

	switch rule {
	case RuleExcluded:
		return "", false
	case RuleForfait:
		return KindForfait, true
	case RuleAmbiguous:
		if isPackage || price.GreaterThan(c.HighPriceThreshold) {
			return KindForfait, true
		}
		return KindSoin, true
	default:
		return KindSoin, true
	}
}
