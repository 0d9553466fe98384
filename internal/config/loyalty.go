package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/shopspring/decimal"

	"github.com/BruksfildServices01/institute-scheduler/internal/domain/loyalty"
)

// LoyaltyFile espelha o arquivo TOML de classificação.
type LoyaltyFile struct {
	SoinThreshold      int               `toml:"soin_threshold"`
	ForfaitThreshold   int               `toml:"forfait_threshold"`
	HighPriceThreshold string            `toml:"high_price_threshold"`
	ExpiryMonths       int               `toml:"expiry_months"`
	Categories         map[string]string `toml:"categories"`
}

func DefaultLoyaltyFile() LoyaltyFile {
	return LoyaltyFile{
		SoinThreshold:      5,
		ForfaitThreshold:   2,
		HighPriceThreshold: "150",
		ExpiryMonths:       12,
		Categories: map[string]string{
			"hydrafacial":   string(loyalty.RuleAmbiguous),
			"microneedling": string(loyalty.RuleAmbiguous),
			"bbglow":        string(loyalty.RuleAmbiguous),
			"led":           string(loyalty.RuleExcluded),
			"combiné":       string(loyalty.RuleForfait),
		},
	}
}

// LoadLoyalty lê o arquivo em path. path vazio ou inexistente usa os padrões;
// campos ausentes no arquivo também.
func LoadLoyalty(path string) (loyalty.Policy, loyalty.Classifier, error) {
	f := DefaultLoyaltyFile()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			var parsed LoyaltyFile
			if _, err := toml.DecodeFile(path, &parsed); err != nil {
				return loyalty.Policy{}, loyalty.Classifier{}, fmt.Errorf("loyalty config %s: %w", path, err)
			}
			merge(&f, parsed)
		}
	}

	return build(f)
}

func merge(dst *LoyaltyFile, src LoyaltyFile) {
	if src.SoinThreshold > 0 {
		dst.SoinThreshold = src.SoinThreshold
	}
	if src.ForfaitThreshold > 0 {
		dst.ForfaitThreshold = src.ForfaitThreshold
	}
	if src.HighPriceThreshold != "" {
		dst.HighPriceThreshold = src.HighPriceThreshold
	}
	if src.ExpiryMonths > 0 {
		dst.ExpiryMonths = src.ExpiryMonths
	}
	if len(src.Categories) > 0 {
		dst.Categories = src.Categories
	}
}

func build(f LoyaltyFile) (loyalty.Policy, loyalty.Classifier, error) {
	threshold, err := decimal.NewFromString(f.HighPriceThreshold)
	if err != nil {
		return loyalty.Policy{}, loyalty.Classifier{}, fmt.Errorf("high_price_threshold: %w", err)
	}

	rules := make(map[string]loyalty.Rule, len(f.Categories))
	for cat, raw := range f.Categories {
		rule, ok := loyalty.ParseRule(raw)
		if !ok {
			return loyalty.Policy{}, loyalty.Classifier{}, fmt.Errorf("category %q: unknown rule %q", cat, raw)
		}
		rules[strings.ToLower(strings.TrimSpace(cat))] = rule
	}

	policy := loyalty.Policy{
		SoinThreshold:    f.SoinThreshold,
		ForfaitThreshold: f.ForfaitThreshold,
		ExpiryMonths:     f.ExpiryMonths,
	}
	return policy, loyalty.Classifier{Rules: rules, HighPriceThreshold: threshold}, nil
}
