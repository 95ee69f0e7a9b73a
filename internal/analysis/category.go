package analysis

import (
	"strings"

	"github.com/Veraticus/wealthease/internal/model"
)

type categoryRule struct {
	category string
	keywords []string
}

// Rules are checked in order; the first keyword hit wins.
var (
	incomeCategoryRules = []categoryRule{
		{"salary", []string{"gaji", "salary"}},
		{"bonus", []string{"bonus"}},
		{"investment", []string{"dividen", "dividend"}},
		{"gift", []string{"hadiah", "gift"}},
	}
	expenseCategoryRules = []categoryRule{
		{"food", []string{"makan", "kopi", "coffee", "restoran", "restaurant"}},
		{"transportation", []string{"transport", "bensin", "parkir", "taksi", "taxi", "uber", "ojek", "gojek"}},
		{"bills", []string{"listrik", "electricity", "air", "water", "internet", "telepon", "phone"}},
		{"housing", []string{"sewa", "rent", "kost"}},
		{"shopping", []string{"belanja", "shopping", "baju", "clothes", "sepatu", "shoes"}},
		{"healthcare", []string{"dokter", "doctor", "obat", "medicine", "rumah sakit", "hospital"}},
		{"entertainment", []string{"hiburan", "entertainment", "film", "movie", "konser", "concert"}},
	}
)

// CategoryFromDescription guesses a category label from free text.
func CategoryFromDescription(description string, typ model.TransactionType) string {
	desc := strings.ToLower(description)

	rules, fallback := expenseCategoryRules, "other"
	if typ == model.TypeIncome {
		rules, fallback = incomeCategoryRules, "other income"
	}

	for _, rule := range rules {
		for _, kw := range rule.keywords {
			if strings.Contains(desc, kw) {
				return rule.category
			}
		}
	}
	return fallback
}
