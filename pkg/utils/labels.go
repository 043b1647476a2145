package utils

import "strings"

// HumanizeKey formats a machine field name discovered by extraction into a
// display label: underscores become spaces and each word is title-cased, so
// "smoking_status" renders as "Smoking Status".
func HumanizeKey(key string) string {
	words := strings.Fields(strings.ReplaceAll(key, "_", " "))
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
