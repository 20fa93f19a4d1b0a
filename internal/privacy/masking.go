package privacy

import (
	"strings"
)

// MaskUsername masks an Instagram username for logging, keeping the
// first two characters.
// Example: "alice_doe" -> "al*******"
func MaskUsername(username string) string {
	runes := []rune(username)
	if len(runes) <= 2 {
		return strings.Repeat("*", len(runes))
	}
	return string(runes[:2]) + strings.Repeat("*", len(runes)-2)
}

// MaskItemID masks an inbox item identifier while preserving the tail
// for log correlation.
// Example: "31243628005209385_29957525166353922" -> "****3922"
func MaskItemID(itemID string) string {
	if itemID == "" {
		return ""
	}
	if len(itemID) <= 4 {
		return strings.Repeat("*", len(itemID))
	}
	return "****" + itemID[len(itemID)-4:]
}
