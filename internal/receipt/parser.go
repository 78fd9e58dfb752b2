package receipt

import (
	"strconv"
	"strings"

	"gameshelf/pkg/models"
)

// Vendor tags reported alongside parse results.
const (
	VendorGooglePlay = "google_play"
	VendorSteam      = "steam"
	VendorNintendo   = "nintendo"
	VendorGeneric    = "generic"
)

// Parse extracts (title, price) line items from pasted receipt text.
// Exactly one vendor strategy runs per call, chosen by signature detection;
// unmatched lines are dropped silently and an empty result is not an error.
func Parse(raw string) []models.ParsedPurchase {
	lines := splitLines(raw)
	if len(lines) == 0 {
		return nil
	}
	return pickStrategy(raw).parse(lines)
}

// DetectVendor reports which strategy Parse would use for the given text.
func DetectVendor(raw string) string {
	return pickStrategy(raw).name()
}

type strategy interface {
	name() string
	parse(lines []string) []models.ParsedPurchase
}

// pickStrategy checks signatures most-specific first. The Google Play item
// table header wins over the Nintendo publisher marker because a Nintendo
// title bought on Google Play still carries 任天堂 in its line items.
func pickStrategy(raw string) strategy {
	lower := strings.ToLower(raw)

	if strings.Contains(lower, "google play") || hasItemTableHeader(raw) {
		return googlePlayStrategy{}
	}
	if strings.Contains(lower, "steam") || strings.Contains(lower, "valve") {
		return steamStrategy{}
	}
	if strings.Contains(raw, "My Nintendo Store") ||
		strings.Contains(raw, "マイニンテンドーストア") ||
		strings.Contains(raw, "任天堂") {
		return nintendoStrategy{}
	}
	return genericStrategy{}
}

func hasItemTableHeader(raw string) bool {
	for _, line := range strings.Split(raw, "\n") {
		if isItemTableHeader(line) {
			return true
		}
	}
	return false
}

func splitLines(raw string) []string {
	parts := strings.Split(raw, "\n")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func parsePrice(digits string) (int, bool) {
	n, err := strconv.Atoi(strings.ReplaceAll(digits, ",", ""))
	if err != nil {
		return 0, false
	}
	return n, true
}

func intPtr(n int) *int { return &n }
