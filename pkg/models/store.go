package models

import "strings"

// Known store tags. The set is closed for our own receipt parsers, but
// unrecognized store strings supplied by callers pass through as opaque
// labels rather than being rejected.
const (
	StoreSteam       = "STEAM"
	StoreNintendo    = "NINTENDO"
	StorePlayStation = "PLAYSTATION"
	StoreGooglePlay  = "GOOGLE_PLAY"
	StoreOther       = "OTHER"
	StoreUnknown     = "UNKNOWN"
)

// NormalizeStore maps empty input to UNKNOWN and trims the rest.
func NormalizeStore(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return StoreUnknown
	}
	return s
}
