package lang

// RequiresTranslation reports whether a title is written in Japanese script
// and should get a translated re-search against the external catalog.
// It only gates the secondary lookup; the primary flow never depends on it.
func RequiresTranslation(title string) bool {
	for _, r := range title {
		if isJapaneseRune(r) {
			return true
		}
	}
	return false
}

func isJapaneseRune(r rune) bool {
	switch {
	case r >= 0x3000 && r <= 0x303f: // CJK symbols and punctuation
		return true
	case r >= 0x3040 && r <= 0x309f: // hiragana
		return true
	case r >= 0x30a0 && r <= 0x30ff: // katakana
		return true
	case r >= 0xff00 && r <= 0xff9f: // fullwidth and halfwidth forms
		return true
	case r >= 0x4e00 && r <= 0x9faf: // CJK unified ideographs
		return true
	case r >= 0x3400 && r <= 0x4dbf: // CJK extension A
		return true
	}
	return false
}
