package lang

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRequiresTranslation(t *testing.T) {
	tests := []struct {
		name  string
		title string
		want  bool
	}{
		{"latin only", "Minecraft", false},
		{"empty", "", false},
		{"katakana", "バックパック・バトル", true},
		{"hiragana", "ぷよぷよ", true},
		{"kanji", "大乱闘スマッシュブラザーズ", true},
		{"fullwidth digits", "ＦＩＮＡＬ", true},
		{"mixed latin and kana", "Sekiro 隻狼", true},
		{"latin with punctuation", "Baldur's Gate 3: Deluxe", false},
		{"korean is not japanese", "한국어", false},
		{"ideographic space counts", "Title　Edition", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RequiresTranslation(tt.title))
		})
	}
}
