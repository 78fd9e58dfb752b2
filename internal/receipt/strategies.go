package receipt

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"gameshelf/pkg/models"
)

var (
	// "Sekiro™: Shadows Die Twice - ¥ 8,360" or "Game Title ¥ 1,000"
	steamLineRe = regexp.MustCompile(`^(.*?)\s*(?:-|ー)?\s*[¥￥]\s*([0-9,]+)$`)

	// bare amount line, e.g. "¥ 10,000"
	nintendoPriceRe = regexp.MustCompile(`^[¥￥]\s*([0-9,]+)$`)
	nintendoLabelRe = regexp.MustCompile(`価格:\s*[¥￥]\s*([0-9,]+)`)

	// item rows may separate title and amount with tabs or nothing at all
	googlePlayLineRe = regexp.MustCompile(`^(.*?)(?:\s*\([^)]+\))?[\s\t]*[¥￥]\s*([0-9,]+)$`)

	genericLineRe = regexp.MustCompile(`^(.*?)(\s|-)*[¥￥]\s*([0-9,]+)$`)
)

// steamStrategy matches line-anchored "title ¥price" rows anywhere in the text.
type steamStrategy struct{}

func (steamStrategy) name() string { return VendorSteam }

func (steamStrategy) parse(lines []string) []models.ParsedPurchase {
	var out []models.ParsedPurchase
	for _, line := range lines {
		m := steamLineRe.FindStringSubmatch(line)
		if m == nil || m[1] == "" {
			continue
		}
		if containsAny(m[1], "小計", "合計", "割引") {
			continue
		}
		title := strings.TrimSpace(m[1])
		if utf8.RuneCountInString(title) <= 1 {
			continue
		}
		price, ok := parsePrice(m[2])
		if !ok {
			continue
		}
		out = append(out, models.ParsedPurchase{
			Title: title,
			Price: intPtr(price),
			Store: models.StoreSteam,
		})
	}
	return out
}

// nintendoStrategy pairs a title line with the following price line, either
// as bare "title / ¥amount" pairs or as 商品名:/価格: labeled pairs.
type nintendoStrategy struct{}

func (nintendoStrategy) name() string { return VendorNintendo }

func (nintendoStrategy) parse(lines []string) []models.ParsedPurchase {
	var out []models.ParsedPurchase
	for i := 0; i < len(lines)-1; i++ {
		cur, next := lines[i], lines[i+1]

		if m := nintendoPriceRe.FindStringSubmatch(next); m != nil {
			if !containsAny(cur, "合計", "割引") && utf8.RuneCountInString(cur) < 50 {
				if price, ok := parsePrice(m[1]); ok {
					out = append(out, models.ParsedPurchase{
						Title: cur,
						Price: intPtr(price),
						Store: models.StoreNintendo,
					})
					i++ // consume the price line
					continue
				}
			}
		}

		if strings.HasPrefix(cur, "商品名:") {
			title := strings.TrimSpace(strings.TrimPrefix(cur, "商品名:"))
			var price *int
			if m := nintendoLabelRe.FindStringSubmatch(next); m != nil {
				if p, ok := parsePrice(m[1]); ok {
					price = intPtr(p)
					i++
				}
			}
			out = append(out, models.ParsedPurchase{
				Title: title,
				Price: price,
				Store: models.StoreNintendo,
			})
		}
	}
	return out
}

// googlePlayStrategy only considers lines strictly between the アイテム/価格
// table header and the 合計: line.
type googlePlayStrategy struct{}

func (googlePlayStrategy) name() string { return VendorGooglePlay }

func (googlePlayStrategy) parse(lines []string) []models.ParsedPurchase {
	headerIdx := -1
	totalIdx := -1
	for i, line := range lines {
		if headerIdx == -1 && isItemTableHeader(line) {
			headerIdx = i
		}
		if totalIdx == -1 && strings.HasPrefix(line, "合計:") {
			totalIdx = i
		}
	}
	if headerIdx == -1 {
		return nil
	}
	end := totalIdx
	if end == -1 {
		end = len(lines)
	}

	var out []models.ParsedPurchase
	for i := headerIdx + 1; i < end; i++ {
		m := googlePlayLineRe.FindStringSubmatch(lines[i])
		if m == nil || m[1] == "" {
			continue
		}
		// a fullwidth-colon 合計 line slips past the ASCII-prefix boundary
		if containsAny(m[1], "合計", "小計", "割引") {
			continue
		}
		title := strings.TrimSpace(m[1])
		if utf8.RuneCountInString(title) <= 1 {
			continue
		}
		price, ok := parsePrice(m[2])
		if !ok {
			continue
		}
		out = append(out, models.ParsedPurchase{
			Title: title,
			Price: intPtr(price),
			Store: models.StoreGooglePlay,
		})
	}
	return out
}

// genericStrategy is the fallback: any line ending in a yen amount.
type genericStrategy struct{}

func (genericStrategy) name() string { return VendorGeneric }

func (genericStrategy) parse(lines []string) []models.ParsedPurchase {
	var out []models.ParsedPurchase
	for _, line := range lines {
		m := genericLineRe.FindStringSubmatch(line)
		if m == nil || m[1] == "" {
			continue
		}
		if containsAny(m[1], "合計", "小計") {
			continue
		}
		title := strings.TrimSpace(m[1])
		if utf8.RuneCountInString(title) <= 2 {
			continue
		}
		price, ok := parsePrice(m[3])
		if !ok {
			continue
		}
		out = append(out, models.ParsedPurchase{
			Title: title,
			Price: intPtr(price),
			Store: models.StoreOther,
		})
	}
	return out
}

// isItemTableHeader reports whether a line collapses to the アイテム価格
// column header once all spacing (ASCII, tab, ideographic) is removed.
func isItemTableHeader(line string) bool {
	stripped := strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '　':
			return -1
		}
		return r
	}, line)
	return strings.Contains(stripped, "アイテム価格")
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
