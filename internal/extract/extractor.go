// Package extract pulls structured product fields out of pasted listing
// text, such as the text a supplier app shows on a product page.
package extract

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Info holds the fields recognised in a block of listing text. Fields that
// could not be recognised stay nil.
type Info struct {
	Title *string `json:"title"`
	Spec  *string `json:"spec"`
	Price *string `json:"price"`
}

var (
	allDigitsRe = regexp.MustCompile(`^\d+$`)
	specRe      = regexp.MustCompile(`[^¥\d\s]+(?:\*|×)\d+[g克]`)
	priceRe     = regexp.MustCompile(`¥([\d.]+)`)
)

// ProductInfo scans listing text line by line. The title is the first line
// that looks like prose rather than a price or quantity. The spec is taken
// from a "name*weight" line, and the price from a ¥ amount on that line or
// the next. When no ¥ amount follows a spec line, the line above a 供货价
// (supply price) label is consulted instead.
func ProductInfo(text string) Info {
	var lines []string
	for _, raw := range strings.Split(text, "\n") {
		if line := strings.TrimSpace(raw); line != "" {
			lines = append(lines, line)
		}
	}

	var info Info

	for _, line := range lines {
		if strings.Contains(line, "¥") || strings.Contains(line, "元") || allDigitsRe.MatchString(line) {
			continue
		}
		if utf8.RuneCountInString(line) > 5 && containsHan(line) {
			info.Title = &line
			break
		}
	}

	for i, line := range lines {
		if !strings.Contains(line, "*") || !strings.Contains(line, "g") {
			continue
		}
		if m := specRe.FindString(line); m != "" {
			info.Spec = &m
		} else if strings.Contains(line, "g") || strings.Contains(line, "克") {
			spec := line
			info.Spec = &spec
		}

		if m := priceRe.FindStringSubmatch(line); m != nil {
			info.Price = &m[1]
		} else if i+1 < len(lines) {
			if m := priceRe.FindStringSubmatch(lines[i+1]); m != nil {
				info.Price = &m[1]
			}
		}

		if info.Spec != nil || info.Price != nil {
			break
		}
	}

	if info.Price == nil {
		for i, line := range lines {
			if !strings.Contains(line, "供货价") || i == 0 {
				continue
			}
			if m := priceRe.FindStringSubmatch(lines[i-1]); m != nil {
				info.Price = &m[1]
				break
			}
		}
	}

	return info
}

func containsHan(s string) bool {
	for _, r := range s {
		if unicode.Is(unicode.Han, r) {
			return true
		}
	}
	return false
}
