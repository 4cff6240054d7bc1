package tui

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// formatPrice печатает цену из минорных единиц (копеек): "7 500 ₽",
// "1 234,56 ₽". Нулевые копейки не показываются.
func formatPrice(minor int64) string {
	sign := ""
	if minor < 0 {
		sign = "-"
		minor = -minor
	}

	rub := minor / 100
	kop := minor % 100

	if kop == 0 {
		return fmt.Sprintf("%s%s ₽", sign, groupThousands(rub))
	}
	return fmt.Sprintf("%s%s,%02d ₽", sign, groupThousands(rub), kop)
}

// groupThousands разделяет разряды пробелами: 1234567 -> "1 234 567".
func groupThousands(n int64) string {
	digits := strconv.FormatInt(n, 10)
	if len(digits) <= 3 {
		return digits
	}

	var b strings.Builder
	head := len(digits) % 3
	if head > 0 {
		b.WriteString(digits[:head])
	}
	for i := head; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}

// relTime — человекочитаемая давность: "just now", "5m ago", "3h ago",
// "2d ago", старше недели - дата. Будущие метки считаются свежими.
func relTime(now, t time.Time) string {
	d := now.Sub(t)

	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	case d < 7*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	default:
		return t.Format("02.01.2006")
	}
}

// truncate обрезает строку до max рун, помечая обрез многоточием.
func truncate(s string, max int) string {
	if max < 1 {
		max = 1
	}

	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-1]) + "…"
}

// wrapText переносит текст по словам в строки не шире width рун.
// Слово длиннее width режется посимвольно.
func wrapText(text string, width int) []string {
	if width < 1 {
		return []string{text}
	}

	var out []string
	for _, paragraph := range strings.Split(text, "\n") {
		words := strings.Fields(paragraph)
		if len(words) == 0 {
			out = append(out, "")
			continue
		}

		line := ""
		for _, word := range words {
			for len([]rune(word)) > width {
				if line != "" {
					out = append(out, line)
					line = ""
				}
				r := []rune(word)
				out = append(out, string(r[:width]))
				word = string(r[width:])
			}

			switch {
			case line == "":
				line = word
			case len([]rune(line))+1+len([]rune(word)) <= width:
				line += " " + word
			default:
				out = append(out, line)
				line = word
			}
		}
		if line != "" {
			out = append(out, line)
		}
	}

	return out
}
