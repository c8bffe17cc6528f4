package httpx

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/target/interview-ui/internal/domain/model"
)

// templateFuncs returns the helpers available to every template. t is filled
// in after parsing so renderSection can execute sibling templates.
func templateFuncs(t **template.Template) template.FuncMap {
	return template.FuncMap{
		"sectionTmpl":   ContentTemplateFor,
		"renderSection": renderSection(t),
		"friendlyTime":  friendlyTime,
		"timeTag":       timeTag,
		"formatNumber":  formatNumber,
		"formatScore":   func(v float64) string { return strconv.FormatFloat(v, 'f', 1, 64) },
		"scoreClass":    func(v float64) string { return model.BandFor(v).Class() },
		"truncateText":  truncateText,
		"firstLine":     firstLine,
		"humanize":      humanize,
		"add":           func(a, b int) int { return a + b },
		"sub":           func(a, b int) int { return a - b },
		"toJSON":        toJSON,
		"sectionView":   newSectionView,
	}
}

// sectionView pairs an evaluation section with its heading for the shared partial.
type sectionView struct {
	Title   string
	Section model.Section
}

func newSectionView(title string, s model.Section) sectionView {
	return sectionView{Title: title, Section: s}
}

func renderSection(t **template.Template) func(string, any) (template.HTML, error) {
	return func(page string, data any) (template.HTML, error) {
		if t == nil || *t == nil {
			return "", errors.New("template not initialized")
		}
		var buf bytes.Buffer
		if err := (*t).ExecuteTemplate(&buf, ContentTemplateFor(page), data); err != nil {
			return "", err
		}
		// #nosec G203 - output of our own html/template set; values were escaped during execution.
		return template.HTML(buf.String()), nil
	}
}

func toJSON(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func friendlyTime(ts any) string {
	t0 := asTime(ts)
	if t0.IsZero() {
		return ""
	}
	return t0.Local().Format("Jan 2, 2006 3:04 PM")
}

func asTime(ts any) time.Time {
	switch v := ts.(type) {
	case time.Time:
		return v
	case *time.Time:
		if v != nil {
			return *v
		}
	case model.Timestamp:
		return v.Time
	}
	return time.Time{}
}

func timeTag(ts any) template.HTML {
	t0 := asTime(ts)
	if t0.IsZero() {
		return ""
	}
	// #nosec G203 - built from escaped values only
	return template.HTML(fmt.Sprintf(
		"<time datetime=\"%s\" title=\"%s\">%s</time>",
		t0.UTC().Format(time.RFC3339),
		template.HTMLEscapeString(t0.Local().Format(time.RFC1123)),
		template.HTMLEscapeString(t0.Local().Format("Jan 2, 2006 3:04:05 PM")),
	))
}

// formatNumber formats integers with comma separators for thousands.
func formatNumber(v any) string {
	var n int64
	switch x := v.(type) {
	case int:
		n = int64(x)
	case int64:
		n = x
	case int32:
		n = int64(x)
	case float64:
		n = int64(x)
	default:
		return fmt.Sprint(v)
	}

	neg := n < 0
	if neg {
		n = -n
	}
	s := strconv.FormatInt(n, 10)
	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// truncateText shortens s to max runes, appending an ellipsis.
func truncateText(s string, maxRunes int) string {
	if maxRunes <= 0 || utf8.RuneCountInString(s) <= maxRunes {
		return s
	}
	runes := []rune(s)
	if maxRunes <= 3 {
		return string(runes[:maxRunes])
	}
	return string(runes[:maxRunes-3]) + "..."
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return strings.TrimSpace(s[:i])
	}
	return s
}

// humanize turns a snake_case section key into a label: "technical_skills" -> "Technical skills".
func humanize(key string) string {
	key = strings.TrimSpace(strings.ReplaceAll(key, "_", " "))
	if key == "" {
		return ""
	}
	r, size := utf8.DecodeRuneInString(key)
	return strings.ToUpper(string(r)) + key[size:]
}
