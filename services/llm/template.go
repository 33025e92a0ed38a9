package llm

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/samber/lo"
)

var placeholderPattern = regexp.MustCompile(`\{[a-z_]+\}`)

// fillTemplate substitutes {name} placeholders and fails if any are left.
func fillTemplate(tmpl string, fields map[string]string) (string, error) {
	pairs := make([]string, 0, len(fields)*2)
	for k, v := range fields {
		pairs = append(pairs, "{"+k+"}", v)
	}
	out := strings.NewReplacer(pairs...).Replace(tmpl)

	if left := placeholderPattern.FindAllString(out, -1); len(left) > 0 {
		return "", fmt.Errorf("prompt has unfilled placeholders: %s", strings.Join(lo.Uniq(left), ", "))
	}
	return out, nil
}
