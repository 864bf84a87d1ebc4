package validator

import (
	"fmt"
	"strings"

	bmErrors "bitmark-hq/compiler/pkg/bitmark/errors"
	"bitmark-hq/compiler/pkg/bitmark/token"
)

// Text fragments that usually mean a card divider, remark or comment was
// mistyped.
var (
	mistakeContains   = []string{"====", "----", "\n==\n", "\n---\n", "\n--\n", ":::", "|||"}
	mistakeStartsWith = []string{"==\n", "---\n", "--\n"}
	mistakeEndsWith   = []string{"\n==", "\n---", "\n--"}
)

// checkMistakes warns about text that looks like misplaced markup. The text
// is kept unchanged.
func (p *pass) checkMistakes(tok token.Token) {
	for _, m := range Mistakes(tok.Text) {
		p.diags.Warn(bmErrors.CategorySyntax,
			fmt.Sprintf("Bit '%s' might contain a mistake: %q", p.bitType, m), tok.Span, "")
	}
}

// Mistakes returns the suspicious fragments found in text, in check order.
func Mistakes(text string) []string {
	var found []string
	for _, m := range mistakeContains {
		if strings.Contains(text, m) {
			found = append(found, m)
		}
	}
	for _, m := range mistakeStartsWith {
		if strings.HasPrefix(text, m) {
			found = append(found, m)
		}
	}
	for _, m := range mistakeEndsWith {
		if strings.HasSuffix(text, m) {
			found = append(found, m)
		}
	}
	return found
}
