package export

import (
	"fmt"
	"html"
	"strings"

	"github.com/matsen/publist/internal/publication"
)

// COinSSpan wraps a publication's OpenURL ContextObject in the empty
// span reference managers scrape for.
func COinSSpan(p *publication.Publication, domain string) string {
	return fmt.Sprintf(`<span class="Z3988" title="%s"></span>`, html.EscapeString(p.COinS(domain)))
}

// COinSList renders one COinS span per publication, one per line.
func COinSList(pubs []publication.Publication, domain string) string {
	var b strings.Builder
	for i := range pubs {
		b.WriteString(COinSSpan(&pubs[i], domain))
		b.WriteString("\n")
	}
	return b.String()
}
