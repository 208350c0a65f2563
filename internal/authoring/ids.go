package authoring

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/alexanderramin/panotour/internal/domain"
	"github.com/google/uuid"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const defaultSlug = "scene"

// Slugify turns a title into a lowercase ASCII id. Accents are folded
// ("Café Öst" -> "cafe-ost") and any other run of non-alphanumerics becomes a
// single dash.
func Slugify(title string) string {
	fold := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(fold, title)
	if err != nil {
		folded = title
	}

	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(folded) {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			b.WriteRune(r)
			dash = false
		case !dash && b.Len() > 0:
			b.WriteByte('-')
			dash = true
		}
	}
	s := strings.TrimRight(b.String(), "-")
	if s == "" {
		return defaultSlug
	}
	return s
}

// NewSceneID derives a scene id from title that is unused in t, adding -2,
// -3, ... on collision.
func NewSceneID(t *domain.Tour, title string) string {
	base := Slugify(title)
	id := base
	for n := 2; t.HasScene(id); n++ {
		id = fmt.Sprintf("%s-%d", base, n)
	}
	return id
}

// NewHotspotID returns an id of the form hs-1a2b3c4d unused in s.
func NewHotspotID(s *domain.Scene) string {
	for {
		id := "hs-" + strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
		if _, i := s.HotspotByID(id); i < 0 {
			return id
		}
	}
}
