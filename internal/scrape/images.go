package scrape

import (
	"net/url"
	"regexp"
	"strings"
)

var imageAttrRe = regexp.MustCompile(`(?i)(?:src|data-src|data-lazy-src)\s*=\s*["']([^"']+\.(?:jpe?g|png|webp)(?:\?[^"']*)?)["']`)

// Substrings that mark decorative or third-party assets, not vehicle photos.
var imageDenylist = []string{
	"logo",
	"icon",
	"badge",
	"sprite",
	"thumb",
	"placeholder",
	"banner",
	"carfax",
	"facebook",
	"instagram",
	"gravatar",
}

// CollectImages pulls candidate photo URLs out of the page, resolves relative
// paths against the page URL, filters decorative assets and caps the result.
// Order follows document order; duplicates keep their first position.
func CollectImages(html, pageURL string, max int) []string {
	base, err := url.Parse(pageURL)
	if err != nil {
		base = nil
	}

	seen := make(map[string]struct{})
	var images []string
	for _, m := range imageAttrRe.FindAllStringSubmatch(html, -1) {
		raw := strings.TrimSpace(m[1])
		if raw == "" || denied(raw) {
			continue
		}

		resolved := resolveImageURL(base, raw)
		if resolved == "" {
			continue
		}
		if _, ok := seen[resolved]; ok {
			continue
		}
		seen[resolved] = struct{}{}

		images = append(images, resolved)
		if len(images) >= max {
			break
		}
	}
	return images
}

func denied(rawURL string) bool {
	lowered := strings.ToLower(rawURL)
	for _, needle := range imageDenylist {
		if strings.Contains(lowered, needle) {
			return true
		}
	}
	return false
}

func resolveImageURL(base *url.URL, raw string) string {
	if strings.HasPrefix(raw, "//") {
		return "https:" + raw
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	if parsed.IsAbs() {
		return parsed.String()
	}
	if base == nil {
		return ""
	}
	return base.ResolveReference(parsed).String()
}
