package app

import (
	"net/url"
	"regexp"
	"strings"
)

var anchorTag = regexp.MustCompile(`<a\s[^>]*>`)
var doubleQuoteHref = regexp.MustCompile(`\shref="([^"]+)"`)
var singleQuoteHref = regexp.MustCompile(`\shref='([^']+)'`)

const externalLinkAttrs = ` target="_blank" rel="nofollow noopener noreferrer"`

// decorateExternalLinks opens off-site anchors in a new tab without passing
// referrer or ranking signals. Relative links and links back to host are left
// alone, as are anchors that already set target or rel.
func decorateExternalLinks(content, host string) string {
	return anchorTag.ReplaceAllStringFunc(content, func(tag string) string {
		href := hrefOf(tag)
		if href == "" || !isExternal(href, host) {
			return tag
		}
		if strings.Contains(tag, " target=") || strings.Contains(tag, " rel=") {
			return tag
		}
		return strings.TrimSuffix(tag, ">") + externalLinkAttrs + ">"
	})
}

func hrefOf(tag string) string {
	if sub := doubleQuoteHref.FindStringSubmatch(tag); len(sub) == 2 {
		return sub[1]
	}
	if sub := singleQuoteHref.FindStringSubmatch(tag); len(sub) == 2 {
		return sub[1]
	}
	return ""
}

func isExternal(href, host string) bool {
	if !strings.HasPrefix(href, "http://") && !strings.HasPrefix(href, "https://") {
		return false
	}
	u, err := url.Parse(href)
	if err != nil || u.Host == "" {
		return false
	}
	return !sameHost(u.Hostname(), host)
}

// sameHost compares hostnames ignoring case and a leading "www.".
func sameHost(a, b string) bool {
	a = strings.TrimPrefix(strings.ToLower(a), "www.")
	b = strings.TrimPrefix(strings.ToLower(b), "www.")
	return a == b
}

func hasLinkTo(content, target string) bool {
	return strings.Contains(content, `href="`+target+`"`) || strings.Contains(content, `href='`+target+`'`)
}
