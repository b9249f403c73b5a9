package app

import (
	"strings"
	"testing"
)

func TestDecorateExternalLinksMarksOffSiteAnchors(t *testing.T) {
	content := `<p><a href="https://www.monex.com/gold-prices/">Monex</a> and <a href="/design-history">History</a></p>`

	result := decorateExternalLinks(content, "www.americangoldeagle.org")

	if !contains(result, `<a href="https://www.monex.com/gold-prices/" target="_blank" rel="nofollow noopener noreferrer">`) {
		t.Fatalf("external link was not decorated: %s", result)
	}
	if !contains(result, `<a href="/design-history">History</a>`) {
		t.Fatalf("internal link should stay untouched: %s", result)
	}
	if !hasLinkTo(result, "/design-history") {
		t.Fatalf("internal link lost: %s", result)
	}
}

func TestDecorateExternalLinksSkipsOwnHost(t *testing.T) {
	content := `<a class="x" href='https://AmericanGoldEagle.org/resources'>Library</a>`

	result := decorateExternalLinks(content, "www.americangoldeagle.org")

	if result != content {
		t.Fatalf("own-host link should not be decorated: %s", result)
	}
}

func TestDecorateExternalLinksKeepsExistingAttributes(t *testing.T) {
	content := `<a href="https://example.com" rel="me">Me</a><a href="mailto:a@b.c">Mail</a>`

	result := decorateExternalLinks(content, "www.americangoldeagle.org")

	if result != content {
		t.Fatalf("anchor with rel or non-http href should be untouched: %s", result)
	}
}

func TestDecorateExternalLinksIsIdempotent(t *testing.T) {
	content := `<a href="https://www.usmint.gov/">US Mint</a>`

	once := decorateExternalLinks(content, "www.americangoldeagle.org")
	twice := decorateExternalLinks(once, "www.americangoldeagle.org")

	if once != twice {
		t.Fatalf("second pass changed output:\n%s\n%s", once, twice)
	}
	if strings.Count(twice, "noopener") != 1 {
		t.Fatalf("expected one rel attribute: %s", twice)
	}
}

func contains(haystack, needle string) bool {
	return strings.Contains(haystack, needle)
}
