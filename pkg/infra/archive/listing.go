package archive

import (
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/m-mizutani/idxget/pkg/domain/model"
	"golang.org/x/net/html"
)

// ParseListing extracts the href of every anchor element of an index page,
// in document order. Sort toggles ("?C=N;O=D") and site-root links ("/...")
// are never archive content and are dropped.
func ParseListing(r io.Reader) ([]model.DirectoryEntry, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, err
	}

	var entries []model.DirectoryEntry
	goquery.NewDocumentFromNode(root).Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		href = strings.TrimSpace(href)
		if href == "" || strings.HasPrefix(href, "?") || strings.HasPrefix(href, "/") {
			return
		}
		entries = append(entries, model.DirectoryEntry{Href: href})
	})

	return entries, nil
}
