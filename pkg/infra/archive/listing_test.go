package archive_test

import (
	"strings"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/idxget/pkg/domain/model"
	"github.com/m-mizutani/idxget/pkg/infra/archive"
)

const apacheIndex = `<!DOCTYPE HTML PUBLIC "-//W3C//DTD HTML 3.2 Final//EN">
<html>
 <head>
  <title>Index of /pub/databases/uniprot/knowledgebase/reference_proteomes/Archaea</title>
 </head>
 <body>
<h1>Index of /pub/databases/uniprot/knowledgebase/reference_proteomes/Archaea</h1>
<pre><a href="?C=N;O=D">Name</a> <a href="?C=M;O=A">Last modified</a> <a href="?C=S;O=A">Size</a>
<hr><a href="/pub/databases/uniprot/knowledgebase/reference_proteomes/">Parent Directory</a>
<a href="UP000000242/">UP000000242/</a>            2024-05-29 10:33    -
<a href="UP000000792/">UP000000792/</a>            2024-05-29 10:33    -
<a href="README">README</a>                        2024-05-29 10:33  1.2K
<a href="/robots.txt">robots</a>
<a name="no-href">anchor without target</a>
<a href="">empty</a>
<hr></pre>
</body></html>`

func TestParseListing(t *testing.T) {
	entries, err := archive.ParseListing(strings.NewReader(apacheIndex))
	gt.NoError(t, err)

	gt.Equal(t, entries, []model.DirectoryEntry{
		{Href: "UP000000242/"},
		{Href: "UP000000792/"},
		{Href: "README"},
	})
}

func TestParseListing_Filtering(t *testing.T) {
	tests := []struct {
		name string
		href string
		keep bool
	}{
		{name: "sort link", href: "?C=N;O=D", keep: false},
		{name: "absolute root link", href: "/robots.txt", keep: false},
		{name: "parent directory absolute", href: "/pub/", keep: false},
		{name: "sub-directory", href: "UP000000242/", keep: true},
		{name: "file", href: "UP000000242_2287.fasta.gz", keep: true},
		{name: "relative parent", href: "../", keep: true},
		{name: "absolute URL", href: "https://example.com/x.fasta.gz", keep: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page := `<html><body><a href="` + tt.href + `">x</a></body></html>`
			entries, err := archive.ParseListing(strings.NewReader(page))
			gt.NoError(t, err)

			if tt.keep {
				gt.Equal(t, entries, []model.DirectoryEntry{{Href: tt.href}})
			} else {
				gt.Number(t, len(entries)).Equal(0)
			}
		})
	}
}

func TestParseListing_NotHTML(t *testing.T) {
	// The HTML parser is lenient: arbitrary bytes yield an empty listing
	entries, err := archive.ParseListing(strings.NewReader("plain text, no links"))
	gt.NoError(t, err)
	gt.Number(t, len(entries)).Equal(0)
}
