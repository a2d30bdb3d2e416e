package http

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"path"
	"slices"
	"strings"
)

var indexTemplate = template.Must(template.New("index").Parse(`<!DOCTYPE HTML PUBLIC "-//W3C//DTD HTML 3.2 Final//EN">
<html>
 <head>
  <title>Index of {{.Path}}</title>
 </head>
 <body>
<h1>Index of {{.Path}}</h1>
<pre><a href="?C=N;O=D">Name</a>                    <a href="?C=M;O=A">Last modified</a>      <a href="?C=S;O=A">Size</a>
<hr>{{if .Parent}}<a href="{{.Parent}}">Parent Directory</a>                             -
{{end}}{{range .Rows}}<a href="{{.Href}}">{{.Name}}</a>{{.Pad}} {{.Modified}}  {{.Size}}
{{end}}<hr></pre>
</body></html>
`))

type indexRow struct {
	Href     string
	Name     string
	Pad      string
	Modified string
	Size     string
}

type indexPage struct {
	Path   string
	Parent string
	Rows   []indexRow
}

// indexHandler renders directories as Apache-style index pages and serves
// regular files as-is.
type indexHandler struct {
	fsys fs.FS
}

func newIndexHandler(fsys fs.FS) *indexHandler {
	return &indexHandler{fsys: fsys}
}

func (h *indexHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	upath := r.URL.Path
	if !strings.HasPrefix(upath, "/") {
		upath = "/" + upath
	}
	cleaned := path.Clean(upath)
	name := strings.TrimPrefix(cleaned, "/")
	if name == "" {
		name = "."
	}

	stat, err := fs.Stat(h.fsys, name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			writeError(w, r, err, http.StatusNotFound)
			return
		}
		writeError(w, r, err, http.StatusInternalServerError)
		return
	}

	if !stat.IsDir() {
		if strings.HasSuffix(upath, "/") {
			writeError(w, r, fs.ErrNotExist, http.StatusNotFound)
			return
		}
		h.serveFile(w, r, name, stat)
		return
	}

	if !strings.HasSuffix(upath, "/") {
		http.Redirect(w, r, upath+"/", http.StatusMovedPermanently)
		return
	}

	entries, err := fs.ReadDir(h.fsys, name)
	if err != nil {
		writeError(w, r, err, http.StatusInternalServerError)
		return
	}
	if strings.Contains(r.URL.RawQuery, "O=D") {
		slices.Reverse(entries)
	}

	dirPath := cleaned
	if dirPath != "/" {
		dirPath += "/"
	}
	page := indexPage{Path: dirPath}
	if name != "." {
		page.Parent = path.Dir(cleaned)
		if page.Parent != "/" {
			page.Parent += "/"
		}
	}

	for _, entry := range entries {
		info, err := entry.Info()
		if err != nil {
			continue
		}
		page.Rows = append(page.Rows, newIndexRow(entry.Name(), info))
	}

	w.Header().Set("Content-Type", "text/html;charset=UTF-8")
	if err := indexTemplate.Execute(w, page); err != nil {
		writeError(w, r, err, http.StatusInternalServerError)
	}
}

// serveFile sends a regular file verbatim. http.ServeFileFS is avoided since it
// redirects any path ending in /index.html to its directory.
func (h *indexHandler) serveFile(w http.ResponseWriter, r *http.Request, name string, stat fs.FileInfo) {
	f, err := h.fsys.Open(name)
	if err != nil {
		writeError(w, r, err, http.StatusInternalServerError)
		return
	}
	defer f.Close()

	content, ok := f.(io.ReadSeeker)
	if !ok {
		data, err := io.ReadAll(f)
		if err != nil {
			writeError(w, r, err, http.StatusInternalServerError)
			return
		}
		content = bytes.NewReader(data)
	}

	http.ServeContent(w, r, stat.Name(), stat.ModTime(), content)
}

func newIndexRow(name string, info fs.FileInfo) indexRow {
	href := url.PathEscape(name)
	if strings.Contains(href, ":") {
		// keep "a:b" from being read as a URL scheme
		href = "./" + href
	}

	row := indexRow{
		Href:     href,
		Name:     name,
		Modified: info.ModTime().Format("2006-01-02 15:04"),
		Size:     "-",
	}
	if info.IsDir() {
		row.Href += "/"
		row.Name += "/"
	} else {
		row.Size = humanSize(info.Size())
	}
	if n := 40 - len(row.Name); n > 0 {
		row.Pad = strings.Repeat(" ", n)
	}

	return row
}

// humanSize formats n the way Apache autoindex does (1.2K, 34M)
func humanSize(n int64) string {
	if n < 1024 {
		return fmt.Sprintf("%d", n)
	}
	value := float64(n)
	for _, unit := range []string{"K", "M", "G", "T"} {
		value /= 1024
		if value < 1024 || unit == "T" {
			if value < 10 {
				return fmt.Sprintf("%.1f%s", value, unit)
			}
			return fmt.Sprintf("%.0f%s", value, unit)
		}
	}
	return fmt.Sprintf("%d", n)
}
