package usecase

import (
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/idxget/pkg/domain/types"
)

// ResolveURL resolves ref against base the way a browser resolves an anchor
// href against the current page URL. Absolute refs pass through unchanged.
func ResolveURL(base, ref string) (string, error) {
	baseURL, err := url.Parse(base)
	if err != nil {
		return "", goerr.Wrap(err, "failed to parse base URL", goerr.V("base", base))
	}
	refURL, err := url.Parse(ref)
	if err != nil {
		return "", goerr.Wrap(err, "failed to parse reference", goerr.V("ref", ref))
	}

	return baseURL.ResolveReference(refURL).String(), nil
}

// canonicalDir normalizes a directory URL so that equivalent spellings compare
// equal: lower-case host, cleaned path with a trailing slash, no query or
// fragment. Percent-encoding of the path is kept.
func canonicalDir(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", goerr.Wrap(err, "failed to parse directory URL", goerr.V("url", rawURL))
	}

	u.Host = strings.ToLower(u.Host)
	u.RawQuery = ""
	u.ForceQuery = false
	u.Fragment = ""
	u.RawFragment = ""

	// clean the escaped form so encoded slashes stay part of their segment
	p := path.Clean("/" + u.EscapedPath())
	if p != "/" {
		p += "/"
	}
	unescaped, err := url.PathUnescape(p)
	if err != nil {
		return "", goerr.Wrap(err, "failed to unescape directory path", goerr.V("url", rawURL))
	}
	u.Path = unescaped
	u.RawPath = p

	return u.String(), nil
}

// LocalPath derives the local target of fileURL inside outputDir.
//
// Without preserve the file lands directly in outputDir. With preserve the
// URL path segments strictly between the first segment equal to anchor and
// the file name are mirrored below outputDir. Missing intermediate
// directories are created.
//
// Errors tagged with types.ErrPath reject a single file: missing anchor,
// dot segments, separators hidden in escaped segments, or a result that
// would escape outputDir. Directory creation failures are returned untagged.
func LocalPath(fileURL, outputDir, anchor string, preserve bool) (string, error) {
	u, err := url.Parse(fileURL)
	if err != nil {
		return "", goerr.Wrap(types.ErrPath, "malformed file URL",
			goerr.V("url", fileURL), goerr.V("cause", err.Error()))
	}

	segments, err := splitPath(u.EscapedPath())
	if err != nil {
		return "", goerr.Wrap(types.ErrPath, "unsafe path segment in file URL",
			goerr.V("url", fileURL), goerr.V("cause", err.Error()))
	}
	if len(segments) == 0 || strings.HasSuffix(u.Path, "/") {
		return "", goerr.Wrap(types.ErrPath, "file URL has no file name", goerr.V("url", fileURL))
	}
	name := segments[len(segments)-1]

	var subdirs []string
	if preserve {
		idx := -1
		for i, seg := range segments[:len(segments)-1] {
			if seg == anchor {
				idx = i
				break
			}
		}
		if idx < 0 {
			return "", goerr.Wrap(types.ErrPath, "anchor segment not found in file URL",
				goerr.V("url", fileURL), goerr.V("anchor", anchor))
		}
		subdirs = segments[idx+1 : len(segments)-1]
	}

	elems := append([]string{outputDir}, subdirs...)
	target := filepath.Join(append(elems, name)...)

	if err := confine(outputDir, target); err != nil {
		return "", goerr.Wrap(types.ErrPath, "local path escapes output directory",
			goerr.V("url", fileURL), goerr.V("path", target), goerr.V("cause", err.Error()))
	}

	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return "", goerr.Wrap(err, "failed to create directory", goerr.V("dir", filepath.Dir(target)))
	}

	return target, nil
}

// splitPath splits an escaped URL path into unescaped segments, dropping
// empty ones and rejecting anything that is not a plain file name.
func splitPath(escaped string) ([]string, error) {
	var segments []string
	for _, raw := range strings.Split(escaped, "/") {
		if raw == "" {
			continue
		}
		seg, err := url.PathUnescape(raw)
		if err != nil {
			return nil, err
		}
		switch {
		case seg == "." || seg == "..":
			return nil, goerr.New("dot segment", goerr.V("segment", seg))
		case strings.ContainsAny(seg, `/\`) || strings.ContainsRune(seg, 0):
			return nil, goerr.New("separator in segment", goerr.V("segment", seg))
		}
		segments = append(segments, seg)
	}
	return segments, nil
}

// confine checks that target is strictly inside root
func confine(root, target string) error {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return err
	}
	absTarget, err := filepath.Abs(target)
	if err != nil {
		return err
	}

	rel, err := filepath.Rel(absRoot, absTarget)
	if err != nil {
		return err
	}
	if rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) || filepath.IsAbs(rel) {
		return goerr.New("path is outside root", goerr.V("root", absRoot), goerr.V("target", absTarget))
	}
	return nil
}
