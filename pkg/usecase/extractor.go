package usecase

import (
	"context"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/idxget/pkg/domain/interfaces"
	"github.com/m-mizutani/idxget/pkg/domain/model"
	"github.com/m-mizutani/idxget/pkg/utils/logging"
)

type openDecoder func(r io.Reader) (io.ReadCloser, error)

type extractor struct {
	decoders map[string]openDecoder
}

// NewExtractor creates an Extractor handling .gz and .zst files
func NewExtractor() interfaces.Extractor {
	return &extractor{
		decoders: map[string]openDecoder{
			".gz": func(r io.Reader) (io.ReadCloser, error) {
				zr, err := gzip.NewReader(r)
				if err != nil {
					return nil, err
				}
				return zr, nil
			},
			".zst": func(r io.Reader) (io.ReadCloser, error) {
				dec, err := zstd.NewReader(r)
				if err != nil {
					return nil, err
				}
				return dec.IOReadCloser(), nil
			},
		},
	}
}

// Extract scans the whole tree below root and decompresses every file with a
// known suffix into its sibling without the suffix. The compressed original
// is kept and an existing sibling is overwritten. A file that fails to decode
// is logged and skipped; errors walking the tree abort the pass.
func (uc *extractor) Extract(ctx context.Context, root string) (*model.ExtractResult, error) {
	logger := logging.From(ctx)
	result := &model.ExtractResult{}

	logger.Info("Extracting compressed files", "root", root)

	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}

		ext := filepath.Ext(d.Name())
		open, ok := uc.decoders[ext]
		if !ok {
			return nil
		}

		target := strings.TrimSuffix(p, ext)
		if err := decompressFile(p, target, open); err != nil {
			logger.Error("Failed to extract file", "path", p, "error", err)
			result.Failed = append(result.Failed, p)
			return nil
		}

		logger.Info("Extracted file", "source", p, "target", target)
		result.Extracted = append(result.Extracted, target)
		return nil
	})
	if err != nil {
		return result, goerr.Wrap(err, "failed to walk output directory", goerr.V("root", root))
	}

	return result, nil
}

func decompressFile(src, dst string, open openDecoder) error {
	in, err := os.Open(src)
	if err != nil {
		return goerr.Wrap(err, "failed to open compressed file", goerr.V("path", src))
	}
	defer in.Close()

	dec, err := open(in)
	if err != nil {
		return goerr.Wrap(err, "failed to read compressed header", goerr.V("path", src))
	}
	defer dec.Close()

	out, err := os.Create(dst)
	if err != nil {
		return goerr.Wrap(err, "failed to create extracted file", goerr.V("path", dst))
	}

	if _, err := io.Copy(out, dec); err != nil {
		_ = out.Close()
		_ = os.Remove(dst)
		return goerr.Wrap(err, "failed to decompress", goerr.V("path", src))
	}

	if err := out.Close(); err != nil {
		return goerr.Wrap(err, "failed to close extracted file", goerr.V("path", dst))
	}
	return nil
}
