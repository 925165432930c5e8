package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"

	"tilestats/internal/config"
)

// Stdin is the location that selects standard input.
const Stdin = "-"

// Open returns a reader over the decompressed content at location.
func Open(ctx context.Context, cfg *config.Config, location string, stdin io.Reader) (io.ReadCloser, error) {
	location = strings.TrimSpace(location)
	if location == "" {
		return nil, errors.New("input location is empty")
	}

	raw, err := openRaw(ctx, cfg, location, stdin)
	if err != nil {
		return nil, err
	}

	rc, err := decompress(location, raw)
	if err != nil {
		_ = raw.Close()
		return nil, err
	}
	return rc, nil
}

func openRaw(ctx context.Context, cfg *config.Config, location string, stdin io.Reader) (io.ReadCloser, error) {
	switch {
	case location == Stdin:
		if stdin == nil {
			stdin = os.Stdin
		}
		return io.NopCloser(stdin), nil
	case IsS3(location):
		bucket, key, err := ParseS3URI(location)
		if err != nil {
			return nil, err
		}
		var s3cfg config.S3
		if cfg != nil {
			s3cfg = cfg.S3
		}
		return openS3(ctx, s3cfg, bucket, key)
	default:
		path, err := config.ExpandPath(location)
		if err != nil {
			return nil, err
		}
		file, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open input: %w", err)
		}
		return file, nil
	}
}

type stackedReader struct {
	io.Reader
	closers []func() error
}

func (s *stackedReader) Close() error {
	var errs []error
	for _, closeFn := range s.closers {
		if err := closeFn(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func decompress(location string, raw io.ReadCloser) (io.ReadCloser, error) {
	name := strings.ToLower(location)
	switch {
	case strings.HasSuffix(name, ".gz"):
		gz, err := gzip.NewReader(raw)
		if err != nil {
			return nil, fmt.Errorf("open gzip input: %w", err)
		}
		return &stackedReader{Reader: gz, closers: []func() error{gz.Close, raw.Close}}, nil
	case strings.HasSuffix(name, ".zst"), strings.HasSuffix(name, ".zstd"):
		dec, err := zstd.NewReader(raw)
		if err != nil {
			return nil, fmt.Errorf("open zstd input: %w", err)
		}
		closeDec := func() error {
			dec.Close()
			return nil
		}
		return &stackedReader{Reader: dec, closers: []func() error{closeDec, raw.Close}}, nil
	default:
		return raw, nil
	}
}
