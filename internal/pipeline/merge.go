package pipeline

import (
	"fmt"
	"io"
	"os"

	"github.com/hlsget/hlsget/internal/domain"
)

// Merge concatenates the artifacts at orderedPaths, in the order given,
// into outPath. Each input is streamed through rather than buffered whole.
// A partial output file is left in place on failure; callers decide what to
// do with it.
func Merge(orderedPaths []string, outPath string) error {
	out, err := os.Create(outPath)
	if err != nil {
		return domain.WrapErr(domain.CodeIO, fmt.Errorf("failed to create output file: %w", err))
	}
	defer out.Close()

	for _, path := range orderedPaths {
		if err := appendSegment(out, path); err != nil {
			return domain.WrapErr(domain.CodeIO, err)
		}
	}

	return nil
}

func appendSegment(dst io.Writer, srcPath string) error {
	src, err := os.Open(srcPath)
	if err != nil {
		return fmt.Errorf("missing segment file %s: %w", srcPath, err)
	}
	defer src.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return fmt.Errorf("failed to append %s: %w", srcPath, err)
	}

	return nil
}
