// Package patharchive compresses a snapshot directory into a single tar
// archive, gzip or zstd compressed. Both compressors parallelize internally,
// so one archiving run already utilizes the available cores.
package patharchive

import (
	"archive/tar"
	"bufio"
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"
	"github.com/klauspost/pgzip"

	"pixelgardenlabs.io/pgl-sync/pkg/plog"
	"pixelgardenlabs.io/pgl-sync/pkg/pool"
)

// Archiver writes tar archives of directory trees. It is stateless between
// runs and safe for concurrent use.
type Archiver struct {
	format  Format
	bufPool *pool.FixedBufferPool
	bufSize int64
}

// NewArchiver creates an Archiver for the given format with the given I/O
// buffer size in kilobytes.
func NewArchiver(format Format, bufferSizeKB int) *Archiver {
	if bufferSizeKB <= 0 {
		bufferSizeKB = 256
	}
	size := int64(bufferSizeKB) * 1024
	return &Archiver{
		format:  format,
		bufPool: pool.NewFixedBuffer(size),
		bufSize: size,
	}
}

// Compress writes the tree rooted at srcDir into the archive file at
// archivePath. The archive is written to a temp file in the destination
// directory first and renamed into place, so a failed run never leaves a
// half-written archive under the final name.
func (a *Archiver) Compress(ctx context.Context, srcDir, archivePath string) (retErr error) {
	plog.Notice("COMPRESS", "source", srcDir, "archive", archivePath)

	info, err := os.Stat(srcDir)
	if err != nil {
		return fmt.Errorf("cannot access archive source %s: %w", srcDir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("archive source %s is not a directory", srcDir)
	}

	tmpFile, err := os.CreateTemp(filepath.Dir(archivePath), "pgl-sync-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp archive: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		if retErr != nil {
			tmpFile.Close()
			os.Remove(tmpPath)
		}
	}()

	if err := a.writeTar(ctx, srcDir, tmpFile); err != nil {
		return err
	}

	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp archive: %w", err)
	}
	if err := os.Rename(tmpPath, archivePath); err != nil {
		return fmt.Errorf("failed to rename temp archive to final path: %w", err)
	}
	return nil
}

func (a *Archiver) writeTar(ctx context.Context, srcDir string, out io.Writer) (retErr error) {
	bufWriter := bufio.NewWriterSize(out, int(a.bufSize))

	var compressedWriter io.WriteCloser
	switch a.format {
	case TarZst:
		zstdWriter, err := zstd.NewWriter(bufWriter)
		if err != nil {
			return fmt.Errorf("failed to create zstd writer: %w", err)
		}
		compressedWriter = zstdWriter
	default:
		pgzipWriter, err := pgzip.NewWriterLevel(bufWriter, pgzip.DefaultCompression)
		if err != nil {
			return fmt.Errorf("failed to create gzip writer: %w", err)
		}
		compressedWriter = pgzipWriter
	}

	tarWriter := tar.NewWriter(compressedWriter)
	defer func() {
		if err := tarWriter.Close(); err != nil && retErr == nil {
			retErr = fmt.Errorf("tar writer close failed: %w", err)
		}
		if err := compressedWriter.Close(); err != nil && retErr == nil {
			retErr = fmt.Errorf("compressed writer close failed: %w", err)
		}
		if err := bufWriter.Flush(); err != nil && retErr == nil {
			retErr = fmt.Errorf("buffer flush failed: %w", err)
		}
	}()

	bufPtr := a.bufPool.Get()
	defer a.bufPool.Put(bufPtr)

	return filepath.WalkDir(srcDir, func(absSrcPath string, d fs.DirEntry, walkErr error) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return fmt.Errorf("failed to get file info for %s: %w", absSrcPath, err)
		}

		relPath, err := filepath.Rel(srcDir, absSrcPath)
		if err != nil {
			return fmt.Errorf("failed to get relative path for %s: %w", absSrcPath, err)
		}
		relPath = filepath.ToSlash(relPath)

		plog.Notice("ADD", "file", relPath)

		if info.Mode()&os.ModeSymlink != 0 {
			return a.writeSymlink(tarWriter, absSrcPath, relPath, info)
		}
		return a.writeFile(tarWriter, absSrcPath, relPath, info, bufPtr)
	})
}

func (a *Archiver) writeSymlink(tw *tar.Writer, absSrcPath, relPath string, info os.FileInfo) error {
	linkTarget, err := os.Readlink(absSrcPath)
	if err != nil {
		return fmt.Errorf("failed to read link %s: %w", absSrcPath, err)
	}
	header, err := tar.FileInfoHeader(info, linkTarget)
	if err != nil {
		return fmt.Errorf("failed to create tar header for %s: %w", relPath, err)
	}
	header.Name = relPath
	return tw.WriteHeader(header)
}

func (a *Archiver) writeFile(tw *tar.Writer, absSrcPath, relPath string, info os.FileInfo, bufPtr *[]byte) error {
	file, err := os.Open(absSrcPath)
	if err != nil {
		return fmt.Errorf("failed to open file %s: %w", absSrcPath, err)
	}
	defer file.Close()

	header, err := tar.FileInfoHeader(info, "")
	if err != nil {
		return fmt.Errorf("failed to create tar header for %s: %w", relPath, err)
	}
	header.Name = relPath

	if err := tw.WriteHeader(header); err != nil {
		return fmt.Errorf("failed to write tar header for %s: %w", relPath, err)
	}
	if _, err := io.CopyBuffer(tw, file, *bufPtr); err != nil {
		return fmt.Errorf("failed to archive content of %s: %w", absSrcPath, err)
	}
	return nil
}
