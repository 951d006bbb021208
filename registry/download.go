package registry

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/theoremus-urban-solutions/transit-fusion/errs"
)

const archiveName = "gtfs.zip"

// DownloadAndExtract fetches code's static archive into <baseDir>/<code>/gtfs.zip
// and unpacks it flat into the same directory. The directory is returned.
//
// The archive is rejected as a whole, before anything is written, when any entry
// would land outside the agency directory.
func (r *Registry) DownloadAndExtract(ctx context.Context, code string) (string, error) {
	feed, err := r.Get(code)
	if err != nil {
		return "", err
	}
	dir := r.AgencyDir(code)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create %s: %w", dir, err)
	}

	start := time.Now()
	log := r.logger.With(zap.String("agency", code), zap.String("url", feed.StaticURL))
	log.Info("starting GTFS download")

	zipPath := filepath.Join(dir, archiveName)
	size, err := r.fetchArchive(ctx, feed.StaticURL, zipPath)
	if err != nil {
		log.Error("failed to download GTFS", zap.Error(err), zap.Duration("duration", time.Since(start)))
		return "", err
	}
	log.Debug("archive written", zap.Int64("size_bytes", size), zap.String("path", zipPath))

	n, err := extractArchive(zipPath, dir)
	if err != nil {
		log.Error("failed to extract GTFS", zap.Error(err))
		return "", err
	}

	log.Info("GTFS download completed",
		zap.Int("files_extracted", n),
		zap.Float64("size_mb", float64(size)/(1024*1024)),
		zap.Duration("duration", time.Since(start)),
	)
	return dir, nil
}

func (r *Registry) fetchArchive(ctx context.Context, url, dest string) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, errs.Wrap(errs.ErrNetwork, err, "create request")
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return 0, errs.Wrap(errs.ErrNetwork, err, "failed to fetch %s", url)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return 0, errs.Wrap(errs.ErrNetwork, nil, "HTTP %d from %s", resp.StatusCode, url)
	}

	tmp, err := os.CreateTemp(filepath.Dir(dest), "gtfs-*.zip.part")
	if err != nil {
		return 0, err
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	size, err := io.Copy(tmp, resp.Body)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return 0, errs.Wrap(errs.ErrNetwork, err, "read body from %s", url)
	}
	if err := os.Rename(tmp.Name(), dest); err != nil {
		return 0, err
	}
	return size, nil
}

// extractArchive unpacks path into dir and returns the number of files written.
func extractArchive(path, dir string) (int, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return 0, errs.Wrap(errs.ErrArchive, err, "open %s", path)
	}
	defer func() { _ = zr.Close() }()

	targets := make([]string, len(zr.File))
	for i, f := range zr.File {
		target, err := safeJoin(dir, f.Name)
		if err != nil {
			return 0, err
		}
		targets[i] = target
	}

	n := 0
	for i, f := range zr.File {
		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(targets[i], 0o755); err != nil {
				return n, err
			}
			continue
		}
		if err := extractFile(f, targets[i]); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

// safeJoin resolves name under dir and rejects anything that escapes it.
func safeJoin(dir, name string) (string, error) {
	if name == "" || filepath.IsAbs(name) || strings.HasPrefix(name, "/") || strings.Contains(name, `\`) {
		return "", errs.Wrap(errs.ErrArchive, nil, "unsafe entry %q", name)
	}
	target := filepath.Join(dir, name)
	rel, err := filepath.Rel(dir, target)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", errs.Wrap(errs.ErrArchive, nil, "entry %q escapes %s", name, dir)
	}
	return target, nil
}

func extractFile(f *zip.File, target string) error {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}
	rc, err := f.Open()
	if err != nil {
		return errs.Wrap(errs.ErrArchive, err, "open entry %s", f.Name)
	}
	defer func() { _ = rc.Close() }()

	out, err := os.Create(target)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, rc); err != nil {
		_ = out.Close()
		return errs.Wrap(errs.ErrArchive, err, "write entry %s", f.Name)
	}
	return out.Close()
}
