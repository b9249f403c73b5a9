package app

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"bullionsite/internal/pricing"
	"bullionsite/internal/tools/sitemap"
)

// ExportResult summarises a static export.
type ExportResult struct {
	Files     []string
	Fallbacks int
}

// staticFiles are the non-page routes copied verbatim into an export.
var staticFiles = []string{"/llms.txt", "/robots.txt", "/sitemap.xml", "/static/site.css"}

// Export renders every page and static document into outDir. Renders run
// concurrently, at most concurrency at a time, each with its own price fetch.
// Fetches queue on the outbound limiter rather than falling back.
func (s *Server) Export(ctx context.Context, outDir string, concurrency int) (ExportResult, error) {
	if concurrency < 1 {
		concurrency = 1
	}
	ctx = pricing.WaitForLimit(ctx)

	paths := append(sitemap.Paths(s.catalog), staticFiles...)

	var (
		mu     sync.Mutex
		result ExportResult
	)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for _, path := range paths {
		path := path
		g.Go(func() error {
			file, fallback, err := s.exportPath(ctx, outDir, path)
			if err != nil {
				return err
			}
			mu.Lock()
			result.Files = append(result.Files, file)
			if fallback {
				result.Fallbacks++
			}
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return result, err
	}
	return result, nil
}

func (s *Server) exportPath(ctx context.Context, outDir, path string) (string, bool, error) {
	req := httptest.NewRequest(http.MethodGet, path, nil).WithContext(ctx)
	req = req.WithContext(s.logger.With().Str("export", path).Logger().WithContext(req.Context()))

	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		return "", false, fmt.Errorf("export %s: status %d", path, rec.Code)
	}

	file := exportFile(outDir, path)
	if err := os.MkdirAll(filepath.Dir(file), 0o755); err != nil {
		return "", false, fmt.Errorf("export %s: %w", path, err)
	}
	if err := os.WriteFile(file, rec.Body.Bytes(), 0o644); err != nil {
		return "", false, fmt.Errorf("export %s: %w", path, err)
	}

	fallback := rec.Header().Get(priceSourceHeader) == priceSource(false)
	zerolog.Ctx(req.Context()).Debug().Str("file", file).Bool("fallback", fallback).Msg("exported")
	return file, fallback, nil
}

// exportFile maps a route to a file: directories get index.html, documents
// with an extension keep their name.
func exportFile(outDir, path string) string {
	clean := strings.Trim(path, "/")
	if clean == "" {
		return filepath.Join(outDir, "index.html")
	}
	if filepath.Ext(clean) != "" {
		return filepath.Join(outDir, filepath.FromSlash(clean))
	}
	return filepath.Join(outDir, filepath.FromSlash(clean), "index.html")
}
