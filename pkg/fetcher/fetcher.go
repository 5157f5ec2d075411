// Package fetcher downloads and unpacks a Python distribution so its
// source can be explored on disk.
//
// It talks to the index's JSON API, prefers wheels (plain zip archives)
// over sdists, and extracts into a private scratch directory. Callers own
// the scratch dir and must call Cleanup when the exploration scope ends;
// nothing is ever installed into the running environment.
package fetcher

import (
	"archive/tar"
	"archive/zip"
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// DefaultIndexURL is the package index queried when none is configured.
const DefaultIndexURL = "https://pypi.org"

// Sentinel errors callers branch on. All are wrapped with the package
// name at the failure site.
var (
	ErrPackageNotFound   = errors.New("package not found on index")
	ErrVersionNotFound   = errors.New("requested version not found")
	ErrNoDistribution    = errors.New("no distribution files for version")
	ErrUnsupportedFormat = errors.New("no distribution in a supported format")
)

// Config controls Client construction.
type Config struct {
	// IndexURL is the package index base URL (DefaultIndexURL when empty).
	IndexURL string

	// Timeout bounds each HTTP request. Defaults to 30s.
	Timeout time.Duration

	// Logger for download progress. If nil, uses slog.Default().
	Logger *slog.Logger
}

// Client acquires packages from a PyPI-compatible index.
type Client struct {
	http     *http.Client
	indexURL string
	logger   *slog.Logger
}

// NewClient creates a Client with the given config (nil for defaults).
func NewClient(config *Config) *Client {
	if config == nil {
		config = &Config{}
	}
	indexURL := strings.TrimSuffix(config.IndexURL, "/")
	if indexURL == "" {
		indexURL = DefaultIndexURL
	}
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		http:     &http.Client{Timeout: timeout},
		indexURL: indexURL,
		logger:   logger,
	}
}

// AcquiredPackage is a downloaded and extracted distribution.
type AcquiredPackage struct {
	// Name is the package name as requested.
	Name string

	// Version is the concrete version that was downloaded.
	Version string

	// ImportRoot is the directory to prepend to the search roots so the
	// package's dotted path resolves.
	ImportRoot string

	scratchDir string
}

// Cleanup deletes the scratch directory. Safe to call more than once.
func (p *AcquiredPackage) Cleanup() error {
	if p.scratchDir == "" {
		return nil
	}
	err := os.RemoveAll(p.scratchDir)
	p.scratchDir = ""
	return err
}

// ParseSpec splits a "name@version" package spec. A missing version or
// the explicit "@latest" marker yield an empty version.
func ParseSpec(spec string) (name, version string) {
	name, version, found := strings.Cut(spec, "@")
	if !found || version == "latest" {
		return name, ""
	}
	return name, version
}

// metadata mirrors the index JSON API response, keeping only the fields
// the acquisition flow reads.
type metadata struct {
	Info struct {
		Version string `json:"version"`
	} `json:"info"`
	Releases map[string][]distribution `json:"releases"`
}

type distribution struct {
	Filename string `json:"filename"`
	URL      string `json:"url"`
}

// Acquire downloads and extracts the package named by spec
// ("name[@version]") and locates its import root.
//
// The returned package must be cleaned up by the caller on every path.
func (c *Client) Acquire(ctx context.Context, spec string) (*AcquiredPackage, error) {
	name, version := ParseSpec(spec)
	if name == "" {
		return nil, fmt.Errorf("empty package name in spec %q", spec)
	}

	meta, err := c.fetchMetadata(ctx, name)
	if err != nil {
		return nil, err
	}

	if version == "" {
		version = meta.Info.Version
	}
	files, ok := meta.Releases[version]
	if !ok {
		return nil, fmt.Errorf("%s@%s: %w", name, version, ErrVersionNotFound)
	}

	dist, err := selectDistribution(files)
	if err != nil {
		return nil, fmt.Errorf("%s@%s: %w", name, version, err)
	}

	scratch, err := os.MkdirTemp("", "modpeek-fetch-*")
	if err != nil {
		return nil, fmt.Errorf("creating scratch dir: %w", err)
	}

	acquired := &AcquiredPackage{Name: name, Version: version, scratchDir: scratch}

	c.logger.Info("downloading package",
		"package", name,
		"version", version,
		"file", dist.Filename)

	archive := filepath.Join(scratch, dist.Filename)
	if err := c.download(ctx, dist.URL, archive); err != nil {
		_ = acquired.Cleanup()
		return nil, fmt.Errorf("downloading %s: %w", dist.Filename, err)
	}

	extractDir := filepath.Join(scratch, "extracted")
	if err := extract(archive, extractDir); err != nil {
		_ = acquired.Cleanup()
		return nil, fmt.Errorf("extracting %s: %w", dist.Filename, err)
	}

	acquired.ImportRoot = findImportRoot(extractDir, normalizeName(name))
	return acquired, nil
}

func (c *Client) fetchMetadata(ctx context.Context, name string) (*metadata, error) {
	url := fmt.Sprintf("%s/pypi/%s/json", c.indexURL, name)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("querying index for %s: %w", name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%s: %w", name, ErrPackageNotFound)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("index returned %s for %s", resp.Status, name)
	}

	var meta metadata
	if err := json.NewDecoder(resp.Body).Decode(&meta); err != nil {
		return nil, fmt.Errorf("decoding metadata for %s: %w", name, err)
	}
	return &meta, nil
}

// selectDistribution prefers wheels over sdists. Wheels are zip archives
// laid out exactly as imported, so no build step is needed.
func selectDistribution(files []distribution) (*distribution, error) {
	if len(files) == 0 {
		return nil, ErrNoDistribution
	}

	for _, f := range files {
		if strings.HasSuffix(f.Filename, ".whl") {
			return &f, nil
		}
	}
	for _, f := range files {
		if strings.HasSuffix(f.Filename, ".tar.gz") || strings.HasSuffix(f.Filename, ".zip") {
			return &f, nil
		}
	}
	return nil, ErrUnsupportedFormat
}

func (c *Client) download(ctx context.Context, url, dest string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download returned %s", resp.Status)
	}

	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, resp.Body); err != nil {
		return err
	}
	return out.Close()
}

// extract unpacks a wheel/zip or tar.gz archive into dest.
func extract(archive, dest string) error {
	switch {
	case strings.HasSuffix(archive, ".whl"), strings.HasSuffix(archive, ".zip"):
		return extractZip(archive, dest)
	case strings.HasSuffix(archive, ".tar.gz"):
		return extractTarGz(archive, dest)
	default:
		return fmt.Errorf("%s: %w", filepath.Base(archive), ErrUnsupportedFormat)
	}
}

func extractZip(archive, dest string) error {
	reader, err := zip.OpenReader(archive)
	if err != nil {
		return err
	}
	defer reader.Close()

	for _, file := range reader.File {
		target, err := safeJoin(dest, file.Name)
		if err != nil {
			return err
		}

		if file.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0o755); err != nil {
				return err
			}
			continue
		}

		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return err
		}

		src, err := file.Open()
		if err != nil {
			return err
		}
		err = writeFile(target, src)
		src.Close()
		if err != nil {
			return err
		}
	}
	return nil
}

func extractTarGz(archive, dest string) error {
	f, err := os.Open(archive)
	if err != nil {
		return err
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return err
	}
	defer gz.Close()

	tr := tar.NewReader(gz)
	for {
		header, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}

		target, err := safeJoin(dest, header.Name)
		if err != nil {
			return err
		}

		switch header.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0o755); err != nil {
				return err
			}
		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return err
			}
			if err := writeFile(target, tr); err != nil {
				return err
			}
		}
	}
}

// safeJoin joins an archive member path under dest, rejecting entries
// that would escape it.
func safeJoin(dest, name string) (string, error) {
	target := filepath.Join(dest, filepath.FromSlash(name))
	if !strings.HasPrefix(target, filepath.Clean(dest)+string(os.PathSeparator)) {
		return "", fmt.Errorf("archive entry escapes extraction dir: %s", name)
	}
	return target, nil
}

func writeFile(dest string, src io.Reader) error {
	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, src); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// normalizeName maps a distribution name to the directory Python imports
// it by ("my-package" installs as "my_package").
func normalizeName(name string) string {
	return strings.ReplaceAll(strings.ToLower(name), "-", "_")
}

// findImportRoot locates the directory that should serve as a search
// root for the extracted package.
//
// Wheels place the import package at the archive root. Sdists nest it
// under a "<name>-<version>/" directory, sometimes with a src/ layout,
// so the project descriptor (setup.py or pyproject.toml) is used to find
// the project dir first.
func findImportRoot(extractDir, normalized string) string {
	if isImportablePackage(filepath.Join(extractDir, normalized)) {
		return extractDir
	}

	if projectDir := findProjectDir(extractDir); projectDir != "" {
		if isImportablePackage(filepath.Join(projectDir, normalized)) {
			return projectDir
		}
		srcDir := filepath.Join(projectDir, "src")
		if isImportablePackage(filepath.Join(srcDir, normalized)) {
			return srcDir
		}
		return projectDir
	}

	return extractDir
}

// findProjectDir scans the extraction root (and one level down) for a
// directory carrying a project descriptor.
func findProjectDir(extractDir string) string {
	if hasProjectDescriptor(extractDir) {
		return extractDir
	}

	entries, err := os.ReadDir(extractDir)
	if err != nil {
		return ""
	}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		dir := filepath.Join(extractDir, entry.Name())
		if hasProjectDescriptor(dir) {
			return dir
		}
	}
	return ""
}

func hasProjectDescriptor(dir string) bool {
	for _, marker := range []string{"setup.py", "pyproject.toml"} {
		if info, err := os.Stat(filepath.Join(dir, marker)); err == nil && info.Mode().IsRegular() {
			return true
		}
	}
	return false
}

func isImportablePackage(dir string) bool {
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return false
	}
	marker, err := os.Stat(filepath.Join(dir, "__init__.py"))
	return err == nil && marker.Mode().IsRegular()
}
