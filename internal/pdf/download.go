package pdf

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	pdferrors "github.com/a3tai/pdf-form-normalizer/internal/pdf/errors"
)

const (
	// DefaultDownloadTimeout bounds a whole remote fetch
	DefaultDownloadTimeout = 60 * time.Second

	// fallbackDownloadName is used when the URL path carries no usable file name
	fallbackDownloadName = "downloaded.pdf"
)

// Downloader fetches remote PDFs into a local directory
type Downloader struct {
	client      *http.Client
	directory   string
	maxFileSize int64
}

// NewDownloader creates a downloader writing into directory. A nil client
// gets one with DefaultDownloadTimeout.
func NewDownloader(client *http.Client, directory string, maxFileSize int64) *Downloader {
	if client == nil {
		client = &http.Client{Timeout: DefaultDownloadTimeout}
	}
	return &Downloader{
		client:      client,
		directory:   directory,
		maxFileSize: maxFileSize,
	}
}

// Download fetches rawURL and returns the path of the local copy. The file is
// named after the last URL path segment and replaces any earlier download of
// the same name.
func (d *Downloader) Download(ctx context.Context, rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", pdferrors.WrapError(pdferrors.ErrorTypeInvalidInput, "invalid URL", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", pdferrors.NewPDFErrorWithContext(pdferrors.ErrorTypeInvalidInput,
			"unsupported URL scheme", u.Scheme)
	}
	if u.Host == "" {
		return "", pdferrors.NewPDFErrorWithContext(pdferrors.ErrorTypeInvalidInput, "URL has no host", rawURL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return "", pdferrors.WrapError(pdferrors.ErrorTypeInvalidInput, "failed to build request", err)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return "", pdferrors.WrapError(pdferrors.ErrorTypeDownload, "request failed", err).WithContext(rawURL)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", pdferrors.NewPDFErrorWithContext(pdferrors.ErrorTypeDownload,
			"unexpected response status", resp.Status)
	}
	if resp.ContentLength > d.maxFileSize {
		return "", pdferrors.NewPDFErrorWithContext(pdferrors.ErrorTypeDownload, "file too large",
			fmt.Sprintf("%d bytes (max: %d bytes)", resp.ContentLength, d.maxFileSize))
	}

	target := filepath.Join(d.directory, downloadName(u))
	if err := d.store(resp.Body, target); err != nil {
		return "", err
	}
	return target, nil
}

// store copies body to target through a temporary file in the same directory
func (d *Downloader) store(body io.Reader, target string) error {
	tmp, err := os.CreateTemp(d.directory, ".download-*")
	if err != nil {
		return pdferrors.WrapError(pdferrors.ErrorTypeDownload, "failed to create download file", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	n, err := io.Copy(tmp, io.LimitReader(body, d.maxFileSize+1))
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return pdferrors.WrapError(pdferrors.ErrorTypeDownload, "failed to read response body", err)
	}
	if n > d.maxFileSize {
		return pdferrors.NewPDFErrorWithContext(pdferrors.ErrorTypeDownload, "file too large",
			fmt.Sprintf("more than %d bytes", d.maxFileSize))
	}

	if err := os.Rename(tmpName, target); err != nil {
		return pdferrors.WrapError(pdferrors.ErrorTypeDownload, "failed to store download", err).WithFile(target)
	}
	return nil
}

// downloadName picks a local file name from the URL path
func downloadName(u *url.URL) string {
	name := path.Base(u.Path)
	if name == "." || name == "/" || name == ".." || strings.HasPrefix(name, ".") ||
		strings.ContainsAny(name, `/\`) {
		return fallbackDownloadName
	}
	return name
}
