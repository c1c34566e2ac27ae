package report

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

// ErrChromeNotFound is returned by WritePDF when no Chrome or Chromium binary
// can be located.
var ErrChromeNotFound = errors.New("chrome binary not found")

const pdfTimeout = 60 * time.Second

// WritePDF prints the HTML report at htmlPath to pdfPath with headless Chrome.
func (a *Assembler) WritePDF(ctx context.Context, htmlPath, pdfPath string) error {
	chromeBin := findChromeBinary(a.chromeBin)
	if chromeBin == "" {
		return ErrChromeNotFound
	}
	a.logger.Debug("[report] using Chrome at %s", chromeBin)

	abs, err := filepath.Abs(htmlPath)
	if err != nil {
		return fmt.Errorf("report: resolve %q: %w", htmlPath, err)
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("allow-file-access-from-files", true),
		chromedp.ExecPath(chromeBin),
	)
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	var pdf []byte
	err = a.retry.DoContext(ctx, "print pdf", func() error {
		tabCtx, cancel := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(string, ...interface{}) {}))
		defer cancel()
		tabCtx, cancelTimeout := context.WithTimeout(tabCtx, pdfTimeout)
		defer cancelTimeout()

		return chromedp.Run(tabCtx,
			chromedp.Navigate("file://"+filepath.ToSlash(abs)),
			chromedp.WaitReady("body"),
			chromedp.ActionFunc(func(ctx context.Context) error {
				b, _, err := page.PrintToPDF().WithPrintBackground(true).Do(ctx)
				if err != nil {
					return fmt.Errorf("print to pdf: %w", err)
				}
				pdf = b
				return nil
			}),
		)
	})
	if err != nil {
		return fmt.Errorf("report: %w", err)
	}

	if err := os.WriteFile(pdfPath, pdf, 0644); err != nil {
		return fmt.Errorf("report: write %q: %w", pdfPath, err)
	}
	a.logger.Info("[report] PDF report written to %s (%d bytes)", pdfPath, len(pdf))
	return nil
}

// findChromeBinary returns configured when set, else looks on PATH, then in
// the usual install locations.
func findChromeBinary(configured string) string {
	if configured != "" {
		return configured
	}

	names := []string{"google-chrome-stable", "google-chrome", "chromium", "chromium-browser"}
	for _, name := range names {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}

	paths := []string{
		"/usr/bin/google-chrome-stable",
		"/usr/bin/google-chrome",
		"/usr/bin/chromium-browser",
		"/usr/bin/chromium",
		"/snap/bin/chromium",
		"/opt/google/chrome/google-chrome",
		"/Applications/Google Chrome.app/Contents/MacOS/Google Chrome",
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	return ""
}
