package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/bryanwahyu/rxscan/internal/domain/reports"
	"github.com/bryanwahyu/rxscan/internal/web/client"
	"github.com/bryanwahyu/rxscan/internal/web/dom"
	"github.com/bryanwahyu/rxscan/internal/web/page"
	"github.com/bryanwahyu/rxscan/internal/web/uploader"
)

type analyzeOptions struct {
	server   string
	out      string
	pagePath string
	remote   bool
	timeout  time.Duration
}

func analyzeCmd() *cobra.Command {
	var opts analyzeOptions

	cmd := &cobra.Command{
		Use:   "analyze <image>",
		Short: "Upload an image and write the rendered report page",
		Long: `Upload an image to the analysis server and render the report into
the upload page. The page is written to --out, or stdout when --out is "-".`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd.Context(), opts, args[0], cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	cmd.Flags().StringVar(&opts.server, "server", "http://localhost:5000", "Analysis server base URL")
	cmd.Flags().StringVarP(&opts.out, "out", "o", "-", "Output file for the rendered page")
	cmd.Flags().StringVar(&opts.pagePath, "page", "", "Render into this HTML file instead of the embedded page")
	cmd.Flags().BoolVar(&opts.remote, "remote-page", false, "Render into the page served by --server")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 2*time.Minute, "Request timeout")

	return cmd
}

func runAnalyze(ctx context.Context, opts analyzeOptions, imagePath string, stdout, stderr io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	cli := client.New(opts.server, opts.timeout)

	doc, err := loadPage(ctx, cli, opts)
	if err != nil {
		return fmt.Errorf("load page: %w", err)
	}

	ctrl := uploader.New(doc, cli,
		uploader.WithLogger(logger),
		uploader.WithNotifier(uploader.NotifierFunc(func(msg string) {
			fmt.Fprintln(stderr, msg)
		})),
	)

	if imagePath != "" {
		up, err := readImage(imagePath)
		if err != nil {
			return err
		}
		ctrl.SelectFile(up)
	}

	submitErr := ctrl.Submit(ctx)
	if errors.Is(submitErr, uploader.ErrNoFile) {
		return submitErr
	}
	if st := doc.ByID(uploader.DefaultRegions().Status); st != nil {
		fmt.Fprintln(stderr, st.Text())
	}
	if err := writePage(doc, opts.out, stdout); err != nil {
		return err
	}
	return submitErr
}

func loadPage(ctx context.Context, cli *client.Client, opts analyzeOptions) (*dom.Document, error) {
	if opts.remote {
		return cli.FetchPage(ctx)
	}
	return page.LoadFile(opts.pagePath)
}

func readImage(path string) (reports.Upload, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return reports.Upload{}, err
	}
	ct := mime.TypeByExtension(filepath.Ext(path))
	if ct == "" {
		ct = http.DetectContentType(data)
	}
	return reports.Upload{
		Filename:    filepath.Base(path),
		ContentType: ct,
		Data:        data,
	}, nil
}

func writePage(doc *dom.Document, out string, stdout io.Writer) error {
	var buf bytes.Buffer
	if err := doc.Render(&buf); err != nil {
		return err
	}
	if out == "-" || out == "" {
		_, err := stdout.Write(buf.Bytes())
		return err
	}
	return os.WriteFile(out, buf.Bytes(), 0o644)
}
