package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"scholarforge/internal/compress"
)

type options struct {
	target  string
	output  string
	timeout time.Duration
	search  compress.Options
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := options{search: compress.DefaultOptions()}

	cmd := &cobra.Command{
		Use:   "compress <image>",
		Short: "Re-encode an image so it fits under a target size",
		Long: `Decodes the image, caps its width, then searches quality and resolution
until the encoded output is no larger than --target. WEBP input stays WEBP;
everything else is written as JPEG.`,
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), args[0], opts, cmd.OutOrStdout())
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.target, "target", "t", "200KB", "target size, e.g. 200KB, 1.5MiB or bytes")
	f.StringVarP(&opts.output, "output", "o", "", "output path (default: <name>.min.<ext> next to the input)")
	f.DurationVar(&opts.timeout, "timeout", time.Minute, "give up after this long")
	f.IntVar(&opts.search.MaxWidth, "max-width", opts.search.MaxWidth, "initial width cap in pixels")
	f.IntVar(&opts.search.MaxIterations, "iterations", opts.search.MaxIterations, "maximum resolution steps")
	f.IntVar(&opts.search.ProbeSteps, "probes", opts.search.ProbeSteps, "quality probes per resolution")
	f.Float64Var(&opts.search.ShrinkRatio, "shrink", opts.search.ShrinkRatio, "dimension ratio applied per resolution step")
	f.IntVar(&opts.search.MinDimension, "min-dimension", opts.search.MinDimension, "stop shrinking below this many pixels")
	f.Float64Var(&opts.search.MinQuality, "min-quality", opts.search.MinQuality, "lowest quality tried, in (0,1]")
	return cmd
}

func run(ctx context.Context, input string, opts options, out io.Writer) error {
	target, err := humanize.ParseBytes(opts.target)
	if err != nil || target == 0 {
		return fmt.Errorf("invalid --target %q", opts.target)
	}

	src, err := os.ReadFile(input)
	if err != nil {
		return fmt.Errorf("read input failed: %w", err)
	}

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, opts.timeout)
	defer cancel()

	started := time.Now()
	res, err := compress.New(opts.search).Compress(ctx, src, int64(target))
	if err != nil {
		return err
	}

	dst := opts.output
	if dst == "" {
		dst = defaultOutput(input, res.MIMEType)
	}
	if err := os.WriteFile(dst, res.Data, 0o644); err != nil {
		return fmt.Errorf("write output failed: %w", err)
	}

	status := "fit"
	if !res.Fit {
		status = "best effort, above target"
	}
	fmt.Fprintf(out, "%s: %s -> %s (target %s, %s)\n",
		dst,
		humanize.Bytes(uint64(len(src))),
		humanize.Bytes(uint64(res.Size())),
		humanize.Bytes(target),
		status,
	)
	fmt.Fprintf(out, "  %dx%d -> %dx%d, quality %.2f, %d iterations, %d probes, %s\n",
		res.OriginalWidth, res.OriginalHeight, res.Width, res.Height,
		res.Quality, res.Iterations, res.Probes, time.Since(started).Round(time.Millisecond))
	return nil
}

func defaultOutput(input, mimeType string) string {
	ext := ".jpg"
	if mimeType == compress.MIMEWEBP {
		ext = ".webp"
	}
	base := strings.TrimSuffix(input, filepath.Ext(input))
	return base + ".min" + ext
}
