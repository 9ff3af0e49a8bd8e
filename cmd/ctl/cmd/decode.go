package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/jpfielding/jfif.go/pkg/compress/jpeg"
	"github.com/jpfielding/jfif.go/pkg/sink"
	"github.com/jpfielding/jfif.go/pkg/util"
	"github.com/spf13/cobra"
)

// NewDecodeCmd decodes a JPEG and writes the raster out as PNG or raw RGB.
func NewDecodeCmd(ctx context.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "decode",
		Short: "decode a baseline JPEG",
		Long:  "decodes a baseline JPEG and writes it as png, packed rgb, or zstd compressed rgb",
		RunE: func(cmd *cobra.Command, args []string) error {
			out, _ := cmd.Flags().GetString("out")
			format, _ := cmd.Flags().GetString("format")
			maxWidth, _ := cmd.Flags().GetInt("max-width")
			maxPixels, _ := cmd.Flags().GetInt("max-pixels")
			if out == "" {
				return fmt.Errorf("output path is required. Use --out flag")
			}
			f := sink.Format(format)
			if format == "" {
				f = sink.FormatFromPath(out)
			}

			in, err := openInput(ctx, cmd, args)
			if err != nil {
				return err
			}
			defer in.Close()

			opts := jpeg.DefaultOptions()
			opts.MaxPixels = maxPixels
			img, err := jpeg.DecodeWithOptions(in, opts)
			if err != nil {
				return fmt.Errorf("decode error: %w", err)
			}

			w, err := os.Create(out)
			if err != nil {
				return fmt.Errorf("failed to create output: %w", err)
			}
			defer w.Close()
			s, err := sink.New(w, f, maxWidth)
			if err != nil {
				return err
			}
			if err := s.Write(ctx, img); err != nil {
				return fmt.Errorf("failed to write %s: %w", out, err)
			}

			slog.InfoContext(ctx, "decoded",
				slog.Int("width", img.Width),
				slog.Int("height", img.Height),
				slog.String("comment", img.Comment),
				slog.String("fingerprint", util.RasterUUID(img.Width, img.Height, img.Pix)),
				slog.String("format", string(f)),
				slog.String("out", out))
			return w.Close()
		},
	}
	addInputFlags(cmd)
	pf := cmd.PersistentFlags()
	pf.StringP("out", "o", "", "output path")
	pf.StringP("format", "f", "", "output format (png|rgb|rgb.zst), picked from the output name when empty")
	pf.Int("max-width", 0, "scale png output down to this width (0 keeps the size)")
	pf.Int("max-pixels", jpeg.DefaultOptions().MaxPixels, "refuse frames larger than this many pixels (0 = no limit)")
	return cmd
}
