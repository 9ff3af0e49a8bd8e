package cmd

import (
	"bytes"
	"context"
	"fmt"
	stdjpeg "image/jpeg"
	"log/slog"

	"github.com/jpfielding/jfif.go/pkg/compress/jpeg"
	"github.com/jpfielding/jfif.go/pkg/sink"
	"github.com/spf13/cobra"
)

// NewCompareCmd decodes a JPEG twice, here and with the standard library,
// and reports how far apart the rasters are.
func NewCompareCmd(ctx context.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare",
		Short: "compare against the standard library decoder",
		Long:  "decodes a JPEG with this decoder and with image/jpeg and prints the mean and max RGB distance",
		RunE: func(cmd *cobra.Command, args []string) error {
			limit, _ := cmd.Flags().GetFloat64("threshold")

			data, err := readInput(ctx, cmd, args)
			if err != nil {
				return err
			}
			img, err := jpeg.Decode(bytes.NewReader(data))
			if err != nil {
				return fmt.Errorf("decode error: %w", err)
			}
			ref, err := stdjpeg.Decode(bytes.NewReader(data))
			if err != nil {
				return fmt.Errorf("reference decode error: %w", err)
			}
			d, err := sink.Compare(img, ref)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Pixels: %d\nMean distance: %.4f\nMax distance: %.4f\n", d.Pixels, d.Mean, d.Max)
			slog.DebugContext(ctx, "compared", slog.Float64("mean", d.Mean), slog.Float64("max", d.Max))
			if !d.Within(limit) {
				return fmt.Errorf("mean distance %.4f exceeds %.4f", d.Mean, limit)
			}
			return nil
		},
	}
	addInputFlags(cmd)
	pf := cmd.PersistentFlags()
	pf.Float64("threshold", 5, "largest acceptable mean RGB distance")
	return cmd
}
