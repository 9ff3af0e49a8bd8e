package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/jpfielding/jfif.go/pkg/compress/jpeg"
	"github.com/spf13/cobra"
)

// NewMarkersCmd lists the marker segments of a JPEG
func NewMarkersCmd(ctx context.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "markers",
		Short: "list the marker segments of a JPEG",
		Long:  "walks the marker segments of a JPEG, printing offsets and lengths, and can dump one segment to disk",
		RunE: func(cmd *cobra.Command, args []string) error {
			dump, _ := cmd.Flags().GetInt("dump")
			out, _ := cmd.Flags().GetString("out")

			data, err := readInput(ctx, cmd, args)
			if err != nil {
				return err
			}
			segs, err := jpeg.Segments(data)
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "Total bytes: %d\n", len(data))
			fmt.Fprintf(w, "%-8s %-6s %8s %10s\n", "OFFSET", "MARKER", "LENGTH", "SCAN")
			for _, s := range segs {
				fmt.Fprintf(w, "%08X %-6s %8d %10d\n", s.Offset, s.Marker, s.Length, s.ScanBytes)
			}
			if err != nil {
				return fmt.Errorf("segment error: %w", err)
			}

			if dump < 0 {
				return nil
			}
			if dump >= len(segs) {
				return fmt.Errorf("segment index %d out of bounds (0-%d)", dump, len(segs)-1)
			}
			s := segs[dump]
			end := s.Offset + 2 + s.Length + s.ScanBytes
			if out == "" {
				out = fmt.Sprintf("segment_%d_%s.bin", dump, s.Marker)
			}
			fmt.Fprintf(w, "Dumping segment %d (%d bytes) to %s\n", dump, end-s.Offset, out)
			return os.WriteFile(out, data[s.Offset:end], 0644)
		},
	}
	addInputFlags(cmd)
	pf := cmd.PersistentFlags()
	pf.Int("dump", -1, "Index of segment to dump to disk")
	pf.String("out", "", "Output path for dumped segment")
	return cmd
}
