package cmd

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jpfielding/jfif.go/pkg/compress/jpeg"
	"github.com/jpfielding/jfif.go/pkg/util"
	"github.com/spf13/cobra"
)

type infoReport struct {
	*jpeg.Header
	Fingerprint string `json:"fingerprint"`
}

// NewInfoCmd prints the frame header of a JPEG without decoding its pixels.
func NewInfoCmd(ctx context.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "info",
		Short: "show the frame header of a JPEG",
		Long:  "parses a JPEG up to its scan header and prints dimensions, components, comment and application segments",
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := openInput(ctx, cmd, args)
			if err != nil {
				return err
			}
			defer in.Close()

			h, err := jpeg.DecodeHeader(in)
			if err != nil {
				return fmt.Errorf("parse error: %w", err)
			}
			report := infoReport{Header: h, Fingerprint: util.HashUUID(h)}

			w := cmd.OutOrStdout()
			switch format, _ := cmd.Flags().GetString("format"); format {
			case "text":
				fmt.Fprintf(w, "Size: %dx%d\n", h.Width, h.Height)
				fmt.Fprintf(w, "Precision: %d\n", h.Precision)
				fmt.Fprintf(w, "JFIF: %v\n", h.JFIF)
				fmt.Fprintf(w, "EXIF: %v\n", h.EXIF)
				if h.Comment != "" {
					fmt.Fprintf(w, "Comment: %q\n", h.Comment)
				}
				for _, c := range h.Components {
					fmt.Fprintf(w, "Component %d: %dx%d sampling, quant %d, huffman dc %d ac %d\n",
						c.ID, c.H, c.V, c.Tq, c.Td, c.Ta)
				}
				fmt.Fprintf(w, "Fingerprint: %s\n", report.Fingerprint)
			default:
				j, err := json.Marshal(report)
				if err != nil {
					return err
				}
				fmt.Fprintln(w, string(j))
			}
			return nil
		},
	}
	addInputFlags(cmd)
	pf := cmd.PersistentFlags()
	pf.StringP("format", "f", "json", "output format (text|json)")
	return cmd
}
