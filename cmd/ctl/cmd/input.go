package cmd

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httputil"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var errNoURI = errors.New("uri is required. Use --uri flag or provide as argument")

// addInputFlags registers the flags read by openInput.
func addInputFlags(cmd *cobra.Command) {
	pf := cmd.PersistentFlags()
	pf.StringP("uri", "u", "", "JPEG to read: file path, file:// URL, - for stdin, or http(s) URL")
	pf.Bool("insecure", false, "skip TLS verification for https URIs")
	pf.BoolP("verbose", "v", false, "dump http request and response headers to stderr")
}

// openInput opens the --uri flag, or the first argument when the flag is empty.
func openInput(ctx context.Context, cmd *cobra.Command, args []string) (io.ReadCloser, error) {
	uri, _ := cmd.Flags().GetString("uri")
	if uri == "" && len(args) > 0 {
		uri = args[0]
	}
	insecure, _ := cmd.Flags().GetBool("insecure")
	verbose, _ := cmd.Flags().GetBool("verbose")
	return openURI(ctx, uri, insecure, verbose)
}

// readInput reads the whole input named by the command's flags.
func readInput(ctx context.Context, cmd *cobra.Command, args []string) ([]byte, error) {
	in, err := openInput(ctx, cmd, args)
	if err != nil {
		return nil, err
	}
	defer in.Close()
	return io.ReadAll(in)
}

func openURI(ctx context.Context, uri string, insecure, verbose bool) (io.ReadCloser, error) {
	uri = strings.TrimPrefix(uri, "file://")
	switch {
	case uri == "":
		return nil, errNoURI
	case uri == "-":
		return io.NopCloser(os.Stdin), nil
	case strings.HasPrefix(uri, "http"):
		cl := &http.Client{
			Transport: &http.Transport{TLSClientConfig: &tls.Config{InsecureSkipVerify: insecure}},
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		resp, err := cl.Do(req)
		if err != nil {
			return nil, fmt.Errorf("failed to download: %w", err)
		}
		if verbose {
			reqDump, _ := httputil.DumpRequest(req, true)
			os.Stderr.Write(reqDump)
			resDump, _ := httputil.DumpResponse(resp, false)
			os.Stderr.Write(resDump)
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return nil, fmt.Errorf("failed to download: %s", resp.Status)
		}
		return resp.Body, nil
	default:
		f, err := os.Open(uri)
		if err != nil {
			return nil, fmt.Errorf("failed to open file: %w", err)
		}
		return f, nil
	}
}
