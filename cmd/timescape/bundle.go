package main

import (
	"bytes"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/syssam/timescape/compiler/gen/bundle"
	"github.com/syssam/timescape/manifest"
)

// newBundleCommand creates the bundle command
func newBundleCommand(a *app) *cobra.Command {
	var (
		file   string
		format string
	)

	cmd := &cobra.Command{
		Use:   "bundle",
		Short: "Print or save the manifest bundle",
		Long: `Bundle builds the manifest bundle from the sources and writes it to
stdout, or to --file. The format is json or yaml; with --file and no
--format it follows the file extension.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := bundleFormat(format, file)
			if err != nil {
				return err
			}
			res, _, err := a.generate(cmd.Context())
			if err != nil {
				return err
			}
			var buf bytes.Buffer
			if err := manifest.Encode(&buf, f, res.Bundle); err != nil {
				return err
			}
			if file == "" {
				_, err := cmd.OutOrStdout().Write(buf.Bytes())
				return err
			}
			if err := os.WriteFile(file, buf.Bytes(), 0o644); err != nil {
				return err
			}
			successColor.Fprintf(cmd.OutOrStdout(), "✓ Bundle %s written to %s\n", res.Bundle.Checksum, file)
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "write the bundle to this file")
	cmd.Flags().StringVar(&format, "format", "", "json or yaml")
	return cmd
}

func bundleFormat(format, file string) (manifest.Format, error) {
	switch format {
	case "":
		return manifest.FormatOf(file), nil
	case string(manifest.FormatJSON), string(manifest.FormatYAML):
		return manifest.Format(format), nil
	default:
		return "", fmt.Errorf("unknown format %q: want json or yaml", format)
	}
}

// newVerifyCommand creates the verify command
func newVerifyCommand() *cobra.Command {
	var publicKey string

	cmd := &cobra.Command{
		Use:   "verify <bundle>",
		Short: "Verify the checksum and signature of a bundle",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			data, err := os.ReadFile(path)
			if err != nil {
				return err
			}
			b, err := manifest.UnmarshalBundle(data, manifest.FormatOf(path))
			if err != nil {
				return err
			}
			if err := bundle.Verify(b); err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			successColor.Fprintf(out, "✓ Checksum %s\n", b.Checksum)

			if publicKey == "" {
				if b.Signature != "" {
					warnColor.Fprintln(out, "! Bundle is signed; pass --public-key to verify the signature")
				}
				return nil
			}
			pub, err := bundle.ParsePublicKey(publicKey)
			if err != nil {
				return err
			}
			if err := bundle.VerifySignature(b, pub); err != nil {
				return err
			}
			successColor.Fprintln(out, "✓ Signature")
			return nil
		},
	}

	cmd.Flags().StringVar(&publicKey, "public-key", "", "base64 ed25519 public key")
	return cmd
}
