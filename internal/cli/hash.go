package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/icancodefyi/sarthi-ai/internal/pkg/integrity"
)

func newHashCmd() *cobra.Command {
	var showCanonical bool

	cmd := &cobra.Command{
		Use:   "hash <file.json|->",
		Short: "Print the integrity digest of a JSON document",
		Long: `Reduce a JSON document to its canonical form and print its SHA-256 digest.
Passing a stored report's hashPayload reproduces its integrityHash.`,
		Example: `  sarthi hash payload.json
  cat payload.json | sarthi hash - --canonical`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var r io.Reader = cmd.InOrStdin()
			if args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				r = f
			}

			dec := json.NewDecoder(r)
			dec.UseNumber()
			var doc any
			if err := dec.Decode(&doc); err != nil {
				return fmt.Errorf("invalid JSON: %w", err)
			}

			canonical, err := integrity.Canonicalize(doc)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if showCanonical {
				fmt.Fprintln(out, canonical)
			}
			fmt.Fprintln(out, integrity.Sum(canonical))
			return nil
		},
	}
	cmd.Flags().BoolVar(&showCanonical, "canonical", false, "also print the canonical JSON")
	return cmd
}
