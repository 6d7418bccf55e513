package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/boshu2/review/internal/patch"
)

// errExitCode1 signals a handled failure already reported to stdout, so
// Execute does not print a redundant "review: ..." line for it.
var errExitCode1 = errors.New("review: validation failed")

var (
	validatePayload string
	validateFile    string
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a patch payload against the wire schema",
	Long: `validate reads a single patch JSON payload, from --payload (a literal
string, or "-" for stdin) or --file, and reports whether it satisfies the
structural and safety invariants. Exit status is 0 for a valid patch and 1
otherwise.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, err := readValidatePayload()
		if err != nil {
			return err
		}
		p, err := patch.Parse(raw)
		if err != nil {
			fmt.Printf("invalid: %v\n", err)
			return errExitCode1
		}
		fmt.Printf("valid: op=%s file=%s\n", p.Op, p.File)
		return nil
	},
}

func readValidatePayload() ([]byte, error) {
	switch {
	case validateFile != "":
		return os.ReadFile(validateFile)
	case validatePayload == "-":
		return io.ReadAll(os.Stdin)
	case validatePayload != "":
		return []byte(validatePayload), nil
	default:
		return nil, fmt.Errorf("review validate: one of --payload or --file is required")
	}
}

func init() {
	validateCmd.Flags().StringVar(&validatePayload, "payload", "", `patch JSON, or "-" to read stdin`)
	validateCmd.Flags().StringVar(&validateFile, "file", "", "path to a file containing the patch JSON")
	rootCmd.AddCommand(validateCmd)
}
