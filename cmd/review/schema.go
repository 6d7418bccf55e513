package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/boshu2/review/internal/patch"
)

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the patch JSON schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println(string(patch.SchemaJSON))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(schemaCmd)
}
