package main

import (
	"fmt"
	"os"

	"github.com/rodaine/table"
	"github.com/spf13/cobra"

	"github.com/boshu2/review/internal/scanner"
)

var scanMaxLines int

var scanCmd = &cobra.Command{
	Use:   "scan <repo>",
	Short: "Classify and list a repository's reviewable files",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		repo := args[0]
		s, err := scanner.New(repo)
		if err != nil {
			return err
		}
		idx, err := s.Scan()
		if err != nil {
			return err
		}

		tbl := table.New("Category", "File")
		addRows := func(category string, files []string) {
			for i, f := range files {
				if scanMaxLines > 0 && i >= scanMaxLines {
					tbl.AddRow(category, fmt.Sprintf("... %d more", len(files)-scanMaxLines))
					break
				}
				tbl.AddRow(category, f)
			}
		}
		addRows("setup", idx.SetupFiles)
		addRows("test", idx.TestFiles)
		addRows("example", idx.ExampleFiles)
		addRows("doc", idx.DocsFiles)
		addRows("code", idx.CodeFiles)
		addRows("binary", idx.BinaryFiles)
		tbl.WithWriter(os.Stdout).Print()

		fmt.Println(idx.Summary())
		return nil
	},
}

func init() {
	scanCmd.Flags().IntVar(&scanMaxLines, "max-lines", 0, "truncate each category's listing after N files (0 = unlimited)")
	rootCmd.AddCommand(scanCmd)
}
