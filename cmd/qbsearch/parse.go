package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rebeliceyang/qbsearch/internal/catalog"
	"github.com/rebeliceyang/qbsearch/internal/filter"
	"github.com/rebeliceyang/qbsearch/internal/search"
)

func newParseCommand() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "parse [text...]",
		Short: "Turn search text into a filter",
		Long: `Each argument, or each line of stdin when no arguments are given, is typed into
the search bar and committed as if the input lost focus.

Examples:
  qbsearch parse "service.name = checkout" "env IN prod,staging"
  echo "status_code >= 500" | qbsearch parse --format sql`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			cat := &catalog.Catalog{}
			if cfg.Catalog.File != "" {
				if cat, err = catalog.LoadFile(cfg.Catalog.File); err != nil {
					return err
				}
			}

			m := search.New(search.Config{
				Keys:        cat.Keys,
				Values:      cat.Values,
				WhereClause: cfg.Search.WhereClause,
			})

			var in io.Reader = os.Stdin
			if len(args) > 0 {
				in = strings.NewReader(strings.Join(args, "\n"))
			}
			return runParse(m, in, cmd.OutOrStdout(), format)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "json", "output format: json, expression or sql")
	return cmd
}

// runParse feeds every non-blank line through the machine and writes the resulting filter
func runParse(m *search.Machine, in io.Reader, out io.Writer, format string) error {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		m.SetInput(line)
		m.Blur()
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}

	f := m.Filters()
	switch format {
	case "json":
		return writeFilter(out, f)
	case "expression":
		_, err := fmt.Fprintln(out, filter.Expression(f))
		return err
	case "sql":
		where, args, err := filter.NewBuilder().BuildWhere(f)
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintln(out, where); err != nil {
			return err
		}
		for i, a := range args {
			if _, err := fmt.Fprintf(out, "$%d = %v\n", i+1, a); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}
