package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/hashicorp/go-hclog"
	"github.com/olekukonko/tablewriter"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/ava12/sourcer/langdef"
	"github.com/ava12/sourcer/lexer"
	"github.com/ava12/sourcer/metrics"
	"github.com/ava12/sourcer/parser"
	"github.com/ava12/sourcer/source"
)

const (
	formatTable = "table"
	formatJSON  = "json"
)

type tokenizeParams struct {
	root   *rootParams
	syntax string
	format string
	stats  bool
}

type tokenRecord struct {
	Kind   string            `json:"kind"`
	Text   string            `json:"text"`
	Line   int               `json:"line"`
	Col    int               `json:"col"`
	Offset int               `json:"offset"`
	Groups map[string]string `json:"groups,omitempty"`
}

func newTokenizeCommand(root *rootParams) *cobra.Command {
	params := &tokenizeParams{root: root}
	cmd := &cobra.Command{
		Use:   "tokenize <file>",
		Short: "Split a file into tokens",
		Long: `Split a file into tokens using token syntax defined in a YAML file.

The syntax file lists token classes in order of precedence:

	tokens:
	  - {name: space, pattern: '\s+'}
	  - {name: word, pattern: '[a-z]+'}
	skip: [space]`,
		Args: cobra.ExactArgs(1),
		PreRunE: func(*cobra.Command, []string) error {
			if params.syntax == "" {
				return errors.New("syntax file is not set, use --syntax flag or SOURCER_TOKENIZE_SYNTAX variable")
			}
			if params.format != formatTable && params.format != formatJSON {
				return fmt.Errorf("unknown output format %q", params.format)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return tokenize(cmd.OutOrStdout(), params, args[0])
		},
	}

	cmd.Flags().StringVarP(&params.syntax, "syntax", "s", "", "token syntax YAML file")
	cmd.Flags().StringVarP(&params.format, "format", "f", formatTable, "output format: table or json")
	cmd.Flags().BoolVar(&params.stats, "stats", false, "print parse statistics")
	return cmd
}

func tokenize(out io.Writer, params *tokenizeParams, path string) error {
	log := params.root.log
	if log == nil {
		log = hclog.NewNullLogger()
	}

	reg := prometheus.NewRegistry()
	collector := metrics.New(reg)
	compiler := parser.New(
		parser.WithLogger(log.Named("parser")),
		parser.WithTrace(log.IsTrace()),
		parser.WithObserver(collector),
	)

	classes, e := langdef.LoadClasses(params.syntax)
	if e != nil {
		return fmt.Errorf("cannot load syntax: %w", e)
	}
	syntax, e := lexer.NewSyntaxWith(compiler, classes...)
	if e != nil {
		return fmt.Errorf("cannot load syntax: %w", e)
	}
	log.Debug("syntax loaded", "path", params.syntax, "classes", len(classes))

	text, e := os.ReadFile(path)
	if e != nil {
		return e
	}

	tokens, e := syntax.TokenizeSource(source.New(path, string(text)))
	if e != nil {
		return e
	}
	log.Info("tokenized", "path", path, "tokens", len(tokens))

	if params.format == formatJSON {
		e = writeJSON(out, tokens)
	} else {
		writeTable(out, tokens)
	}
	if e != nil || !params.stats {
		return e
	}

	return writeStats(out, reg)
}

func writeJSON(out io.Writer, tokens []*lexer.Token) error {
	records := make([]tokenRecord, len(tokens))
	for i, t := range tokens {
		records[i] = tokenRecord{t.Kind(), t.Text(), t.Line(), t.Col(), t.Offset(), t.Groups()}
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(records)
}

func writeTable(out io.Writer, tokens []*lexer.Token) {
	table := tablewriter.NewWriter(out)
	table.SetHeader([]string{"Line", "Col", "Kind", "Text"})
	table.SetAutoWrapText(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	for _, t := range tokens {
		table.Append([]string{strconv.Itoa(t.Line()), strconv.Itoa(t.Col()), t.Kind(), strconv.Quote(t.Text())})
	}
	table.Render()
}

func writeStats(out io.Writer, g prometheus.Gatherer) error {
	families, e := g.Gather()
	if e != nil {
		return e
	}

	table := tablewriter.NewWriter(out)
	table.SetHeader([]string{"Metric", "Labels", "Value"})
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	for _, f := range families {
		for _, m := range f.GetMetric() {
			labels := make([]string, 0, len(m.GetLabel()))
			for _, l := range m.GetLabel() {
				labels = append(labels, l.GetName()+"="+l.GetValue())
			}
			sort.Strings(labels)

			var value string
			if h := m.GetHistogram(); h != nil {
				value = fmt.Sprintf("count=%d sum=%g", h.GetSampleCount(), h.GetSampleSum())
			} else {
				value = strconv.FormatFloat(m.GetCounter().GetValue(), 'g', -1, 64)
			}
			table.Append([]string{f.GetName(), strings.Join(labels, ","), value})
		}
	}
	table.Render()
	return nil
}
