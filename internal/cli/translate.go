package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/zoobzio/restql"
	"github.com/zoobzio/restql/postgrest"
	"github.com/zoobzio/restql/supabase"
)

// NewTranslateCommand creates the translate command.
func NewTranslateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "translate [sql]",
		Short: "Translate one SQL statement",
		Long: `Translate a single SQL statement into the selected output format.

The statement is taken from the argument, or from stdin when no argument
is given.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTranslate(rootOpts, cmd, args)
		},
	}
}

func runTranslate(opts *RootOptions, cmd *cobra.Command, args []string) error {
	sql, err := readSQL(cmd, args)
	if err != nil {
		return err
	}

	stmt, err := parseStatement(opts, sql)
	if err != nil {
		return err
	}

	out, err := formatStatement(opts, stmt)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), out)
	return nil
}

func readSQL(cmd *cobra.Command, args []string) (string, error) {
	if len(args) == 1 {
		return args[0], nil
	}
	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", fmt.Errorf("reading stdin: %w", err)
	}
	sql := strings.TrimSpace(string(data))
	if sql == "" {
		return "", fmt.Errorf("no SQL given: pass a statement as an argument or on stdin")
	}
	return sql, nil
}

func parseStatement(opts *RootOptions, sql string) (restql.Statement, error) {
	if opts.SchemaPath == "" {
		return restql.Parse(sql)
	}
	instance, err := loadInstance(opts.SchemaPath)
	if err != nil {
		return nil, err
	}
	return instance.Parse(sql)
}

func formatStatement(opts *RootOptions, stmt restql.Statement) (string, error) {
	if opts.Format == "supabase" {
		return supabase.New().Render(stmt)
	}

	req, err := postgrest.New().Render(stmt)
	if err != nil {
		return "", err
	}
	switch opts.Format {
	case "http":
		return postgrest.FormatHTTP(req, opts.BaseURL)
	case "curl":
		return postgrest.FormatCurl(req, opts.BaseURL)
	case "json":
		return requestJSON(req)
	default:
		return "", fmt.Errorf("invalid format %q", opts.Format)
	}
}

// requestRecord is the JSON shape of a rendered request, for tooling.
type requestRecord struct {
	Method   string          `json:"method"`
	Path     string          `json:"path"`
	Params   []paramRecord   `json:"params"`
	Body     json.RawMessage `json:"body,omitempty"`
	FullPath string          `json:"fullPath"`
}

type paramRecord struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

func requestJSON(req *postgrest.Request) (string, error) {
	record := requestRecord{
		Method:   req.Method,
		Path:     req.Path,
		Params:   []paramRecord{},
		FullPath: req.FullPath(),
	}
	for _, pair := range req.Params.Pairs() {
		record.Params = append(record.Params, paramRecord{Key: pair.Key, Value: pair.Value})
	}
	if req.Body != "" {
		record.Body = json.RawMessage(req.Body)
	}

	var out strings.Builder
	enc := json.NewEncoder(&out)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(record); err != nil {
		return "", fmt.Errorf("encoding request: %w", err)
	}
	return strings.TrimSuffix(out.String(), "\n"), nil
}
