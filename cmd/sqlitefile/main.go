// Command sqlitefile inspects SQLite database files without linking the
// SQLite library: it decodes the page structure, walks B-trees and answers
// simple read-only queries.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/alecthomas/kong"

	"github.com/wilhasse/go-sqlitefile/internal/logging"
	"github.com/wilhasse/go-sqlitefile/page"
	"github.com/wilhasse/go-sqlitefile/query"
	"github.com/wilhasse/go-sqlitefile/record"
	"github.com/wilhasse/go-sqlitefile/schema"
)

// CLI defines the command tree.
var CLI struct {
	Debug bool `help:"Enable debug logging."`
	JSON  bool `help:"Emit JSON instead of plain text."`

	Info   InfoCmd   `cmd:"" help:"Show database header fields and table count."`
	Tables TablesCmd `cmd:"" help:"List user table names."`
	Schema SchemaCmd `cmd:"" help:"Print CREATE statements."`
	Count  CountCmd  `cmd:"" help:"Count the rows of a table."`
	Select SelectCmd `cmd:"" help:"Project columns from a table with an optional filter."`
	SQL    SQLCmd    `cmd:"" name:"sql" help:"Run a SELECT statement."`
}

type InfoCmd struct {
	Database string `arg:"" type:"existingfile" help:"Path to the database file."`
}

type TablesCmd struct {
	Database string `arg:"" type:"existingfile" help:"Path to the database file."`
}

type SchemaCmd struct {
	Database string `arg:"" type:"existingfile" help:"Path to the database file."`
	Table    string `arg:"" optional:"" help:"Show only this table."`
}

type CountCmd struct {
	Database string `arg:"" type:"existingfile" help:"Path to the database file."`
	Table    string `arg:"" help:"Table name."`
}

type SelectCmd struct {
	Database string `arg:"" type:"existingfile" help:"Path to the database file."`
	Table    string `arg:"" help:"Table name."`
	Columns  string `help:"Comma-separated column list (default: all)." placeholder:"a,b,c"`
	Where    string `help:"Filter, e.g. \"color = 'Yellow'\"."`
	Limit    int    `help:"Stop after this many rows."`
}

type SQLCmd struct {
	Database  string `arg:"" type:"existingfile" help:"Path to the database file."`
	Statement string `arg:"" help:"A SELECT statement."`
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("sqlitefile"),
		kong.Description("Read-only SQLite database file inspector."),
		kong.UsageOnError(),
	)
	format := logging.FormatText
	if CLI.JSON {
		format = logging.FormatJSON
	}
	logging.Init(CLI.Debug, format)

	if err := ctx.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// open loads the file and builds the schema catalog.
func open(path string) (*page.Reader, *schema.Catalog, error) {
	reader, err := page.Open(path)
	if err != nil {
		return nil, nil, err
	}
	logging.Debug("database opened",
		"path", path,
		"page_size", reader.PageSize(),
		"pages", reader.PageCount())
	cat, err := schema.Build(reader)
	if err != nil {
		return nil, nil, err
	}
	logging.Debug("schema loaded", "objects", len(cat.Objects()))
	return reader, cat, nil
}

func (c *InfoCmd) Run() error {
	reader, cat, err := open(c.Database)
	if err != nil {
		return err
	}
	hdr := reader.Header()
	if CLI.JSON {
		return json.NewEncoder(os.Stdout).Encode(map[string]any{
			"page_size":        hdr.PageSize,
			"page_count":       reader.PageCount(),
			"reserved_bytes":   hdr.Reserved,
			"text_encoding":    hdr.TextEncoding.String(),
			"schema_cookie":    hdr.SchemaCookie,
			"freelist_pages":   hdr.FreelistCount,
			"number_of_tables": len(cat.Tables()),
		})
	}
	fmt.Printf("database page size: %d\n", hdr.PageSize)
	fmt.Printf("database page count: %d\n", reader.PageCount())
	fmt.Printf("text encoding: %s\n", hdr.TextEncoding)
	fmt.Printf("number of tables: %d\n", len(cat.Tables()))
	return nil
}

func (c *TablesCmd) Run() error {
	_, cat, err := open(c.Database)
	if err != nil {
		return err
	}
	fmt.Println(strings.Join(cat.Tables(), " "))
	return nil
}

func (c *SchemaCmd) Run() error {
	_, cat, err := open(c.Database)
	if err != nil {
		return err
	}
	if c.Table != "" {
		entry, ok := cat.Lookup(c.Table)
		if !ok {
			return fmt.Errorf("no such object: %s", c.Table)
		}
		fmt.Println(entry.SQL)
		return nil
	}
	for _, entry := range cat.Objects() {
		if entry.SQL != "" {
			fmt.Printf("%s;\n", entry.SQL)
		}
	}
	return nil
}

func (c *CountCmd) Run() error {
	reader, cat, err := open(c.Database)
	if err != nil {
		return err
	}
	n, err := query.New(reader, cat).Count(c.Table)
	if err != nil {
		return err
	}
	fmt.Println(n)
	return nil
}

func (c *SelectCmd) Run() error {
	reader, cat, err := open(c.Database)
	if err != nil {
		return err
	}
	var cols []string
	if c.Columns != "" {
		for _, name := range strings.Split(c.Columns, ",") {
			cols = append(cols, strings.TrimSpace(name))
		}
	}
	where, err := query.ParseWhere(c.Where)
	if err != nil {
		return err
	}
	res, err := query.New(reader, cat).Select(c.Table, cols, where, c.Limit)
	if err != nil {
		return err
	}
	return printResult(res)
}

func (c *SQLCmd) Run() error {
	reader, cat, err := open(c.Database)
	if err != nil {
		return err
	}
	res, err := query.New(reader, cat).ExecSQL(c.Statement)
	if err != nil {
		return err
	}
	return printResult(res)
}

func printResult(res *query.Result) error {
	if CLI.JSON {
		rows := make([]map[string]any, len(res.Rows))
		for i, row := range res.Rows {
			m := make(map[string]any, len(res.Columns))
			for j, name := range res.Columns {
				m[name] = jsonValue(row[j])
			}
			rows[i] = m
		}
		return json.NewEncoder(os.Stdout).Encode(rows)
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	for _, row := range res.Rows {
		cells := make([]string, len(row))
		for i, v := range row {
			cells[i] = v.String()
		}
		fmt.Fprintln(w, strings.Join(cells, "\t"))
	}
	return w.Flush()
}

func jsonValue(v record.Value) any {
	switch v.Type {
	case record.TypeInteger:
		return v.Int
	case record.TypeFloat:
		return v.Float
	case record.TypeText:
		return v.Text
	case record.TypeBlob:
		return fmt.Sprintf("%x", v.Blob)
	}
	return nil
}
