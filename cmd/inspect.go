package cmd

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/iksnae/lawchat/internal"
	"github.com/spf13/cobra"
)

var (
	inspectFormat string
	inspectPrefix string
	inspectSchema bool
)

// KeyInfo describes one persisted key
type KeyInfo struct {
	Key      string `json:"key"`
	Kind     string `json:"kind"`
	Identity string `json:"identity,omitempty"`
	Bytes    int    `json:"bytes"`
	Sessions int    `json:"sessions,omitempty"`
	ActiveID string `json:"activeId,omitempty"`
	Error    string `json:"error,omitempty"`
}

// ColumnInfo describes a table column
type ColumnInfo struct {
	Name       string
	Type       string
	NotNull    bool
	PrimaryKey bool
}

// inspectCmd represents the inspect command
var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Inspect the persisted storage layout",
	Long: `List the raw keys stored by lawchat with their size and what they hold.

This command provides:
  • Every sessions@<identity> and active@<identity> key
  • The number of conversations in each collection
  • Collections that fail to decode
  • The database schema (--schema, sqlite backend only)

Examples:
  lawchat inspect                         # All keys
  lawchat inspect --prefix sessions@      # Only session collections
  lawchat inspect --format json           # Machine-readable output`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		medium, closeMedium, err := openMedium()
		if err != nil {
			return err
		}
		defer closeMedium()

		infos, err := inspectKeys(medium, inspectPrefix)
		if err != nil {
			return fmt.Errorf("failed to list keys: %w", err)
		}

		out := cmd.OutOrStdout()
		switch strings.ToLower(inspectFormat) {
		case "json":
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			if err := enc.Encode(infos); err != nil {
				return err
			}
		case "text":
			displayKeys(out, infos)
		default:
			return fmt.Errorf("unsupported format: %s (supported: text, json)", inspectFormat)
		}

		if inspectSchema {
			sqliteMedium, ok := medium.(*internal.SQLiteMedium)
			if !ok {
				internal.PrintWarning(fmt.Sprintf("--schema needs the sqlite backend (using %s)", cfg.Storage.Backend))
				return nil
			}
			return inspectDatabase(out, sqliteMedium.DB())
		}
		return nil
	},
}

// inspectKeys describes every key on medium starting with prefix
func inspectKeys(medium internal.Medium, prefix string) ([]KeyInfo, error) {
	keys, err := medium.Keys(prefix)
	if err != nil {
		return nil, err
	}

	infos := make([]KeyInfo, 0, len(keys))
	for _, key := range keys {
		info := KeyInfo{Key: key, Kind: "other"}
		value, _, err := medium.Get(key)
		if err != nil {
			info.Error = err.Error()
			infos = append(infos, info)
			continue
		}
		info.Bytes = len(value)

		switch {
		case strings.HasPrefix(key, internal.SessionsKeyPrefix):
			info.Kind = "sessions"
			info.Identity = strings.TrimPrefix(key, internal.SessionsKeyPrefix)
			sessions, err := internal.DecodeSessions(value)
			if err != nil {
				info.Error = err.Error()
			} else {
				info.Sessions = len(sessions)
			}
		case strings.HasPrefix(key, internal.ActiveKeyPrefix):
			info.Kind = "active"
			info.Identity = strings.TrimPrefix(key, internal.ActiveKeyPrefix)
			info.ActiveID = value
		}
		infos = append(infos, info)
	}
	return infos, nil
}

func displayKeys(out io.Writer, infos []KeyInfo) {
	if len(infos) == 0 {
		_, _ = fmt.Fprintln(out, "⚠️  No keys found")
		return
	}

	_, _ = fmt.Fprintf(out, "📦 Found %d key(s)\n\n", len(infos))
	w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
	_, _ = fmt.Fprintln(w, "KEY\tKIND\tBYTES\tDETAIL\t")
	for _, info := range infos {
		detail := ""
		switch {
		case info.Error != "":
			detail = "error: " + info.Error
		case info.Kind == "sessions":
			detail = fmt.Sprintf("%d conversation(s)", info.Sessions)
		case info.Kind == "active":
			detail = info.ActiveID
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%d\t%s\t\n", info.Key, info.Kind, info.Bytes, detail)
	}
	_ = w.Flush()
}

func inspectDatabase(out io.Writer, db *sql.DB) error {
	tables, err := getTables(db)
	if err != nil {
		return fmt.Errorf("failed to get tables: %w", err)
	}

	_, _ = fmt.Fprintf(out, "\n📊 Found %d table(s)\n\n", len(tables))
	for _, tableName := range tables {
		if err := inspectTable(out, db, tableName); err != nil {
			_, _ = fmt.Fprintf(out, "⚠️  Error inspecting table %s: %v\n", tableName, err)
			continue
		}
		_, _ = fmt.Fprintln(out)
	}
	return nil
}

func getTables(db *sql.DB) ([]string, error) {
	rows, err := db.Query(`
		SELECT name FROM sqlite_master
		WHERE type='table' AND name NOT LIKE 'sqlite_%'
		ORDER BY name
	`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			continue
		}
		tables = append(tables, name)
	}
	return tables, rows.Err()
}

func inspectTable(out io.Writer, db *sql.DB, tableName string) error {
	_, _ = fmt.Fprintf(out, "📦 Table: %s\n", tableName)

	var rowCount int
	if err := db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %q", tableName)).Scan(&rowCount); err != nil {
		return fmt.Errorf("failed to get row count: %w", err)
	}
	_, _ = fmt.Fprintf(out, "📊 Rows: %d\n", rowCount)

	columns, err := getTableSchema(db, tableName)
	if err != nil {
		return fmt.Errorf("failed to get schema: %w", err)
	}

	_, _ = fmt.Fprintf(out, "📐 Schema:\n")
	for _, col := range columns {
		pk := ""
		if col.PrimaryKey {
			pk = " [PRIMARY KEY]"
		}
		notNull := ""
		if col.NotNull {
			notNull = " NOT NULL"
		}
		_, _ = fmt.Fprintf(out, "  • %s: %s%s%s\n", col.Name, col.Type, notNull, pk)
	}
	return nil
}

func getTableSchema(db *sql.DB, tableName string) ([]ColumnInfo, error) {
	rows, err := db.Query(fmt.Sprintf("PRAGMA table_info(%q)", tableName))
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var columns []ColumnInfo
	for rows.Next() {
		var col ColumnInfo
		var cid int
		var notNull, pk int
		var defaultValue sql.NullString

		if err := rows.Scan(&cid, &col.Name, &col.Type, &notNull, &defaultValue, &pk); err != nil {
			continue
		}
		col.NotNull = notNull == 1
		col.PrimaryKey = pk == 1
		columns = append(columns, col)
	}
	return columns, rows.Err()
}

func init() {
	rootCmd.AddCommand(inspectCmd)
	inspectCmd.Flags().StringVar(&inspectFormat, "format", "text", "Output format (text, json)")
	inspectCmd.Flags().StringVar(&inspectPrefix, "prefix", "", "Only show keys starting with prefix")
	inspectCmd.Flags().BoolVar(&inspectSchema, "schema", false, "Also show the database schema (sqlite backend)")
}
