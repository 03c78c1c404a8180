package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/antostif07/pyiurs-drive/drive"
	"github.com/antostif07/pyiurs-drive/types"
)

var (
	storePath string
	logLevel  string
)

var rootCmd = &cobra.Command{
	Use:   "drive",
	Short: "Tabular document store CLI",
	Long: "drive manages spreadsheet-like documents: a user-defined column schema, " +
		"sparse cell data, filtering/sorting, and whole-document duplication.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initLogging(viper.GetString("log-level"))
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&storePath, "store", "s", "", "path to store file (or DRIVE_STORE)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	_ = viper.BindPFlag("store", rootCmd.PersistentFlags().Lookup("store"))
	_ = viper.BindPFlag("log-level", rootCmd.PersistentFlags().Lookup("log-level"))

	// Environment and config file support: flag > DRIVE_* env > config.
	viper.SetEnvPrefix("DRIVE")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
	viper.SetConfigName("drive")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("$HOME/.config/drive")
	_ = viper.ReadInConfig()

	rootCmd.AddCommand(docCmd)
	rootCmd.AddCommand(colCmd)
	rootCmd.AddCommand(rowCmd)
	rootCmd.AddCommand(cellCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(schemaCmd)
}

// openStore loads the store named by the --store flag, DRIVE_STORE or the
// config file.
func openStore() (drive.Store, error) {
	path := viper.GetString("store")
	if path == "" {
		return nil, fmt.Errorf("store path is required (--store or DRIVE_STORE)")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("invalid store path: %w", err)
	}
	return drive.Open(abs)
}

// resolveDocument accepts a document ID or unique name.
func resolveDocument(s drive.Store, ref string) (*types.Document, error) {
	if doc, err := s.GetDocument(ref); err == nil {
		return doc, nil
	}
	docs, err := s.ListDocuments()
	if err != nil {
		return nil, err
	}
	var match *types.Document
	for i := range docs {
		if docs[i].Name == ref {
			if match != nil {
				return nil, fmt.Errorf("document name %q is ambiguous, use the ID", ref)
			}
			match = &docs[i]
		}
	}
	if match == nil {
		return nil, fmt.Errorf("document %q: %w", ref, drive.ErrNotFound)
	}
	return match, nil
}

// resolveColumn accepts a column ID or label within a document.
func resolveColumn(s drive.Store, documentID, ref string) (*types.Column, error) {
	cols, err := s.ListColumns(documentID)
	if err != nil {
		return nil, err
	}
	for i := range cols {
		if cols[i].ID == ref || cols[i].Label == ref {
			return &cols[i], nil
		}
	}
	return nil, fmt.Errorf("column %q: %w", ref, drive.ErrNotFound)
}

// resolveRow accepts a row ID or 0-based position within a document.
func resolveRow(s drive.Store, documentID, ref string) (*types.Row, error) {
	rows, err := s.ListRows(documentID)
	if err != nil {
		return nil, err
	}
	for i := range rows {
		if rows[i].ID == ref {
			return &rows[i], nil
		}
	}
	var pos int
	if _, err := fmt.Sscanf(ref, "%d", &pos); err == nil {
		for i := range rows {
			if rows[i].Position == pos {
				return &rows[i], nil
			}
		}
	}
	return nil, fmt.Errorf("row %q: %w", ref, drive.ErrNotFound)
}
