package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/antostif07/pyiurs-drive/types"
)

var (
	colKind     string
	colOptions  []string
	colPosition int
	colWidth    int
)

var colCmd = &cobra.Command{
	Use:   "col",
	Short: "Manage a document's columns",
}

var colAddCmd = &cobra.Command{
	Use:   "add <doc> <label>",
	Short: "Add a column to a document",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		defer func() { _ = store.Close() }()

		doc, err := resolveDocument(store, args[0])
		if err != nil {
			return err
		}
		col, err := store.AddColumn(types.Column{
			DocumentID: doc.ID,
			Label:      args[1],
			Kind:       types.Kind(colKind),
			Position:   colPosition,
			Width:      colWidth,
			Options:    colOptions,
		})
		if err != nil {
			return err
		}
		fmt.Println(col.ID)
		return nil
	},
}

var colListCmd = &cobra.Command{
	Use:   "list <doc>",
	Short: "List a document's columns in position order",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		defer func() { _ = store.Close() }()

		doc, err := resolveDocument(store, args[0])
		if err != nil {
			return err
		}
		cols, err := store.ListColumns(doc.ID)
		if err != nil {
			return err
		}
		for _, col := range cols {
			fmt.Printf("%d\t%s\t%s\t%s\n", col.Position, col.ID, col.Label, col.Kind)
		}
		return nil
	},
}

func init() {
	colAddCmd.Flags().StringVar(&colKind, "kind", "text", "column kind (text, number, date, boolean, multiline, select, file)")
	colAddCmd.Flags().StringSliceVar(&colOptions, "options", nil, "option list for select columns")
	colAddCmd.Flags().IntVar(&colPosition, "position", -1, "insert position (default: append)")
	colAddCmd.Flags().IntVar(&colWidth, "width", 0, "display width hint")

	colCmd.AddCommand(colAddCmd)
	colCmd.AddCommand(colListCmd)
}
