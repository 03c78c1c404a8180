package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/antostif07/pyiurs-drive/types"
)

var rowActor string

var rowCmd = &cobra.Command{
	Use:   "row",
	Short: "Manage a document's rows",
}

var rowAddCmd = &cobra.Command{
	Use:   "add <doc>",
	Short: "Append a row to a document",
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
		row, err := store.AddRow(types.Row{
			DocumentID: doc.ID,
			Position:   -1,
			CreatedBy:  rowActor,
		})
		if err != nil {
			return err
		}
		fmt.Println(row.ID)
		return nil
	},
}

func init() {
	rowAddCmd.Flags().StringVar(&rowActor, "actor", "", "acting user identity")
	rowCmd.AddCommand(rowAddCmd)
}
