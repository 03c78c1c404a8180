package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/antostif07/pyiurs-drive/drive"
)

var cellActor string

var cellCmd = &cobra.Command{
	Use:   "cell",
	Short: "Read and write individual cells",
}

var cellSetCmd = &cobra.Command{
	Use:   "set <doc> <row> <col> <value>",
	Short: "Write a cell value, creating the cell if the pair is unset",
	Args:  cobra.ExactArgs(4),
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
		row, err := resolveRow(store, doc.ID, args[1])
		if err != nil {
			return err
		}
		col, err := resolveColumn(store, doc.ID, args[2])
		if err != nil {
			return err
		}
		cell, err := drive.WriteTableValue(store, row.ID, col.ID, args[3], cellActor)
		if err != nil {
			return err
		}
		fmt.Println(cell.ID)
		return nil
	},
}

var cellGetCmd = &cobra.Command{
	Use:   "get <doc> <row> <col>",
	Short: "Print a cell's display value (the kind's default when unset)",
	Args:  cobra.ExactArgs(3),
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
		row, err := resolveRow(store, doc.ID, args[1])
		if err != nil {
			return err
		}
		col, err := resolveColumn(store, doc.ID, args[2])
		if err != nil {
			return err
		}
		cell, err := store.GetCell(row.ID, col.ID)
		if errors.Is(err, drive.ErrNotFound) {
			fmt.Println(col.Kind.Default().Display())
			return nil
		}
		if err != nil {
			return err
		}
		fmt.Println(cell.Value.Display())
		return nil
	},
}

func init() {
	cellSetCmd.Flags().StringVar(&cellActor, "actor", "", "acting user identity")
	cellCmd.AddCommand(cellSetCmd)
	cellCmd.AddCommand(cellGetCmd)
}
