package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/antostif07/pyiurs-drive/drive"
)

var schemaFilePath string

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Apply and export declarative column schemas",
}

var schemaApplyCmd = &cobra.Command{
	Use:   "apply <doc>",
	Short: "Append the columns of a YAML schema file to a document",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(schemaFilePath)
		if err != nil {
			return fmt.Errorf("failed to open schema file: %w", err)
		}
		defer func() { _ = f.Close() }()

		schema, err := drive.LoadSchema(f)
		if err != nil {
			return err
		}

		store, err := openStore()
		if err != nil {
			return err
		}
		defer func() { _ = store.Close() }()

		doc, err := resolveDocument(store, args[0])
		if err != nil {
			return err
		}
		created, err := drive.ApplySchema(store, doc.ID, schema)
		if err != nil {
			return err
		}
		for _, col := range created {
			fmt.Printf("%s\t%s\t%s\n", col.ID, col.Label, col.Kind)
		}
		return nil
	},
}

var schemaExportCmd = &cobra.Command{
	Use:   "export <doc>",
	Short: "Write a document's column set as YAML to stdout",
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
		schema, err := drive.ExportSchema(store, doc.ID)
		if err != nil {
			return err
		}
		return schema.Write(os.Stdout)
	},
}

func init() {
	schemaApplyCmd.Flags().StringVarP(&schemaFilePath, "file", "f", "", "path to schema YAML file")
	_ = schemaApplyCmd.MarkFlagRequired("file")

	schemaCmd.AddCommand(schemaApplyCmd)
	schemaCmd.AddCommand(schemaExportCmd)
}
