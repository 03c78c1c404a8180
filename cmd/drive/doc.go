package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/antostif07/pyiurs-drive/drive"
	"github.com/antostif07/pyiurs-drive/types"
)

var (
	docOwner       string
	docDescription string
	dupName        string
	dupActor       string
	dupIncludeData bool
)

var docCmd = &cobra.Command{
	Use:   "doc",
	Short: "Manage documents",
}

var docCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a new document",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		defer func() { _ = store.Close() }()

		doc, err := store.CreateDocument(types.Document{
			Name:        args[0],
			Description: docDescription,
			OwnerID:     docOwner,
			Active:      true,
		})
		if err != nil {
			return err
		}
		slog.Info("document created", "id", doc.ID, "name", doc.Name)
		fmt.Println(doc.ID)
		return nil
	},
}

var docListCmd = &cobra.Command{
	Use:   "list",
	Short: "List documents",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		defer func() { _ = store.Close() }()

		docs, err := store.ListDocuments()
		if err != nil {
			return err
		}
		for _, doc := range docs {
			state := "active"
			if !doc.Active {
				state = "disabled"
			}
			fmt.Printf("%s\t%s\t%s\n", doc.ID, doc.Name, state)
		}
		return nil
	},
}

var docRenameCmd = &cobra.Command{
	Use:   "rename <doc> <new-name>",
	Short: "Rename a document",
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
		return store.RenameDocument(doc.ID, args[1])
	},
}

var docDisableCmd = &cobra.Command{
	Use:   "disable <doc>",
	Short: "Soft-disable a document",
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
		return store.SetDocumentActive(doc.ID, false)
	},
}

var docDuplicateCmd = &cobra.Command{
	Use:   "duplicate <doc>",
	Short: "Duplicate a document under a fresh identity",
	Long: "Duplicate copies the document's column schema (labels, kinds, order, " +
		"configuration, styling) into a brand-new document; with --include-data it " +
		"also copies every row, cell, sub-row and attachment. The source is never modified.",
	Args: cobra.ExactArgs(1),
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
		name := dupName
		if name == "" {
			name = doc.Name + " (copy)"
		}
		clone, err := drive.Duplicate(store, drive.DuplicateRequest{
			SourceID:    doc.ID,
			Name:        name,
			ActorID:     dupActor,
			IncludeData: dupIncludeData,
		})
		if err != nil {
			return err
		}
		slog.Info("document duplicated", "source", doc.ID, "clone", clone.ID, "include_data", dupIncludeData)
		fmt.Println(clone.ID)
		return nil
	},
}

func init() {
	docCreateCmd.Flags().StringVar(&docOwner, "owner", "", "owner identity")
	docCreateCmd.Flags().StringVar(&docDescription, "description", "", "document description")

	docDuplicateCmd.Flags().StringVar(&dupName, "name", "", "name for the copy")
	docDuplicateCmd.Flags().StringVar(&dupActor, "actor", "", "acting user identity")
	docDuplicateCmd.Flags().BoolVar(&dupIncludeData, "include-data", false, "copy rows and cells, not just the schema")

	docCmd.AddCommand(docCreateCmd)
	docCmd.AddCommand(docListCmd)
	docCmd.AddCommand(docRenameCmd)
	docCmd.AddCommand(docDisableCmd)
	docCmd.AddCommand(docDuplicateCmd)
}
