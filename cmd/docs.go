package cmd

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/iksnae/lawchat/internal"
	"github.com/iksnae/lawchat/internal/api"
	"github.com/spf13/cobra"
)

var docsCategory string

var errNotPDF = errors.New("only PDF files can be uploaded")

// docsCmd groups the knowledge base commands
var docsCmd = &cobra.Command{
	Use:   "docs",
	Short: "Manage the legal document knowledge base (admin only)",
	Long: `List, upload and delete the PDF documents the law assistant answers from.

These commands require the admin role (--role admin).`,
}

var docsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List documents in the knowledge base",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireAdmin(); err != nil {
			return err
		}

		var docs []api.Document
		err := internal.ShowProgress(cmd.Context(), "Fetching documents", func() error {
			var listErr error
			docs, listErr = newAPIClient().ListDocuments(cmd.Context())
			return listErr
		})
		if err != nil {
			return err
		}

		displayDocuments(cmd.OutOrStdout(), docs)
		return nil
	},
}

var docsUploadCmd = &cobra.Command{
	Use:   "upload <file.pdf>",
	Short: "Upload a PDF document",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireAdmin(); err != nil {
			return err
		}

		path := args[0]
		if !strings.EqualFold(filepath.Ext(path), ".pdf") {
			return fmt.Errorf("%w: %s", errNotPDF, path)
		}

		var result *api.UploadResult
		err := internal.ShowProgress(cmd.Context(), fmt.Sprintf("Uploading %s", filepath.Base(path)), func() error {
			var uploadErr error
			result, uploadErr = newAPIClient().UploadDocument(cmd.Context(), path, docsCategory)
			return uploadErr
		})
		if err != nil {
			return err
		}

		msg := fmt.Sprintf("✅ Uploaded %s", result.Filename)
		if result.Category != "" {
			msg += fmt.Sprintf(" (%s)", result.Category)
		}
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render(msg))
		if result.Message != "" {
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), idStyle.Render(result.Message))
		}
		return nil
	},
}

var docsDeleteCmd = &cobra.Command{
	Use:   "delete <filename>",
	Short: "Delete a document from the knowledge base",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireAdmin(); err != nil {
			return err
		}

		filename := args[0]
		err := internal.ShowProgress(cmd.Context(), fmt.Sprintf("Deleting %s", filename), func() error {
			return newAPIClient().DeleteDocument(cmd.Context(), filename)
		})
		if err != nil {
			return err
		}

		_, _ = fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render("🗑  Deleted "+filename))
		return nil
	},
}

func displayDocuments(out io.Writer, docs []api.Document) {
	if len(docs) == 0 {
		_, _ = fmt.Fprintln(out, headerStyle.Render("📚 No documents uploaded yet"))
		return
	}

	_, _ = fmt.Fprintln(out, headerStyle.Render(fmt.Sprintf("📚 %d document(s)", len(docs))))
	_, _ = fmt.Fprintln(out)

	w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
	_, _ = fmt.Fprintln(w, titleStyle.Render("Filename")+"\t"+titleStyle.Render("Category")+"\t"+titleStyle.Render("Path")+"\t")
	for _, doc := range docs {
		category := doc.Category
		if category == "" {
			category = "—"
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t\n", doc.Filename, dateStyle.Render(category), idStyle.Render(doc.Path))
	}
	_ = w.Flush()
}

func init() {
	rootCmd.AddCommand(docsCmd)
	docsCmd.AddCommand(docsListCmd, docsUploadCmd, docsDeleteCmd)
	docsUploadCmd.Flags().StringVar(&docsCategory, "category", "general", "Document category")
}
