package cmd

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"text/tabwriter"

	"github.com/iksnae/lawchat/internal"
	"github.com/spf13/cobra"
)

var statsRemote bool

// statsCmd represents the stats command
var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show usage statistics for all identities (admin only)",
	Long: `Count identities, conversations, messages and questions stored locally.

With --remote the number of documents in the knowledge base is fetched as well.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireAdmin(); err != nil {
			return err
		}

		medium, closeMedium, err := openMedium()
		if err != nil {
			return err
		}
		defer closeMedium()

		stats, err := internal.CollectStats(medium)
		if err != nil {
			return fmt.Errorf("failed to read storage: %w", err)
		}

		documents := -1
		if statsRemote {
			docs, err := newAPIClient().ListDocuments(cmd.Context())
			if err != nil {
				internal.PrintWarning(fmt.Sprintf("Could not fetch documents: %v", err))
			} else {
				documents = len(docs)
			}
		}

		displayStats(cmd.OutOrStdout(), stats, documents)
		return nil
	},
}

// displayStats prints the quick stats; documents < 0 means unknown
func displayStats(out io.Writer, stats internal.MediumStats, documents int) {
	_, _ = fmt.Fprintln(out, sectionStyle.Render("📊 Quick Stats"))
	_, _ = fmt.Fprintln(out)

	w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
	if documents >= 0 {
		_, _ = fmt.Fprintf(w, "Total Documents\t%s\n", countStyle.Render(strconv.Itoa(documents)))
	}
	_, _ = fmt.Fprintf(w, "Total Queries\t%s\n", countStyle.Render(strconv.Itoa(stats.UserQuestions)))
	_, _ = fmt.Fprintf(w, "Identities\t%s\n", countStyle.Render(strconv.Itoa(stats.Identities)))
	_, _ = fmt.Fprintf(w, "Conversations\t%s\n", countStyle.Render(strconv.Itoa(stats.Sessions)))
	_, _ = fmt.Fprintf(w, "Messages\t%s\n", countStyle.Render(strconv.Itoa(stats.Messages)))
	_ = w.Flush()

	if len(stats.PerIdentity) == 0 {
		return
	}

	keys := make([]string, 0, len(stats.PerIdentity))
	for key := range stats.PerIdentity {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	_, _ = fmt.Fprintln(out)
	w = tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
	_, _ = fmt.Fprintln(w, titleStyle.Render("Identity")+"\t"+titleStyle.Render("Conversations")+"\t")
	for _, key := range keys {
		_, _ = fmt.Fprintf(w, "%s\t%d\t\n", idStyle.Render(key), stats.PerIdentity[key])
	}
	_ = w.Flush()
}

func init() {
	rootCmd.AddCommand(statsCmd)
	statsCmd.Flags().BoolVar(&statsRemote, "remote", false, "Also count documents in the knowledge base")
}
