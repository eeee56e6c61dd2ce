package main

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var languagesCmd = &cobra.Command{
	Use:   "languages",
	Short: "List supported languages and their commands",
	Long: `Loads the language list the same way the bot does at startup and prints
every command together with the language it runs.

Languages whose command name is already taken are listed at the end.`,
	Args: cobra.NoArgs,
	RunE: runLanguages,
}

func init() {
	rootCmd.AddCommand(languagesCmd)
}

func runLanguages(cmd *cobra.Command, args []string) error {
	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}

	ctx := context.Background()
	client, err := newTioClient(cfg, log)
	if err != nil {
		return err
	}
	a, langCache, err := bootstrap(ctx, cfg, client, log)
	if err != nil {
		return err
	}
	defer langCache.Close()

	// Display names are optional
	catalog, err := client.Catalog(ctx)
	if err != nil {
		log.Warn("Failed to fetch language names: %v", err)
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "COMMAND\tLANGUAGE\tNAME")
	for _, b := range a.Registry.Bindings() {
		if b.IsHelp() {
			fmt.Fprintf(w, "/%s\t-\tusage\n", b.Name)
			continue
		}
		fmt.Fprintf(w, "/%s\t%s\t%s\n", b.Name, b.LanguageID, catalog[b.LanguageID].Name)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if collisions := a.Registry.Collisions(); len(collisions) > 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "\n%d languages have no command:\n", len(collisions))
		for _, c := range collisions {
			fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", c)
		}
	}
	return nil
}
