package main

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/couchcryptid/sunspot-archive-service/internal/adapter/sqlite"
	"github.com/couchcryptid/sunspot-archive-service/internal/domain"
	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
	"github.com/spf13/cobra"
)

var ledgerLimit int

var ledgerCmd = &cobra.Command{
	Use:   "ledger",
	Short: "Show recent submissions from the local ledger",
	RunE:  runLedger,
}

func init() {
	ledgerCmd.Flags().IntVarP(&ledgerLimit, "limit", "n", 20, "Number of entries to show")
}

func runLedger(cmd *cobra.Command, _ []string) error {
	path := sharedcfg.EnvOrDefault("LEDGER_PATH", "")
	if path == "" {
		return errors.New("LEDGER_PATH is not set")
	}

	l, err := sqlite.Open(path)
	if err != nil {
		return err
	}
	defer l.Close()

	entries, err := l.Recent(cmd.Context(), ledgerLimit)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RECORDED\tNAME\tDATE\tSTATUS\tSUNSPOTS\tPAGE")
	for _, e := range entries {
		count := "-"
		if e.SunspotCount != nil {
			count = fmt.Sprint(*e.SunspotCount)
		}
		page := e.PageURL
		if e.Status != domain.StatusArchived && e.Error != "" {
			page = e.Error
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			e.RecordedAt.Local().Format("2006-01-02 15:04"), e.Name, e.ObservedOn, e.Status, count, page)
	}
	return tw.Flush()
}
