package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/martijn/evently/internal/api/util"
	"github.com/martijn/evently/internal/core/repository"
	"github.com/spf13/cobra"
)

var (
	eventsPage   int
	eventsLimit  int
	eventsSearch string
	eventsQuery  string
)

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Inspect events",
}

var eventsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List events ordered by date",
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := initServices(cmd.Context())
		if err != nil {
			return err
		}
		defer services.Close()

		page, limit := util.PageParams(
			fmt.Sprint(eventsPage),
			fmt.Sprint(eventsLimit),
			cfg.DefaultPageSize,
			cfg.MaxPageSize,
		)

		filter := repository.EventFilter{
			ListFilter: util.ListFilter{Page: page, PerPage: limit},
			Search:     eventsSearch,
		}
		if eventsQuery != "" {
			filters, err := util.ParseQueryString(eventsQuery)
			if err != nil {
				return err
			}
			filter.Filters = filters
		}

		result, err := services.EventService.ListEvents(cmd.Context(), filter)
		if err != nil {
			return fmt.Errorf("failed to list events: %w", err)
		}

		if len(result.Events) == 0 {
			fmt.Println("No events found")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tDATE\tTITLE\tLOCATION\tORGANIZER")
		for _, event := range result.Events {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
				event.ID,
				event.Date.Format("2006-01-02 15:04"),
				event.Title,
				event.Location,
				event.OrganizerUsername,
			)
		}
		w.Flush()

		fmt.Printf("\nPage %d of %d (%d events)\n", result.Page, result.TotalPages, result.Total)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(eventsCmd)
	eventsCmd.AddCommand(eventsListCmd)

	eventsListCmd.Flags().IntVar(&eventsPage, "page", 1, "page number")
	eventsListCmd.Flags().IntVar(&eventsLimit, "limit", 0, "page size (default from config)")
	eventsListCmd.Flags().StringVar(&eventsSearch, "search", "", "substring of title, description or location")
	eventsListCmd.Flags().StringVar(&eventsQuery, "query", "", "filters, e.g. location|Room A")
}
