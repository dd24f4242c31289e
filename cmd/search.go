package cmd

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"cancha-cli/booking"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

type SearchFieldResult struct {
	FieldID   string   `json:"fieldId"`
	FieldName string   `json:"fieldName"`
	City      string   `json:"city"`
	Slots     []string `json:"slots"`
}

type SearchResult struct {
	Date   string              `json:"date"`
	Fields []SearchFieldResult `json:"fields"`
}

func searchCmd(a *app) *cobra.Command {
	var query string
	var sport string
	var date string
	var timeRange string

	cmd := &cobra.Command{
		Use:   "search",
		Short: "Search open slots across fields on a date",
		RunE: func(cmd *cobra.Command, args []string) error {
			if date == "" {
				return fmt.Errorf("--date is required")
			}
			target, err := parseDateInput(date, a.now(), a.loc)
			if err != nil {
				return err
			}

			var startMinutes, endMinutes int
			var hasTimeRange bool
			if timeRange != "" {
				startMinutes, endMinutes, err = parseTimeRange(timeRange)
				if err != nil {
					return err
				}
				hasTimeRange = true
			}

			if !cmd.Flags().Changed("sport") {
				sport = a.cfg.DefaultSport
			}
			policy, err := booking.PolicyByName(a.cfg.SearchPolicy)
			if err != nil {
				return err
			}

			fields := booking.Filter(a.svc.Catalog().Fields(), query, sport, policy)
			open := make([][]string, len(fields))
			g, ctx := errgroup.WithContext(cmd.Context())
			for i, field := range fields {
				if !field.IsAvailable {
					continue
				}
				g.Go(func() error {
					slots, err := a.svc.OpenSlots(ctx, field, target)
					if err != nil {
						return err
					}
					open[i] = slots
					return nil
				})
			}
			if err := g.Wait(); err != nil {
				return err
			}

			result := SearchResult{Date: target, Fields: []SearchFieldResult{}}
			for i, field := range fields {
				if !field.IsAvailable {
					continue
				}
				slots := []string{}
				for _, slot := range open[i] {
					minutes, err := slotMinutes(slot)
					if err != nil {
						continue
					}
					if hasTimeRange && (minutes < startMinutes || minutes > endMinutes) {
						continue
					}
					slots = append(slots, slot)
				}
				result.Fields = append(result.Fields, SearchFieldResult{
					FieldID:   field.ID,
					FieldName: field.Name,
					City:      field.Location.City,
					Slots:     slots,
				})
			}

			out := cmd.OutOrStdout()
			if a.outputJSON {
				return writeJSON(out, result)
			}
			if a.outputCompact {
				fmt.Fprintln(out, renderCompactSearch(result))
				return nil
			}

			fmt.Fprintf(out, "%s\n", result.Date)
			if len(result.Fields) == 0 {
				fmt.Fprintln(out, "No fields found.")
				return nil
			}
			for _, field := range result.Fields {
				fmt.Fprintf(out, "%s, %s\n", field.FieldName, field.City)
				if len(field.Slots) == 0 {
					fmt.Fprintln(out, "  No available slots.")
					continue
				}
				fmt.Fprintf(out, "  %s\n", strings.Join(field.Slots, "  "))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&query, "query", "q", "", "Search text")
	cmd.Flags().StringVar(&sport, "sport", booking.AllSports, "Sport filter")
	cmd.Flags().StringVar(&date, "date", "", "Date (YYYY-MM-DD, today, tomorrow)")
	cmd.Flags().StringVar(&timeRange, "time", "", "Time range (HH:MM-HH:MM)")
	return cmd
}

func parseTimeRange(input string) (int, int, error) {
	parts := strings.Split(input, "-")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid time range %q (expected HH:MM-HH:MM)", input)
	}
	start, err := slotMinutes(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, 0, err
	}
	end, err := slotMinutes(strings.TrimSpace(parts[1]))
	if err != nil {
		return 0, 0, err
	}
	if end <= start {
		return 0, 0, fmt.Errorf("time range end must be after start")
	}
	return start, end, nil
}

func slotMinutes(input string) (int, error) {
	parsed, err := time.Parse(booking.TimeLayout, input)
	if err != nil {
		return 0, fmt.Errorf("invalid time %q (expected HH:MM)", input)
	}
	return parsed.Hour()*60 + parsed.Minute(), nil
}

// renderCompactSearch marks, for every field, which of the times open
// anywhere on the date it offers.
func renderCompactSearch(result SearchResult) string {
	set := map[string]struct{}{}
	for _, field := range result.Fields {
		for _, slot := range field.Slots {
			set[slot] = struct{}{}
		}
	}
	times := make([]string, 0, len(set))
	for t := range set {
		times = append(times, t)
	}
	sort.Strings(times)

	parts := []string{}
	for _, field := range result.Fields {
		if len(times) == 0 {
			parts = append(parts, fmt.Sprintf("%s: no slots", field.FieldName))
			continue
		}

		offered := map[string]struct{}{}
		for _, slot := range field.Slots {
			offered[slot] = struct{}{}
		}
		labels := make([]string, 0, len(times))
		for _, t := range times {
			if _, ok := offered[t]; ok {
				labels = append(labels, fmt.Sprintf("%s ✓", t))
			} else {
				labels = append(labels, fmt.Sprintf("%s ✗", t))
			}
		}
		parts = append(parts, fmt.Sprintf("%s: %s", field.FieldName, strings.Join(labels, " ")))
	}
	return strings.Join(parts, " | ")
}
