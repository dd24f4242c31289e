package cmd

import (
	"fmt"
	"strings"

	"cancha-cli/booking"

	"github.com/spf13/cobra"
)

type FieldSummary struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Sport        string  `json:"sport"`
	City         string  `json:"city"`
	PricePerHour float64 `json:"pricePerHour"`
	Rating       float64 `json:"rating"`
	ReviewCount  int     `json:"reviewCount"`
	IsAvailable  bool    `json:"isAvailable"`
}

func summarizeField(field booking.Field) FieldSummary {
	return FieldSummary{
		ID:           field.ID,
		Name:         field.Name,
		Sport:        field.Sport,
		City:         field.Location.City,
		PricePerHour: field.PricePerHour,
		Rating:       field.Rating,
		ReviewCount:  field.ReviewCount,
		IsAvailable:  field.IsAvailable,
	}
}

func fieldsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fields",
		Short: "Browse sports fields",
	}

	cmd.AddCommand(fieldsListCmd(a))
	cmd.AddCommand(fieldsShowCmd(a))
	cmd.AddCommand(fieldsSportsCmd(a))
	return cmd
}

func fieldsListCmd(a *app) *cobra.Command {
	var query string
	var sport string
	var policyName string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List fields matching a search",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("sport") {
				sport = a.cfg.DefaultSport
			}
			if !cmd.Flags().Changed("policy") {
				policyName = a.cfg.SearchPolicy
			}
			policy, err := booking.PolicyByName(policyName)
			if err != nil {
				return err
			}

			fields := booking.Filter(a.svc.Catalog().Fields(), query, sport, policy)
			summaries := make([]FieldSummary, 0, len(fields))
			for _, field := range fields {
				summaries = append(summaries, summarizeField(field))
			}

			out := cmd.OutOrStdout()
			if a.outputJSON {
				return writeJSON(out, summaries)
			}

			if len(summaries) == 0 {
				fmt.Fprintln(out, "No fields found.")
				return nil
			}

			writer := newTable(out)
			if !a.outputCompact {
				fmt.Fprintln(writer, "ID\tNAME\tSPORT\tCITY\tPRICE/H\tRATING")
			}
			for _, s := range summaries {
				fmt.Fprintf(writer, "%s\t%s\t%s\t%s\t%s\t%.1f (%d)\n", s.ID, s.Name, s.Sport, s.City, a.formatPrice(s.PricePerHour), s.Rating, s.ReviewCount)
			}
			return writer.Flush()
		},
	}

	cmd.Flags().StringVarP(&query, "query", "q", "", "Search text")
	cmd.Flags().StringVar(&sport, "sport", booking.AllSports, "Sport filter")
	cmd.Flags().StringVar(&policyName, "policy", "home", "Search policy (home or explore)")
	return cmd
}

func fieldsShowCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <id|alias>",
		Short: "Show field details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			field, err := a.svc.Catalog().ResolveField(args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if a.outputJSON {
				return writeJSON(out, field)
			}

			status := "open"
			if !field.IsAvailable {
				status = "closed"
			}
			if a.outputCompact {
				fmt.Fprintf(out, "%s | %s | %s | %s/h | %s\n", field.Name, field.Sport, field.Location.City, a.formatPrice(field.PricePerHour), status)
				return nil
			}

			fmt.Fprintf(out, "%s (%s)\n", field.Name, field.ID)
			fmt.Fprintf(out, "Sport: %s\n", field.Sport)
			fmt.Fprintf(out, "Address: %s, %s\n", field.Location.Address, field.Location.City)
			fmt.Fprintf(out, "Price: %s per hour\n", a.formatPrice(field.PricePerHour))
			fmt.Fprintf(out, "Rating: %.1f (%d reviews)\n", field.Rating, field.ReviewCount)
			fmt.Fprintf(out, "Status: %s\n", status)
			if field.Description != "" {
				fmt.Fprintf(out, "\n%s\n", field.Description)
			}
			if len(field.Amenities) > 0 {
				fmt.Fprintf(out, "\nAmenities: %s\n", strings.Join(field.Amenities, ", "))
			}
			dates := booking.AvailableDates(field)
			if len(dates) > 0 {
				fmt.Fprintf(out, "Dates: %s\n", strings.Join(dates, ", "))
			}
			return nil
		},
	}

	return cmd
}

func fieldsSportsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sports",
		Short: "List sport filter values",
		RunE: func(cmd *cobra.Command, args []string) error {
			sports := a.svc.Catalog().Sports()
			out := cmd.OutOrStdout()
			if a.outputJSON {
				return writeJSON(out, sports)
			}
			for _, sport := range sports {
				fmt.Fprintln(out, sport)
			}
			return nil
		},
	}

	return cmd
}
