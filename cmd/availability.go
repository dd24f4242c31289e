package cmd

import (
	"fmt"
	"strings"

	"cancha-cli/booking"

	"github.com/spf13/cobra"
)

type AvailabilityOutput struct {
	FieldID   string                `json:"fieldId"`
	FieldName string                `json:"fieldName"`
	Date      string                `json:"date,omitempty"`
	Slots     []string              `json:"slots,omitempty"`
	Dates     *booking.Availability `json:"availability,omitempty"`
}

func availabilityCmd(a *app) *cobra.Command {
	var fieldInput string
	var date string

	cmd := &cobra.Command{
		Use:   "availability",
		Short: "Show bookable dates, or open slots on a date",
		RunE: func(cmd *cobra.Command, args []string) error {
			if fieldInput == "" {
				return fmt.Errorf("--field is required")
			}
			field, err := a.svc.Catalog().ResolveField(fieldInput)
			if err != nil {
				return err
			}

			output := AvailabilityOutput{FieldID: field.ID, FieldName: field.Name}
			ctx := cmd.Context()
			if date != "" {
				target, err := parseDateInput(date, a.now(), a.loc)
				if err != nil {
					return err
				}
				slots, err := a.svc.OpenSlots(ctx, field, target)
				if err != nil {
					return err
				}
				output.Date = target
				output.Slots = slots
			} else {
				days := booking.NewAvailability()
				for _, day := range booking.AvailableDates(field) {
					slots, err := a.svc.OpenSlots(ctx, field, day)
					if err != nil {
						return err
					}
					days.Set(day, slots)
				}
				output.Dates = &days
			}

			out := cmd.OutOrStdout()
			if a.outputJSON {
				return writeJSON(out, output)
			}
			return a.renderAvailability(cmd, output)
		},
	}

	cmd.Flags().StringVar(&fieldInput, "field", "", "Field id or alias")
	cmd.Flags().StringVar(&date, "date", "", "Date (YYYY-MM-DD, today, tomorrow)")
	return cmd
}

func (a *app) renderAvailability(cmd *cobra.Command, output AvailabilityOutput) error {
	out := cmd.OutOrStdout()

	if output.Dates == nil {
		if a.outputCompact {
			fmt.Fprintf(out, "%s %s: %s\n", output.FieldName, output.Date, slotsLabel(output.Slots))
			return nil
		}
		fmt.Fprintf(out, "%s (%s)\nDate: %s\n", output.FieldName, output.FieldID, output.Date)
		if len(output.Slots) == 0 {
			fmt.Fprintln(out, "No available slots.")
			return nil
		}
		fmt.Fprintf(out, "Slots: %s\n", strings.Join(output.Slots, "  "))
		return nil
	}

	if output.Dates.Len() == 0 {
		fmt.Fprintf(out, "%s (%s)\nNo available dates.\n", output.FieldName, output.FieldID)
		return nil
	}

	if a.outputCompact {
		parts := []string{}
		for _, day := range output.Dates.Dates() {
			parts = append(parts, fmt.Sprintf("%s: %s", day, slotsLabel(output.Dates.Slots(day))))
		}
		fmt.Fprintln(out, strings.Join(parts, " | "))
		return nil
	}

	fmt.Fprintf(out, "%s (%s)\n", output.FieldName, output.FieldID)
	writer := newTable(out)
	fmt.Fprintln(writer, "DATE\tDAY\tSLOTS")
	for _, day := range output.Dates.Dates() {
		fmt.Fprintf(writer, "%s\t%s\t%s\n", day, dateLabel(day), slotsLabel(output.Dates.Slots(day)))
	}
	return writer.Flush()
}

func slotsLabel(slots []string) string {
	if len(slots) == 0 {
		return "none"
	}
	return strings.Join(slots, " ")
}
