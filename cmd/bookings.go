package cmd

import (
	"fmt"
	"strings"

	"cancha-cli/booking"

	"github.com/spf13/cobra"
)

func bookingsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bookings",
		Short: "Manage bookings",
	}

	cmd.AddCommand(bookingsListCmd(a))
	cmd.AddCommand(bookingsShowCmd(a))
	cmd.AddCommand(bookingsCancelCmd(a))
	cmd.AddCommand(bookingsSweepCmd(a))
	cmd.AddCommand(bookingsStatsCmd(a))
	return cmd
}

func bookingsListCmd(a *app) *cobra.Command {
	var past bool
	var all bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List upcoming bookings, or completed ones with --past",
		RunE: func(cmd *cobra.Command, args []string) error {
			if past && all {
				return fmt.Errorf("use either --past or --all, not both")
			}

			p, err := a.svc.Bookings(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if all {
				if a.outputJSON {
					return writeJSON(out, p)
				}
				fmt.Fprintln(out, "Upcoming")
				if err := a.renderBookings(cmd, p.Upcoming); err != nil {
					return err
				}
				fmt.Fprintln(out, "\nCompleted")
				return a.renderBookings(cmd, p.Completed)
			}

			bookings := p.Upcoming
			if past {
				bookings = p.Completed
			}
			if a.outputJSON {
				return writeJSON(out, bookings)
			}
			return a.renderBookings(cmd, bookings)
		},
	}

	cmd.Flags().BoolVar(&past, "past", false, "List completed bookings")
	cmd.Flags().BoolVar(&all, "all", false, "List both upcoming and completed bookings")
	return cmd
}

func (a *app) renderBookings(cmd *cobra.Command, bookings []booking.Booking) error {
	out := cmd.OutOrStdout()
	if len(bookings) == 0 {
		fmt.Fprintln(out, "No bookings found.")
		return nil
	}

	writer := newTable(out)
	if !a.outputCompact {
		fmt.Fprintln(writer, "ID\tDATE\tTIME\tFIELD\tHOURS\tPRICE")
	}
	for _, b := range bookings {
		fmt.Fprintf(writer, "%s\t%s\t%s\t%s\t%d\t%s\n", shortID(b.ID), b.Date, b.TimeSlot, b.FieldName, b.Duration, a.formatPrice(b.TotalPrice))
	}
	return writer.Flush()
}

// shortID trims generated ids for table output; full ids stay in JSON.
func shortID(id string) string {
	if len(id) > 8 && strings.Count(id, "-") == 4 {
		return id[:8]
	}
	return id
}

func bookingsShowCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show a booking",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := a.svc.Booking(cmd.Context(), strings.TrimSpace(args[0]))
			if err != nil {
				return fmt.Errorf("booking %q: %w", args[0], err)
			}

			out := cmd.OutOrStdout()
			if a.outputJSON {
				return writeJSON(out, b)
			}
			fmt.Fprintf(out, "Booking ID: %s\n", b.ID)
			fmt.Fprintf(out, "Field: %s (%s)\n", b.FieldName, b.FieldID)
			fmt.Fprintf(out, "When: %s %s, %s\n", b.Date, b.TimeSlot, hoursLabel(b.Duration))
			fmt.Fprintf(out, "Total: %s\n", a.formatPrice(b.TotalPrice))
			fmt.Fprintf(out, "Status: %s\n", b.Status)
			fmt.Fprintf(out, "Created: %s\n", b.CreatedAt)
			if b.CancelledAt != "" {
				fmt.Fprintf(out, "Cancelled: %s\n", b.CancelledAt)
			}
			return nil
		},
	}

	return cmd
}

func bookingsCancelCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cancel <id>",
		Short: "Cancel an upcoming booking",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := strings.TrimSpace(args[0])
			b, err := a.svc.Cancel(cmd.Context(), id)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if a.outputJSON {
				return writeJSON(out, b)
			}
			fmt.Fprintf(out, "Cancelled booking %s (%s %s %s).\n", b.ID, b.FieldName, b.Date, b.TimeSlot)
			return nil
		},
	}

	return cmd
}

func bookingsSweepCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Mark upcoming bookings that have ended as completed",
		RunE: func(cmd *cobra.Command, args []string) error {
			moved, err := a.svc.Sweep(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if a.outputJSON {
				return writeJSON(out, map[string]int{"completed": moved})
			}
			fmt.Fprintf(out, "Sweep complete. Completed %d booking(s).\n", moved)
			return nil
		},
	}

	return cmd
}

func bookingsStatsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show booking stats",
		RunE: func(cmd *cobra.Command, args []string) error {
			stats, err := a.svc.Stats(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if a.outputJSON {
				return writeJSON(out, stats)
			}
			if stats.TotalBookings == 0 {
				fmt.Fprintln(out, "No bookings found.")
				return nil
			}

			fmt.Fprintf(out, "Total bookings: %d\n", stats.TotalBookings)
			fmt.Fprintf(out, "Total spent: %s\n", a.formatPrice(stats.TotalSpent))
			fmt.Fprintf(out, "Favourite field: %s (%d bookings)\n", stats.FavouriteField, stats.FavouriteFieldCount)
			fmt.Fprintf(out, "Usual time: %s\n", stats.UsualTime)
			fmt.Fprintf(out, "Last played: %s\n", stats.LastPlayed)
			return nil
		},
	}

	return cmd
}
