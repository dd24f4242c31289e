package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"cancha-cli/booking"

	"github.com/spf13/cobra"
)

type requestFlags struct {
	field    string
	date     string
	time     string
	duration int
}

func (f *requestFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.field, "field", "", "Field id or alias")
	cmd.Flags().StringVar(&f.date, "date", "", "Date (YYYY-MM-DD, today, tomorrow)")
	cmd.Flags().StringVar(&f.time, "time", "", "Start time (HH:MM)")
	cmd.Flags().IntVar(&f.duration, "duration", 1, "Duration in hours")
}

// request builds a booking request from the flags. Empty values are
// passed through so validation reports them in order.
func (a *app) request(f requestFlags) (booking.Request, error) {
	req := booking.Request{
		FieldID:  strings.TrimSpace(f.field),
		TimeSlot: strings.TrimSpace(f.time),
		Duration: f.duration,
	}
	if req.FieldID != "" {
		if field, err := a.svc.Catalog().ResolveField(req.FieldID); err == nil {
			req.FieldID = field.ID
		}
	}
	if strings.TrimSpace(f.date) != "" {
		date, err := parseDateInput(f.date, a.now(), a.loc)
		if err != nil {
			return booking.Request{}, err
		}
		req.Date = date
	}
	if req.TimeSlot != "" {
		if _, err := parseClock(req.TimeSlot); err != nil {
			return booking.Request{}, err
		}
	}
	return req, nil
}

type QuoteOutput struct {
	FieldID   string  `json:"fieldId"`
	FieldName string  `json:"fieldName"`
	Date      string  `json:"date"`
	TimeSlot  string  `json:"timeSlot"`
	Duration  int     `json:"duration"`
	Price     float64 `json:"totalPrice"`
	Currency  string  `json:"currency"`
}

func (a *app) quoteOutput(q booking.Quote) QuoteOutput {
	return QuoteOutput{
		FieldID:   q.Field.ID,
		FieldName: q.Field.Name,
		Date:      q.Request.Date,
		TimeSlot:  q.Request.TimeSlot,
		Duration:  q.Request.Duration,
		Price:     q.Price,
		Currency:  a.cfg.Currency,
	}
}

func (a *app) printQuote(cmd *cobra.Command, q QuoteOutput) {
	out := cmd.OutOrStdout()
	if a.outputCompact {
		fmt.Fprintf(out, "%s | %s %s | %s | %s\n", q.FieldName, q.Date, q.TimeSlot, hoursLabel(q.Duration), a.formatPrice(q.Price))
		return
	}
	fmt.Fprintf(out, "Field: %s\n", q.FieldName)
	fmt.Fprintf(out, "Date: %s (%s)\n", q.Date, dateLabel(q.Date))
	fmt.Fprintf(out, "Time: %s\n", q.TimeSlot)
	fmt.Fprintf(out, "Duration: %s\n", hoursLabel(q.Duration))
	fmt.Fprintf(out, "Total: %s\n", a.formatPrice(q.Price))
}

func quoteCmd(a *app) *cobra.Command {
	var flags requestFlags

	cmd := &cobra.Command{
		Use:   "quote",
		Short: "Validate a booking request and show its price",
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := a.request(flags)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			quote, err := a.svc.Quote(ctx, req)
			if err != nil {
				return a.explain(ctx, err)
			}

			output := a.quoteOutput(quote)
			if a.outputJSON {
				return writeJSON(cmd.OutOrStdout(), output)
			}
			a.printQuote(cmd, output)
			return nil
		},
	}

	flags.register(cmd)
	return cmd
}

func bookCmd(a *app) *cobra.Command {
	var flags requestFlags
	var yes bool

	cmd := &cobra.Command{
		Use:   "book",
		Short: "Book a field",
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := a.request(flags)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			quote, err := a.svc.Quote(ctx, req)
			if err != nil {
				return a.explain(ctx, err)
			}

			if !yes {
				if !a.isTerminal() {
					return fmt.Errorf("confirmation required. Re-run with --yes")
				}
				a.printQuote(cmd, a.quoteOutput(quote))
				ok, err := confirm(a.stdin, cmd.OutOrStdout(), "Confirm booking?")
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(cmd.OutOrStdout(), "Booking not confirmed.")
					return nil
				}
			}

			b, err := a.svc.Confirm(ctx, req)
			if err != nil {
				return a.explain(ctx, err)
			}

			out := cmd.OutOrStdout()
			if a.outputJSON {
				return writeJSON(out, b)
			}
			fmt.Fprintf(out, "Booked: %s %s %s\n", b.FieldName, b.TimeSlot, dateLabel(b.Date))
			fmt.Fprintf(out, "%s | %s\n", hoursLabel(b.Duration), a.formatPrice(b.TotalPrice))
			fmt.Fprintf(out, "Booking ID: %s\n", b.ID)
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Confirm without prompting")
	return cmd
}

// explain adds the choices a user can pick from to validation errors that
// have them.
func (a *app) explain(ctx context.Context, err error) error {
	var v *booking.ValidationError
	if !errors.As(err, &v) {
		return err
	}
	switch v.Code {
	case booking.CodeSlotNotAvailable:
		field, ok := a.svc.Catalog().Field(v.FieldID)
		if !ok {
			return err
		}
		open, openErr := a.svc.OpenSlots(ctx, field, v.Date)
		if openErr != nil || len(open) == 0 {
			return err
		}
		return fmt.Errorf("%w (open: %s)", err, strings.Join(open, " "))
	case booking.CodeDurationNotOffered:
		return fmt.Errorf("%w (choose %s hours)", err, joinInts(a.svc.DurationMenu()))
	}
	return err
}
