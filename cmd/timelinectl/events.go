package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/go-resty/resty/v2"
	"github.com/spf13/cobra"

	"github.com/formansean/ufo-timline/internal/model"
)

func init() {
	eventsCmd := &cobra.Command{Use: "events", Short: "Event operations"}

	// list
	var category, search string
	var limit, offset int
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List events",
		RunE: func(cmd *cobra.Command, args []string) error {
			req := newClient(apiFlag, "").R()
			if category != "" {
				req.SetQueryParam("category", category)
			}
			if search != "" {
				req.SetQueryParam("search", search)
			}
			if limit > 0 {
				req.SetQueryParam("limit", fmt.Sprint(limit))
			}
			if offset > 0 {
				req.SetQueryParam("offset", fmt.Sprint(offset))
			}
			body, err := check(req.Get("/api/events"))
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, string(body))
			return nil
		},
	}
	listCmd.Flags().StringVarP(&category, "category", "c", "", "Filter by category")
	listCmd.Flags().StringVarP(&search, "search", "s", "", "Full-text search term")
	listCmd.Flags().IntVarP(&limit, "limit", "l", 0, "Page size (0 = all)")
	listCmd.Flags().IntVarP(&offset, "offset", "o", 0, "Page offset")
	eventsCmd.AddCommand(listCmd)

	// get
	getCmd := &cobra.Command{
		Use:   "get EVENT_ID",
		Short: "Get an event by ID",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := check(newClient(apiFlag, "").R().Get("/api/events/" + args[0]))
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, string(body))
			return nil
		},
	}
	eventsCmd.AddCommand(getCmd)

	// today
	todayCmd := &cobra.Command{
		Use:   "today",
		Short: "List events whose anniversary is today",
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := check(newClient(apiFlag, "").R().Get("/api/events/today"))
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, string(body))
			return nil
		},
	}
	eventsCmd.AddCommand(todayCmd)

	// create
	var createFile string
	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create an event from a JSON file (admin)",
		RunE: func(cmd *cobra.Command, args []string) error {
			ev, err := readEventFile(createFile)
			if err != nil {
				return err
			}
			body, err := check(newClient(apiFlag, tokenFlag).R().
				SetBody(ev).
				Post("/api/events"))
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, string(body))
			return nil
		},
	}
	createCmd.Flags().StringVarP(&createFile, "file", "f", "", "Path to event JSON (required)")
	_ = createCmd.MarkFlagRequired("file")
	eventsCmd.AddCommand(createCmd)

	// update
	var updateFile string
	updateCmd := &cobra.Command{
		Use:   "update EVENT_ID",
		Short: "Replace an event from a JSON file (admin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ev, err := readEventFile(updateFile)
			if err != nil {
				return err
			}
			body, err := check(newClient(apiFlag, tokenFlag).R().
				SetBody(ev).
				Put("/api/events/" + args[0]))
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, string(body))
			return nil
		},
	}
	updateCmd.Flags().StringVarP(&updateFile, "file", "f", "", "Path to event JSON (required)")
	_ = updateCmd.MarkFlagRequired("file")
	eventsCmd.AddCommand(updateCmd)

	// delete
	deleteCmd := &cobra.Command{
		Use:   "delete EVENT_ID",
		Short: "Delete an event (admin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := check(newClient(apiFlag, tokenFlag).R().Delete("/api/events/" + args[0]))
			return err
		},
	}
	eventsCmd.AddCommand(deleteCmd)

	// rate
	var dislike bool
	rateCmd := &cobra.Command{
		Use:   "rate EVENT_ID",
		Short: "Submit a like or dislike for an event",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			like := !dislike
			body, err := check(newClient(apiFlag, "").R().
				SetBody(map[string]bool{"like": like}).
				Post("/api/events/" + args[0] + "/rate"))
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, string(body))
			return nil
		},
	}
	rateCmd.Flags().BoolVar(&dislike, "dislike", false, "Submit a dislike instead of a like")
	eventsCmd.AddCommand(rateCmd)

	// import
	importCmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Bulk-create events from a JSON array (admin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			var events []model.Event
			if err := json.Unmarshal(raw, &events); err != nil {
				return fmt.Errorf("parse %s: %w", args[0], err)
			}
			client := newClient(apiFlag, tokenFlag)
			for i, ev := range events {
				if err := createWithRetry(client, ev); err != nil {
					return fmt.Errorf("event %d (%q): %w", i, ev.Title, err)
				}
			}
			_, _ = fmt.Fprintf(os.Stdout, "imported %d events\n", len(events))
			return nil
		},
	}
	eventsCmd.AddCommand(importCmd)

	rootCmd.AddCommand(eventsCmd)

	// admin stats
	statsCmd := &cobra.Command{
		Use:   "stats",
		Short: "Show dataset statistics (admin)",
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := check(newClient(apiFlag, tokenFlag).R().Get("/api/admin/stats"))
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, string(body))
			return nil
		},
	}
	rootCmd.AddCommand(statsCmd)
}

// createWithRetry posts one event, retrying transient failures with
// exponential backoff. Rejections the server would repeat (4xx) abort
// immediately.
func createWithRetry(client *resty.Client, ev model.Event) error {
	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = 250 * time.Millisecond
	exp.Multiplier = 2
	exp.MaxInterval = 5 * time.Second
	exp.MaxElapsedTime = 30 * time.Second

	return backoff.Retry(func() error {
		resp, err := client.R().SetBody(ev).Post("/api/events")
		if err != nil {
			return err
		}
		if resp.IsError() {
			httpErr := fmt.Errorf("http %d: %s", resp.StatusCode(), resp.String())
			if resp.StatusCode() < 500 {
				return backoff.Permanent(httpErr)
			}
			return httpErr
		}
		return nil
	}, exp)
}

func readEventFile(path string) (model.Event, error) {
	var ev model.Event
	raw, err := os.ReadFile(path)
	if err != nil {
		return ev, err
	}
	if err := json.Unmarshal(raw, &ev); err != nil {
		return ev, fmt.Errorf("parse %s: %w", path, err)
	}
	return ev, nil
}
