package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/pflag"

	"github.com/conorfennell/promptdeck/internal/domain"
	"github.com/conorfennell/promptdeck/internal/web"
)

func historyFlags(fs *pflag.FlagSet) {
	fs.Bool("clear", false, "Delete the whole draw history")
}

func improvFlags(fs *pflag.FlagSet) {
	fs.Bool("single", false, "Draw a single card")
	fs.StringSlice("reroll-always", nil, "Card ids of a previous draw whose always-include card to replace")
	fs.StringSlice("reroll-suits", nil, "Card ids of a previous draw whose technical cards to replace")
}

func promptFlags(fs *pflag.FlagSet) {
	fs.String("title", "", "Prompt title")
	fs.String("body", "", "Prompt body")
}

func printCard(c domain.Card) {
	level := ""
	if c.Level != nil {
		level = " (" + *c.Level + ")"
	}
	fmt.Printf("[%s] %s%s\n", c.Suit, c.Title, level)
	if c.Description != "" {
		fmt.Printf("    %s\n", c.Description)
	}
}

func runDraw(ctx context.Context, a *app, fs *pflag.FlagSet) error {
	card, err := a.svc.DrawPractice(ctx)
	if err != nil {
		return err
	}
	printCard(card)
	return nil
}

func runBalance(ctx context.Context, a *app, fs *pflag.FlagSet) error {
	rows, err := a.svc.Balance(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("Last %d days:\n", a.cfg.WindowDays)
	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	for _, r := range rows {
		fmt.Fprintf(tw, "%s\t%d\t%.0f%%\n", r.Name, r.Count, r.Share*100)
	}
	return tw.Flush()
}

func runHistory(ctx context.Context, a *app, fs *pflag.FlagSet) error {
	if clearAll, _ := fs.GetBool("clear"); clearAll {
		if err := a.svc.ClearHistory(ctx); err != nil {
			return err
		}
		fmt.Println("History cleared.")
		return nil
	}
	events, err := a.svc.History(ctx)
	if err != nil {
		return err
	}
	for _, e := range events {
		fmt.Printf("%s  %-12s %s\n", e.Timestamp.Local().Format(time.DateTime), e.Suit, e.CardID)
	}
	fmt.Printf("%d draws.\n", len(events))
	return nil
}

func runImprov(ctx context.Context, a *app, fs *pflag.FlagSet) error {
	settings := a.svc.DefaultSettings()
	var (
		cards []domain.Card
		err   error
	)

	single, _ := fs.GetBool("single")
	rerollAlways, _ := fs.GetStringSlice("reroll-always")
	rerollSuits, _ := fs.GetStringSlice("reroll-suits")

	switch {
	case single:
		var card domain.Card
		card, err = a.svc.DrawImprovSingle(settings.IncludeAlways)
		cards = []domain.Card{card}
	case len(rerollAlways) > 0:
		cards, err = a.svc.RerollAlways(rerollAlways)
	case len(rerollSuits) > 0:
		cards, err = a.svc.RerollSuits(rerollSuits, settings)
	default:
		cards, err = a.svc.DrawImprov(settings)
	}
	if err != nil {
		return err
	}

	ids := make([]string, len(cards))
	for i, c := range cards {
		printCard(c)
		ids[i] = c.ID
	}
	fmt.Printf("\nids: %s\n", strings.Join(ids, ","))
	return nil
}

func runPrompts(ctx context.Context, a *app, fs *pflag.FlagSet) error {
	args := fs.Args()
	action := "list"
	if len(args) > 0 {
		action = args[0]
	}
	title, _ := fs.GetString("title")
	body, _ := fs.GetString("body")

	switch action {
	case "list":
		prompts, err := a.svc.ListPrompts(ctx)
		if err != nil {
			return err
		}
		for _, p := range prompts {
			fmt.Printf("%s  %s\n", p.ID, p.Title)
		}
		return nil
	case "add":
		p, err := a.svc.AddPrompt(ctx, title, body)
		if err != nil {
			return err
		}
		fmt.Printf("Added %s\n", p.ID)
		return nil
	case "update":
		if len(args) < 2 {
			return errors.New("usage: promptdeck prompts update <id> --title <title> [--body <body>]")
		}
		if _, err := a.svc.UpdatePrompt(ctx, args[1], title, body); err != nil {
			return err
		}
		fmt.Printf("Updated %s\n", args[1])
		return nil
	case "delete":
		if len(args) < 2 {
			return errors.New("usage: promptdeck prompts delete <id>")
		}
		if err := a.svc.DeletePrompt(ctx, args[1]); err != nil {
			return err
		}
		fmt.Printf("Deleted %s\n", args[1])
		return nil
	default:
		return fmt.Errorf("unknown prompts action %q", action)
	}
}

func runSources(ctx context.Context, a *app, fs *pflag.FlagSet) error {
	args := fs.Args()
	action := "list"
	if len(args) > 0 {
		action = args[0]
	}

	switch action {
	case "list":
		sources, err := a.svc.ListSources(ctx)
		if err != nil {
			return err
		}
		tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		for _, s := range sources {
			scanned := "never"
			if s.LastScanned != nil {
				scanned = s.LastScanned.Local().Format(time.DateTime)
			}
			fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", s.ID, s.Type, s.Path, scanned)
		}
		return tw.Flush()
	case "add":
		if len(args) < 2 {
			return errors.New("usage: promptdeck sources add <path|git-url>")
		}
		s, err := a.svc.AddSource(ctx, args[1])
		if err != nil {
			return err
		}
		fmt.Printf("Source %d: %s (%s)\n", s.ID, s.Path, s.Type)
		return nil
	case "delete":
		if len(args) < 2 {
			return errors.New("usage: promptdeck sources delete <id>")
		}
		id, err := strconv.ParseInt(args[1], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid source id %q: %w", args[1], err)
		}
		if err := a.svc.DeleteSource(ctx, id); err != nil {
			return err
		}
		fmt.Printf("Deleted source %d\n", id)
		return nil
	default:
		return fmt.Errorf("unknown sources action %q", action)
	}
}

func runSync(ctx context.Context, a *app, fs *pflag.FlagSet) error {
	reports, err := a.svc.Sync(ctx)
	if err != nil {
		return err
	}
	for _, r := range reports {
		fmt.Printf("%s: %d parsed, %d new, %d removed, %d errors\n",
			r.Path, r.ParsedCards, r.Inserted, r.Orphaned, len(r.Errors))
		for _, e := range r.Errors {
			fmt.Printf("  - %s\n", e)
		}
	}
	return nil
}

func runServe(ctx context.Context, a *app, fs *pflag.FlagSet) error {
	srv := &http.Server{
		Addr:              a.cfg.Addr,
		Handler:           web.NewServer(a.svc),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Starting server", "addr", a.cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	slog.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
