package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/tartampluch/go-valentine/internal/auth"
	"github.com/tartampluch/go-valentine/internal/calendar"
	"github.com/tartampluch/go-valentine/internal/config"
	"github.com/tartampluch/go-valentine/internal/content"
	"github.com/tartampluch/go-valentine/internal/engine"
	"github.com/tartampluch/go-valentine/internal/i18n"
	"github.com/tartampluch/go-valentine/internal/server"
	"github.com/tartampluch/go-valentine/internal/store"
)

// cli carries the state shared by every subcommand.
type cli struct {
	debug     bool
	cfgPath   string
	lang      string
	cfg       *config.Settings
	logCloser io.Closer
}

func (c *cli) close() {
	if c.logCloser != nil {
		_ = c.logCloser.Close() // Best effort close
	}
}

func (c *cli) root() *cobra.Command {
	root := &cobra.Command{
		Use:           config.CmdRoot,
		Short:         config.ShortRoot,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			c.logCloser = setupLogging(c.debug)
			cfg, err := config.Load(c.cfgPath)
			if err != nil {
				return err
			}
			c.cfg = cfg
			return nil
		},
	}
	root.PersistentFlags().BoolVar(&c.debug, config.FlagDebug, false, config.FlagDescDebug)
	root.PersistentFlags().StringVar(&c.cfgPath, config.FlagConfig, "", config.FlagDescConfig)
	root.PersistentFlags().StringVar(&c.lang, config.FlagLang, "", config.FlagDescLang)

	root.AddCommand(
		c.serveCmd(),
		c.migrateCmd(),
		c.adminCmd(),
		c.countdownCmd(),
		c.statsCmd(),
		c.importCmd(),
		c.exportCmd(),
		versionCmd(),
	)
	return root
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   config.CmdVersion,
		Short: config.ShortVersion,
		// Printing the version needs neither logging nor a valid configuration.
		PersistentPreRun: func(*cobra.Command, []string) {},
		Run: func(cmd *cobra.Command, _ []string) {
			printVersion(cmd.OutOrStdout())
		},
	}
}

// app is the wired core shared by the commands that touch content.
type app struct {
	store *store.Store
	svc   *content.Service
	loc   *i18n.Localizer
}

// open connects and migrates the database, then builds the content service.
func (c *cli) open(ctx context.Context, opts ...content.Option) (*app, error) {
	st, err := store.Open(ctx, c.cfg.Database)
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(); err != nil {
		_ = st.Close()
		return nil, err
	}

	since, err := c.cfg.Relationship.StartTime(time.Local)
	if err != nil {
		_ = st.Close()
		return nil, err
	}

	tr := i18n.New()
	lang := c.lang
	if lang == "" {
		lang = c.cfg.Locale
	}

	base := []content.Option{content.WithTogetherSince(since)}
	return &app{
		store: st,
		svc:   content.NewService(st, append(base, opts...)...),
		loc:   tr.Localizer(tr.Match(lang, "")),
	}, nil
}

func (a *app) close() { _ = a.store.Close() }

func (c *cli) importer(loc *i18n.Localizer) *calendar.Importer {
	return &calendar.Importer{
		Fetcher:           calendar.NewHTTPFetcher(),
		FormatBirthday:    loc.BirthdayTitle,
		FormatAnniversary: loc.AnniversaryTitle,
	}
}

func (c *cli) generator(loc *i18n.Localizer, clock engine.Clock) *calendar.Generator {
	return &calendar.Generator{
		Clock:           clock,
		FormatSummary:   loc.EventSummary,
		ReminderTrigger: c.cfg.Calendar.ReminderTrigger,
	}
}

// --- serve ---

func (c *cli) serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   config.CmdServe,
		Short: config.ShortServe,
		RunE: func(cmd *cobra.Command, _ []string) error {
			logStartupInfo()
			if err := c.serve(cmd.Context()); err != nil {
				return err
			}
			slog.Info(config.MsgAppStop, config.LogKeyComponent, config.CompMain)
			return nil
		},
	}
}

func (c *cli) serve(ctx context.Context) error {
	clock := engine.RealClock{}
	feed := calendar.NewFeed(clock)
	pub := &calendar.Publisher{Feed: feed}

	a, err := c.open(ctx, content.WithClock(clock), content.OnChange(pub.OnChange))
	if err != nil {
		return err
	}
	defer a.close()

	pub.Dates = a.svc
	pub.Generator = c.generator(a.loc, clock)
	if err := pub.Refresh(ctx); err != nil {
		return err
	}
	// Re-rendering keeps the published year window current.
	ticker := pub.Run(ctx, c.cfg.Calendar.Refresh)
	defer ticker.Stop()

	passwords, err := auth.NewPasswordStore(c.cfg.Admin.PasswordSource, a.store)
	if err != nil {
		return err
	}
	jwtCfg := c.cfg.JWT
	if jwtCfg.Secret == "" {
		if jwtCfg.Secret, err = auth.RandomSecret(); err != nil {
			return err
		}
		slog.Warn(config.MsgJWTEphemeral, config.LogKeyComponent, config.CompMain)
	}
	authn, err := auth.New(passwords, jwtCfg, clock)
	if err != nil {
		return err
	}

	srv := server.New(c.cfg, server.Deps{
		Content:  a.svc,
		Auth:     authn,
		Feed:     feed,
		Importer: c.importer(a.loc),
		DB:       a.store,
	})
	return srv.Start(ctx)
}

// --- migrate ---

func (c *cli) migrateCmd() *cobra.Command {
	var steps int
	cmd := &cobra.Command{
		Use:   config.CmdMigrate,
		Short: config.ShortMigrate,
	}
	cmd.PersistentFlags().IntVar(&steps, config.FlagSteps, 0, config.FlagDescSteps)

	run := func(name string, fn func(*store.Migrator) (bool, error)) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, _ []string) error {
			st, err := store.Open(cmd.Context(), c.cfg.Database)
			if err != nil {
				return err
			}
			defer st.Close()

			g, err := st.Migrator()
			if err != nil {
				return err
			}
			changed, err := fn(g)
			if err != nil {
				return err
			}
			if !changed {
				fmt.Fprintln(cmd.OutOrStdout(), config.MsgMigNoChange)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), config.MsgMigDone, name)
			return nil
		}
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   config.CmdUp,
			Short: config.ShortUp,
			RunE:  run(config.CmdUp, func(g *store.Migrator) (bool, error) { return g.Up(steps) }),
		},
		&cobra.Command{
			Use:   config.CmdDown,
			Short: config.ShortDown,
			RunE:  run(config.CmdDown, func(g *store.Migrator) (bool, error) { return g.Down(steps) }),
		},
		&cobra.Command{
			Use:   config.CmdVersion,
			Short: config.ShortMigVersion,
			RunE: func(cmd *cobra.Command, _ []string) error {
				st, err := store.Open(cmd.Context(), c.cfg.Database)
				if err != nil {
					return err
				}
				defer st.Close()

				g, err := st.Migrator()
				if err != nil {
					return err
				}
				v, dirty, err := g.Version()
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), config.MsgMigVersion, v, dirty)
				return nil
			},
		},
	)
	return cmd
}

// --- admin ---

func (c *cli) adminCmd() *cobra.Command {
	var password string
	setPassword := &cobra.Command{
		Use:   config.CmdSetPassword,
		Short: config.ShortSetPassword,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if password == "" {
				fmt.Fprint(cmd.OutOrStdout(), config.MsgPasswordPrompt)
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && !errors.Is(err, io.EOF) {
					return err
				}
				password = strings.TrimRight(line, "\r\n")
			}

			st, err := store.Open(ctx, c.cfg.Database)
			if err != nil {
				return err
			}
			defer st.Close()
			if err := st.Migrate(); err != nil {
				return err
			}

			passwords, err := auth.NewPasswordStore(c.cfg.Admin.PasswordSource, st)
			if err != nil {
				return err
			}
			if err := auth.SetPassword(ctx, passwords, password); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), config.MsgPasswordSet)
			return nil
		},
	}
	setPassword.Flags().StringVar(&password, config.FlagPassword, "", config.FlagDescPass)

	cmd := &cobra.Command{Use: config.CmdAdmin, Short: config.ShortAdmin}
	cmd.AddCommand(setPassword)
	return cmd
}

// --- countdown, stats ---

func (c *cli) countdownCmd() *cobra.Command {
	var watch bool
	cmd := &cobra.Command{
		Use:   config.CmdCountdown,
		Short: config.ShortCountdown,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			a, err := c.open(ctx)
			if err != nil {
				return err
			}
			defer a.close()

			dates, err := a.svc.SpecialDates(ctx)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if !watch {
				printCountdown(out, a.loc, content.BuildCountdown(dates, a.svc.Clock().Now()))
				return nil
			}

			t := engine.NewTicker(a.svc.Clock(), config.DefaultTickInterval, func(now time.Time) error {
				fmt.Fprint(out, config.ClearScreen)
				printCountdown(out, a.loc, content.BuildCountdown(dates, now))
				return nil
			})
			if err := t.Start(ctx); err != nil {
				return err
			}
			<-t.Done()
			return t.Err()
		},
	}
	cmd.Flags().BoolVar(&watch, config.FlagWatch, false, config.FlagDescWatch)
	return cmd
}

func printCountdown(w io.Writer, loc *i18n.Localizer, view content.CountdownView) {
	if view.Next == nil && len(view.Dates) == 0 {
		fmt.Fprintln(w, config.MsgCountdownEmpty)
		return
	}
	if view.Next != nil {
		fmt.Fprintf(w, config.MsgCountdownHero, loc.Hero(view.Next.Item.Title), loc.Countdown(view.Next.Countdown))
	}
	for _, d := range view.Dates {
		when := d.Next.Format(config.DateFormatLongDate)
		if d.Item.IsRecurring {
			when += " (" + loc.Yearly() + ")"
		}
		fmt.Fprintf(w, config.MsgCountdownLine, d.Item.Title, loc.Countdown(d.Countdown), when)
	}
}

func (c *cli) statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   config.CmdStats,
		Short: config.ShortStats,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := c.open(cmd.Context())
			if err != nil {
				return err
			}
			defer a.close()

			st := a.svc.Stats()
			labels := a.loc.Stats(st.Elapsed)
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, config.MsgStatsSince, st.Since.Format(config.DateFormatLongDate))
			fmt.Fprintln(out, labels.Days)
			fmt.Fprintf(out, config.MsgStatsClock, labels.Clock, st.Elapsed.Hours, st.Elapsed.Minutes, st.Elapsed.Seconds)
			fmt.Fprintln(out, labels.Weeks)
			fmt.Fprintln(out, labels.Months)
			return nil
		},
	}
}

// --- vCard import, ICS export ---

func (c *cli) importCmd() *cobra.Command {
	var user, pass string
	cmd := &cobra.Command{
		Use:   config.CmdImportVCard + " <path-or-url>",
		Short: config.ShortImportVCard,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := c.open(ctx)
			if err != nil {
				return err
			}
			defer a.close()

			inputs, err := c.importer(a.loc).Load(ctx, calendar.Source{Location: args[0], User: user, Pass: pass})
			if err != nil {
				return err
			}
			n, err := a.svc.ImportSpecialDates(ctx, inputs)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), config.MsgImported, n)
			return nil
		},
	}
	cmd.Flags().StringVar(&user, config.FlagUser, "", config.FlagDescUser)
	cmd.Flags().StringVar(&pass, config.FlagPass, "", config.FlagDescVPass)
	return cmd
}

func (c *cli) exportCmd() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   config.CmdExportICS,
		Short: config.ShortExportICS,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			a, err := c.open(ctx)
			if err != nil {
				return err
			}
			defer a.close()

			dates, err := a.svc.SpecialDates(ctx)
			if err != nil {
				return err
			}
			data, err := c.generator(a.loc, a.svc.Clock()).Render(ctx, dates)
			if err != nil {
				return err
			}
			if output == "" {
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}
			if err := os.WriteFile(output, data, config.FilePermPublic); err != nil {
				return err
			}
			slog.Info(config.MsgExported,
				config.LogKeyComponent, config.CompCLI,
				config.LogKeyFile, output,
				config.LogKeySizeBytes, len(data))
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, config.FlagOutput, "o", "", config.FlagDescOutput)
	return cmd
}
