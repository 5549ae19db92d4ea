package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"

	"github.com/beekhof/timekit"
	"github.com/beekhof/timekit/internal/auth"
	"github.com/beekhof/timekit/internal/config"
	"github.com/beekhof/timekit/internal/ics"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args, os.Stdin, os.Stdout, os.Stderr); err != nil {
		logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
		logger.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}

// app holds the state shared by all commands. The client is created on
// first use so that help output works without a valid configuration.
type app struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	logger   zerolog.Logger
	registry *prometheus.Registry
	config   *config.Config
	client   *timekit.Client
	store    auth.CredentialStore
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	a := &app{stdin: stdin, stdout: stdout, stderr: stderr, logger: zerolog.Nop()}
	return a.command().Run(ctx, args)
}

func (a *app) command() *cli.Command {
	return &cli.Command{
		Name:      "timekit",
		Usage:     "Command line client for the Timekit scheduling API",
		Writer:    a.stdout,
		ErrWriter: a.stderr,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Usage: "path to JSON config file"},
			&cli.StringFlag{Name: "app", Usage: "Timekit application identifier (overrides TIMEKIT_APP)"},
			&cli.StringFlag{Name: "api-base-url", Usage: "API base URL (overrides TIMEKIT_API_BASE_URL)"},
			&cli.StringFlag{Name: "timezone", Usage: "timezone sent with every request (overrides TIMEKIT_TIMEZONE)"},
			&cli.StringFlag{Name: "credentials-path", Usage: "where the API token is stored (overrides TIMEKIT_CREDENTIALS_PATH)"},
			&cli.StringFlag{Name: "metrics-file", Usage: "write request metrics in Prometheus text format to this file"},
			&cli.BoolFlag{Name: "verbose", Aliases: []string{"v"}, Usage: "log every request"},
		},
		Before: a.setupLogging,
		After:  a.writeMetrics,
		Commands: []*cli.Command{
			{
				Name:  "auth",
				Usage: "exchange email and password for an API token and store it",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "email", Required: true},
					&cli.StringFlag{Name: "password", Usage: "read from stdin when omitted"},
				},
				Action: a.authAction,
			},
			{
				Name:  "signup-url",
				Usage: "print the Google signup URL",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "callback", Usage: "URL to return to after signup"},
				},
				Action: a.signupURLAction,
			},
			{
				Name:   "accounts",
				Usage:  "list connected accounts",
				Action: a.accountsAction,
				Commands: []*cli.Command{
					{Name: "google-calendars", Usage: "list the calendars of the Google account", Action: a.googleCalendarsAction},
					{Name: "sync", Usage: "synchronize connected accounts", Action: a.syncAction},
				},
			},
			{Name: "contacts", Usage: "list contacts", Action: a.contactsAction},
			{Name: "meetings", Usage: "list meetings", Action: a.meetingsAction},
			{Name: "properties", Usage: "list user properties", Action: a.propertiesAction},
			{
				Name:  "calendars",
				Usage: "list calendars",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "details", Usage: "fetch every calendar individually"},
				},
				Action: a.calendarsAction,
			},
			{
				Name:  "events",
				Usage: "list events in a time range",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "start", Usage: "RFC3339 start (default now)"},
					&cli.StringFlag{Name: "end", Usage: "RFC3339 end (default start + 7 days)"},
					&cli.StringFlag{Name: "format", Value: "json", Usage: "json or ics"},
				},
				Action: a.eventsAction,
			},
			{
				Name:  "availability",
				Usage: "show when a user is available",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "start", Usage: "RFC3339 start (default now)"},
					&cli.StringFlag{Name: "end", Usage: "RFC3339 end (default start + 7 days)"},
					&cli.StringFlag{Name: "email", Required: true},
				},
				Action: a.availabilityAction,
			},
			{
				Name:  "findtime",
				Usage: "find times that suit every participant",
				Flags: []cli.Flag{
					&cli.StringSliceFlag{Name: "email", Required: true, Usage: "participant, repeatable"},
					&cli.StringSliceFlag{Name: "day", Usage: "restrict to weekday, repeatable"},
					&cli.BoolFlag{Name: "business-hours", Usage: "restrict to business hours in the configured timezone"},
					&cli.StringFlag{Name: "future", Value: "3 days"},
					&cli.StringFlag{Name: "length", Value: "30 minutes"},
					&cli.StringFlag{Name: "sort", Value: "asc"},
				},
				Action: a.findTimeAction,
			},
			{
				Name:  "meeting",
				Usage: "manage a single meeting",
				Commands: []*cli.Command{
					{
						Name:      "get",
						ArgsUsage: "<token>",
						Flags: []cli.Flag{
							&cli.StringFlag{Name: "format", Value: "json", Usage: "json or ics"},
						},
						Action: a.meetingGetAction,
					},
					{
						Name: "create",
						Flags: []cli.Flag{
							&cli.StringFlag{Name: "what", Required: true},
							&cli.StringFlag{Name: "where", Required: true},
							&cli.StringSliceFlag{Name: "slot", Required: true, Usage: "suggested time as start/end in RFC3339, repeatable"},
						},
						Action: a.meetingCreateAction,
					},
					{
						Name:      "update",
						ArgsUsage: "<token>",
						Flags: []cli.Flag{
							&cli.StringFlag{Name: "what"},
							&cli.StringFlag{Name: "where"},
						},
						Action: a.meetingUpdateAction,
					},
					{
						Name:      "respond",
						Usage:     "answer whether you are available for a suggestion",
						ArgsUsage: "<suggestion-id>",
						Flags: []cli.Flag{
							&cli.BoolFlag{Name: "available", Value: true},
						},
						Action: a.meetingRespondAction,
					},
					{Name: "book", ArgsUsage: "<suggestion-id>", Action: a.meetingBookAction},
					{
						Name:      "invite",
						ArgsUsage: "<token>",
						Flags: []cli.Flag{
							&cli.StringSliceFlag{Name: "email", Required: true},
						},
						Action: a.meetingInviteAction,
					},
				},
			},
			{
				Name:  "user",
				Usage: "manage the current user",
				Commands: []*cli.Command{
					{Name: "me", Action: a.userMeAction},
					{
						Name:  "create",
						Usage: "create a new user",
						Flags: []cli.Flag{
							&cli.StringFlag{Name: "email", Required: true},
							&cli.StringFlag{Name: "password", Required: true},
							&cli.StringFlag{Name: "first-name"},
							&cli.StringFlag{Name: "last-name"},
							&cli.StringFlag{Name: "user-timezone"},
						},
						Action: a.userCreateAction,
					},
					{
						Name: "update",
						Flags: []cli.Flag{
							&cli.StringFlag{Name: "first-name"},
							&cli.StringFlag{Name: "last-name"},
							&cli.StringFlag{Name: "user-timezone"},
						},
						Action: a.userUpdateAction,
					},
				},
			},
			{
				Name:  "property",
				Usage: "read and write user properties",
				Commands: []*cli.Command{
					{Name: "get", ArgsUsage: "<key>", Action: a.propertyGetAction},
					{Name: "set", ArgsUsage: "key=value...", Action: a.propertySetAction},
				},
			},
		},
	}
}

func (a *app) setupLogging(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	level := zerolog.InfoLevel
	if cmd.Bool("verbose") {
		level = zerolog.DebugLevel
	}
	a.logger = zerolog.New(zerolog.ConsoleWriter{Out: a.stderr, NoColor: true}).
		Level(level).
		With().Timestamp().Logger()
	return ctx, nil
}

func (a *app) writeMetrics(ctx context.Context, cmd *cli.Command) error {
	path := cmd.String("metrics-file")
	if path == "" || a.registry == nil {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, a.registry); err != nil {
		return fmt.Errorf("failed to write metrics: %w", err)
	}
	return nil
}

// ensureInitialized loads the configuration and creates the client on first use.
func (a *app) ensureInitialized(cmd *cli.Command) error {
	if a.client != nil {
		return nil
	}

	if err := config.LoadDotEnv(".env"); err != nil {
		return err
	}

	cfg, err := config.LoadConfig(cmd.String("config"), config.Overrides{
		App:             cmd.String("app"),
		APIBaseURL:      cmd.String("api-base-url"),
		Timezone:        cmd.String("timezone"),
		CredentialsPath: cmd.String("credentials-path"),
	})
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	options := []timekit.Option{timekit.WithLogger(a.logger)}
	if cmd.String("metrics-file") != "" {
		a.registry = prometheus.NewRegistry()
		options = append(options, timekit.WithMetrics(timekit.NewMetricsCollector(a.registry)))
	}

	a.config = cfg
	a.client = timekit.New(options...)
	a.client.Configure(cfg.Settings())
	a.store = auth.NewFileCredentialStore(cfg.CredentialsPath)

	a.logger.Debug().
		Str("app", cfg.App).
		Str("api_base_url", cfg.APIBaseURL).
		Str("credentials_path", cfg.CredentialsPath).
		Msg("client initialized")
	return nil
}

// ensureUser additionally applies the stored credentials.
func (a *app) ensureUser(cmd *cli.Command) error {
	if err := a.ensureInitialized(cmd); err != nil {
		return err
	}
	if !a.client.User().IsZero() {
		return nil
	}
	return auth.Restore(a.client, a.store)
}

func (a *app) printJSON(v any) error {
	enc := json.NewEncoder(a.stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (a *app) authAction(ctx context.Context, cmd *cli.Command) error {
	if err := a.ensureInitialized(cmd); err != nil {
		return err
	}

	email := cmd.String("email")
	var (
		user *timekit.User
		err  error
	)
	if password := cmd.String("password"); password != "" {
		user, err = auth.Login(ctx, a.client, a.store, email, password)
	} else {
		user, err = auth.LoginWithReader(ctx, a.client, a.store, email, a.stdin, a.stderr)
	}
	if err != nil {
		return err
	}

	a.logger.Info().Str("email", user.Email).Str("path", a.config.CredentialsPath).Msg("credentials saved")
	return nil
}

func (a *app) signupURLAction(ctx context.Context, cmd *cli.Command) error {
	if err := a.ensureInitialized(cmd); err != nil {
		return err
	}
	_, err := fmt.Fprintln(a.stdout, a.client.AccountGoogleSignup(cmd.String("callback")))
	return err
}

func (a *app) accountsAction(ctx context.Context, cmd *cli.Command) error {
	if err := a.ensureUser(cmd); err != nil {
		return err
	}
	resp, err := a.client.GetAccounts(ctx)
	if err != nil {
		return err
	}
	return a.printJSON(resp.Data)
}

func (a *app) googleCalendarsAction(ctx context.Context, cmd *cli.Command) error {
	if err := a.ensureUser(cmd); err != nil {
		return err
	}
	resp, err := a.client.GetAccountGoogleCalendars(ctx)
	if err != nil {
		return err
	}
	return a.printJSON(resp.Data)
}

func (a *app) syncAction(ctx context.Context, cmd *cli.Command) error {
	if err := a.ensureUser(cmd); err != nil {
		return err
	}
	resp, err := a.client.AccountSync(ctx)
	if err != nil {
		return err
	}
	a.logger.Info().Int("count", resp.Data.Count).Msg("accounts synchronized")
	return a.printJSON(resp.Data)
}

func (a *app) contactsAction(ctx context.Context, cmd *cli.Command) error {
	if err := a.ensureUser(cmd); err != nil {
		return err
	}
	resp, err := a.client.GetContacts(ctx)
	if err != nil {
		return err
	}
	return a.printJSON(resp.Data)
}

func (a *app) meetingsAction(ctx context.Context, cmd *cli.Command) error {
	if err := a.ensureUser(cmd); err != nil {
		return err
	}
	resp, err := a.client.GetMeetings(ctx)
	if err != nil {
		return err
	}
	return a.printJSON(resp.Data)
}

func (a *app) propertiesAction(ctx context.Context, cmd *cli.Command) error {
	if err := a.ensureUser(cmd); err != nil {
		return err
	}
	resp, err := a.client.GetUserProperties(ctx)
	if err != nil {
		return err
	}
	return a.printJSON(resp.Data)
}

func (a *app) calendarsAction(ctx context.Context, cmd *cli.Command) error {
	if err := a.ensureUser(cmd); err != nil {
		return err
	}
	resp, err := a.client.GetCalendars(ctx)
	if err != nil {
		return err
	}
	if !cmd.Bool("details") {
		return a.printJSON(resp.Data)
	}

	details := make([]timekit.Calendar, len(resp.Data))
	g, gctx := errgroup.WithContext(ctx)
	for i, cal := range resp.Data {
		g.Go(func() error {
			detail, err := a.client.GetCalendar(gctx, string(cal.ID))
			if err != nil {
				return fmt.Errorf("calendar %s: %w", cal.ID, err)
			}
			details[i] = detail.Data
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return a.printJSON(details)
}

func (a *app) eventsAction(ctx context.Context, cmd *cli.Command) error {
	format, err := outputFormat(cmd)
	if err != nil {
		return err
	}
	start, end, err := timeRange(cmd)
	if err != nil {
		return err
	}
	if err := a.ensureUser(cmd); err != nil {
		return err
	}

	resp, err := a.client.GetEvents(ctx, start, end)
	if err != nil {
		return err
	}
	if format == "ics" {
		return ics.Encode(a.stdout, resp.Data)
	}
	return a.printJSON(resp.Data)
}

func (a *app) availabilityAction(ctx context.Context, cmd *cli.Command) error {
	start, end, err := timeRange(cmd)
	if err != nil {
		return err
	}
	if err := a.ensureUser(cmd); err != nil {
		return err
	}

	resp, err := a.client.GetAvailability(ctx, start, end, cmd.String("email"))
	if err != nil {
		return err
	}
	return a.printJSON(resp.Data)
}

func (a *app) findTimeAction(ctx context.Context, cmd *cli.Command) error {
	if err := a.ensureUser(cmd); err != nil {
		return err
	}

	req := timekit.FindTimeRequest{
		Emails: cmd.StringSlice("email"),
		Future: cmd.String("future"),
		Length: cmd.String("length"),
		Sort:   cmd.String("sort"),
	}
	for _, day := range cmd.StringSlice("day") {
		req.Filters.Or = append(req.Filters.Or, timekit.SpecificDay(day))
	}
	if cmd.Bool("business-hours") {
		if a.config.Timezone == "" {
			return fmt.Errorf("--business-hours needs a timezone, set --timezone or TIMEKIT_TIMEZONE")
		}
		req.Filters.And = append(req.Filters.And, timekit.BusinessHours(a.config.Timezone))
	}

	resp, err := a.client.FindTime(ctx, req)
	if err != nil {
		return err
	}
	return a.printJSON(resp.Data)
}

func (a *app) meetingGetAction(ctx context.Context, cmd *cli.Command) error {
	format, err := outputFormat(cmd)
	if err != nil {
		return err
	}
	token, err := requireArg(cmd, "token")
	if err != nil {
		return err
	}
	if err := a.ensureUser(cmd); err != nil {
		return err
	}

	resp, err := a.client.GetMeeting(ctx, token)
	if err != nil {
		return err
	}
	if format == "ics" {
		return ics.EncodeMeeting(a.stdout, resp.Data)
	}
	return a.printJSON(resp.Data)
}

func (a *app) meetingCreateAction(ctx context.Context, cmd *cli.Command) error {
	var suggestions []timekit.Suggestion
	for _, slot := range cmd.StringSlice("slot") {
		suggestion, err := parseSlot(slot)
		if err != nil {
			return err
		}
		suggestions = append(suggestions, suggestion)
	}
	if err := a.ensureUser(cmd); err != nil {
		return err
	}

	resp, err := a.client.CreateMeeting(ctx, cmd.String("what"), cmd.String("where"), suggestions)
	if err != nil {
		return err
	}
	return a.printJSON(resp.Data)
}

func (a *app) meetingUpdateAction(ctx context.Context, cmd *cli.Command) error {
	token, err := requireArg(cmd, "token")
	if err != nil {
		return err
	}
	if err := a.ensureUser(cmd); err != nil {
		return err
	}

	_, err = a.client.UpdateMeeting(ctx, token, timekit.MeetingUpdate{
		What:  cmd.String("what"),
		Where: cmd.String("where"),
	})
	return err
}

func (a *app) meetingRespondAction(ctx context.Context, cmd *cli.Command) error {
	suggestionID, err := requireArg(cmd, "suggestion-id")
	if err != nil {
		return err
	}
	if err := a.ensureUser(cmd); err != nil {
		return err
	}

	_, err = a.client.SetMeetingAvailability(ctx, suggestionID, cmd.Bool("available"))
	return err
}

func (a *app) meetingBookAction(ctx context.Context, cmd *cli.Command) error {
	suggestionID, err := requireArg(cmd, "suggestion-id")
	if err != nil {
		return err
	}
	if err := a.ensureUser(cmd); err != nil {
		return err
	}

	_, err = a.client.BookMeeting(ctx, suggestionID)
	return err
}

func (a *app) meetingInviteAction(ctx context.Context, cmd *cli.Command) error {
	token, err := requireArg(cmd, "token")
	if err != nil {
		return err
	}
	if err := a.ensureUser(cmd); err != nil {
		return err
	}

	_, err = a.client.InviteToMeeting(ctx, token, cmd.StringSlice("email"))
	return err
}

func (a *app) userMeAction(ctx context.Context, cmd *cli.Command) error {
	if err := a.ensureUser(cmd); err != nil {
		return err
	}
	resp, err := a.client.GetUserInfo(ctx)
	if err != nil {
		return err
	}
	return a.printJSON(resp.Data)
}

func (a *app) userCreateAction(ctx context.Context, cmd *cli.Command) error {
	if err := a.ensureInitialized(cmd); err != nil {
		return err
	}
	resp, err := a.client.CreateUser(ctx, timekit.NewUser{
		FirstName: cmd.String("first-name"),
		LastName:  cmd.String("last-name"),
		Email:     cmd.String("email"),
		Password:  cmd.String("password"),
		Timezone:  cmd.String("user-timezone"),
	})
	if err != nil {
		return err
	}
	return a.printJSON(resp.Data)
}

func (a *app) userUpdateAction(ctx context.Context, cmd *cli.Command) error {
	if err := a.ensureUser(cmd); err != nil {
		return err
	}
	_, err := a.client.UpdateUser(ctx, timekit.UserUpdate{
		FirstName: cmd.String("first-name"),
		LastName:  cmd.String("last-name"),
		Timezone:  cmd.String("user-timezone"),
	})
	return err
}

func (a *app) propertyGetAction(ctx context.Context, cmd *cli.Command) error {
	key, err := requireArg(cmd, "key")
	if err != nil {
		return err
	}
	if err := a.ensureUser(cmd); err != nil {
		return err
	}

	resp, err := a.client.GetUserProperty(ctx, key)
	if err != nil {
		return err
	}
	return a.printJSON(resp.Data)
}

func (a *app) propertySetAction(ctx context.Context, cmd *cli.Command) error {
	properties := make(map[string]string)
	for _, arg := range cmd.Args().Slice() {
		key, value, ok := strings.Cut(arg, "=")
		if !ok || key == "" {
			return fmt.Errorf("invalid property %q, expected key=value", arg)
		}
		properties[key] = value
	}
	if len(properties) == 0 {
		return fmt.Errorf("no properties given, expected key=value")
	}
	if err := a.ensureUser(cmd); err != nil {
		return err
	}

	_, err := a.client.SetUserProperties(ctx, properties)
	return err
}

func outputFormat(cmd *cli.Command) (string, error) {
	format := cmd.String("format")
	if format != "json" && format != "ics" {
		return "", fmt.Errorf("unknown format %q, expected json or ics", format)
	}
	return format, nil
}

func requireArg(cmd *cli.Command, name string) (string, error) {
	value := cmd.Args().First()
	if value == "" {
		return "", fmt.Errorf("missing argument <%s>", name)
	}
	return value, nil
}

// timeRange reads --start and --end. Start defaults to now and end to a week
// after start.
func timeRange(cmd *cli.Command) (time.Time, time.Time, error) {
	start := time.Now()
	if value := cmd.String("start"); value != "" {
		parsed, err := time.Parse(time.RFC3339, value)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid --start: %w", err)
		}
		start = parsed
	}

	end := start.AddDate(0, 0, 7)
	if value := cmd.String("end"); value != "" {
		parsed, err := time.Parse(time.RFC3339, value)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid --end: %w", err)
		}
		end = parsed
	}

	if !end.After(start) {
		return time.Time{}, time.Time{}, fmt.Errorf("--end must be after --start")
	}
	return start, end, nil
}

// parseSlot parses "start/end" with both times in RFC3339.
func parseSlot(slot string) (timekit.Suggestion, error) {
	startValue, endValue, ok := strings.Cut(slot, "/")
	if !ok {
		return timekit.Suggestion{}, fmt.Errorf("invalid slot %q, expected start/end", slot)
	}
	start, err := time.Parse(time.RFC3339, startValue)
	if err != nil {
		return timekit.Suggestion{}, fmt.Errorf("invalid slot start: %w", err)
	}
	end, err := time.Parse(time.RFC3339, endValue)
	if err != nil {
		return timekit.Suggestion{}, fmt.Errorf("invalid slot end: %w", err)
	}
	if !end.After(start) {
		return timekit.Suggestion{}, fmt.Errorf("invalid slot %q, end must be after start", slot)
	}
	return timekit.Suggestion{Start: start, End: end}, nil
}
