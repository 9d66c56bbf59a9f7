package main

import (
	"crypto/md5"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/jamespfennell/gtfsclean"
	"github.com/jamespfennell/gtfsclean/agency"
	"github.com/jamespfennell/gtfsclean/agency/stlevis"
	"github.com/jamespfennell/gtfsclean/config"
	"github.com/jamespfennell/gtfsclean/export"
	"github.com/jamespfennell/gtfsclean/realtime"
	"github.com/jamespfennell/gtfsclean/rules"
	"github.com/urfave/cli/v2"
)

func main() {
	log.SetOutput(os.Stderr)
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
	app := &cli.App{
		Name:  "gtfsclean",
		Usage: "clean the STLévis GTFS feeds",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "profile",
				Usage: "path to an agency profile replacing the built-in STLévis profile",
			},
			&cli.StringFlag{
				Name:  "fatal-policy",
				Value: "abort",
				Usage: "what to do with a record failing with a fatal error: abort, skip",
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "normalize",
				Usage:     "clean text fields",
				ArgsUsage: "text...",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "kind",
						Aliases:  []string{"k"},
						Required: true,
						Usage:    "kind of field: route, headsign, stop",
					},
					&cli.BoolFlag{
						Name:  "trace",
						Usage: "print the effect of every rule",
					},
				},
				Action: func(ctx *cli.Context) error {
					kind, ok := agency.ParseFieldKind(ctx.String("kind"))
					if !ok {
						return fmt.Errorf("unknown field kind %q", ctx.String("kind"))
					}
					a, err := newAgency(ctx)
					if err != nil {
						return err
					}
					if ctx.Bool("trace") {
						table, _ := a.Normalizer().Rules().Table(kind)
						h := md5.New()
						table.Hash(h)
						fmt.Printf("Rules %s (%d rules, fingerprint %x)\n", table.Name(), table.Len(), h.Sum(nil))
					}
					for _, text := range ctx.Args().Slice() {
						if !ctx.Bool("trace") {
							fmt.Println(a.Normalizer().Normalize(kind, text))
							continue
						}
						out, steps := a.Normalizer().Trace(kind, text)
						fmt.Print(formatTrace(text, out, steps))
					}
					return nil
				},
			},
			{
				Name:      "direction",
				Usage:     "clean the headsign of a direction",
				ArgsUsage: "headsign",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "direction-id",
						Usage: "direction_id of the trips",
					},
					&cli.BoolFlag{
						Name:  "from-stop-name",
						Usage: "the headsign is the name of the last stop",
					},
				},
				Action: func(ctx *cli.Context) error {
					if ctx.Args().Len() == 0 {
						return fmt.Errorf("a headsign was not provided")
					}
					a, err := newAgency(ctx)
					if err != nil {
						return err
					}
					fmt.Println(a.CleanDirectionHeadsign(ctx.Int("direction-id"), ctx.Bool("from-stop-name"), ctx.Args().First()))
					return nil
				},
			},
			{
				Name:      "route-id",
				Usage:     "derive route IDs from route short names",
				ArgsUsage: "short-name...",
				Action: func(ctx *cli.Context) error {
					a, err := newAgency(ctx)
					if err != nil {
						return err
					}
					return forEachArg(ctx, func(arg string) (string, error) {
						id, err := a.RouteID(arg)
						return fmt.Sprint(id), err
					})
				},
			},
			{
				Name:      "route-color",
				Usage:     "derive route colors from route short names",
				ArgsUsage: "short-name...",
				Action: func(ctx *cli.Context) error {
					a, err := newAgency(ctx)
					if err != nil {
						return err
					}
					return forEachArg(ctx, a.RouteColor)
				},
			},
			{
				Name:      "stop-id",
				Usage:     "derive stop IDs from GTFS stop IDs",
				ArgsUsage: "stop-id...",
				Action: func(ctx *cli.Context) error {
					a, err := newAgency(ctx)
					if err != nil {
						return err
					}
					return forEachArg(ctx, func(arg string) (string, error) {
						id, err := a.StopID(arg)
						return fmt.Sprint(id), err
					})
				},
			},
			{
				Name:      "static",
				Usage:     "clean a GTFS static feed",
				ArgsUsage: "path",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "csv",
						Usage: "directory to write the cleaned routes, stops and trips to",
					},
					&cli.StringFlag{
						Name:  "sqlite",
						Usage: "SQLite database to write the cleaned routes, stops and trips to",
					},
					&cli.BoolFlag{
						Name:    "verbose",
						Aliases: []string{"v"},
						Usage:   "print every route",
					},
				},
				Action: func(ctx *cli.Context) error {
					if ctx.Args().Len() == 0 {
						return fmt.Errorf("a path to the GTFS static feed was not provided")
					}
					static, _, err := parseStatic(ctx, ctx.Args().First())
					if err != nil {
						return err
					}
					fmt.Printf("%d agencies, %d routes, %d stops, %d trips, %d warnings\n",
						len(static.Agencies), len(static.Routes), len(static.Stops), len(static.Trips), len(static.Warnings))
					if ctx.Bool("verbose") {
						for _, route := range static.Routes {
							fmt.Printf("- %s\n", formatRoute(route))
						}
					}
					if dir := ctx.String("csv"); dir != "" {
						e, err := export.ToCsv(static)
						if err != nil {
							return fmt.Errorf("failed to export CSV: %w", err)
						}
						if err := e.WriteDir(dir); err != nil {
							return err
						}
					}
					if path := ctx.String("sqlite"); path != "" {
						if err := export.ToSQLite(ctx.Context, path, static); err != nil {
							return fmt.Errorf("failed to export to SQLite: %w", err)
						}
					}
					return nil
				},
			},
			{
				Name:      "realtime",
				Usage:     "resolve the identifiers of a GTFS realtime message",
				ArgsUsage: "path",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "static",
						Usage: "path to the GTFS static feed the message refers to",
					},
				},
				Action: func(ctx *cli.Context) error {
					if ctx.Args().Len() == 0 {
						return fmt.Errorf("a path to the GTFS realtime message was not provided")
					}
					opts := realtime.ParseRealtimeOptions{}
					if path := ctx.String("static"); path != "" {
						static, a, err := parseStatic(ctx, path)
						if err != nil {
							return err
						}
						opts.Static = static
						opts.Agency = a
					} else {
						a, err := newAgency(ctx)
						if err != nil {
							return err
						}
						opts.Agency = a
					}
					policy, err := fatalPolicy(ctx)
					if err != nil {
						return err
					}
					opts.FatalPolicy = policy
					path := ctx.Args().First()
					b, err := os.ReadFile(path)
					if err != nil {
						return fmt.Errorf("failed to read file %s: %w", path, err)
					}
					result, err := realtime.Parse(b, opts)
					if err != nil {
						return fmt.Errorf("failed to parse message: %w", err)
					}
					fmt.Printf("Created at %s\n", result.CreatedAt)
					fmt.Printf("%d trips:\n", len(result.Trips))
					for _, trip := range result.Trips {
						fmt.Printf("- %s\n", formatTrip(trip))
					}
					fmt.Printf("%d vehicles, %d skipped entities\n", len(result.Vehicles), len(result.Skipped))
					h := md5.New()
					result.Hash(h)
					fmt.Printf("Fingerprint: %x\n", h.Sum(nil))
					return nil
				},
			},
		},
	}
	if err := app.Run(os.Args); err != nil {
		fmt.Println("Error:", err)
		os.Exit(1)
	}
}

func newAgency(ctx *cli.Context) (*stlevis.Agency, error) {
	opts := stlevis.Opts{}
	if path := ctx.String("profile"); path != "" {
		profile, err := config.Load(path)
		if err != nil {
			return nil, err
		}
		opts.Profile = profile
	}
	return stlevis.New(opts)
}

func fatalPolicy(ctx *cli.Context) (gtfsclean.FatalPolicy, error) {
	policy, ok := gtfsclean.ParseFatalPolicy(ctx.String("fatal-policy"))
	if !ok {
		return policy, fmt.Errorf("unknown fatal policy %q", ctx.String("fatal-policy"))
	}
	return policy, nil
}

func parseStatic(ctx *cli.Context, path string) (*gtfsclean.Static, *stlevis.Agency, error) {
	a, err := newAgency(ctx)
	if err != nil {
		return nil, nil, err
	}
	policy, err := fatalPolicy(ctx)
	if err != nil {
		return nil, nil, err
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read file %s: %w", path, err)
	}
	static, err := gtfsclean.ParseStatic(b, gtfsclean.ParseStaticOptions{
		Agency:      a,
		FatalPolicy: policy,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse GTFS static data: %w", err)
	}
	return static, a, nil
}

// forEachArg prints the result of f for each argument. Fatal errors are printed and the
// remaining arguments are still processed.
func forEachArg(ctx *cli.Context, f func(arg string) (string, error)) error {
	ec := color.New(color.FgRed)
	var failed int
	for _, arg := range ctx.Args().Slice() {
		out, err := f(arg)
		var fatal agency.FatalError
		switch {
		case err == nil:
			fmt.Printf("%s\t%s\n", arg, out)
		case errors.As(err, &fatal):
			failed++
			fmt.Printf("%s\t%s\n", arg, ec.Sprint(err))
		default:
			return err
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d inputs failed", failed, ctx.Args().Len())
	}
	return nil
}

func formatTrace(in, out string, steps []rules.Step) string {
	var b strings.Builder
	rc := color.New(color.FgCyan)
	sc := color.New(color.FgGreen)
	fmt.Fprintf(&b, "%q\n", in)
	for _, step := range steps {
		if !step.Changed() {
			continue
		}
		var targets []string
		for _, m := range step.Matches {
			if target, ok := m.Groups["target"]; ok {
				targets = append(targets, fmt.Sprintf("%q", target))
			}
		}
		fmt.Fprintf(&b, "  %s  %s", rc.Sprintf("%-24s", step.Rule), sc.Sprintf("%q", step.After))
		if len(targets) > 0 {
			fmt.Fprintf(&b, "  matched %s", strings.Join(targets, ", "))
		}
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "= %q\n", out)
	return b.String()
}

func formatRoute(route gtfsclean.Route) string {
	rc := color.New(color.FgCyan)
	nc := color.New(color.FgMagenta)
	return fmt.Sprintf("RouteID %s  ShortName %s  LongName %s  Color %s",
		rc.Sprint(route.NumericId),
		rc.Sprint(route.ShortName),
		nc.Sprint(route.LongName),
		rc.Sprint(route.Color),
	)
}

func formatTrip(trip realtime.Trip) string {
	tc := color.New(color.FgCyan)
	sc := color.New(color.FgGreen)
	var stopIDs []string
	for _, update := range trip.StopTimeUpdates {
		stopIDs = append(stopIDs, unPtrI(update.StopID))
	}
	return fmt.Sprintf("TripID %s  RouteID %s  DirectionID %s  Stops %s",
		tc.Sprint(trip.ID),
		tc.Sprint(unPtrI64(trip.RouteID)),
		tc.Sprint(trip.DirectionID),
		sc.Sprint(strings.Join(stopIDs, " ")),
	)
}

func unPtrI(i *int) string {
	if i == nil {
		return "<none>"
	}
	return fmt.Sprintf("%d", *i)
}

func unPtrI64(i *int64) string {
	if i == nil {
		return "<none>"
	}
	return fmt.Sprintf("%d", *i)
}
