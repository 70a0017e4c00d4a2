package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/urfave/cli/v2"

	"brevets/internal/brevetapi"
)

var errNoControls = errors.New("at least one control distance is required")

var clientFlags = []cli.Flag{
	&cli.StringFlag{
		Name:    "remote",
		Usage:   "base URL of a brevets API to query instead of calculating locally",
		EnvVars: []string{"BREVETS_API_BASE"},
	},
	&cli.DurationFlag{
		Name:  "timeout",
		Value: defaultTimeout,
		Usage: "request timeout when querying a remote API",
	},
	&cli.BoolFlag{
		Name:  "json",
		Usage: "print the result as JSON",
	},
}

var brevetFlags = []cli.Flag{
	&cli.IntFlag{
		Name:    "brevet",
		Aliases: []string{"b"},
		Value:   200,
		Usage:   "nominal brevet distance in km: 200, 300, 400, 600 or 1000",
	},
	&cli.StringFlag{
		Name:    "start",
		Aliases: []string{"s"},
		Usage:   "event start, RFC 3339 or 2006-01-02T15:04 (UTC); defaults to now",
	},
}

var timesCommand = &cli.Command{
	Name:      "times",
	Usage:     "print the open and close time of one control",
	ArgsUsage: "<km>",
	Flags:     append(append([]cli.Flag{}, brevetFlags...), clientFlags...),
	Action:    controlTimes,
}

var scheduleCommand = &cli.Command{
	Name:      "schedule",
	Usage:     "print the open and close times of every control of a route sheet",
	ArgsUsage: "<km> [<km>...]",
	Flags:     append(append([]cli.Flag{}, brevetFlags...), clientFlags...),
	Action:    schedule,
}

var brevetsCommand = &cli.Command{
	Name:   "brevets",
	Usage:  "print the canonical distances and the speed table",
	Flags:  clientFlags,
	Action: brevets,
}

func setupClient(c *cli.Context) (brevetapi.Client, context.CancelFunc) {
	var cancel context.CancelFunc
	c.Context, cancel = context.WithTimeout(c.Context, c.Duration("timeout"))
	if base := c.String("remote"); base != "" {
		return brevetapi.New(base, &http.Client{Timeout: c.Duration("timeout")}), cancel
	}
	return localClient{}, cancel
}

func startTime(c *cli.Context) string {
	if s := c.String("start"); s != "" {
		return s
	}
	return time.Now().Truncate(time.Minute).Format(time.RFC3339)
}

func controlTimes(c *cli.Context) error {
	if c.NArg() != 1 {
		return cli.ShowSubcommandHelp(c)
	}
	client, cancel := setupClient(c)
	defer cancel()

	ct, err := client.GetControlTimes(c.Context, c.Args().First(), c.Int("brevet"), startTime(c))
	if err != nil {
		return err
	}
	if c.Bool("json") {
		return jsonOutput(c.App.Writer, ct)
	}
	return printControls(c.App.Writer, []brevetapi.ControlTimes{ct})
}

func schedule(c *cli.Context) error {
	if c.NArg() == 0 {
		return errNoControls
	}
	client, cancel := setupClient(c)
	defer cancel()

	s, err := client.PostSchedule(c.Context, brevetapi.ScheduleRequest{
		BrevetDistKm: c.Int("brevet"),
		BeginDate:    startTime(c),
		Controls:     c.Args().Slice(),
	})
	if err != nil {
		return err
	}
	if c.Bool("json") {
		return jsonOutput(c.App.Writer, s)
	}
	fmt.Fprintf(c.App.Writer, "%d km brevet starting %s\n", s.BrevetDistKm, s.BeginDate)
	return printControls(c.App.Writer, s.Controls)
}

func brevets(c *cli.Context) error {
	client, cancel := setupClient(c)
	defer cancel()

	b, err := client.GetBrevets(c.Context)
	if err != nil {
		return err
	}
	if c.Bool("json") {
		return jsonOutput(c.App.Writer, b)
	}

	tw := tabwriter.NewWriter(c.App.Writer, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "BRACKET\tMIN KM/H\tMAX KM/H")
	last := int64(0)
	for _, br := range b.SpeedTable {
		fmt.Fprintf(tw, "%d-%d km\t%s\t%s\n", last, br.UpperKm, formatNumber(br.MinKmh), formatNumber(br.MaxKmh))
		last = br.UpperKm
	}
	fmt.Fprintln(tw)
	fmt.Fprintln(tw, "BREVET\tLAST CONTROL UP TO")
	for _, d := range b.Distances {
		fmt.Fprintf(tw, "%d km\t%s km\n", d, formatNumber(b.MaxControlKm[d]))
	}
	return tw.Flush()
}

func printControls(w io.Writer, controls []brevetapi.ControlTimes) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "CONTROL\tOPEN\tCLOSE")
	for _, ct := range controls {
		fmt.Fprintf(tw, "%s km\t%s\t%s\n", formatNumber(ct.ControlKm), ct.Open, ct.Close)
	}
	return tw.Flush()
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func jsonOutput(w io.Writer, in any) error {
	j, err := json.MarshalIndent(in, "", " ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(j))
	return err
}
