// Command tides prints EasyTide predictions and station details.
//
//	tides -station 0256          one "datetime,event" line per tidal event
//	tides -station 0256 -raw     the service's JSON, unmodified
//	tides list-stations          every station, sorted by id
//	tides station -station 0256  details for one station
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/bbernstein/uktides/internal/cache"
	"github.com/bbernstein/uktides/internal/config"
	"github.com/bbernstein/uktides/internal/station"
	"github.com/bbernstein/uktides/internal/tide"
	"github.com/bbernstein/uktides/pkg/http/client"
	"github.com/bbernstein/uktides/pkg/uktides"
	"github.com/rs/zerolog/log"
)

const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

type app struct {
	finder  station.StationFinder
	service tide.PredictionService
	stdout  io.Writer
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	command := "tides"
	if len(args) > 0 && (args[0] == "list-stations" || args[0] == "station") {
		command, args = args[0], args[1:]
	}

	flags := flag.NewFlagSet(command, flag.ContinueOnError)
	flags.SetOutput(stderr)
	stationID := flags.String("station", "", "station id, e.g. 0256")
	raw := flags.Bool("raw", false, "print the service's JSON instead of events")
	baseURL := flags.String("base-url", "", "EasyTide base URL")
	if err := flags.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}
	if flags.NArg() > 0 {
		fmt.Fprintf(stderr, "unexpected arguments: %v\n", flags.Args())
		return exitUsage
	}

	opts := []config.Option{config.WithLogOutput(stderr)}
	if os.Getenv("LOG_LEVEL") == "" {
		opts = append(opts, config.WithLogLevel("warn"))
	}
	if *baseURL != "" {
		opts = append(opts, config.WithUKHOBaseURL(*baseURL))
	}
	cfg := config.LoadFromEnv(opts...)
	cfg.InitializeLogging()

	endpoints, err := cfg.ParseEndpoints()
	if err != nil {
		fmt.Fprintf(stderr, "%s: invalid base URL: %v\n", command, err)
		return exitUsage
	}
	a := newApp(cfg, endpoints, stdout)

	switch command {
	case "list-stations":
		err = a.listStations(ctx)
	case "station":
		if *stationID == "" {
			fmt.Fprintln(stderr, "station: -station is required")
			return exitUsage
		}
		err = a.stationDetails(ctx, uktides.StationID(*stationID))
	default:
		if *stationID == "" {
			flags.Usage()
			return exitUsage
		}
		err = a.tides(ctx, uktides.StationID(*stationID), *raw)
	}
	if err != nil {
		log.Debug().Err(err).Str("command", command).Msg("Command failed")
		fmt.Fprintf(stderr, "%s: %v\n", command, err)
		return exitError
	}
	return exitOK
}

// newApp wires the fetchers without any cache beyond the process lifetime.
func newApp(cfg *config.Config, endpoints uktides.Endpoints, stdout io.Writer) *app {
	httpClient := client.New(client.Options{Timeout: cfg.HTTPTimeout})
	finder := station.NewUKHOStationFinder(httpClient, endpoints, cache.NewStationCache(&config.CacheConfig{StationListTTLHours: 1}), nil)
	return &app{
		finder:  finder,
		service: tide.NewService(httpClient, endpoints, finder, nil),
		stdout:  stdout,
	}
}

func (a *app) tides(ctx context.Context, id uktides.StationID, raw bool) error {
	if raw {
		payload, err := a.service.GetRawPredictions(ctx, id)
		if err != nil {
			return err
		}
		_, err = a.stdout.Write(payload)
		return err
	}

	predictions, err := a.service.GetPredictions(ctx, id)
	if err != nil {
		return err
	}
	for _, event := range predictions.TidalEvents {
		if _, err := fmt.Fprintf(a.stdout, "%s,%s\n", event.DateTime.Format(time.RFC3339), event.Type); err != nil {
			return err
		}
	}
	return nil
}

func (a *app) listStations(ctx context.Context) error {
	stations, err := a.finder.ListStations(ctx)
	if err != nil {
		return err
	}
	for _, s := range uktides.StationsSortedByID(stations) {
		line := fmt.Sprintf("%-5s\t%-34s\t%-16s\t%s", s.ID, s.Name, s.Country, s.Location)
		if !s.ContinuousHeightsAvailable {
			line += "\tno continuous heights"
		}
		if _, err := fmt.Fprintln(a.stdout, line); err != nil {
			return err
		}
	}
	return nil
}

func (a *app) stationDetails(ctx context.Context, id uktides.StationID) error {
	s, err := a.finder.FindStation(ctx, id)
	if err != nil {
		return err
	}
	heights := "yes"
	if !s.ContinuousHeightsAvailable {
		heights = "no"
	}
	_, err = fmt.Fprintf(a.stdout, "ID:                 %s\nName:               %s\nCountry:            %s\nLocation:           %s\nContinuous heights: %s\n",
		s.ID, s.Name, s.Country, s.Location, heights)
	return err
}
