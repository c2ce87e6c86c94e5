// Command watch prints the live outage status for one group to the terminal,
// refreshing every second.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"svitlo-ua/internal/config"
	"svitlo-ua/internal/locations"
	"svitlo-ua/internal/logging"
	"svitlo-ua/internal/schedule"
)

const clearScreen = "\033[H\033[2J"

func main() {
	_ = godotenv.Load()

	pflag.String("oblast", "", "oblast id")
	pflag.String("city", "", "city id")
	pflag.String("group", "", "group id")
	pflag.Bool("once", false, "print once and exit")
	pflag.Parse()
	if err := viper.BindPFlags(pflag.CommandLine); err != nil {
		log.Fatal().Err(err).Msg("flags")
	}

	cfg := config.Load()
	logging.Setup(cfg.LogLevel)

	loc, err := cfg.Location()
	if err != nil {
		log.Fatal().Err(err).Msg("timezone")
	}

	catalog, err := locations.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("locations")
	}
	sel := catalog.Resolve(viper.GetString("oblast"), viper.GetString("city"), viper.GetString("group"))

	if viper.GetBool("once") {
		render(os.Stdout, sel, schedule.BuildView(time.Now().In(loc), sel.GroupID))
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		fmt.Fprint(os.Stdout, clearScreen)
		render(os.Stdout, sel, schedule.BuildView(time.Now().In(loc), sel.GroupID))

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// render writes the status panel for one tick.
func render(w io.Writer, sel locations.Selection, v schedule.View) {
	fmt.Fprintln(w, strings.Join([]string{
		optionName(sel.Oblasts, sel.OblastID),
		optionName(sel.Cities, sel.CityID),
		optionName(sel.Groups, sel.GroupID),
	}, " / "))
	fmt.Fprintf(w, "%s  %s\n", v.Clock, v.StatusLabel)
	fmt.Fprintf(w, "Наступна зміна: %s\n", v.NextChangeLabel)
	fmt.Fprintf(w, "Зворотний відлік: %s\n\n", v.Countdown)
	for _, e := range v.Entries {
		fmt.Fprintf(w, "%-9s %-12s %s\n", e.KindLabel, e.StateLabel, e.TimeRange)
	}
}

func optionName(opts []locations.Option, id string) string {
	for _, o := range opts {
		if o.ID == id {
			return o.Name
		}
	}
	if id == "" {
		return schedule.LabelNoCountdown
	}
	return id
}
