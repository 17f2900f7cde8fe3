// cmd/search-cli/commands.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/Merry-360-x/merry-moments-sub002/internal/app"
	"github.com/Merry-360-x/merry-moments-sub002/internal/common/config"
	"github.com/Merry-360-x/merry-moments-sub002/internal/common/logger"
	"github.com/Merry-360-x/merry-moments-sub002/internal/marketplace"
	"github.com/Merry-360-x/merry-moments-sub002/internal/search"
)

var sourceFlags = []cli.Flag{
	&cli.StringFlag{
		Name:  "config",
		Usage: "config file path (default: configs/config.yaml lookup)",
	},
	&cli.StringFlag{
		Name:  "fixtures",
		Usage: "serve listings from this YAML snapshot instead of the configured source",
	},
	&cli.StringFlag{
		Name:  "log-level",
		Usage: "log level written to stderr",
		Value: "warn",
	},
}

func newCommand(out io.Writer) *cli.Command {
	return &cli.Command{
		Name:   "search-cli",
		Usage:  "Run marketplace searches and manage the candidate cache",
		Writer: out,
		Commands: []*cli.Command{
			{
				Name:      "search",
				Usage:     "Search listings and print the ranked results as JSON",
				ArgsUsage: "[query words...]",
				Flags: append([]cli.Flag{
					&cli.StringFlag{Name: "type", Usage: "all, properties, tours or transport", Value: "all"},
					&cli.StringFlag{Name: "category", Usage: "exact category"},
					&cli.StringFlag{Name: "price-min", Usage: "minimum price"},
					&cli.StringFlag{Name: "price-max", Usage: "maximum price (inclusive)"},
					&cli.StringFlag{Name: "location", Usage: "words the location must contain"},
					&cli.StringFlag{Name: "rating", Usage: "minimum rating"},
					&cli.StringFlag{Name: "currency", Usage: "currency the price bounds are expressed in"},
					&cli.StringFlag{Name: "monthly-mode", Usage: "all, monthly_only, monthly_available or nightly_only"},
					&cli.StringSliceFlag{Name: "amenity", Usage: "required amenity (repeatable)"},
				}, sourceFlags...),
				Action: searchAction,
			},
			{
				Name:  "invalidate",
				Usage: "Drop cached candidate sets",
				Flags: append([]cli.Flag{
					&cli.StringSliceFlag{Name: "kind", Usage: "kind to drop (repeatable, default all)"},
				}, sourceFlags...),
				Action: invalidateAction,
			},
			{
				Name:      "kinds",
				Usage:     "List the record kinds a search type covers",
				ArgsUsage: "[type]",
				Action:    kindsAction,
			},
		},
	}
}

func searchAction(ctx context.Context, cmd *cli.Command) error {
	raw := map[string]interface{}{
		"query": strings.Join(cmd.Args().Slice(), " "),
		"filters": map[string]interface{}{
			"type":        cmd.String("type"),
			"category":    cmd.String("category"),
			"priceMin":    cmd.String("price-min"),
			"priceMax":    cmd.String("price-max"),
			"location":    cmd.String("location"),
			"rating":      cmd.String("rating"),
			"currency":    cmd.String("currency"),
			"monthlyMode": cmd.String("monthly-mode"),
			"amenities":   toInterfaces(cmd.StringSlice("amenity")),
		},
	}
	req, err := marketplace.ParseRequest(raw)
	if err != nil {
		return err
	}

	stack, err := openStack(ctx, cmd)
	if err != nil {
		return err
	}
	defer stack.Close()

	resp, err := stack.Service.Search(ctx, req)
	if err != nil {
		return err
	}
	return printJSON(cmd, resp)
}

func invalidateAction(ctx context.Context, cmd *cli.Command) error {
	kinds, err := marketplace.ParseKinds(cmd.StringSlice("kind"))
	if err != nil {
		return err
	}

	stack, err := openStack(ctx, cmd)
	if err != nil {
		return err
	}
	defer stack.Close()

	removed, err := stack.Service.Invalidate(ctx, kinds)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(cmd.Root().Writer, "removed %d cached candidate sets\n", removed)
	return err
}

func kindsAction(_ context.Context, cmd *cli.Command) error {
	searchType, err := search.ParseSearchType(cmd.Args().First())
	if err != nil {
		return err
	}
	for _, k := range searchType.Kinds() {
		if _, err := fmt.Fprintln(cmd.Root().Writer, k); err != nil {
			return err
		}
	}
	return nil
}

// openStack builds the search stack. --fixtures alone needs no config file.
func openStack(ctx context.Context, cmd *cli.Command) (*app.App, error) {
	cfg, err := loadConfig(cmd.String("config"), cmd.String("fixtures"))
	if err != nil {
		return nil, err
	}
	log := logger.NewZapAdapter(logger.New(cmd.String("log-level"), "console"))
	return app.New(ctx, cfg, app.Options{ConnectRetries: 1}, nil, log)
}

func loadConfig(path, fixtures string) (*config.Config, error) {
	var cfg *config.Config
	var err error
	switch {
	case path != "":
		cfg, err = config.LoadFromFile(path)
	case fixtures != "":
		cfg = &config.Config{}
	default:
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}

	if fixtures != "" {
		cfg.Search.Source = config.SourceMemory
		cfg.Search.FixturesPath = fixtures
		cfg.Search.Cache.Enabled = false
	}
	return cfg, nil
}

func printJSON(cmd *cli.Command, v interface{}) error {
	enc := json.NewEncoder(cmd.Root().Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func toInterfaces(values []string) []interface{} {
	out := make([]interface{}, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}
