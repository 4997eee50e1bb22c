package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/urfave/cli/v3"

	"github.com/spaghettifunk/anima-content/engine/content"
	"github.com/spaghettifunk/anima-content/engine/content/xnb"
	"github.com/spaghettifunk/anima-content/engine/graphics"
)

func inspectCmd() *cli.Command {
	return &cli.Command{
		Name:      "inspect",
		Usage:     "Print the header and type reader table of a container",
		ArgsUsage: "FILE",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.Args().Len() != 1 {
				return errors.New("inspect takes exactly one file")
			}
			return inspect(cmd.Args().First())
		},
	}
}

func inspect(file string) error {
	f, err := os.Open(file)
	if err != nil {
		return err
	}
	defer f.Close()

	arena := content.NewArena(nil)
	r, err := xnb.NewContentReader(f, xnb.Options{AssetName: file, Catalog: arena.Catalog()})
	if err != nil {
		return err
	}
	fmt.Printf("%s\n%s\n", file, r.Header())

	entries, err := xnb.ReadTable(r.BinaryReader)
	if err != nil {
		return err
	}
	fmt.Printf("type readers (%d):\n", len(entries))
	for i, e := range entries {
		known := "unknown"
		if tn, err := xnb.ParseTypeName(e.Name); err == nil {
			if entry, ok := arena.Catalog().Lookup(tn.Base); ok {
				known = entry.Kind.String()
			}
		}
		fmt.Printf("  %2d  %-8s v%d  %s\n", i+1, known, e.Version, e.Name)
	}
	shared, err := r.ReadCount()
	if err != nil {
		return err
	}
	fmt.Printf("shared resources: %d\nbody bytes: %d\n", shared, r.Offset()+r.Remaining())
	return nil
}

func loadCmd() *cli.Command {
	var (
		root       string
		configPath string
		noFallback bool
	)
	return &cli.Command{
		Name:      "load",
		Usage:     "Load assets through a content manager and report what they decode to",
		ArgsUsage: "NAME...",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "root", Aliases: []string{"r"}, Usage: "content root directory", Destination: &root},
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "TOML config file", Destination: &configPath},
			&cli.BoolFlag{Name: "no-fallback", Usage: "disable raw image and font fallback", Destination: &noFallback},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.Args().Len() == 0 {
				return errors.New("load needs at least one asset name")
			}
			cfg := content.DefaultConfig()
			if configPath != "" {
				var err error
				if cfg, err = content.LoadConfig(configPath); err != nil {
					return err
				}
			}
			if root != "" {
				cfg.RootDirectory = root
			}
			if noFallback {
				cfg.RawFallback = false
			}
			cfg.Watch = false
			return load(ctx, cfg, cmd.Args().Slice())
		},
	}
}

func load(ctx context.Context, cfg *content.Config, names []string) error {
	if err := cfg.ApplyLogLevel(); err != nil {
		return err
	}
	dev := graphics.NewHeadlessDevice()
	m, err := content.NewContentManager(content.NewArena(nil), content.Services{Device: dev}, cfg, nil)
	if err != nil {
		return err
	}
	defer m.Close()

	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return err
		}
		v, err := m.Load(name, nil)
		if err != nil {
			return err
		}
		fmt.Printf("%-32s %T\n", name, v)
	}
	s := m.Stats()
	fmt.Printf("loads=%d fallbacks=%d failures=%d avg=%s device uploads=%d live=%d\n",
		s.Loads, s.Fallbacks, s.Failures,
		time.Duration(s.AvgLoadTime*float64(time.Millisecond)), dev.Uploads(), dev.Live())
	return nil
}
