// Package main imports a YAML spell catalog into a character's spell list,
// either through the HTTP API or directly into the postgres store.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/cory-johannsen/hexsheet/internal/client"
	"github.com/cory-johannsen/hexsheet/internal/config"
	"github.com/cory-johannsen/hexsheet/internal/game/spell"
	"github.com/cory-johannsen/hexsheet/internal/storage/postgres"
)

// spellCreator is the write side shared by client.Client and postgres.Store.
type spellCreator interface {
	CreateSpell(ctx context.Context, sp *spell.Spell) (*spell.Spell, error)
}

// importSpells loads the catalog at path and creates every spell for
// characterID. It stops at the first failure and reports how many were created.
func importSpells(ctx context.Context, dst spellCreator, path string, characterID int64) (int, error) {
	spells, err := spell.LoadSpells(path)
	if err != nil {
		return 0, err
	}
	for i, sp := range spells {
		sp.CharacterID = characterID
		if _, err := dst.CreateSpell(ctx, sp); err != nil {
			return i, fmt.Errorf("creating spell %q: %w", sp.Name, err)
		}
	}
	return len(spells), nil
}

func main() {
	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	envFile := flag.String("env-file", ".env", "optional dotenv file loaded before the configuration")
	target := flag.String("target", "api", "destination: api or postgres")
	source := flag.String("source", "", "path to the YAML spell catalog")
	characterID := flag.Int64("character", 0, "ID of the character receiving the spells")
	flag.Parse()

	if *source == "" || *characterID < 1 {
		fmt.Fprintln(os.Stderr, "usage: import-content -source <catalog.yaml> -character <id> [-target api|postgres] [-config <file>]")
		os.Exit(1)
	}

	if err := godotenv.Load(*envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "loading %s: %v\n", *envFile, err)
		os.Exit(1)
	}
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "loading config: %v\n", err)
		os.Exit(1)
	}

	start := time.Now()
	ctx := context.Background()

	var dst spellCreator
	switch *target {
	case "api":
		dst = client.FromConfig(cfg.Client, zap.NewNop())
	case "postgres":
		store, err := postgres.Open(ctx, cfg.Database)
		if err != nil {
			fmt.Fprintf(os.Stderr, "connecting to database: %v\n", err)
			os.Exit(1)
		}
		defer store.Close()
		dst = store
	default:
		fmt.Fprintf(os.Stderr, "unknown target %q (supported: api, postgres)\n", *target)
		os.Exit(1)
	}

	n, err := importSpells(ctx, dst, *source, *characterID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error after %d spells: %v\n", n, err)
		os.Exit(1)
	}
	fmt.Printf("imported %d spells in %s\n", n, time.Since(start).Round(time.Millisecond))
}
