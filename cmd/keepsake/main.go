// Copyright 2026 Keepsake Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/keepsake-dev/keepsake"
	"github.com/keepsake-dev/keepsake/ai"
	"github.com/keepsake-dev/keepsake/core"
	"github.com/keepsake-dev/keepsake/ingestion"
	"github.com/keepsake-dev/keepsake/storage"
)

func main() {
	// A .env file is optional; environment variables win either way
	_ = godotenv.Load()

	app := &cli.App{
		Name:  "keepsake",
		Usage: "Personal knowledge vault with semantic search",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "db",
				Aliases: []string{"d"},
				Usage:   "Path to the vault database directory",
				EnvVars: []string{"KEEPSAKE_DB"},
				Value:   "keepsake.db",
			},
			&cli.StringFlag{
				Name:    "host",
				Usage:   "OpenAI-compatible service host URL",
				EnvVars: []string{"KEEPSAKE_HOST"},
			},
			&cli.StringFlag{
				Name:    "embedding-model",
				Usage:   "Embedding model name",
				EnvVars: []string{"KEEPSAKE_EMBEDDING_MODEL"},
			},
			&cli.StringFlag{
				Name:    "chat-model",
				Usage:   "Chat model used for classification, enrichment, and merging",
				EnvVars: []string{"KEEPSAKE_CHAT_MODEL"},
			},
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:      "ingest",
				Usage:     "Add a file or literal text to the vault",
				ArgsUsage: "[file...]",
				Action:    ingestCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "text",
						Usage: "Ingest this text instead of reading files",
					},
					&cli.StringFlag{
						Name:  "kind",
						Usage: "Content kind (text, image, pdf, audio)",
						Value: "text",
					},
					&cli.StringFlag{
						Name:  "title",
						Usage: "Title to use instead of the generated one",
					},
				},
			},
			{
				Name:      "search",
				Usage:     "Search the vault",
				ArgsUsage: "query",
				Action:    searchCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:    "limit",
						Aliases: []string{"n"},
						Usage:   "Maximum number of results",
						Value:   10,
					},
				},
			},
			{
				Name:      "view",
				Usage:     "Show an item and record the view for session ranking",
				ArgsUsage: "item-id",
				Action:    viewCommand,
			},
			{
				Name:      "connections",
				Usage:     "List items connected to an item",
				ArgsUsage: "item-id",
				Action:    connectionsCommand,
			},
			{
				Name:   "sweep",
				Usage:  "Recompute connections across the whole vault",
				Action: sweepCommand,
			},
			{
				Name:   "consolidate",
				Usage:  "Merge clusters of small similar notes",
				Action: consolidateCommand,
			},
			{
				Name:   "list",
				Usage:  "List items, most recent first",
				Action: listCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "kind",
						Usage: "Only list this kind (text, image, pdf, audio)",
					},
					&cli.IntFlag{
						Name:    "limit",
						Aliases: []string{"n"},
						Usage:   "Maximum number of items",
						Value:   20,
					},
				},
			},
			{
				Name:      "delete",
				Usage:     "Delete an item with its fragments and connections",
				ArgsUsage: "item-id",
				Action:    deleteCommand,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func openDatabase(c *cli.Context) (*keepsake.Database, error) {
	var opts []ai.ConfigOption
	if host := c.String("host"); host != "" {
		opts = append(opts, ai.WithHost(host))
	}
	if model := c.String("embedding-model"); model != "" {
		opts = append(opts, ai.WithEmbeddingModel(model))
	}
	if model := c.String("chat-model"); model != "" {
		opts = append(opts, ai.WithChatModel(model))
	}
	config := ai.NewConfig(opts...)
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return keepsake.NewDatabase(c.String("db"), keepsake.WithAIConfig(config))
}

func parseItemID(c *cli.Context) (core.ID, error) {
	arg := c.Args().First()
	if arg == "" {
		return 0, fmt.Errorf("item ID argument is required")
	}
	id, err := strconv.ParseUint(arg, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid item ID %q: %w", arg, err)
	}
	return core.ID(id), nil
}

func ingestCommand(c *cli.Context) error {
	kind, ok := core.ParseItemKind(c.String("kind"))
	if !ok {
		return fmt.Errorf("unknown kind %q: must be one of text, image, pdf, audio", c.String("kind"))
	}

	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx := context.Background()

	if text := c.String("text"); text != "" {
		item, err := db.Ingest(ctx, kind, text, &ingestion.IngestOptions{Title: c.String("title")})
		if err != nil {
			return err
		}
		fmt.Printf("ingested item %d\n", item.Id)
		return nil
	}

	if c.Args().Len() == 0 {
		return fmt.Errorf("provide files to ingest or use --text")
	}

	for _, path := range c.Args().Slice() {
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}

		info, err := os.Stat(path)
		if err != nil {
			return err
		}

		item, err := db.Ingest(ctx, kind, string(data), &ingestion.IngestOptions{
			SourcePath: path,
			Title:      c.String("title"),
			ModifiedAt: info.ModTime(),
		})
		if err != nil {
			return fmt.Errorf("ingesting %s: %w", path, err)
		}
		fmt.Printf("ingested %s as item %d\n", path, item.Id)
	}

	return nil
}

func searchCommand(c *cli.Context) error {
	query := strings.Join(c.Args().Slice(), " ")
	if strings.TrimSpace(query) == "" {
		return fmt.Errorf("query argument is required")
	}

	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	results, err := db.Search(context.Background(), query, c.Int("limit"))
	if err != nil {
		return err
	}

	if len(results) == 0 {
		fmt.Println("no results")
		return nil
	}

	for _, result := range results {
		fmt.Printf("%6d  %.3f  %s\n", result.Item.Id, result.Score, itemLabel(result.Item))
		if result.Snippet != "" {
			fmt.Printf("        %s\n", oneLine(result.Snippet, 120))
		}
	}
	return nil
}

func viewCommand(c *cli.Context) error {
	id, err := parseItemID(c)
	if err != nil {
		return err
	}

	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx := context.Background()
	item, err := db.GetItem(ctx, id)
	if err != nil {
		return err
	}

	if err := db.RecordView(ctx, id); err != nil {
		return err
	}

	fmt.Printf("item %d (%s)\n", item.Id, item.Kind)
	if item.Title != "" {
		fmt.Printf("title:   %s\n", item.Title)
	}
	if len(item.Tags) > 0 {
		fmt.Printf("tags:    %s\n", strings.Join(item.Tags, ", "))
	}
	if item.Summary != "" {
		fmt.Printf("summary: %s\n", item.Summary)
	}
	if item.SourcePath != "" {
		fmt.Printf("source:  %s\n", item.SourcePath)
	}
	fmt.Printf("created: %s\n", item.CreatedAt.Format("2006-01-02 15:04:05"))

	fragments, err := db.FragmentRepository().GetFragmentsByItem(ctx, id)
	if err != nil {
		return err
	}
	for _, fragment := range fragments {
		fmt.Println()
		fmt.Println(fragment.Body)
	}
	return nil
}

func connectionsCommand(c *cli.Context) error {
	id, err := parseItemID(c)
	if err != nil {
		return err
	}

	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	connected, err := db.Connections(context.Background(), id)
	if err != nil {
		return err
	}

	if len(connected) == 0 {
		fmt.Println("no connections")
		return nil
	}

	for _, conn := range connected {
		fmt.Printf("%6d  %.3f  %s\n", conn.Item.Id, conn.Score, itemLabel(conn.Item))
	}
	return nil
}

func sweepCommand(c *cli.Context) error {
	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	count, err := db.DiscoverConnections(context.Background())
	if err != nil {
		return err
	}
	fmt.Printf("recorded %d connections\n", count)
	return nil
}

func consolidateCommand(c *cli.Context) error {
	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	merged, err := db.Consolidate(context.Background())
	if err != nil {
		return err
	}
	fmt.Printf("merged %d clusters\n", merged)
	return nil
}

func listCommand(c *cli.Context) error {
	filter := storage.ItemFilter{Limit: c.Int("limit")}
	if kindName := c.String("kind"); kindName != "" {
		kind, ok := core.ParseItemKind(kindName)
		if !ok {
			return fmt.Errorf("unknown kind %q: must be one of text, image, pdf, audio", kindName)
		}
		filter.Kind = kind
	}

	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	items, err := db.ListItems(context.Background(), filter)
	if err != nil {
		return err
	}

	if len(items) == 0 {
		fmt.Println("vault is empty")
		return nil
	}

	for _, item := range items {
		fmt.Printf("%6d  %-5s  %s  %s\n", item.Id, item.Kind, item.CreatedAt.Format("2006-01-02"), itemLabel(item))
	}
	return nil
}

func deleteCommand(c *cli.Context) error {
	id, err := parseItemID(c)
	if err != nil {
		return err
	}

	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.DeleteItem(context.Background(), id); err != nil {
		return err
	}
	fmt.Printf("deleted item %d\n", id)
	return nil
}

// itemLabel picks the most descriptive short string for an item.
func itemLabel(item *core.Item) string {
	switch {
	case item.Title != "":
		return item.Title
	case item.SourcePath != "":
		return item.SourcePath
	default:
		return oneLine(item.Summary, 60)
	}
}

// oneLine collapses whitespace and truncates to limit runes.
func oneLine(s string, limit int) string {
	s = strings.Join(strings.Fields(s), " ")
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}

func setupLogger(c *cli.Context) error {
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
