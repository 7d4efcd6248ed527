// batchmatch runs one pairing sweep over every user waiting for an
// assignment and prints the report as JSON. It talks to the same DynamoDB
// tables as the server, so it can run from a cron host or by hand on event
// night.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"aura_server/config"
	"aura_server/services"

	"github.com/spf13/pflag"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.Load()

	var seed uint64
	var timeout time.Duration
	flagSet := pflag.NewFlagSet("batchmatch", pflag.ContinueOnError)
	flagSet.Uint64Var(&seed, "seed", uint64(time.Now().UnixNano()), "shuffle seed; reuse one to replay a sweep order")
	flagSet.DurationVar(&timeout, "timeout", 5*time.Minute, "give up on the sweep after this long")
	flagSet.StringVar(&cfg.AWSRegion, "region", cfg.AWSRegion, "AWS region of the tables")
	flagSet.StringVar(&cfg.UsersTable, "users-table", cfg.UsersTable, "users table name")
	flagSet.StringVar(&cfg.ChatsTable, "chats-table", cfg.ChatsTable, "chats table name")
	flagSet.BoolP("help", "h", false, "show help")

	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			return nil
		}
		return err
	}
	if help, _ := flagSet.GetBool("help"); help {
		fmt.Fprintln(os.Stderr, "usage: batchmatch [flags]")
		flagSet.PrintDefaults()
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	client, err := services.InitializeDynamoDBClient(ctx, cfg.AWSRegion)
	if err != nil {
		return err
	}
	store := services.NewDynamoService(client, services.TableNames{
		Users:    cfg.UsersTable,
		Chats:    cfg.ChatsTable,
		Messages: cfg.MessagesTable,
	})

	report, err := services.NewBatchMatchService(store).Run(ctx, seed)
	if err != nil {
		return fmt.Errorf("sweep failed: %w", err)
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(report)
}
