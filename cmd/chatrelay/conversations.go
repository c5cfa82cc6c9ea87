package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/a-h/chatrelay/client"
	"github.com/fatih/color"
)

type ConversationsCommand struct {
	List   ConversationsListCommand   `cmd:"list" default:"1" help:"List stored conversations, newest first."`
	Delete ConversationsDeleteCommand `cmd:"delete" help:"Delete a conversation and its messages."`
}

type ConversationsListCommand struct {
	RelayURL string `help:"The URL of the chat relay." env:"RELAY_URL" default:"http://localhost:9020"`
}

func (c ConversationsListCommand) Run(ctx context.Context) (err error) {
	conversations, err := client.New(c.RelayURL).ConversationList(ctx)
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tCREATED\tMODEL\tTITLE")
	for _, conv := range conversations {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", conv.ID, conv.CreatedAt.Local().Format(time.DateTime), conv.Model, conv.Title)
	}
	return w.Flush()
}

type ConversationsDeleteCommand struct {
	RelayURL string   `help:"The URL of the chat relay." env:"RELAY_URL" default:"http://localhost:9020"`
	IDs      []string `arg:"" name:"id" help:"The conversations to delete."`
}

func (c ConversationsDeleteCommand) Run(ctx context.Context) (err error) {
	rc := client.New(c.RelayURL)
	green := color.New(color.FgGreen)
	for _, id := range c.IDs {
		if err = rc.ConversationDelete(ctx, id); err != nil {
			return fmt.Errorf("failed to delete %q: %w", id, err)
		}
		green.Fprintf(os.Stderr, "  ✓ deleted %s\n", id)
	}
	return nil
}
