package main

import (
	"context"
	"encoding/json"
	"os"

	"github.com/a-h/chatrelay/client"
)

type ModelsCommand struct {
	RelayURL string `help:"The URL of the chat relay." env:"RELAY_URL" default:"http://localhost:9020"`
	Pretty   bool   `help:"Pretty print the JSON output." default:"true"`
}

func (c ModelsCommand) Run(ctx context.Context) (err error) {
	resp, err := client.New(c.RelayURL).ModelsGet(ctx)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(os.Stdout)
	if c.Pretty {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(resp)
}
