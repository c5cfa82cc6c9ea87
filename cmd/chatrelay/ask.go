package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/a-h/chatrelay/chat"
	"github.com/a-h/chatrelay/chaterr"
	"github.com/a-h/chatrelay/client"
	"github.com/a-h/chatrelay/models"
	"github.com/briandowns/spinner"
	"github.com/fatih/color"
)

type AskCommand struct {
	RelayURL string   `help:"The URL of the chat relay." env:"RELAY_URL" default:"http://localhost:9020"`
	Model    string   `help:"The id of the model to ask, see the models command." env:"MODEL" default:"ollama-llama"`
	Prompt   []string `arg:"" help:"The prompt to send."`
	LogLevel string   `help:"The log level to use." env:"LOG_LEVEL" default:"warn"`
}

func (c AskCommand) Run(ctx context.Context) (err error) {
	log := getLogger(c.LogLevel)
	prompt := strings.Join(c.Prompt, " ")

	rc := client.New(c.RelayURL)
	option, err := findModel(ctx, rc, c.Model)
	if err != nil {
		return err
	}
	resp, err := rc.ConversationsPost(ctx, models.ConversationsPostRequest{
		Model:  option.ModelID,
		Prompt: prompt,
	})
	if err != nil {
		return fmt.Errorf("failed to create conversation: %w", err)
	}
	session := chat.New(log, rc, rc, chat.Config{
		ConversationID: resp.ID,
		Model:          option.ModelID,
		Provider:       option.Provider,
	})

	sp := spinner.New(spinner.CharSets[14], 80*time.Millisecond, spinner.WithWriter(os.Stderr))
	sp.Suffix = "  Thinking..."
	sp.Color("cyan")
	sp.Start()

	cyan := color.New(color.FgCyan, color.Bold)
	var printed int
	_, err = session.Send(ctx, prompt, func(content string) {
		if printed == 0 {
			sp.Stop()
			cyan.Fprintf(os.Stderr, "\n  %s\n\n", resp.Title)
		}
		fmt.Print(content[printed:])
		printed = len(content)
	})
	sp.Stop()
	if err != nil {
		red := color.New(color.FgRed)
		var ce *chaterr.Error
		if errors.As(err, &ce) {
			red.Fprintf(os.Stderr, "\n  ✗ %s: %s\n", ce.Kind, ce.Message)
		} else {
			red.Fprintf(os.Stderr, "\n  ✗ %v\n", err)
		}
		return err
	}
	fmt.Println()
	return nil
}
