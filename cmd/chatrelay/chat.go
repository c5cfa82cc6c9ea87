package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
	"sync/atomic"

	"github.com/a-h/chatrelay/chat"
	"github.com/a-h/chatrelay/chaterr"
	"github.com/a-h/chatrelay/client"
	"github.com/a-h/chatrelay/models"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"
)

type ChatCommand struct {
	RelayURL     string `help:"The URL of the chat relay." env:"RELAY_URL" default:"http://localhost:9020"`
	Model        string `help:"The id of the model to chat with, see the models command." env:"MODEL" default:"ollama-llama"`
	Conversation string `help:"The id of a conversation to continue." env:"CONVERSATION" default:""`
	LogFile      string `help:"Write logs to this file, the terminal is in use by the chat." env:"LOG_FILE" default:""`
	LogLevel     string `help:"The log level to use." env:"LOG_LEVEL" default:"info"`
}

func (c ChatCommand) Run(ctx context.Context) (err error) {
	var w io.Writer = io.Discard
	if c.LogFile != "" {
		f, err := os.OpenFile(c.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		defer f.Close()
		w = f
	}
	log := newLogger(w, c.LogLevel)

	rc := client.New(c.RelayURL)
	option, err := findModel(ctx, rc, c.Model)
	if err != nil {
		return err
	}

	// The session is created by the first prompt when no conversation is given.
	var session atomic.Pointer[chat.Session]
	var visible []models.ChatMessage
	if c.Conversation != "" {
		s, err := chat.Open(ctx, log, rc, rc, chat.Config{
			ConversationID: c.Conversation,
			Model:          option.ModelID,
			Provider:       option.Provider,
		})
		if err != nil {
			return err
		}
		session.Store(s)
		visible = s.History()
	}

	toLLM := make(chan string, 1)
	fromLLM := make(chan []models.ChatMessage)
	done := make(chan struct{})
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go func() {
		for prompt := range toLLM {
			s := session.Load()
			if s == nil {
				resp, err := rc.ConversationsPost(ctx, models.ConversationsPostRequest{
					Model:  option.ModelID,
					Prompt: prompt,
				})
				if err != nil {
					visible = append(visible, failureMessage(err))
					send(ctx, fromLLM, visible)
					send(ctx, done, struct{}{})
					continue
				}
				s = chat.New(log, rc, rc, chat.Config{
					ConversationID: resp.ID,
					Model:          option.ModelID,
					Provider:       option.Provider,
				})
				session.Store(s)
			}
			visible = append(visible, models.ChatMessage{Role: models.ChatRoleUser, Content: prompt})
			send(ctx, fromLLM, visible)
			reply, err := s.Send(ctx, prompt, func(content string) {
				send(ctx, fromLLM, append(slices.Clone(visible), models.ChatMessage{Role: models.ChatRoleAssistant, Content: content}))
			})
			switch {
			case err == nil:
				visible = append(visible, models.ChatMessage{Role: models.ChatRoleAssistant, Content: reply})
			case chaterr.KindOf(err) == chaterr.KindCancel:
				// The partial reply is discarded.
			default:
				visible = append(visible, failureMessage(err))
			}
			send(ctx, fromLLM, visible)
			send(ctx, done, struct{}{})
		}
	}()

	m := newModel(ctx, toLLM, fromLLM, done, func() bool {
		s := session.Load()
		return s != nil && s.Cancel()
	})
	m.title = fmt.Sprintf("%s (%s)", option.Name, option.Provider)
	if len(visible) > 0 {
		m.viewport.SetContent(renderMessages(visible))
	}
	p := tea.NewProgram(m)
	_, err = p.Run()
	close(toLLM)
	return err
}

func send[T any](ctx context.Context, ch chan T, v T) {
	select {
	case ch <- v:
	case <-ctx.Done():
	}
}

func failureMessage(err error) models.ChatMessage {
	var ce *chaterr.Error
	if errors.As(err, &ce) {
		return models.ChatMessage{Role: models.ChatRoleError, Content: fmt.Sprintf("%s: %s", ce.Kind, ce.Message)}
	}
	return models.ChatMessage{Role: models.ChatRoleError, Content: err.Error()}
}

func findModel(ctx context.Context, rc client.Client, id string) (option models.ModelOption, err error) {
	resp, err := rc.ModelsGet(ctx)
	if err != nil {
		return option, fmt.Errorf("failed to get models: %w", err)
	}
	var ids []string
	for _, m := range resp.Models {
		if m.ID == id {
			return m, nil
		}
		ids = append(ids, m.ID)
	}
	return option, fmt.Errorf("unknown model %q, expected one of: %s", id, strings.Join(ids, ", "))
}

// Dracula color scheme.
var (
	Background  = lipgloss.Color("#282a36")
	CurrentLine = lipgloss.Color("#44475a")
	Foreground  = lipgloss.Color("#f8f8f2")
	Comment     = lipgloss.Color("#6272a4")
	Cyan        = lipgloss.Color("#8be9fd")
	Pink        = lipgloss.Color("#ff79c6")
	Purple      = lipgloss.Color("#bd93f9")
	Red         = lipgloss.Color("#ff5555")
)

var headerStyle = lipgloss.NewStyle().Background(CurrentLine).Foreground(Purple).Bold(true).Margin(10).Padding(1).PaddingTop(0)

var statusStyle = lipgloss.NewStyle().Foreground(Comment)

var header = `
 _______  __   __  _______  _______ 
|       ||  | |  ||   _   ||       |
|       ||  |_|  ||  |_|  ||_     _|
|       ||       ||       |  |   |  
|      _||       ||       |  |   |  
|     |_ |   _   ||   _   |  |   |  
|_______||__| |__||__| |__|  |___|  
`

type model struct {
	viewport viewport.Model
	textarea textarea.Model
	ctx      context.Context
	title    string
	loading  bool

	toLLM   chan string
	fromLLM chan []models.ChatMessage
	done    chan struct{}
	cancel  func() bool
}

func newModel(ctx context.Context, toLLM chan string, fromLLM chan []models.ChatMessage, done chan struct{}, cancel func() bool) model {
	ta := textarea.New()
	ta.Placeholder = "Send a message..."
	ta.Focus()

	ta.Prompt = "┃ "
	ta.CharLimit = 4000

	ta.SetHeight(3)

	// Remove cursor line styling
	ta.FocusedStyle.CursorLine = lipgloss.NewStyle()

	ta.ShowLineNumbers = false

	vp := viewport.New(80, 20)
	vp.SetContent(headerStyle.Render(header))

	ta.KeyMap.InsertNewline.SetEnabled(false)

	return model{
		ctx:      ctx,
		textarea: ta,
		viewport: vp,
		fromLLM:  fromLLM,
		toLLM:    toLLM,
		done:     done,
		cancel:   cancel,
	}
}

type doneMsg struct{}

func (m model) Init() tea.Cmd {
	return tea.Batch(
		textarea.Blink,
		m.subscribeToFromLLM(),
		m.subscribeToDone(),
	)
}

func (m model) subscribeToFromLLM() tea.Cmd {
	return func() tea.Msg {
		select {
		case x := <-m.fromLLM:
			return x
		case <-m.ctx.Done():
			return nil
		}
	}
}

func (m model) subscribeToDone() tea.Cmd {
	return func() tea.Msg {
		select {
		case <-m.done:
			return doneMsg{}
		case <-m.ctx.Done():
			return nil
		}
	}
}

var roleToStyle = map[models.ChatRole]lipgloss.Style{
	models.ChatRoleUser:      lipgloss.NewStyle().Padding(1).Margin(1).MarginBottom(0).Background(Background).Foreground(Pink),
	models.ChatRoleAssistant: lipgloss.NewStyle().Padding(1).Margin(1).MarginBottom(0).Background(Background).Foreground(Cyan),
	models.ChatRoleError:     lipgloss.NewStyle().Padding(1).Margin(1).MarginBottom(0).Background(Background).Foreground(Red),
}

var roleToIcon = map[models.ChatRole]string{
	models.ChatRoleUser:      "🥷",
	models.ChatRoleAssistant: "✨",
	models.ChatRoleError:     "⚠️",
}

func formatMessage(msg models.ChatMessage) string {
	style, ok := roleToStyle[msg.Role]
	if !ok {
		return msg.Content
	}
	icon, ok := roleToIcon[msg.Role]
	if !ok {
		icon = "🤷"
	}
	wrapped := wordwrap.String(strings.TrimSpace(icon+" "+msg.Content), 80)
	return style.Render(wrapped)
}

func renderMessages(msgs []models.ChatMessage) string {
	var sb strings.Builder
	for _, cm := range msgs {
		sb.WriteString(formatMessage(cm))
		sb.WriteString("\n")
	}
	return sb.String()
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case []models.ChatMessage:
		m.viewport.SetContent(renderMessages(msg))
		m.viewport.GotoBottom()
		return m, m.subscribeToFromLLM()
	case doneMsg:
		m.loading = false
		return m, m.subscribeToDone()
	case tea.WindowSizeMsg:
		m.viewport.Width = msg.Width
		m.viewport.Height = msg.Height - m.textarea.Height() - 4
		m.textarea.SetWidth(msg.Width)
		return m, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.cancel()
			return m, tea.Quit
		case "esc":
			if m.loading {
				m.cancel()
				return m, nil
			}
			return m, tea.Quit
		case "enter":
			v := strings.TrimSpace(m.textarea.Value())
			if v == "" || m.loading {
				return m, nil
			}
			m.textarea.Reset()
			m.loading = true
			m.toLLM <- v
			return m, nil
		default:
			// Send all other keypresses to the textarea.
			var cmd tea.Cmd
			m.textarea, cmd = m.textarea.Update(msg)
			return m, cmd
		}

	case cursor.BlinkMsg:
		// Textarea should also process cursor blinks.
		var cmd tea.Cmd
		m.textarea, cmd = m.textarea.Update(msg)
		return m, cmd

	default:
		return m, nil
	}
}

func (m model) View() string {
	status := m.title
	if m.loading {
		status += " · generating, esc to cancel"
	}
	return fmt.Sprintf("%s\n%s\n\n%s",
		m.viewport.View(),
		statusStyle.Render(status),
		m.textarea.View(),
	) + "\n\n"
}
