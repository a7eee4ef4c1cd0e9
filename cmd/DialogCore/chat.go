package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/BTreeMap/DialogCore/internal/dialog"
	"github.com/BTreeMap/DialogCore/internal/models"
)

var resumeID string

// chatter is the part of the dialog manager the chat loop drives.
type chatter interface {
	StartConversation(ctx context.Context) (*models.TurnResponse, error)
	HandleTurn(ctx context.Context, conversationID, userText string) (*models.TurnResponse, error)
	GetConversation(ctx context.Context, id string) (*models.Conversation, error)
}

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Talk to the bot on the terminal",
	Long: `Starts (or resumes with --conversation) a conversation and reads one
utterance per line from stdin. Type /quit to leave without ending the
conversation.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := buildApp(ctx, cfg, cmd.Name())
		if err != nil {
			return err
		}
		defer func() {
			closeCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			_ = a.Close(closeCtx)
		}()
		return chatLoop(ctx, a.manager, resumeID, cmd.InOrStdin(), cmd.OutOrStdout())
	},
}

func init() {
	chatCmd.Flags().StringVar(&resumeID, "conversation", "", "resume the conversation with this ID")
}

// chatLoop runs a conversation over in and out until the session ends, the
// user types /quit or in is exhausted.
func chatLoop(ctx context.Context, c chatter, conversationID string, in io.Reader, out io.Writer) error {
	if conversationID == "" {
		greeting, err := c.StartConversation(ctx)
		if err != nil {
			return err
		}
		conversationID = greeting.ConversationID
		fmt.Fprintf(out, "[conversation %s]\n", conversationID)
		fmt.Fprintf(out, "bot> %s\n", greeting.Text)
	} else {
		conv, err := c.GetConversation(ctx, conversationID)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "[resuming %s at turn %d]\n", conversationID, conv.TurnNum)
		if conv.LastBotText != "" {
			fmt.Fprintf(out, "bot> %s\n", conv.LastBotText)
		}
	}

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "you> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		switch line {
		case "":
			continue
		case "/quit", "/exit":
			return nil
		}

		start := time.Now()
		reply, err := c.HandleTurn(ctx, conversationID, line)
		if errors.Is(err, dialog.ErrConversationEnded) {
			fmt.Fprintln(out, "[conversation has ended]")
			return nil
		}
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "bot> %s\n", reply.Text)
		fmt.Fprintf(out, "     (%s + %s, %s)\n", orDash(reply.ResponseRG), orDash(reply.PromptRG), time.Since(start).Round(time.Millisecond))
		if reply.Ended {
			fmt.Fprintln(out, "[conversation ended]")
			return nil
		}
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
