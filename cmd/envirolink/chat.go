package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jgoulah/envirolink/internal/ai"
	"github.com/jgoulah/envirolink/internal/chat"
	"github.com/jgoulah/envirolink/internal/network"
	"github.com/jgoulah/envirolink/pkg/models"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Chat with the sustainability assistant",
	Long: `Starts an interactive chat session. Commands:
  /retry    resend the last question
  /suggest  show suggested topics
  /quit     leave the chat`,
	RunE: runChat,
}

func init() {
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	p, cleanup, err := newPipeline(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	ctx, cancel := commandContext(cmd)
	defer cancel()

	reach := network.NewChecker(cfg.GetConnectivityURL(), cfg.GetConnectivityTimeout())
	session := chat.NewSession(p, chat.WithReachability(reach.Reachable))

	for _, m := range session.Messages() {
		printMessage(m)
	}
	fmt.Printf("Try asking about: %s\n", strings.Join(session.Suggestions(3), ", "))

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			fmt.Println()
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())

		var reply models.ChatMessage
		switch line {
		case "":
			continue
		case "/quit", "/exit":
			return nil
		case "/suggest":
			for _, topic := range session.Suggestions(len(chat.Topics)) {
				fmt.Printf("  - %s\n", topic)
			}
			continue
		case "/retry":
			reply, err = session.Retry(ctx)
		default:
			reply, err = session.Send(ctx, line)
		}

		switch {
		case errors.Is(err, chat.ErrNothingToRetry), errors.Is(err, ai.ErrEmptyInput):
			fmt.Printf("  %v\n", err)
			continue
		case err != nil:
			return err
		}
		printMessage(reply)

		if ctx.Err() != nil {
			return nil
		}
	}
}

func printMessage(m models.ChatMessage) {
	prefix := "EnviroLink"
	if m.Sender == models.SenderUser {
		prefix = "You"
	}
	fmt.Printf("%s: %s\n", prefix, m.Text)
	if m.IsError {
		fmt.Println("  (type /retry to try again)")
	}
}
