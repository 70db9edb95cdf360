package cmd

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"restaurant_chat/src/message"
	"restaurant_chat/src/model"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/spf13/cobra"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Talk to a running server, in single message or REPL mode",
	RunE:  runChat,
}

var (
	messageFlag string
	serverFlag  string
)

func init() {
	chatCmd.Flags().StringVarP(&messageFlag, "message", "m", "", "Single message to send")
	chatCmd.Flags().StringVarP(&serverFlag, "server", "s", "http://localhost:3001", "Base URL of the chat API")
}

// ChatOptions holds injectable dependencies of the chat command
type ChatOptions struct {
	ServerURL string
	Message   string
	Client    *http.Client
	Stdin     io.Reader
	Stdout    io.Writer
	Stderr    io.Writer
}

func runChat(cmd *cobra.Command, args []string) error {
	return runChatWithOptions(cmd.Context(), ChatOptions{ServerURL: serverFlag, Message: messageFlag})
}

func runChatWithOptions(ctx context.Context, opts ChatOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if opts.Client == nil {
		opts.Client = http.DefaultClient
	}
	if opts.Stdin == nil {
		opts.Stdin = os.Stdin
	}
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}
	endpoint := strings.TrimRight(opts.ServerURL, "/") + "/api/chat"

	// Single message mode
	if opts.Message != "" {
		reply, err := sendChat(ctx, opts.Client, endpoint, []model.Message{model.UserMessage(opts.Message)})
		if err != nil {
			return err
		}
		renderBubbles(opts.Stdout, reply)
		return nil
	}

	// REPL mode keeps the whole exchange so the server sees one conversation
	fmt.Fprintln(opts.Stdout, "restaurant_chat (type 'exit' to quit)")
	var history []model.Message
	scanner := bufio.NewScanner(opts.Stdin)
	for {
		fmt.Fprint(opts.Stdout, "\n> ")
		if !scanner.Scan() {
			break
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		if input == "exit" || input == "quit" {
			break
		}

		history = append(history, model.UserMessage(input))
		reply, err := sendChat(ctx, opts.Client, endpoint, history)
		if err != nil {
			fmt.Fprintf(opts.Stderr, "Error: %v\n", err)
			history = history[:len(history)-1]
			continue
		}
		if reply != "" {
			history = append(history, model.AssistantMessage(reply))
		}
		renderBubbles(opts.Stdout, reply)
	}
	return nil
}

// sendChat posts messages and reads the streamed reply to the end
func sendChat(ctx context.Context, client *http.Client, endpoint string, messages []model.Message) (string, error) {
	body, err := sonic.Marshal(model.ChatRequest{Messages: messages})
	if err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var failure model.ErrorResponse
		if err := sonic.Unmarshal(raw, &failure); err == nil && failure.Error != "" {
			return "", fmt.Errorf("server error (%d): %s", resp.StatusCode, failure.Error)
		}
		return "", fmt.Errorf("server error: %s", resp.Status)
	}
	return string(raw), nil
}

// renderBubbles prints each logical part of a reply as its own block
func renderBubbles(w io.Writer, reply string) {
	for i, part := range message.Divide(reply) {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "💬 %s\n", strings.ReplaceAll(part, "\n", "\n   "))
	}
}
