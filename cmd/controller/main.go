package main

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"

	"rovernet/command"
	"rovernet/journal"
	"rovernet/protocol"
)

var (
	flagURL     string
	flagAddress string
	flagJSON    bool
)

// controller 命令行：以指挥方地址接入，发送命令并打印状态消息
func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "controller",
		Short:         "Send commands to rovernet agents and watch status replies",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&flagURL, "url", "ws://localhost:8080/ws", "rovernet websocket endpoint")
	rootCmd.PersistentFlags().StringVar(&flagAddress, "address", "controller@local", "commanding address to register as")
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "print raw status envelopes")

	rootCmd.AddCommand(sendCmd())
	rootCmd.AddCommand(listenCmd())
	rootCmd.AddCommand(journalCmd())
	return rootCmd
}

func sendCmd() *cobra.Command {
	var (
		to      string
		name    string
		args    []string
		wait    int
		timeout time.Duration
	)
	cmd := &cobra.Command{
		Use:   "send",
		Short: "Send one command to a named agent",
		Example: `  controller send --to rover1 --command move-to-target --arg 1,0,2 --wait 1
  controller send --to rover1 --command move_agent --arg 1 --arg 0 --arg 2`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ws, err := dial()
			if err != nil {
				return err
			}
			defer ws.Close()

			env := protocol.NewCommand(to, command.Message{CommandName: name, Data: args})
			b, err := json.Marshal(env)
			if err != nil {
				return err
			}
			if err := ws.WriteMessage(websocket.TextMessage, b); err != nil {
				return fmt.Errorf("send: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "sent %s to %s (id %s)\n", name, to, env.ID)
			if wait <= 0 {
				return nil
			}
			return printStatuses(cmd, ws, wait, timeout)
		},
	}
	cmd.Flags().StringVar(&to, "to", "", "target agent name")
	cmd.Flags().StringVar(&name, "command", "", "command name, e.g. move-to-target")
	cmd.Flags().StringArrayVar(&args, "arg", nil, "command argument token (repeatable)")
	cmd.Flags().IntVar(&wait, "wait", 0, "number of status messages to wait for")
	cmd.Flags().DurationVar(&timeout, "timeout", 30*time.Second, "how long to wait for status messages")
	_ = cmd.MarkFlagRequired("to")
	_ = cmd.MarkFlagRequired("command")
	return cmd
}

func listenCmd() *cobra.Command {
	var timeout time.Duration
	cmd := &cobra.Command{
		Use:   "listen",
		Short: "Print status messages addressed to this controller",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ws, err := dial()
			if err != nil {
				return err
			}
			defer ws.Close()
			return printStatuses(cmd, ws, 0, timeout)
		},
	}
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "stop after this long (0 = forever)")
	return cmd
}

// journalCmd 打印服务端写出的 zstd JSONL 日志（已关闭的小时文件）
func journalCmd() *cobra.Command {
	var kind string
	cmd := &cobra.Command{
		Use:   "journal FILE...",
		Short: "Print traffic journal files written by the server",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, files []string) error {
			out := cmd.OutOrStdout()
			for _, path := range files {
				entries, err := journal.ReadFile(path)
				if err != nil {
					return fmt.Errorf("read %s: %w", path, err)
				}
				for _, e := range entries {
					if kind != "" && e.Kind != kind {
						continue
					}
					if flagJSON {
						b, _ := json.Marshal(e)
						fmt.Fprintln(out, string(b))
						continue
					}
					switch {
					case e.Kind == journal.KindCommand && e.Command != nil:
						fmt.Fprintf(out, "%s command %s -> %s %s %q [%s]\n",
							e.Time.Format(time.RFC3339), e.From, e.To, e.Command.CommandName, e.Command.Data, e.Outcome)
					default:
						fmt.Fprintf(out, "%s %s %s -> %s: %s\n", e.Time.Format(time.RFC3339), e.Kind, e.From, e.To, e.Body)
					}
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&kind, "kind", "", "only print entries of this kind (command or status)")
	return cmd
}

func dial() (*websocket.Conn, error) {
	u, err := url.Parse(flagURL)
	if err != nil {
		return nil, fmt.Errorf("parse url: %w", err)
	}
	q := u.Query()
	q.Set("address", flagAddress)
	u.RawQuery = q.Encode()
	ws, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", u, err)
	}
	return ws, nil
}

// printStatuses 打印状态消息；limit 为 0 表示不限条数，timeout 为 0 表示不限时
func printStatuses(cmd *cobra.Command, ws *websocket.Conn, limit int, timeout time.Duration) error {
	if timeout > 0 {
		_ = ws.SetReadDeadline(time.Now().Add(timeout))
	}
	out := cmd.OutOrStdout()
	for n := 0; limit == 0 || n < limit; {
		_, payload, err := ws.ReadMessage()
		if err != nil {
			return fmt.Errorf("read: %w", err)
		}
		env, err := protocol.DecodeStatus(payload)
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "skip: %v\n", err)
			continue
		}
		n++
		if flagJSON {
			fmt.Fprintln(out, string(payload))
			continue
		}
		fmt.Fprintf(out, "%s -> %s: %s\n", env.From, env.To, env.Body)
	}
	return nil
}
