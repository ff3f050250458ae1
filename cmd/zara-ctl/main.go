package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	cli "github.com/spf13/pflag"

	"zara/internal/ipc"
)

func main() {
	socket := cli.StringP("socket", "s", envOr("ZARA_SOCKET", ipc.DefaultSocketPath), "Control socket path")
	timeout := cli.DurationP("timeout", "t", 2*time.Minute, "How long to wait for the reply")
	cli.Usage = func() {
		fmt.Fprintln(os.Stderr, "usage: zara-ctl [flags] [trigger | say <text> | ping | quit]")
		cli.PrintDefaults()
	}
	cli.Parse()

	msg := ipc.ControlMessage{Cmd: ipc.CmdTrigger}
	if args := cli.Args(); len(args) > 0 {
		msg.Cmd = args[0]
		msg.Text = strings.Join(args[1:], " ")
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	resp, err := ipc.Send(ctx, *socket, msg)
	if err != nil {
		fmt.Fprintln(os.Stderr, "zara-daemon not running:", err)
		os.Exit(1)
	}
	if resp.Error != "" {
		fmt.Fprintln(os.Stderr, "error:", resp.Error)
		os.Exit(1)
	}
	if resp.Text != "" {
		fmt.Println(resp.Text)
	}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
