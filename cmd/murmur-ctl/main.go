package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	cli "github.com/spf13/pflag"

	"murmur/internal/ipc"
)

func main() {
	socket := cli.StringP("socket", "s", ipc.SocketPath, "Daemon control socket")
	user := cli.StringP("user", "u", "", "User id (daemon default when empty)")
	drop := cli.BoolP("clear", "c", false, "Drop the pending action")
	timeout := cli.DurationP("timeout", "t", 90*time.Second, "How long to wait for the reply")
	cli.Parse()

	msg := ipc.ControlMessage{Cmd: ipc.CmdTrigger, User: *user, ID: uuid.NewString()}
	switch {
	case *drop:
		msg.Cmd = ipc.CmdClear
	case cli.NArg() > 0:
		msg.Cmd = ipc.CmdSay
		msg.Text = strings.Join(cli.Args(), " ")
	}

	reply, err := ipc.SendCommand(*socket, msg, *timeout)
	if err != nil {
		fmt.Fprintln(os.Stderr, "murmur daemon:", err)
		os.Exit(1)
	}
	fmt.Println(reply.Text)
}
