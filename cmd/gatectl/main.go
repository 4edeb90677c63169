// Program gatectl is a thin interactive client for the gateway's command
// channel: connect, send one framed ASCII command, print the framed
// response, repeat.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"golang.org/x/term"

	"sentrygate/cmdframe"
)

// requestTimeout bounds how long a single command waits for a framed
// response before the client gives up on it.
const requestTimeout = 5 * time.Second

type client struct {
	conn   net.Conn
	framer *cmdframe.Framer
}

func connect(addr string) (*client, error) {
	conn, err := net.DialTimeout("tcp", addr, requestTimeout)
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", addr, err)
	}
	return &client{conn: conn, framer: cmdframe.New()}, nil
}

func (c *client) sendCommand(cmd string) (string, error) {
	if _, err := c.conn.Write(cmdframe.Encode([]byte(cmd))); err != nil {
		return "", fmt.Errorf("send: %w", err)
	}

	deadline := time.Now().Add(requestTimeout)
	buf := make([]byte, 4096)
	for !c.framer.HasFrame() {
		if err := c.conn.SetReadDeadline(deadline); err != nil {
			return "", fmt.Errorf("set deadline: %w", err)
		}
		n, err := c.conn.Read(buf)
		if err != nil {
			return "", fmt.Errorf("recv: %w", err)
		}
		c.framer.Feed(buf[:n])
	}
	return string(c.framer.PopFrame()), nil
}

func (c *client) close() {
	c.conn.Close()
}

func main() {
	host := flag.String("host", "127.0.0.1", "gateway command channel host")
	port := flag.Int("port", 9701, "gateway command channel port")
	once := flag.String("cmd", "", "send a single command and exit, instead of starting a REPL")
	flag.Parse()

	addr := fmt.Sprintf("%s:%d", *host, *port)
	c, err := connect(addr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "gatectl: %v\n", err)
		os.Exit(1)
	}
	defer c.close()

	if *once != "" {
		resp, err := c.sendCommand(*once)
		if err != nil {
			fmt.Fprintf(os.Stderr, "gatectl: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(resp)
		return
	}

	interactive := term.IsTerminal(int(os.Stdin.Fd()))
	if interactive {
		fmt.Printf("connected to %s\n", addr)
		fmt.Println("enter commands (Ctrl+C to quit)")
	}

	scanner := bufio.NewScanner(os.Stdin)
	for {
		if interactive {
			fmt.Print("> ")
		}
		if !scanner.Scan() {
			break
		}
		cmd := strings.TrimSpace(scanner.Text())
		if cmd == "" {
			continue
		}

		start := time.Now()
		resp, err := c.sendCommand(cmd)
		if err != nil {
			fmt.Fprintf(os.Stderr, "gatectl: %v\n", err)
			continue
		}
		fmt.Println(resp)
		if interactive {
			fmt.Printf("(%s)\n", humanize.Time(start))
		}
	}

	if err := scanner.Err(); err != nil {
		fmt.Fprintf(os.Stderr, "gatectl: input error: %v\n", err)
	}
}
