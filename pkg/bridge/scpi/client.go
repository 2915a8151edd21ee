/*
 Licensed under the Apache License, Version 2.0 (the "License");
 you may not use this file except in compliance with the License.
 You may obtain a copy of the License at

     https://www.apache.org/licenses/LICENSE-2.0

 Unless required by applicable law or agreed to in writing, software
 distributed under the License is distributed on an "AS IS" BASIS,
 WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 See the License for the specific language governing permissions and
 limitations under the License.
*/

// Package scpi is the command channel client: one text line per command,
// one line of KEY=VALUE pairs per query response.
package scpi

import (
	"bufio"
	"context"
	"io"
	"net"
	"strings"
	"sync"
	"time"

	"jinr.ru/greenlab/go-pico/pkg/bridge"
	"jinr.ru/greenlab/go-pico/pkg/bridge/ifc"
	"jinr.ru/greenlab/go-pico/pkg/log"
)

type Client struct {
	mu      sync.Mutex
	conn    net.Conn
	reader  *bufio.Reader
	timeout time.Duration
	err     error
}

var _ ifc.CommandTransport = &Client{}

// Dial connects to the bridge command port
func Dial(ctx context.Context, addr string, timeout time.Duration) (*Client, error) {
	log.Debug("Connecting to bridge command channel: %s", addr)
	dialer := &net.Dialer{Timeout: timeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, bridge.ErrConnection{Op: "dial", Err: err}
	}
	return NewClient(conn, timeout), nil
}

// NewClient wraps an established connection. A zero timeout disables I/O deadlines.
func NewClient(conn net.Conn, timeout time.Duration) *Client {
	return &Client{
		conn:    conn,
		reader:  bufio.NewReader(conn),
		timeout: timeout,
	}
}

// fail records the first fatal error and drops the connection
func (c *Client) fail(op string, err error) error {
	if c.err == nil {
		log.Error("Bridge command channel failed during %s: %s", op, err)
		c.err = bridge.ErrConnection{Op: op, Err: err}
		c.conn.Close()
	}
	return c.err
}

func (c *Client) write(cmd string) error {
	if c.err != nil {
		return c.err
	}
	if c.timeout > 0 {
		c.conn.SetWriteDeadline(time.Now().Add(c.timeout))
	}
	log.Debug("Command: %s", cmd)
	if _, err := io.WriteString(c.conn, cmd+bridge.LineTerminator); err != nil {
		return c.fail("send", err)
	}
	return nil
}

// Send writes one command line and returns once it is handed to the socket
func (c *Client) Send(cmd string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.write(cmd)
}

// SendAndReceive writes a query and blocks until the response line is parsed
func (c *Client) SendAndReceive(query string) (bridge.KeyValueResponse, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.write(query); err != nil {
		return nil, err
	}
	if c.timeout > 0 {
		c.conn.SetReadDeadline(time.Now().Add(c.timeout))
	}
	line, err := c.reader.ReadString('\n')
	if err != nil {
		return nil, c.fail("receive", err)
	}
	log.Debug("Response: %s", strings.TrimSpace(line))
	return bridge.ParseKeyValue(line)
}

// Close ...
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return nil
	}
	c.err = bridge.ErrConnection{Op: "close", Err: net.ErrClosed}
	return c.conn.Close()
}
