package server

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/cubbit/blockfs/internal/logger"
	"github.com/cubbit/blockfs/internal/ratelimiter"
)

// conn handles one client connection: read a command line, run it against
// the shared manager, write the response line.
type conn struct {
	server  *Server
	conn    net.Conn
	id      string
	limiter *ratelimiter.RateLimiter
}

func (s *Server) newConn(tcpConn net.Conn) *conn {
	return &conn{
		server:  s,
		conn:    tcpConn,
		id:      uuid.NewString(),
		limiter: ratelimiter.New(s.cfg.RateLimit, s.cfg.RateBurst),
	}
}

func (c *conn) serve(ctx context.Context) {
	defer c.conn.Close()
	logger.Debug("[%s] new connection from %s", c.id, c.conn.RemoteAddr())

	scanner := bufio.NewScanner(c.conn)
	writer := bufio.NewWriter(c.conn)

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if timeout := c.server.cfg.IdleTimeout; timeout > 0 {
			c.conn.SetReadDeadline(time.Now().Add(timeout))
		}

		if !scanner.Scan() {
			if err := scanner.Err(); err != nil && ctx.Err() == nil {
				logger.Debug("[%s] read error: %v", c.id, err)
			}
			return
		}

		// Over-budget clients are throttled here, not rejected; the wire
		// protocol has no response for "slow down".
		if err := c.limiter.Wait(ctx); err != nil {
			return
		}

		response, quit := c.dispatch(scanner.Text())

		writer.WriteString(response)
		writer.WriteByte('\n')
		if err := writer.Flush(); err != nil {
			logger.Debug("[%s] write error: %v", c.id, err)
			return
		}

		if quit {
			logger.Debug("[%s] client disconnected", c.id)
			return
		}
	}
}

// dispatch parses one command line and returns the response plus whether
// the connection should close.
//
// The grammar is space-separated tokens: the first is the command, the
// second (when required) the file name, and for WRITE everything after
// the second space is the raw payload. Payloads may contain spaces;
// payloads containing newlines are not representable in this protocol.
func (c *conn) dispatch(line string) (response string, quit bool) {
	parts := strings.SplitN(line, " ", 3)
	command := strings.ToUpper(parts[0])

	switch command {
	case "CREATE":
		name, ok := fileNameArg(parts)
		if !ok {
			return "ERROR: Missing file name.", false
		}
		if err := c.server.manager.Create(name); err != nil {
			return "ERROR: " + err.Error(), false
		}
		return fmt.Sprintf("SUCCESS: File '%s' created.", name), false

	case "READ":
		name, ok := fileNameArg(parts)
		if !ok {
			return "ERROR: Missing file name.", false
		}
		data, err := c.server.manager.Read(name)
		if err != nil {
			return "ERROR: " + err.Error(), false
		}
		return "CONTENTS: " + string(data), false

	case "WRITE":
		name, ok := fileNameArg(parts)
		if !ok {
			return "ERROR: Missing file name.", false
		}
		var payload string
		if len(parts) == 3 {
			payload = parts[2]
		}
		if err := c.server.manager.Write(name, []byte(payload)); err != nil {
			return "ERROR: " + err.Error(), false
		}
		return fmt.Sprintf("SUCCESS: File '%s' written.", name), false

	case "DELETE":
		name, ok := fileNameArg(parts)
		if !ok {
			return "ERROR: Missing file name.", false
		}
		if err := c.server.manager.Delete(name); err != nil {
			return "ERROR: " + err.Error(), false
		}
		return fmt.Sprintf("SUCCESS: File '%s' deleted.", name), false

	case "LIST":
		names := c.server.manager.List()
		return fmt.Sprintf("SUCCESS: List of Files: [%s]", strings.Join(names, ", ")), false

	case "QUIT":
		return "SUCCESS: Disconnecting.", true

	default:
		return "ERROR: Unknown command.", false
	}
}

func fileNameArg(parts []string) (string, bool) {
	if len(parts) < 2 || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}
