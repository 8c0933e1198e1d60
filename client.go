package zkterm

import (
	"context"
	"sync"
	"time"
)

const DefaultTimezone = "Asia/Shanghai"

// ClientOption configures a Client at construction time, in the
// functional-options style used across this stack's device clients.
type ClientOption func(*Client)

// WithPort overrides the default terminal port (4370).
func WithPort(port int) ClientOption {
	return func(c *Client) { c.port = port }
}

// WithPassword sets the device communication password used during auth.
func WithPassword(password int) ClientOption {
	return func(c *Client) { c.password = password }
}

// WithTimeout overrides the default 60-second socket timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) { c.timeout = d }
}

// WithForceUDP skips the TCP connect attempt entirely.
func WithForceUDP(force bool) ClientOption {
	return func(c *Client) { c.forceUDP = force }
}

// WithTimezone sets the location used to render device timestamps.
func WithTimezone(tz string) ClientOption {
	return func(c *Client) { c.loc = loadLocation(tz) }
}

// WithVerbose raises the default logger to debug level.
func WithVerbose(v bool) ClientOption {
	return func(c *Client) { c.verbose = v }
}

// WithLogFile routes logging through a rotated file instead of stderr.
func WithLogFile(cfg LogFileConfig) ClientOption {
	return func(c *Client) { c.logFile = &cfg }
}

// WithLogger installs a caller-supplied logger, overriding the default.
func WithLogger(l Logger) ClientOption {
	return func(c *Client) { c.customLog = l }
}

// WithCharset enables transcoding of name/group fields from the given
// source charset (e.g. "GBK") into UTF-8.
func WithCharset(charset string) ClientOption {
	return func(c *Client) { c.charset = charset }
}

// Client is the package's public facade: a single mutex-guarded session
// against one terminal. It is not safe to share a session across concurrent
// callers beyond this facade's own serialization — the protocol itself does
// not support interleaved commands on one session.
type Client struct {
	mu sync.Mutex

	host     string
	port     int
	password int
	timeout  time.Duration
	forceUDP bool
	loc      *time.Location
	verbose  bool
	logFile  *LogFileConfig
	customLog Logger
	charset  string

	tr  *transport
	sess *session
	log  Logger

	dialFunc func(host string, port int, timeout time.Duration, forceUDP bool) (*transport, error)

	disabled       bool
	capturing      bool
	eventBuf       []byte
	eventQ         []*Attendance
	eventFrameSize int
	users          []User

	recordSizeUser int
}

// NewClient creates a terminal client for host. Nothing is dialed until
// Connect is called.
func NewClient(host string, opts ...ClientOption) *Client {
	c := &Client{
		host:     host,
		port:     4370,
		timeout:  60 * time.Second,
		loc:      loadLocation(DefaultTimezone),
		sess:     newSession(),
		dialFunc: dial,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.customLog != nil {
		c.log = c.customLog
	} else {
		c.log = newDefaultLogger(c.verbose, c.logFile)
	}
	return c
}

// IsConnected reports whether the transport is currently open.
func (c *Client) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tr != nil
}

// Connect opens the transport and performs the CMD_CONNECT / CMD_AUTH
// handshake described by the protocol design.
func (c *Client) Connect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.tr != nil {
		return newErr(KindUsage, "Connect", 0, ErrAlreadyConnected)
	}

	c.sess.reset()

	tr, err := c.dialFunc(c.host, c.port, c.timeout, c.forceUDP)
	if err != nil {
		return err
	}
	c.tr = tr

	res, err := c.command(ctx, CMD_CONNECT, nil, 8)
	if err != nil {
		c.tr.close()
		c.tr = nil
		return err
	}
	c.sess.sessionID = res.SessionID

	if res.Code == CMD_ACK_UNAUTH {
		key := makeCommKey(c.password, c.sess.sessionID, 50)
		authRes, err := c.command(ctx, CMD_AUTH, key, 8)
		if err != nil {
			c.tr.close()
			c.tr = nil
			return err
		}
		if !authRes.Status {
			c.tr.close()
			c.tr = nil
			return newErr(KindProtocol, "Connect", authRes.Code, ErrUnauthorized)
		}
	} else if res.Code != CMD_ACK_OK {
		c.tr.close()
		c.tr = nil
		return newErr(KindProtocol, "Connect", res.Code, nil)
	}

	c.log.Infof("connected, session_id=%d transport_tcp=%v", c.sess.sessionID, c.tr.isTCP)
	return nil
}

// Disconnect sends CMD_EXIT best-effort and closes the socket regardless.
func (c *Client) Disconnect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.tr == nil {
		return newErr(KindUsage, "Disconnect", 0, ErrNotConnected)
	}

	if _, err := c.command(ctx, CMD_EXIT, nil, 8); err != nil {
		c.log.Debugf("CMD_EXIT failed, closing anyway: %v", err)
	}

	err := c.tr.close()
	c.tr = nil
	return err
}
