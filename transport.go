package zkterm

import (
	"fmt"
	"net"
	"time"
)

// transport owns the raw socket to the terminal and knows whether it is
// carrying the TCP envelope or bare UDP datagrams.
type transport struct {
	conn    net.Conn
	isTCP   bool
	timeout time.Duration
}

// dial opens a transport to address:port. It tries TCP first and falls back
// to UDP on any connect failure, unless forceUDP skips the TCP attempt
// entirely.
func dial(address string, port int, timeout time.Duration, forceUDP bool) (*transport, error) {
	target := fmt.Sprintf("%s:%d", address, port)

	if !forceUDP {
		conn, err := net.DialTimeout("tcp", target, timeout)
		if err == nil {
			if tc, ok := conn.(*net.TCPConn); ok {
				_ = tc.SetKeepAlive(true)
				_ = tc.SetKeepAlivePeriod(6 * time.Second)
			}
			return &transport{conn: conn, isTCP: true, timeout: timeout}, nil
		}
	}

	conn, err := net.DialTimeout("udp", target, timeout)
	if err != nil {
		return nil, newErr(KindTransport, "dial", 0, err)
	}
	return &transport{conn: conn, isTCP: false, timeout: timeout}, nil
}

func (t *transport) close() error {
	if t.conn == nil {
		return nil
	}
	err := t.conn.Close()
	t.conn = nil
	return err
}

// send writes one command frame, prepending the TCP envelope when this
// transport is a stream socket.
func (t *transport) send(frame []byte) error {
	out := frame
	if t.isTCP {
		out = buildTCPEnvelope(frame)
	}
	if err := t.conn.SetWriteDeadline(time.Now().Add(t.timeout)); err != nil {
		return newErr(KindTransport, "send", 0, err)
	}
	n, err := t.conn.Write(out)
	if err != nil {
		return newErr(KindTransport, "send", 0, err)
	}
	if n == 0 {
		return newErr(KindTransport, "send", 0, fmt.Errorf("wrote zero bytes"))
	}
	return nil
}

// recv reads one reply. On TCP the envelope is stripped before returning;
// the declared length is returned alongside so callers can detect
// truncation.
func (t *transport) recv(maxSize int) (data []byte, tcpLength int, err error) {
	if err := t.conn.SetReadDeadline(time.Now().Add(t.timeout)); err != nil {
		return nil, 0, newErr(KindTransport, "recv", 0, err)
	}

	buf := make([]byte, maxSize)
	n, err := t.conn.Read(buf)
	if err != nil {
		return nil, 0, newErr(KindTransport, "recv", 0, err)
	}
	buf = buf[:n]

	if t.isTCP {
		tcpLength = testTCPTop(buf)
		if len(buf) < 8 {
			return nil, 0, newErr(KindFraming, "recv", 0, errShortFrame)
		}
		return buf[8:], tcpLength, nil
	}
	return buf, 0, nil
}

// recvMore reads an additional chunk without a fresh read deadline reset
// beyond the original, used while reassembling a straddled TCP chunk.
func (t *transport) recvMore(n int) ([]byte, error) {
	buf := make([]byte, n)
	read := 0
	for read < n {
		k, err := t.conn.Read(buf[read:])
		if err != nil {
			return nil, newErr(KindTransport, "recvMore", 0, err)
		}
		if k == 0 {
			break
		}
		read += k
	}
	return buf[:read], nil
}

func (t *transport) setNonBlockingPoll() error {
	return t.conn.SetReadDeadline(time.Now().Add(50 * time.Millisecond))
}

func (t *transport) setBlocking() error {
	return t.conn.SetReadDeadline(time.Now().Add(t.timeout))
}

func isTimeout(err error) bool {
	ne, ok := err.(net.Error)
	return ok && ne.Timeout()
}
