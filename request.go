package zkterm

import (
	"context"
)

// command serializes one command through the transport and classifies the
// reply. It is the single choke point every higher-level operation funnels
// through, mirroring the teacher's own sendCommand.
//
// The caller must hold c.mu.
func (c *Client) command(ctx context.Context, cmd int, payload []byte, recvSize int) (*Response, error) {
	if c.tr == nil {
		return nil, newErr(KindUsage, "command", 0, ErrNotConnected)
	}

	replyID := c.sess.nextReplyID()
	frame, err := buildFrame(cmd, c.sess.sessionID, replyID, payload)
	if err != nil {
		return nil, newErr(KindFraming, "command", 0, err)
	}

	c.sess.lastCMD = cmd
	c.log.Debugf("send cmd=%d session=%d reply=%d payload=%s", cmd, c.sess.sessionID, replyID, hexDump("", payload))

	if err := c.tr.send(frame); err != nil {
		return nil, err
	}

	if recvSize <= 0 {
		recvSize = 1032
	}
	raw, tcpLength, err := c.tr.recv(recvSize + 8)
	if err != nil {
		return nil, err
	}

	hdr, err := parseFrameHeader(raw)
	if err != nil {
		return nil, err
	}
	body := raw[8:]

	c.sess.replyID = hdr.ReplyID
	c.sess.lastCode = hdr.Code
	c.sess.lastData = body

	c.log.Debugf("recv code=%d session=%d reply=%d len=%d", hdr.Code, hdr.SessionID, hdr.ReplyID, len(body))

	switch hdr.Code {
	case CMD_ACK_OK, CMD_ACK_DATA, CMD_PREPARE_DATA, CMD_DATA, 2007:
		return &Response{Status: true, Code: hdr.Code, TCPLength: tcpLength, SessionID: hdr.SessionID, ReplyID: hdr.ReplyID, Data: body}, nil
	default:
		return &Response{Status: false, Code: hdr.Code, TCPLength: tcpLength, SessionID: hdr.SessionID, ReplyID: hdr.ReplyID, Data: body}, nil
	}
}

// requireOK runs command and turns a non-success reply into a protocol
// error, for the many operations that only care about pass/fail.
func (c *Client) requireOK(ctx context.Context, op string, cmd int, payload []byte) (*Response, error) {
	res, err := c.command(ctx, cmd, payload, 8)
	if err != nil {
		return nil, err
	}
	if !res.Status {
		return res, newErr(KindProtocol, op, res.Code, nil)
	}
	return res, nil
}
