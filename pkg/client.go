package bridge

import (
	"context"
	"fmt"

	"github.com/go-zeromq/zmq4"
)

// Client is the request side of the bridge protocol. Calls are strictly
// sequential: one request must be answered before the next is sent.
type Client struct {
	socket zmq4.Socket
}

// Dial connects a request socket to a running bridge.
func Dial(endpoint string) (*Client, error) {
	socket := zmq4.NewReq(context.Background())
	if err := socket.Dial(endpoint); err != nil {
		return nil, fmt.Errorf("error connecting to %s: %w", endpoint, err)
	}
	return &Client{socket: socket}, nil
}

// Simulate sends one event's photon batch and blocks until the reply
// arrives. A server-side failure is returned as ErrRemote.
func (c *Client) Simulate(event *Event) (*AggregatedHits, error) {
	request, err := EncodeRequest(event)
	if err != nil {
		return nil, err
	}
	if err := c.socket.Send(zmq4.NewMsg(request)); err != nil {
		return nil, fmt.Errorf("error sending request: %w", err)
	}
	msg, err := c.socket.Recv()
	if err != nil {
		return nil, fmt.Errorf("error receiving reply: %w", err)
	}
	return DecodeReply(msg.Bytes())
}

func (c *Client) Close() error {
	return c.socket.Close()
}
