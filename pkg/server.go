package bridge

import (
	"context"
	"encoding/binary"
	"fmt"
	"net"

	"github.com/go-zeromq/zmq4"
)

// Server owns the reply socket and serves simulation requests one at a time:
// receive, process, reply, receive again. The strict request/reply discipline
// mirrors the simulation context behind it, which holds exclusive GPU
// resources and cannot serve two requests at once.
type Server struct {
	Engine   Engine
	Archive  *Writer
	Channels *ChannelMap

	socket zmq4.Socket
}

func NewServer(engine Engine) *Server {
	return &Server{
		Engine: engine,
		socket: zmq4.NewRep(context.Background()),
	}
}

// Listen binds the reply socket to the given endpoint (e.g. "tcp://*:5556").
func (s *Server) Listen(endpoint string) error {
	if err := s.socket.Listen(endpoint); err != nil {
		return fmt.Errorf("error binding to %s: %w", endpoint, err)
	}
	if configuration.Verbosity > 0 {
		message := fmt.Sprintf("Listening on %s", endpoint)
		logger.Info(message, "server")
	}
	return nil
}

// Addr returns the bound socket address. Useful with "tcp://127.0.0.1:0".
func (s *Server) Addr() net.Addr {
	return s.socket.Addr()
}

// Serve blocks on the socket and pairs each inbound request with exactly one
// outbound reply. It returns when the socket is closed or fails.
func (s *Server) Serve() error {
	for {
		msg, err := s.socket.Recv()
		if err != nil {
			return fmt.Errorf("error receiving request: %w", err)
		}
		reply := s.HandleRequest(msg.Bytes())
		if err := s.socket.Send(zmq4.NewMsg(reply)); err != nil {
			return fmt.Errorf("error sending reply: %w", err)
		}
	}
}

// Close releases the socket. The simulation engine and the archive have
// their own lifetimes and are closed by their owner.
func (s *Server) Close() error {
	return s.socket.Close()
}

// HandleRequest runs one full decode, simulate, aggregate, encode cycle.
// Any failure produces the error reply frame instead of a crash: a bad
// request from one caller must not take down the long-lived simulation
// context serving the rest.
func (s *Server) HandleRequest(data []byte) []byte {
	reply, err := s.processRequest(data)
	if err != nil {
		logger.Error(err.Error())
		return EncodeErrorReply(requestEventID(data))
	}
	return reply
}

func (s *Server) processRequest(data []byte) (reply []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("recovered from panic on event %d: %v", requestEventID(data), r)
		}
	}()

	event, err := DecodeRequest(data)
	if err != nil {
		return nil, err
	}
	if configuration.Verbosity > 0 {
		message := fmt.Sprintf("Processing event %d with %d photons",
			event.EventID, event.Photons.NumPhotons())
		logger.Info(message, "server")
	}

	if err := SimulateEvent(s.Engine, event); err != nil {
		return nil, err
	}

	hits, err := AggregateHits(event.EventID, event.Hits)
	if err != nil {
		return nil, err
	}
	if s.Channels != nil {
		s.checkChannels(hits)
	}
	if s.Archive != nil {
		s.Archive.WriteEvent(hits)
	}
	return EncodeReply(hits)
}

// checkChannels flags hits on channel ids missing from the loaded detector
// description. They are still returned; the mismatch is a data-quality
// signal, not a request failure.
func (s *Server) checkChannels(hits *AggregatedHits) {
	for _, channel := range hits.ChannelIDs {
		if !s.Channels.Has(channel) {
			message := fmt.Sprintf("event %d hit unknown channel %d", hits.EventID, channel)
			logger.Error(message)
		}
	}
}

func requestEventID(data []byte) uint32 {
	if len(data) >= headerSize {
		return binary.LittleEndian.Uint32(data[4:8])
	}
	return 0
}
