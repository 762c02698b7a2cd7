package network

import (
	"io"
	"net"

	"github.com/dcz-bft/commitpool/logger"
)

// NetMessage pairs an outbound commit batch with the peers it should
// reach.
type NetMessage struct {
	Msg     *CommitMessages
	Address []string
}

// Sender fans a node's outbound commit batches out to one persistent TCP
// connection per peer, dialing lazily on the first send to a new
// address.
type Sender struct {
	msgCh chan *NetMessage
	conns map[string]chan<- *CommitMessages
	cc    *Codec
}

func NewSender(cc *Codec) *Sender {
	return &Sender{
		msgCh: make(chan *NetMessage, 1000),
		conns: make(map[string]chan<- *CommitMessages),
		cc:    cc,
	}
}

func (s *Sender) Run() {
	for msg := range s.msgCh {
		for _, addr := range msg.Address {
			conn, ok := s.conns[addr]
			if !ok {
				c, err := s.connect(addr)
				if err != nil {
					continue
				}
				s.conns[addr] = c
				conn = c
			}
			conn <- msg.Msg
		}
	}
}

func (s *Sender) Send(msg *NetMessage) {
	s.msgCh <- msg
}

func (s *Sender) SendChannel() chan<- *NetMessage {
	return s.msgCh
}

func (s *Sender) connect(addr string) (chan<- *CommitMessages, error) {
	msgCh := make(chan *CommitMessages, 1000)
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		logger.Warn.Printf("failed to connect to %s: %v\n", addr, err)
		return nil, err
	}
	logger.Info.Printf("outgoing connection established with %s\n", addr)
	go func() {
		cc := s.cc.Bind(conn)
		for msg := range msgCh {
			if err := cc.Write(msg); err != nil {
				logger.Warn.Printf("failed to send commit batch to %s: %v\n", addr, err)
			} else {
				logger.Debug.Printf("sent commit batch to %s\n", addr)
			}
		}
	}()
	return msgCh, nil
}

// Receiver accepts inbound gossip connections and decodes each one's
// stream of commit batches onto a single shared channel.
type Receiver struct {
	addr string
	msg  chan *CommitMessages
	cc   *Codec
}

func NewReceiver(addr string, cc *Codec) *Receiver {
	return &Receiver{
		addr: addr,
		msg:  make(chan *CommitMessages, 1000),
		cc:   cc,
	}
}

func (recv *Receiver) Run() {
	listen, err := net.Listen("tcp", recv.addr)
	if err != nil {
		logger.Error.Printf("failed to bind to tcp addr: %s\n", err)
		panic(err)
	}
	logger.Debug.Printf("listening on %s\n", recv.addr)

	for {
		conn, err := listen.Accept()
		if err != nil {
			logger.Warn.Printf("failed to accept: %v\n", err)
			continue
		}
		logger.Info.Printf("incoming connection established with %v\n", conn.RemoteAddr())
		go recv.serveConn(conn)
	}
}

func (recv *Receiver) serveConn(conn net.Conn) {
	cc := recv.cc.Bind(conn)
	for {
		msg, err := cc.Read()
		if err != nil {
			if err != io.EOF {
				logger.Warn.Printf("failed to receive: %v\n", err)
			}
			return
		}
		recv.msg <- msg
	}
}

func (recv *Receiver) Recv() *CommitMessages {
	return <-recv.msg
}

func (recv *Receiver) RecvChannel() <-chan *CommitMessages {
	return recv.msg
}
