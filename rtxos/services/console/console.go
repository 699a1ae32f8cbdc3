// Package console is the display process: every message it receives is
// printed and its block returned to the pool.
package console

import (
	"fmt"
	"io"

	"rtx/hal"
	"rtx/rtxos/kernel"
	"rtx/rtxos/proto"
)

type Service struct {
	w   io.Writer
	log hal.Logger

	// commands maps registered %<c> command identifiers to their owner.
	commands map[byte]kernel.PID
}

func New(w io.Writer, log hal.Logger) *Service {
	return &Service{w: w, log: log, commands: make(map[byte]kernel.PID)}
}

// Run is the process entry point. It never returns.
func (s *Service) Run(ctx *kernel.Context) {
	for {
		m, sender := ctx.Receive()
		s.handle(ctx.Bytes(m), sender)
		if err := ctx.ReleaseMemoryBlock(m); err != nil {
			s.logf("console: release from pid %d: %v", sender, err)
		}
	}
}

func (s *Service) handle(b []byte, sender kernel.PID) {
	typ, text, ok := proto.Decode(b)
	if !ok {
		s.logf("console: short message from pid %d", sender)
		return
	}

	switch typ {
	case proto.TypeDefault:
		if s.w == nil || len(text) == 0 {
			return
		}
		if _, err := s.w.Write(text); err != nil {
			s.logf("console: write: %v", err)
		}
	case proto.TypeKCDReg:
		id, ok := proto.DecodeRegistration(text)
		if !ok {
			s.logf("console: bad registration %q from pid %d", text, sender)
			return
		}
		s.commands[id] = sender
		s.logf("console: %%%c registered by pid %d", id, sender)
	default:
		s.logf("console: dropped %s message from pid %d", typ, sender)
	}
}

// Owner returns the process that registered command %<id>.
func (s *Service) Owner(id byte) (kernel.PID, bool) {
	pid, ok := s.commands[id]
	return pid, ok
}

func (s *Service) logf(format string, args ...any) {
	if s.log == nil {
		return
	}
	s.log.WriteLineString(fmt.Sprintf(format, args...))
}
