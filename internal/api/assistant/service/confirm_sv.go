package assistantService

import (
	"sync"
	"time"

	"StockVoice/internal/api/assistant"
	"StockVoice/internal/entity"
	"StockVoice/pkg/metrics"
)

type proposalState int

const (
	proposalProposed proposalState = iota
	proposalConfirmed
	proposalRejected
	proposalExpired
)

type pendingProposal struct {
	cmd   entity.ParsedCommand
	state proposalState
	timer *time.Timer
}

// confirmationGate holds at most one proposed command per session and
// accepts exactly one terminal transition for it. A command that receives no
// decision within the wait window expires; late decisions fail with
// ErrStaleConfirmation.
type confirmationGate struct {
	mu       sync.Mutex
	window   time.Duration
	pending  *pendingProposal
	onExpire func(cmd entity.ParsedCommand)
}

func newConfirmationGate(window time.Duration, onExpire func(entity.ParsedCommand)) *confirmationGate {
	return &confirmationGate{
		window:   window,
		onExpire: onExpire,
	}
}

// Propose installs a new pending command. A still-proposed predecessor is
// expired first: the newer utterance reflects the user's current intent.
func (g *confirmationGate) Propose(cmd entity.ParsedCommand) {
	g.mu.Lock()

	var superseded *entity.ParsedCommand
	if g.pending != nil && g.pending.state == proposalProposed {
		g.pending.timer.Stop()
		g.pending.state = proposalExpired
		old := g.pending.cmd
		superseded = &old
	}

	p := &pendingProposal{cmd: cmd, state: proposalProposed}
	p.timer = time.AfterFunc(g.window, func() { g.expire(cmd.ID) })
	g.pending = p
	g.mu.Unlock()

	if superseded != nil {
		metrics.ProposalsExpiredTotal.Inc()
		if g.onExpire != nil {
			g.onExpire(*superseded)
		}
	}
}

// Resolve applies the confirm or reject decision correlated to commandID and
// returns the command for dispatch on confirm.
func (g *confirmationGate) Resolve(commandID string, confirmed bool) (entity.ParsedCommand, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.pending == nil || g.pending.cmd.ID != commandID || g.pending.state != proposalProposed {
		return entity.ParsedCommand{}, assistant.ErrStaleConfirmation
	}

	g.pending.timer.Stop()
	if confirmed {
		g.pending.state = proposalConfirmed
	} else {
		g.pending.state = proposalRejected
	}
	return g.pending.cmd, nil
}

// Discard drops any pending command without notification, for teardown.
func (g *confirmationGate) Discard() {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.pending != nil && g.pending.state == proposalProposed {
		g.pending.timer.Stop()
		g.pending.state = proposalExpired
	}
	g.pending = nil
}

func (g *confirmationGate) expire(commandID string) {
	g.mu.Lock()
	if g.pending == nil || g.pending.cmd.ID != commandID || g.pending.state != proposalProposed {
		g.mu.Unlock()
		return
	}
	g.pending.state = proposalExpired
	cmd := g.pending.cmd
	g.mu.Unlock()

	metrics.ProposalsExpiredTotal.Inc()
	if g.onExpire != nil {
		g.onExpire(cmd)
	}
}
