package core

import (
	"time"

	"go.uber.org/zap"
)

// EngineContext is the fixed per-run input to the decision engine. It is
// constructed once by the orchestration pass and never mutated afterwards.
type EngineContext struct {
	WhitelistedEmails  map[string]struct{}
	WhitelistedDomains map[string]struct{}
	BlacklistedEmails  map[string]struct{}
	JunkHistoryEmails  map[string]struct{}
	SenderMap          *FolderMap
	ListDomainMap      *FolderMap
	ListFolder         string
	QuarantineFolder   string
	Policy             RetentionPolicy
	HoldDays           int
	Unjunking          bool
	// Now supplies the clock so that hold-window decisions are
	// reproducible in tests.
	Now func() time.Time
}

// Engine is the per-message classification state machine.
type Engine struct {
	ctx    *EngineContext
	logger *zap.Logger
}

// NewEngine creates an Engine over a fixed per-run context.
func NewEngine(ctx *EngineContext, logger *zap.Logger) *Engine {
	if ctx.Now == nil {
		ctx.Now = time.Now
	}
	return &Engine{ctx: ctx, logger: logger}
}

// DecideForNewMessage classifies a message newly arrived in the inbox.
// The first matching rule wins.
func (e *Engine) DecideForNewMessage(m Message) Decision {
	if !e.ctx.Unjunking {
		if e.isBlacklisted(m) {
			e.logger.Debug("sender blacklisted", zap.String("from", m.FromAddress))
			return Decision{Action: ActionJunk}
		}
		if e.isWhitelisted(m) {
			return Decision{Action: ActionKeep}
		}
	}
	if e.held(m) {
		e.logger.Debug("message held", zap.String("from", m.FromAddress))
		return Decision{Action: ActionKeep}
	}
	if folder, ok := e.validListMail(m); ok {
		return Decision{Action: ActionMove, Folder: folder}
	}
	return Decision{Action: ActionJunk}
}

// DecideForFiling classifies an already-accepted message for bulk
// re-filing. Only the mapping tables are consulted: no policy, signature
// validation or blacklist checks apply in this mode.
func (e *Engine) DecideForFiling(m Message) Decision {
	if folder, ok := e.resolve(m); ok {
		return Decision{Action: ActionMove, Folder: folder}
	}
	return Decision{Action: ActionKeep}
}

// isBlacklisted checks the explicit blacklist, then prior junk-folder
// history for senders that are not otherwise whitelisted.
func (e *Engine) isBlacklisted(m Message) bool {
	if _, ok := e.ctx.BlacklistedEmails[m.FromAddress]; ok {
		return true
	}
	if _, ok := e.ctx.JunkHistoryEmails[m.FromAddress]; ok {
		return !e.isWhitelisted(m)
	}
	return false
}

func (e *Engine) isWhitelisted(m Message) bool {
	if _, ok := e.ctx.WhitelistedEmails[m.FromAddress]; ok {
		return true
	}
	_, ok := e.ctx.WhitelistedDomains[m.FromDomain]
	return ok
}

// held implements the hold policy: an unmapped sender with passing
// signature validation is kept while its message date is inside the hold
// window. A resolvable destination always files normally instead, and a
// message without a parseable date is never held.
func (e *Engine) held(m Message) bool {
	if e.ctx.Policy != PolicyHold {
		return false
	}
	if _, ok := e.resolve(m); ok {
		return false
	}
	if m.Spoofed || !m.DKIMPassed() {
		return false
	}
	if m.Date.IsZero() {
		return false
	}
	window := time.Duration(e.ctx.HoldDays) * 24 * time.Hour
	age := e.ctx.Now().Sub(m.Date)
	return age >= 0 && age <= window
}

// validListMail decides whether the message is list mail and where it
// belongs. A mapped sender files to its mapped folder regardless of
// policy; unmapped senders go through the retention sub-machine. A
// spoofing indicator disqualifies the message under every policy.
func (e *Engine) validListMail(m Message) (string, bool) {
	if m.Spoofed {
		return "", false
	}
	if folder, ok := e.resolve(m); ok {
		return folder, true
	}
	switch e.ctx.Policy {
	case PolicySpammy:
		if m.DKIMPassed() {
			return e.ctx.ListFolder, true
		}
	case PolicyQuarantine:
		if m.DKIMPassed() {
			return e.ctx.QuarantineFolder, true
		}
	case PolicyHold, PolicyParanoid:
		// hold only delays junking and never auto-files; paranoid
		// requires a mapping, which was already ruled out above.
	}
	return "", false
}

// resolve finds the destination folder for a message: sender map first,
// then an exact list-domain match, then a single-wildcard-label match.
func (e *Engine) resolve(m Message) (string, bool) {
	if folder, ok := e.ctx.SenderMap.Get(m.FromAddress); ok {
		return folder, true
	}
	if folder, ok := e.ctx.ListDomainMap.Get(m.FromDomain); ok {
		return folder, true
	}
	return e.ctx.ListDomainMap.MatchWildcard(m.FromDomain)
}
