// Package runner executes decisions against the mailbox: copy to the
// target folder, flag the source copy for deletion, and remember which
// folders changed so their cache fingerprints can be refreshed.
package runner

import (
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/mikey/mailsort/internal/core"
)

// Runner applies Decisions one at a time. In pretend mode it logs the
// intended action without mutating the mailbox, but still reports the
// target folder as changed for reporting purposes.
type Runner struct {
	mailbox    core.Mailbox
	logger     *zap.Logger
	junkFolder string
	pretend    bool

	changed map[string]struct{}
	created map[string]struct{}
}

// New creates a Runner. Junk decisions carry no folder of their own and
// land in junkFolder.
func New(mailbox core.Mailbox, logger *zap.Logger, junkFolder string, pretend bool) *Runner {
	return &Runner{
		mailbox:    mailbox,
		logger:     logger,
		junkFolder: junkFolder,
		pretend:    pretend,
		changed:    make(map[string]struct{}),
		created:    make(map[string]struct{}),
	}
}

// Execute applies one decision to one message. Keep is a no-op. Move and
// junk copy the message to the target folder and flag the source copy for
// deletion; the actual expunge is a separate step. An unrecognized action
// is a programming error and is the one condition returned rather than
// degraded.
func (r *Runner) Execute(decision core.Decision, uid uint32, sourceFolder string) error {
	switch decision.Action {
	case core.ActionKeep:
		return nil
	case core.ActionMove:
		return r.move(uid, sourceFolder, decision.Folder)
	case core.ActionJunk:
		return r.move(uid, sourceFolder, r.junkFolder)
	default:
		return fmt.Errorf("unrecognized decision action %q", decision.Action)
	}
}

func (r *Runner) move(uid uint32, sourceFolder, target string) error {
	if target == sourceFolder {
		// Junking inside the junk folder itself is a no-op.
		return nil
	}
	if r.pretend {
		r.logger.Info("pretend: would move message",
			zap.Uint32("uid", uid),
			zap.String("from", sourceFolder),
			zap.String("to", target))
		r.changed[target] = struct{}{}
		return nil
	}

	if err := r.ensureFolder(target); err != nil {
		return err
	}
	if err := r.mailbox.Copy(uid, target); err != nil {
		return fmt.Errorf("copy uid %d to %q: %w", uid, target, err)
	}
	if err := r.mailbox.MarkDeleted(uid); err != nil {
		return fmt.Errorf("flag uid %d deleted: %w", uid, err)
	}
	r.changed[target] = struct{}{}
	r.logger.Debug("moved message",
		zap.Uint32("uid", uid),
		zap.String("from", sourceFolder),
		zap.String("to", target))
	return nil
}

// ensureFolder creates the target folder on first use. A create failure
// for an already-existing folder is tolerated.
func (r *Runner) ensureFolder(folder string) error {
	if _, ok := r.created[folder]; ok {
		return nil
	}
	if err := r.mailbox.Create(folder); err != nil {
		if !strings.Contains(strings.ToLower(err.Error()), "exist") {
			return fmt.Errorf("create folder %q: %w", folder, err)
		}
	}
	r.created[folder] = struct{}{}
	return nil
}

// ChangedFolders returns the folders that received a move, sorted.
func (r *Runner) ChangedFolders() []string {
	folders := make([]string, 0, len(r.changed))
	for f := range r.changed {
		folders = append(folders, f)
	}
	sort.Strings(folders)
	return folders
}

// Expunge removes the flagged messages from a folder. No-op in pretend
// mode.
func (r *Runner) Expunge(folder string) error {
	if r.pretend {
		return nil
	}
	if err := r.mailbox.Select(folder); err != nil {
		return fmt.Errorf("select %q for expunge: %w", folder, err)
	}
	if err := r.mailbox.Expunge(); err != nil {
		return fmt.Errorf("expunge %q: %w", folder, err)
	}
	return nil
}
