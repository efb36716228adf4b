package core

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Mode selects what one sorter pass does with the source folder.
type Mode string

const (
	// ModeClassify runs the full new-message state machine.
	ModeClassify Mode = "classify"
	// ModeRefile only re-files messages with a resolvable destination.
	ModeRefile Mode = "refile"
)

// ParseMode validates a configured mode name.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case ModeClassify, ModeRefile:
		return m, nil
	case "":
		return ModeClassify, nil
	default:
		return "", fmt.Errorf("unknown sort mode %q", s)
	}
}

// SorterConfig is the per-run sorting configuration.
type SorterConfig struct {
	InboxFolder        string
	JunkFolder         string
	ListFolder         string
	QuarantineFolder   string
	Policy             RetentionPolicy
	HoldDays           int
	Unjunking          bool
	Mode               Mode
	WhitelistAddresses []string
	BlacklistAddresses []string
	WhitelistedDomains []string
}

// Summary reports what one sorter pass did.
type Summary struct {
	Processed int
	Kept      int
	Moved     int
	Junked    int
}

// Sorter runs one full pass: it learns the mapping tables from the
// organized folders, then streams the source folder's messages through the
// decision engine and the action runner.
type Sorter struct {
	mailbox    Mailbox
	store      FolderCacheStore
	analyzer   *Analyzer
	classifier FolderClassifier
	suggester  DomainSuggester
	runner     ActionExecutor
	cfg        SorterConfig
	logger     *zap.Logger
}

// NewSorter creates a Sorter.
func NewSorter(
	mailbox Mailbox,
	store FolderCacheStore,
	analyzer *Analyzer,
	classifier FolderClassifier,
	suggester DomainSuggester,
	runner ActionExecutor,
	cfg SorterConfig,
	logger *zap.Logger,
) *Sorter {
	return &Sorter{
		mailbox:    mailbox,
		store:      store,
		analyzer:   analyzer,
		classifier: classifier,
		suggester:  suggester,
		runner:     runner,
		cfg:        cfg,
		logger:     logger,
	}
}

// Run executes one sorting pass and returns a summary of the actions
// taken.
func (s *Sorter) Run() (Summary, error) {
	ctx, err := s.buildContext()
	if err != nil {
		return Summary{}, err
	}
	engine := NewEngine(ctx, s.logger)

	source := s.cfg.InboxFolder
	if s.cfg.Unjunking {
		source = s.cfg.JunkFolder
	}

	summary, err := s.processFolder(engine, source)
	if err != nil {
		return summary, err
	}

	s.refreshFingerprints(source)

	if err := s.runner.Expunge(source); err != nil {
		s.logger.Warn("expunge failed", zap.String("folder", source), zap.Error(err))
	}
	return summary, nil
}

// buildContext learns the per-run tables from the mailbox's existing
// folder organization.
func (s *Sorter) buildContext() (*EngineContext, error) {
	folders, err := s.mailbox.List()
	if err != nil {
		return nil, fmt.Errorf("list folders: %w", err)
	}

	whitelist := addressSet(s.cfg.WhitelistAddresses)
	blacklist := addressSet(s.cfg.BlacklistAddresses)
	whitelistDomains := addressSet(s.cfg.WhitelistedDomains)
	senderMap := NewFolderMap()
	listDomainMap := NewFolderMap()
	var listFolders []CategorizedFolder

	for _, info := range folders {
		if s.skipFolder(info) {
			continue
		}
		snapshot, err := s.analyzer.Snapshot(info)
		if err != nil {
			s.logger.Warn("folder analysis failed, skipping",
				zap.String("folder", info.Name), zap.Error(err))
			continue
		}
		category, reason := s.classifier.Categorize(snapshot)
		s.logger.Info("folder categorized",
			zap.String("folder", info.Name),
			zap.String("category", string(category)),
			zap.String("reason", reason))

		switch category {
		case CategoryWhitelist:
			for _, addr := range snapshot.Senders {
				whitelist[addr] = struct{}{}
				senderMap.SetIfAbsent(addr, info.Name)
			}
		case CategoryList:
			for _, addr := range snapshot.Senders {
				senderMap.SetIfAbsent(addr, info.Name)
			}
			for _, domain := range snapshot.Domains {
				listDomainMap.SetIfAbsent(domain, info.Name)
			}
			listFolders = append(listFolders, CategorizedFolder{
				Name:    info.Name,
				Domains: snapshot.Domains,
			})
		}
	}

	owned := func(domain string) bool {
		_, ok := listDomainMap.Get(domain)
		return ok
	}
	for _, suggestion := range s.suggester.Suggest(listFolders, owned) {
		if listDomainMap.SetIfAbsent(suggestion.Domain, suggestion.Folder) {
			s.logger.Debug("suggested domain mapping",
				zap.String("domain", suggestion.Domain),
				zap.String("folder", suggestion.Folder))
		}
	}

	junkHistory, err := s.analyzer.FolderAddresses(s.cfg.JunkFolder, FieldSender, time.Time{})
	if err != nil {
		return nil, fmt.Errorf("scan junk history: %w", err)
	}

	return &EngineContext{
		WhitelistedEmails:  whitelist,
		WhitelistedDomains: whitelistDomains,
		BlacklistedEmails:  blacklist,
		JunkHistoryEmails:  addressSet(junkHistory),
		SenderMap:          senderMap,
		ListDomainMap:      listDomainMap,
		ListFolder:         s.cfg.ListFolder,
		QuarantineFolder:   s.cfg.QuarantineFolder,
		Policy:             s.cfg.Policy,
		HoldDays:           s.cfg.HoldDays,
		Unjunking:          s.cfg.Unjunking,
	}, nil
}

// processFolder streams the source folder's messages through the engine
// one at a time, in search order.
func (s *Sorter) processFolder(engine *Engine, source string) (Summary, error) {
	var summary Summary

	if err := s.mailbox.Select(source); err != nil {
		return summary, fmt.Errorf("select %q: %w", source, err)
	}
	uids, err := s.mailbox.Search(time.Time{})
	if err != nil {
		return summary, fmt.Errorf("search %q: %w", source, err)
	}

	for start := 0; start < len(uids); start += fetchBatchSize {
		end := start + fetchBatchSize
		if end > len(uids) {
			end = len(uids)
		}
		batch := uids[start:end]

		envelopes, err := s.mailbox.FetchEnvelopes(batch)
		if err != nil {
			return summary, fmt.Errorf("fetch envelopes in %q: %w", source, err)
		}
		headers, err := s.mailbox.FetchHeaders(batch)
		if err != nil {
			s.logger.Warn("header fetch failed, validation fails closed",
				zap.String("folder", source), zap.Error(err))
			headers = nil
		}

		for _, env := range envelopes {
			if len(env.From) == 0 {
				s.logger.Warn("message without sender, keeping",
					zap.Uint32("uid", env.UID))
				summary.Processed++
				summary.Kept++
				continue
			}
			msg := NewMessage(env.From[0], env.Date, AuthResultsHeader(headers[env.UID]))

			var decision Decision
			if s.cfg.Mode == ModeRefile {
				decision = engine.DecideForFiling(msg)
			} else {
				decision = engine.DecideForNewMessage(msg)
			}

			if err := s.runner.Execute(decision, env.UID, source); err != nil {
				return summary, fmt.Errorf("execute %s for uid %d: %w", decision.Action, env.UID, err)
			}
			summary.Processed++
			switch decision.Action {
			case ActionKeep:
				summary.Kept++
			case ActionMove:
				summary.Moved++
			case ActionJunk:
				summary.Junked++
			}
		}
	}
	return summary, nil
}

// refreshFingerprints gives the source folder and every folder that
// received a move a fingerprint-only cache update, so later hits in the
// same run see the new population without a rescan.
func (s *Sorter) refreshFingerprints(source string) {
	folders := append([]string{source}, s.runner.ChangedFolders()...)
	for _, folder := range folders {
		fp, err := s.mailbox.Status(folder)
		if err != nil {
			s.logger.Warn("fingerprint refresh failed",
				zap.String("folder", folder), zap.Error(err))
			continue
		}
		if err := s.store.RefreshFingerprint(folder, fp); err != nil {
			s.logger.Warn("fingerprint refresh failed",
				zap.String("folder", folder), zap.Error(err))
		}
	}
}

// skipFolder filters out the folders that never contribute mapping data:
// the source folders themselves and unselectable folders.
func (s *Sorter) skipFolder(info FolderInfo) bool {
	if strings.EqualFold(info.Name, s.cfg.InboxFolder) ||
		strings.EqualFold(info.Name, s.cfg.JunkFolder) {
		return true
	}
	for _, attr := range info.Attributes {
		if strings.EqualFold(attr, `\Noselect`) {
			return true
		}
	}
	return false
}

func addressSet(addrs []string) map[string]struct{} {
	set := make(map[string]struct{}, len(addrs))
	for _, addr := range addrs {
		addr = strings.ToLower(strings.TrimSpace(addr))
		if addr != "" {
			set[addr] = struct{}{}
		}
	}
	return set
}
