package core

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"
)

// fetchBatchSize caps how many UIDs a single fetch asks for, to bound
// request size on large folders.
const fetchBatchSize = 800

// Analyzer scans folders for participant addresses, backed by the folder
// address cache so unchanged folders are never rescanned.
type Analyzer struct {
	mailbox Mailbox
	store   FolderCacheStore
	logger  *zap.Logger
}

// NewAnalyzer creates an Analyzer.
func NewAnalyzer(mailbox Mailbox, store FolderCacheStore, logger *zap.Logger) *Analyzer {
	return &Analyzer{mailbox: mailbox, store: store, logger: logger}
}

// FolderAddresses returns the deduplicated, lower-cased, sorted set of
// participant addresses for messages in a folder. A zero since means all
// messages. A folder that does not exist or cannot be read yields an empty
// set, not an error.
func (a *Analyzer) FolderAddresses(folder string, field AddressField, since time.Time) ([]string, error) {
	fp, err := a.mailbox.Status(folder)
	if err != nil {
		a.logger.Warn("folder not readable, treating as empty",
			zap.String("folder", folder), zap.Error(err))
		return nil, nil
	}

	if entry, ok := a.store.Get(folder); ok && entry.Fingerprint == fp {
		a.logger.Debug("address cache hit", zap.String("folder", folder),
			zap.Int("addresses", len(entry.Addresses)))
		return entry.Addresses, nil
	}

	addresses, err := a.scanAddresses(folder, field, since)
	if err != nil {
		a.logger.Warn("folder scan failed, treating as empty",
			zap.String("folder", folder), zap.Error(err))
		return nil, nil
	}

	entry := &FolderCacheEntry{
		Folder:      folder,
		Addresses:   addresses,
		Fingerprint: fp,
		CachedAt:    time.Now(),
	}
	if err := a.store.Put(entry); err != nil {
		a.logger.Warn("failed to write address cache entry",
			zap.String("folder", folder), zap.Error(err))
	}
	return addresses, nil
}

func (a *Analyzer) scanAddresses(folder string, field AddressField, since time.Time) ([]string, error) {
	if err := a.mailbox.Select(folder); err != nil {
		return nil, fmt.Errorf("select %q: %w", folder, err)
	}
	uids, err := a.mailbox.Search(since)
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", folder, err)
	}

	seen := make(map[string]struct{})
	for start := 0; start < len(uids); start += fetchBatchSize {
		end := start + fetchBatchSize
		if end > len(uids) {
			end = len(uids)
		}
		envelopes, err := a.mailbox.FetchEnvelopes(uids[start:end])
		if err != nil {
			return nil, fmt.Errorf("fetch envelopes in %q: %w", folder, err)
		}
		for _, env := range envelopes {
			for _, addr := range env.Addresses(field) {
				addr = strings.ToLower(strings.TrimSpace(addr))
				if addr != "" {
					seen[addr] = struct{}{}
				}
			}
		}
	}

	addresses := make([]string, 0, len(seen))
	for addr := range seen {
		addresses = append(addresses, addr)
	}
	sort.Strings(addresses)
	return addresses, nil
}

// Snapshot builds the categorizer's view of a folder: its message count,
// sender set and the domains those senders span.
func (a *Analyzer) Snapshot(info FolderInfo) (FolderSnapshot, error) {
	fp, err := a.mailbox.Status(info.Name)
	if err != nil {
		a.logger.Warn("folder not readable, empty snapshot",
			zap.String("folder", info.Name), zap.Error(err))
		return FolderSnapshot{Name: info.Name, Attributes: info.Attributes}, nil
	}

	senders, err := a.FolderAddresses(info.Name, FieldSender, time.Time{})
	if err != nil {
		return FolderSnapshot{}, err
	}

	domainSet := make(map[string]struct{})
	for _, addr := range senders {
		if at := strings.LastIndex(addr, "@"); at >= 0 && at < len(addr)-1 {
			domainSet[addr[at+1:]] = struct{}{}
		}
	}
	domains := make([]string, 0, len(domainSet))
	for d := range domainSet {
		domains = append(domains, d)
	}
	sort.Strings(domains)

	return FolderSnapshot{
		Name:         info.Name,
		MessageCount: fp.MessageCount,
		Senders:      senders,
		Domains:      domains,
		Attributes:   info.Attributes,
	}, nil
}

// SampleHeaders fetches the raw header blocks of up to limit most-recent
// messages in a folder. Any failure degrades to an empty sample.
func (a *Analyzer) SampleHeaders(folder string, limit int) []string {
	if err := a.mailbox.Select(folder); err != nil {
		return nil
	}
	uids, err := a.mailbox.Search(time.Time{})
	if err != nil || len(uids) == 0 {
		return nil
	}
	if len(uids) > limit {
		uids = uids[len(uids)-limit:]
	}
	headers, err := a.mailbox.FetchHeaders(uids)
	if err != nil {
		return nil
	}
	out := make([]string, 0, len(headers))
	for _, uid := range uids {
		if h, ok := headers[uid]; ok {
			out = append(out, h)
		}
	}
	return out
}
