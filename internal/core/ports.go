package core

import "time"

// Mailbox is the capability surface the sorter requires from the mail
// server connection. Implementations wrap an already-authenticated IMAP
// session; dialing and login belong to the caller.
type Mailbox interface {
	// Select makes folder the current folder for Search, Fetch and
	// Expunge calls.
	Select(folder string) error

	// Status reports the folder's live change fingerprint without
	// selecting it.
	Status(folder string) (Fingerprint, error)

	// Search returns the UIDs of non-deleted messages in the selected
	// folder. A zero since means all messages.
	Search(since time.Time) ([]uint32, error)

	// FetchEnvelopes fetches envelope metadata for the given UIDs in the
	// selected folder.
	FetchEnvelopes(uids []uint32) ([]Envelope, error)

	// FetchHeaders fetches the raw header block for each given UID.
	FetchHeaders(uids []uint32) (map[uint32]string, error)

	// Copy copies a message into another folder.
	Copy(uid uint32, folder string) error

	// MarkDeleted flags a message in the selected folder for deletion.
	MarkDeleted(uid uint32) error

	// Expunge permanently removes flagged messages from the selected
	// folder.
	Expunge() error

	// Create creates a folder.
	Create(folder string) error

	// List enumerates all folders with their attributes.
	List() ([]FolderInfo, error)
}

// FolderCacheStore persists one FolderCacheEntry per folder. A Get miss is
// reported through the boolean, never as an error; corrupt entries are
// misses.
type FolderCacheStore interface {
	// Get returns the cached entry for a folder, if one exists and is
	// readable.
	Get(folder string) (*FolderCacheEntry, bool)

	// Put replaces the entry for entry.Folder wholesale.
	Put(entry *FolderCacheEntry) error

	// RefreshFingerprint rewrites only the stored fingerprint of an
	// existing entry, leaving the address set untouched. A missing entry
	// is a no-op.
	RefreshFingerprint(folder string, fp Fingerprint) error
}

// FolderClassifier buckets a folder snapshot into whitelist, list or skip.
type FolderClassifier interface {
	Categorize(snapshot FolderSnapshot) (Category, string)
}

// DomainSuggester proposes domain-to-folder entries for domains related to
// the ones a list folder already contains.
type DomainSuggester interface {
	// Suggest returns proposals for domains not present in owned. The
	// returned order is the assignment order.
	Suggest(folders []CategorizedFolder, owned func(domain string) bool) []DomainSuggestion
}

// CategorizedFolder is a list folder together with the domains it already
// holds, as input to domain suggestion.
type CategorizedFolder struct {
	Name    string
	Domains []string
}

// DomainSuggestion is one proposed list-domain-map entry.
type DomainSuggestion struct {
	Domain string
	Folder string
}

// ActionExecutor runs a Decision against the mailbox and remembers which
// folders it changed.
type ActionExecutor interface {
	Execute(decision Decision, uid uint32, sourceFolder string) error
	ChangedFolders() []string

	// Expunge permanently removes the messages flagged for deletion in a
	// folder. Deletions are batched here instead of per message.
	Expunge(folder string) error
}
