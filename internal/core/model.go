package core

import (
	"fmt"
	"strings"
	"time"

	"github.com/emersion/go-msgauth/authres"
)

// Action is what the decision engine wants done with a message.
type Action string

const (
	ActionKeep Action = "keep"
	ActionMove Action = "move"
	ActionJunk Action = "junk"
)

// Decision is the outcome of classifying a single message. Folder is only
// set for ActionMove.
type Decision struct {
	Action Action
	Folder string
}

// RetentionPolicy governs how senders with no prior whitelist/blacklist
// history are treated for the duration of one run.
type RetentionPolicy string

const (
	PolicySpammy     RetentionPolicy = "spammy"
	PolicyHold       RetentionPolicy = "hold"
	PolicyQuarantine RetentionPolicy = "quarantine"
	PolicyParanoid   RetentionPolicy = "paranoid"
)

// ParseRetentionPolicy validates a configured policy name. An empty string
// selects the default policy.
func ParseRetentionPolicy(s string) (RetentionPolicy, error) {
	switch p := RetentionPolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case PolicySpammy, PolicyHold, PolicyQuarantine, PolicyParanoid:
		return p, nil
	case "":
		return PolicySpammy, nil
	default:
		return "", fmt.Errorf("unknown retention policy %q", s)
	}
}

// AddressField selects which envelope participants a folder scan collects.
type AddressField string

const (
	FieldSender    AddressField = "sender"
	FieldRecipient AddressField = "recipient"
)

// Message is the per-message input to the decision engine. It is built
// fresh from a header fetch, never persisted, and immutable once
// constructed.
type Message struct {
	FromAddress string
	FromDomain  string
	// Date is the zero value when the message carries no parseable date.
	Date time.Time
	// AuthResult is the DKIM verdict token from Authentication-Results,
	// empty when the header is missing or unparsable.
	AuthResult string
	// Spoofed is set when the message carries a spoofing-indicator verdict.
	Spoofed bool
}

// NewMessage builds a Message from a sender address, an envelope date and
// the raw Authentication-Results header value. A missing or unparsable
// header fails signature validation closed.
func NewMessage(from string, date time.Time, rawAuthResults string) Message {
	addr := strings.ToLower(strings.TrimSpace(from))
	domain := ""
	if at := strings.LastIndex(addr, "@"); at >= 0 {
		domain = addr[at+1:]
	}
	return Message{
		FromAddress: addr,
		FromDomain:  domain,
		Date:        date,
		AuthResult:  dkimVerdict(rawAuthResults),
		Spoofed:     spoofIndicated(rawAuthResults),
	}
}

// DKIMPassed reports whether the server-side signature validation passed.
func (m Message) DKIMPassed() bool {
	return m.AuthResult == string(authres.ResultPass)
}

func dkimVerdict(rawAuthResults string) string {
	if rawAuthResults == "" {
		return ""
	}
	_, results, err := authres.Parse(rawAuthResults)
	if err != nil {
		return ""
	}
	for _, r := range results {
		if d, ok := r.(*authres.DKIMResult); ok {
			return string(d.Value)
		}
	}
	return ""
}

// spoofIndicated checks for a composite-authentication spoof verdict in the
// raw Authentication-Results value. The compauth token is nonstandard, so
// it is matched textually rather than through the parser.
func spoofIndicated(rawAuthResults string) bool {
	return strings.Contains(strings.ToLower(rawAuthResults), "compauth=fail")
}

// Fingerprint is the triple of folder-reported counters used purely as an
// opaque change indicator, never interpreted semantically.
type Fingerprint struct {
	MessageCount uint32 `json:"message_count"`
	NextUID      uint32 `json:"next_uid"`
	UIDValidity  uint32 `json:"uid_validity"`
}

// FolderCacheEntry is the persisted address set for one folder together
// with the fingerprint it was captured under.
type FolderCacheEntry struct {
	Folder      string      `json:"folder"`
	Addresses   []string    `json:"addresses"`
	Fingerprint Fingerprint `json:"fingerprint"`
	CachedAt    time.Time   `json:"cached_at"`
}

// FolderSnapshot is the ephemeral view of one folder handed to the
// categorizer.
type FolderSnapshot struct {
	Name         string
	MessageCount uint32
	Senders      []string
	Domains      []string
	Attributes   []string
}

// Category is the categorizer's verdict for a folder.
type Category string

const (
	CategoryWhitelist Category = "whitelist"
	CategoryList      Category = "list"
	CategorySkip      Category = "skip"
)

// FolderInfo describes one mailbox folder as returned by a LIST.
type FolderInfo struct {
	Name       string
	Attributes []string
}

// Envelope is the per-message metadata fetched during a folder scan.
type Envelope struct {
	UID  uint32
	From []string
	To   []string
	Date time.Time
}

// Addresses returns the participants for the requested field.
func (e Envelope) Addresses(field AddressField) []string {
	if field == FieldRecipient {
		return e.To
	}
	return e.From
}
