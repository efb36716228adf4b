package categorize

import "regexp"

// Name and content pattern tables for folder categorization. Rules consult
// these in priority order; adding a pattern never requires touching the
// rule flow.

// systemFolderPattern matches folder names the sorter must never learn
// from: server-managed folders and generic dumping grounds.
var systemFolderPattern = regexp.MustCompile(`(?i)(^|[/. _-])(sent|drafts?|outbox|trash|deleted|junk|spam|calendar|contacts|notes|tasks|templates|archives?|conversation ?history|journal|misc|old|unsubscribed)($|[/. _-])`)

// listFolderPattern matches names that indicate machine-generated list
// mail: well-known brands plus generic bulk-mail terms.
var listFolderPattern = regexp.MustCompile(`(?i)(^|[/. _-])(amazon|ebay|paypal|facebook|twitter|instagram|linkedin|github|gitlab|bitbucket|google|apple|microsoft|netflix|spotify|steam|lists?|newsletters?|notifications?|alerts?|marketing|promotions?|ads?|deals?|updates?)($|[/. _-])`)

// personalFolderPattern matches names that indicate hand-filed personal or
// professional correspondence.
var personalFolderPattern = regexp.MustCompile(`(?i)(^|[/. _-])(family|friends?|personal|private|work|business|clients?|customers?|important|urgent|priority|critical|projects?|meetings?|appointments?)($|[/. _-])`)

// bulkHeaderMarkers are matched case-insensitively against raw header
// blocks of sampled messages. Each marks a mail system that sends on
// behalf of lists or campaigns.
var bulkHeaderMarkers = []string{
	"list-unsubscribe:",
	"list-id:",
	"precedence: bulk",
	"precedence: list",
	"mailing-list:",
	"x-mailing-list:",
	"x-campaign",
	"x-mailer-campaign",
	"feedback-id:",
	"x-feedback-id:",
	"x-auto-response-suppress:",
}

// firstLastPattern recognizes "firstname.lastname" local parts, a strong
// signal of personal correspondence.
var firstLastPattern = regexp.MustCompile(`^[a-z]+\.[a-z]+$`)
