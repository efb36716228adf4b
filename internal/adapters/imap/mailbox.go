// Package imap implements the core.Mailbox port over an authenticated
// go-imap client session. Dialing and login happen in Connect; everything
// else assumes the session is live.
package imap

import (
	"fmt"
	"io"
	"time"

	goimap "github.com/emersion/go-imap"
	"github.com/emersion/go-imap/client"
	"go.uber.org/zap"

	"github.com/mikey/mailsort/internal/core"
)

// Mailbox wraps a go-imap client as a core.Mailbox.
type Mailbox struct {
	c      *client.Client
	logger *zap.Logger
}

// New wraps an already-authenticated client.
func New(c *client.Client, logger *zap.Logger) *Mailbox {
	return &Mailbox{c: c, logger: logger}
}

// Connect dials the server and logs in, returning a ready Mailbox.
func Connect(addr, username, password string, useTLS bool, logger *zap.Logger) (*Mailbox, error) {
	var (
		c   *client.Client
		err error
	)
	if useTLS {
		c, err = client.DialTLS(addr, nil)
	} else {
		c, err = client.Dial(addr)
	}
	if err != nil {
		return nil, fmt.Errorf("dial %q: %w", addr, err)
	}
	if err := c.Login(username, password); err != nil {
		c.Logout()
		return nil, fmt.Errorf("login as %q: %w", username, err)
	}
	logger.Info("connected to mail server", zap.String("server", addr))
	return New(c, logger), nil
}

// Select makes folder the current folder.
func (m *Mailbox) Select(folder string) error {
	_, err := m.c.Select(folder, false)
	return err
}

// Status reads the folder's change fingerprint with a single STATUS call.
func (m *Mailbox) Status(folder string) (core.Fingerprint, error) {
	status, err := m.c.Status(folder, []goimap.StatusItem{
		goimap.StatusMessages,
		goimap.StatusUidNext,
		goimap.StatusUidValidity,
	})
	if err != nil {
		return core.Fingerprint{}, err
	}
	return core.Fingerprint{
		MessageCount: status.Messages,
		NextUID:      status.UidNext,
		UIDValidity:  status.UidValidity,
	}, nil
}

// Search returns the UIDs of non-deleted messages, optionally restricted
// to those since a date. The since criterion is omitted entirely for a
// zero time.
func (m *Mailbox) Search(since time.Time) ([]uint32, error) {
	criteria := goimap.NewSearchCriteria()
	criteria.WithoutFlags = []string{goimap.DeletedFlag}
	if !since.IsZero() {
		criteria.Since = since
	}
	return m.c.UidSearch(criteria)
}

// FetchEnvelopes fetches envelope metadata for the given UIDs.
func (m *Mailbox) FetchEnvelopes(uids []uint32) ([]core.Envelope, error) {
	if len(uids) == 0 {
		return nil, nil
	}
	seqset := new(goimap.SeqSet)
	seqset.AddNum(uids...)

	messages := make(chan *goimap.Message, 32)
	done := make(chan error, 1)
	go func() {
		done <- m.c.UidFetch(seqset, []goimap.FetchItem{goimap.FetchEnvelope, goimap.FetchUid}, messages)
	}()

	var envelopes []core.Envelope
	for msg := range messages {
		if msg.Envelope == nil {
			continue
		}
		envelopes = append(envelopes, core.Envelope{
			UID:  msg.Uid,
			From: addressList(msg.Envelope.From),
			To:   addressList(msg.Envelope.To),
			Date: msg.Envelope.Date,
		})
	}
	if err := <-done; err != nil {
		return nil, err
	}
	return envelopes, nil
}

// FetchHeaders fetches the raw header block for each given UID.
func (m *Mailbox) FetchHeaders(uids []uint32) (map[uint32]string, error) {
	if len(uids) == 0 {
		return nil, nil
	}
	seqset := new(goimap.SeqSet)
	seqset.AddNum(uids...)

	section := &goimap.BodySectionName{Peek: true}
	section.Specifier = goimap.HeaderSpecifier

	messages := make(chan *goimap.Message, 32)
	done := make(chan error, 1)
	go func() {
		done <- m.c.UidFetch(seqset, []goimap.FetchItem{section.FetchItem(), goimap.FetchUid}, messages)
	}()

	headers := make(map[uint32]string, len(uids))
	for msg := range messages {
		body := msg.GetBody(section)
		if body == nil {
			continue
		}
		raw, err := io.ReadAll(body)
		if err != nil {
			m.logger.Debug("header read failed", zap.Uint32("uid", msg.Uid), zap.Error(err))
			continue
		}
		headers[msg.Uid] = string(raw)
	}
	if err := <-done; err != nil {
		return nil, err
	}
	return headers, nil
}

// Copy copies a message into another folder.
func (m *Mailbox) Copy(uid uint32, folder string) error {
	seqset := new(goimap.SeqSet)
	seqset.AddNum(uid)
	return m.c.UidCopy(seqset, folder)
}

// MarkDeleted flags a message for deletion.
func (m *Mailbox) MarkDeleted(uid uint32) error {
	seqset := new(goimap.SeqSet)
	seqset.AddNum(uid)
	item := goimap.FormatFlagsOp(goimap.AddFlags, true)
	return m.c.UidStore(seqset, item, []interface{}{goimap.DeletedFlag}, nil)
}

// Expunge removes flagged messages from the selected folder.
func (m *Mailbox) Expunge() error {
	return m.c.Expunge(nil)
}

// Create creates a folder.
func (m *Mailbox) Create(folder string) error {
	return m.c.Create(folder)
}

// List enumerates all folders with their attributes.
func (m *Mailbox) List() ([]core.FolderInfo, error) {
	infos := make(chan *goimap.MailboxInfo, 32)
	done := make(chan error, 1)
	go func() {
		done <- m.c.List("", "*", infos)
	}()

	var folders []core.FolderInfo
	for info := range infos {
		folders = append(folders, core.FolderInfo{
			Name:       info.Name,
			Attributes: info.Attributes,
		})
	}
	if err := <-done; err != nil {
		return nil, err
	}
	return folders, nil
}

// Logout ends the session.
func (m *Mailbox) Logout() error {
	return m.c.Logout()
}

func addressList(addrs []*goimap.Address) []string {
	out := make([]string, 0, len(addrs))
	for _, a := range addrs {
		if a == nil {
			continue
		}
		if addr := a.Address(); addr != "" && addr != "@" {
			out = append(out, addr)
		}
	}
	return out
}
