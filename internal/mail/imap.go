package mail

import (
	"bytes"
	"fmt"
	"io"
	"log"
	"regexp"
	"strings"
	"time"

	"github.com/emersion/go-imap/v2"
	"github.com/emersion/go-imap/v2/imapclient"
	"github.com/emersion/go-message/mail"
	"github.com/secretary-dev/secretary/internal/models"
	"gorm.io/gorm"
)

var htmlTagPattern = regexp.MustCompile(`<[^>]+>`)

// IMAPFetcher reads unseen messages from the user's IMAP inbox, annotates
// them and persists them. Messages are fetched with peek so the mailbox state
// is left untouched; deduplication runs on the Message-ID instead.
type IMAPFetcher struct {
	db        *gorm.DB
	annotator Annotator
}

func NewIMAPFetcher(db *gorm.DB, annotator Annotator) *IMAPFetcher {
	return &IMAPFetcher{db: db, annotator: annotator}
}

func (f *IMAPFetcher) FetchNew(user *models.User) ([]models.Email, error) {
	if user.IMAPServer == "" || user.MailboxUser == "" {
		return nil, fmt.Errorf("user %d has no mailbox configured", user.ID)
	}

	addr := fmt.Sprintf("%s:%d", user.IMAPServer, user.IMAPPort)

	client, err := imapclient.DialTLS(addr, nil)
	if err != nil {
		return nil, fmt.Errorf("connecting to IMAP %s: %w", addr, err)
	}
	defer func() { _ = client.Logout().Wait() }()

	if err := client.Login(user.MailboxUser, user.MailboxPassword).Wait(); err != nil {
		return nil, fmt.Errorf("IMAP login for %s: %w", user.MailboxUser, err)
	}

	if _, err := client.Select("INBOX", nil).Wait(); err != nil {
		return nil, fmt.Errorf("selecting INBOX: %w", err)
	}

	searchData, err := client.UIDSearch(&imap.SearchCriteria{
		NotFlag: []imap.Flag{imap.FlagSeen},
	}, nil).Wait()
	if err != nil {
		return nil, fmt.Errorf("searching unseen messages: %w", err)
	}

	uids := searchData.AllUIDs()
	if len(uids) == 0 {
		return nil, nil
	}

	bodySection := &imap.FetchItemBodySection{Peek: true}

	fetchCmd := client.Fetch(imap.UIDSetNum(uids...), &imap.FetchOptions{
		Envelope:    true,
		UID:         true,
		BodySection: []*imap.FetchItemBodySection{bodySection},
	})

	var emails []models.Email

	for {
		msg := fetchCmd.Next()
		if msg == nil {
			break
		}

		buf, err := msg.Collect()
		if err != nil {
			log.Printf("Error collecting message for user %d: %v", user.ID, err)
			continue
		}

		email, err := f.processMessage(buf, bodySection, user)
		if err != nil {
			log.Printf("Error processing message for user %d: %v", user.ID, err)
			continue
		}

		if email != nil {
			emails = append(emails, *email)
		}
	}

	if err := fetchCmd.Close(); err != nil {
		return emails, fmt.Errorf("fetching messages: %w", err)
	}

	return emails, nil
}

// processMessage turns one fetched message into a persisted, annotated Email.
// Returns (nil, nil) for messages already in the store.
func (f *IMAPFetcher) processMessage(buf *imapclient.FetchMessageBuffer, section *imap.FetchItemBodySection, user *models.User) (*models.Email, error) {
	if buf.Envelope == nil {
		return nil, fmt.Errorf("message UID %d has no envelope", buf.UID)
	}

	messageID := buf.Envelope.MessageID
	if messageID == "" {
		messageID = fmt.Sprintf("uid-%d@%s", buf.UID, user.IMAPServer)
	}

	var existing models.Email

	err := f.db.Where("message_id = ?", messageID).First(&existing).Error
	if err == nil {
		return nil, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	senderEmail := ""
	senderName := ""

	if len(buf.Envelope.From) > 0 {
		from := buf.Envelope.From[0]
		senderEmail = from.Addr()
		senderName = from.Name
		if senderName == "" {
			senderName = senderEmail
		}
	}

	recipient := user.Email
	if len(buf.Envelope.To) > 0 {
		recipient = buf.Envelope.To[0].Addr()
	}

	receivedAt := buf.Envelope.Date
	if receivedAt.IsZero() {
		receivedAt = time.Now().UTC()
	}

	body, bodyHTML := parseBody(buf.FindBodySection(section))

	email := &models.Email{
		UserID:         user.ID,
		MessageID:      messageID,
		SenderEmail:    senderEmail,
		SenderName:     senderName,
		RecipientEmail: recipient,
		Subject:        buf.Envelope.Subject,
		Body:           body,
		BodyHTML:       bodyHTML,
		ReceivedAt:     receivedAt,
	}

	email.Summary = f.annotator.Summarize(email.Subject, email.Body)
	email.Sentiment = f.annotator.AnalyzeSentiment(email.Body)
	email.IsFromVIP = isVIPSender(senderEmail, user)
	email.IsEmergency = hasEmergencyKeywords(email.Subject+" "+email.Body, user)
	classify(email)

	now := time.Now().UTC()
	email.ProcessedAt = &now

	if err := f.db.Create(email).Error; err != nil {
		return nil, fmt.Errorf("persisting email %s: %w", messageID, err)
	}

	return email, nil
}

// parseBody extracts the text/plain and text/html parts of a raw RFC 2822
// message. When only HTML is present the text body is derived by stripping
// tags.
func parseBody(raw []byte) (body, bodyHTML string) {
	if len(raw) == 0 {
		return "", ""
	}

	mr, err := mail.CreateReader(bytes.NewReader(raw))
	if err != nil {
		return string(raw), ""
	}
	defer mr.Close()

	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			break
		}

		header, ok := part.Header.(*mail.InlineHeader)
		if !ok {
			continue
		}

		contentType, _, _ := header.ContentType()

		content, err := io.ReadAll(part.Body)
		if err != nil {
			continue
		}

		switch {
		case strings.HasPrefix(contentType, "text/plain"):
			body = string(content)
		case strings.HasPrefix(contentType, "text/html"):
			bodyHTML = string(content)
		}
	}

	if body == "" && bodyHTML != "" {
		body = strings.TrimSpace(htmlTagPattern.ReplaceAllString(bodyHTML, ""))
	}

	return body, bodyHTML
}
