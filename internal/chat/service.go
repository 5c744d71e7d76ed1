// Package chat implements the messaging core: sidebar aggregation,
// history with read receipts, sends with media attachments, deletion and
// search.
package chat

import (
	"context"
	"sort"

	"github.com/PaulBabatuyi/privtalk/internal/data"
	"github.com/PaulBabatuyi/privtalk/internal/media"
	"github.com/PaulBabatuyi/privtalk/internal/normalize"
	"github.com/PaulBabatuyi/privtalk/internal/realtime"
	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// searchLimit caps search results per query.
const searchLimit = 50

// UserDirectory is the directory store the service reads profiles from.
type UserDirectory interface {
	GetUserByID(ctx context.Context, id bson.ObjectID) (*data.User, error)
	FindAllExcept(ctx context.Context, id bson.ObjectID) ([]*data.User, error)
}

// MessageStore is the message persistence collaborator.
type MessageStore interface {
	Insert(ctx context.Context, msg *data.Message) (*data.Message, error)
	HistoryBetween(ctx context.Context, a, b bson.ObjectID) ([]*data.Message, error)
	LastBetween(ctx context.Context, a, b bson.ObjectID) (*data.Message, error)
	CountUnread(ctx context.Context, from, to bson.ObjectID) (int64, error)
	MarkRead(ctx context.Context, from, to bson.ObjectID) error
	GetByID(ctx context.Context, id bson.ObjectID) (*data.Message, error)
	DeleteByID(ctx context.Context, id bson.ObjectID) error
	Search(ctx context.Context, a, b bson.ObjectID, query string, limit int64) ([]*data.Message, error)
}

// Dispatcher pushes events to connected receivers. Delivery is
// best-effort; the service never fails a send over a missed push.
type Dispatcher interface {
	Notify(userID string, ev realtime.Event) bool
}

// Service is the messaging core. All collaborators are injected; tests
// use fakes.
type Service struct {
	users    UserDirectory
	msgs     MessageStore
	uploader media.Uploader
	dispatch Dispatcher
}

// NewService wires a Service. dispatch may be nil when no realtime
// channel exists (e.g. in batch tooling); sends then skip the push.
func NewService(users UserDirectory, msgs MessageStore, uploader media.Uploader, dispatch Dispatcher) *Service {
	return &Service{users: users, msgs: msgs, uploader: uploader, dispatch: dispatch}
}

// SidebarEntry is one row of the conversation sidebar: a user profile
// with their last exchanged message and how many of their messages the
// requester has not read yet.
type SidebarEntry struct {
	*data.User
	LastMessage *data.Message `json:"lastMessage"`
	UnreadCount int64         `json:"unreadCount"`
}

// Participant is a resolved profile on a history entry, with IsMe
// computed against the requester.
type Participant struct {
	ID         bson.ObjectID `json:"_id"`
	FullName   string        `json:"fullName"`
	ProfilePic string        `json:"profilePic,omitempty"`
	IsMe       bool          `json:"isMe"`
}

// MessageView is a message enriched with both resolved participants.
type MessageView struct {
	data.Message
	Sender   Participant `json:"sender"`
	Receiver Participant `json:"receiver"`
}

// Participants names both sides of a conversation.
type Participants struct {
	CurrentUser Participant `json:"currentUser"`
	OtherUser   Participant `json:"otherUser"`
}

// Conversation is the full history response for one peer.
type Conversation struct {
	ChatID        string        `json:"chatId"`
	Participants  Participants  `json:"participants"`
	Messages      []MessageView `json:"messages"`
	TotalMessages int           `json:"totalMessages"`
}

// SendRequest carries the client payload of a send. At most one of
// Image/Video is expected, matching FileType; mismatches are tolerated
// and stored without an attachment.
type SendRequest struct {
	Text     string `json:"text,omitempty"`
	Image    string `json:"image,omitempty"`
	Video    string `json:"video,omitempty"`
	FileType string `json:"fileType,omitempty"`
	FileName string `json:"fileName,omitempty"`
}

// SearchResult is the search response envelope.
type SearchResult struct {
	Results []*data.Message `json:"results"`
	Total   int             `json:"total"`
}

// ListConversations builds the sidebar for the requester: every other
// user with their last message and unread count, ordered most recent
// conversation first. Users with no history sort after every user with
// history.
func (s *Service) ListConversations(ctx context.Context, requester bson.ObjectID) ([]*SidebarEntry, error) {
	others, err := s.users.FindAllExcept(ctx, requester)
	if err != nil {
		return nil, Upstream("failed to list users", err)
	}

	entries := make([]*SidebarEntry, 0, len(others))
	for _, u := range others {
		last, err := s.msgs.LastBetween(ctx, requester, u.ID)
		if err != nil {
			return nil, Upstream("failed to read last message", err)
		}
		unread, err := s.msgs.CountUnread(ctx, u.ID, requester)
		if err != nil {
			return nil, Upstream("failed to count unread messages", err)
		}
		entries = append(entries, &SidebarEntry{User: u, LastMessage: last, UnreadCount: unread})
	}

	// Most recent conversation first; empty histories keep their
	// directory order at the tail.
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i].LastMessage, entries[j].LastMessage
		if a == nil {
			return false
		}
		if b == nil {
			return true
		}
		return a.CreatedAt.After(b.CreatedAt)
	})

	return entries, nil
}

// GetHistory returns the full conversation with a peer, oldest first, and
// as a side effect flips every unread message the peer sent the requester
// to read. The receipt is a consequence of the requester viewing the
// thread, not a separate action; the fetch and the flip are not atomic,
// and a message landing between them is picked up by the next view.
func (s *Service) GetHistory(ctx context.Context, requester, peer bson.ObjectID) (*Conversation, error) {
	current, err := s.lookupUser(ctx, requester)
	if err != nil {
		return nil, err
	}
	other, err := s.lookupUser(ctx, peer)
	if err != nil {
		return nil, err
	}

	history, err := s.msgs.HistoryBetween(ctx, requester, peer)
	if err != nil {
		return nil, Upstream("failed to load history", err)
	}

	if err := s.msgs.MarkRead(ctx, peer, requester); err != nil {
		return nil, Upstream("failed to mark messages read", err)
	}

	views := make([]MessageView, 0, len(history))
	for _, m := range history {
		// The bulk flip above applies to what the requester now sees.
		if m.ReceiverID == requester {
			m.Read = true
		}
		views = append(views, s.enrich(m, requester, current, other))
	}

	return &Conversation{
		ChatID: peer.Hex(),
		Participants: Participants{
			CurrentUser: asParticipant(current, true),
			OtherUser:   asParticipant(other, false),
		},
		Messages:      views,
		TotalMessages: len(views),
	}, nil
}

// Send validates, persists and best-effort-delivers one message. An
// attachment is uploaded to the media store first and the canonical URL
// is stored in its place; upload failure aborts the send entirely.
func (s *Service) Send(ctx context.Context, sender, receiver bson.ObjectID, req *SendRequest) (*data.Message, error) {
	if sender == receiver {
		return nil, Invalid("cannot send message to yourself")
	}

	if _, err := s.lookupUser(ctx, receiver); err != nil {
		return nil, err
	}

	fileType := req.FileType
	if fileType == "" {
		fileType = data.FileTypeText
	}

	msg := &data.Message{
		SenderID:   sender,
		ReceiverID: receiver,
		Text:       req.Text,
		FileType:   fileType,
		FileName:   req.FileName,
	}

	// Upload only when the declared type and the payload agree. A payload
	// without its matching type is dropped and the message persists as
	// declared, attachment-free.
	if req.Image != "" && fileType == data.FileTypeImage {
		url, err := s.uploader.Upload(ctx, req.Image, media.KindImage, req.FileName)
		if err != nil {
			return nil, Upstream("failed to upload image", err)
		}
		msg.Image = url
	}
	if req.Video != "" && fileType == data.FileTypeVideo {
		url, err := s.uploader.Upload(ctx, req.Video, media.KindVideo, req.FileName)
		if err != nil {
			return nil, Upstream("failed to upload video", err)
		}
		msg.Video = url
	}

	saved, err := s.msgs.Insert(ctx, msg)
	if err != nil {
		return nil, Upstream("failed to save message", err)
	}

	// Best-effort push to the receiver only; the sender already holds the
	// message in this response. An offline receiver finds it in history.
	if s.dispatch != nil {
		ev, err := realtime.NewEvent(realtime.EventNewMessage, saved)
		if err != nil {
			log.Errorf("failed to encode newMessage event: %v", err)
		} else if !s.dispatch.Notify(receiver.Hex(), ev) {
			log.Debugf("receiver %s offline, message %s delivered on next fetch", receiver.Hex(), saved.ID.Hex())
		}
	}

	return saved, nil
}

// MarkRead flips all unread messages from sender to receiver. Idempotent.
func (s *Service) MarkRead(ctx context.Context, receiver, sender bson.ObjectID) error {
	if err := s.msgs.MarkRead(ctx, sender, receiver); err != nil {
		return Upstream("failed to mark messages read", err)
	}
	return nil
}

// DeleteMessage hard-deletes a message. Only its sender may delete it.
func (s *Service) DeleteMessage(ctx context.Context, requester, messageID bson.ObjectID) (*data.Message, error) {
	msg, err := s.msgs.GetByID(ctx, messageID)
	if err != nil {
		if err == data.ErrMessageNotFound {
			return nil, NotFound("message not found")
		}
		return nil, Upstream("failed to load message", err)
	}

	if msg.SenderID != requester {
		return nil, Forbidden("you can only delete your own messages")
	}

	if err := s.msgs.DeleteByID(ctx, messageID); err != nil {
		return nil, Upstream("failed to delete message", err)
	}
	return msg, nil
}

// Search finds messages in the pair's conversation whose text contains
// the query, newest first, capped at 50. An empty or whitespace-only
// query is rejected; a query with no matches is an empty result, not an
// error.
func (s *Service) Search(ctx context.Context, requester, peer bson.ObjectID, query string) (*SearchResult, error) {
	query = normalize.Query(query)
	if query == "" {
		return nil, Invalid("search query is required")
	}

	results, err := s.msgs.Search(ctx, requester, peer, query, searchLimit)
	if err != nil {
		return nil, Upstream("failed to search messages", err)
	}
	if results == nil {
		results = []*data.Message{}
	}

	return &SearchResult{Results: results, Total: len(results)}, nil
}

// lookupUser resolves a user id, translating the store's not-found into
// the service taxonomy.
func (s *Service) lookupUser(ctx context.Context, id bson.ObjectID) (*data.User, error) {
	u, err := s.users.GetUserByID(ctx, id)
	if err != nil {
		if err == data.ErrUserNotFound {
			return nil, NotFound("user not found")
		}
		return nil, Upstream("failed to load user", err)
	}
	return u, nil
}

// enrich resolves both participants on a message relative to the
// requester.
func (s *Service) enrich(m *data.Message, requester bson.ObjectID, current, other *data.User) MessageView {
	senderProfile, receiverProfile := current, other
	if m.SenderID == other.ID {
		senderProfile, receiverProfile = other, current
	}
	return MessageView{
		Message:  *m,
		Sender:   asParticipant(senderProfile, m.SenderID == requester),
		Receiver: asParticipant(receiverProfile, m.ReceiverID == requester),
	}
}

func asParticipant(u *data.User, isMe bool) Participant {
	return Participant{
		ID:         u.ID,
		FullName:   u.FullName,
		ProfilePic: u.ProfilePic,
		IsMe:       isMe,
	}
}
