package app

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

var (
	ErrMemberNotFound       = errors.New("member not found")
	ErrGroupNotFound        = errors.New("group not found")
	ErrNotificationNotFound = errors.New("notification not found")
)

const maxMessageLength = 2000

type Member struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Institution string `json:"institution"`
	Field       string `json:"field"`
	Avatar      string `json:"avatar"`
}

type Group struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Members     int    `json:"members"`
	Joined      bool   `json:"joined"`
}

type DirectMessage struct {
	From   string    `json:"from"`
	Body   string    `json:"body"`
	SentAt time.Time `json:"sent_at"`
}

type Conversation struct {
	Peer     Member          `json:"peer"`
	Messages []DirectMessage `json:"messages"`
}

type ConversationSummary struct {
	Peer        Member    `json:"peer"`
	LastMessage string    `json:"last_message"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type Notification struct {
	ID        int       `json:"id"`
	Kind      string    `json:"kind"`
	Text      string    `json:"text"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}

// userSocial is the per-user view of the mock network, created on first use.
type userSocial struct {
	joined        map[string]bool
	conversations map[string][]DirectMessage
	notifications []Notification
	nextNoteID    int
}

// CommunityService simulates the social features in memory. Nothing is
// persisted and state is lost on restart.
type CommunityService struct {
	mu      sync.Mutex
	members []Member
	groups  []Group
	users   map[uint]*userSocial
	now     func() time.Time
}

func NewCommunityService(now func() time.Time) *CommunityService {
	if now == nil {
		now = time.Now
	}
	return &CommunityService{
		members: seedMembers(),
		groups:  seedGroups(),
		users:   make(map[uint]*userSocial),
		now:     now,
	}
}

// Members lists the directory, filtered by a case-insensitive query over
// name, institution and field.
func (s *CommunityService) Members(query string) []Member {
	query = strings.ToLower(strings.TrimSpace(query))
	out := make([]Member, 0, len(s.members))
	for _, m := range s.members {
		if query == "" ||
			strings.Contains(strings.ToLower(m.Name), query) ||
			strings.Contains(strings.ToLower(m.Institution), query) ||
			strings.Contains(strings.ToLower(m.Field), query) {
			out = append(out, m)
		}
	}
	return out
}

func (s *CommunityService) Groups(userID uint) []Group {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.user(userID)

	out := make([]Group, len(s.groups))
	for i, g := range s.groups {
		g.Joined = u.joined[g.ID]
		out[i] = g
	}
	return out
}

func (s *CommunityService) JoinGroup(userID uint, groupID string) (*Group, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i := range s.groups {
		if s.groups[i].ID == groupID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, ErrGroupNotFound
	}

	u := s.user(userID)
	if !u.joined[groupID] {
		u.joined[groupID] = true
		s.groups[idx].Members++
		s.notify(u, "group", fmt.Sprintf("You joined %s.", s.groups[idx].Name))
	}
	g := s.groups[idx]
	g.Joined = true
	return &g, nil
}

func (s *CommunityService) Inbox(userID uint) []ConversationSummary {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.user(userID)

	out := make([]ConversationSummary, 0, len(u.conversations))
	for peerID, msgs := range u.conversations {
		peer, ok := s.member(peerID)
		if !ok || len(msgs) == 0 {
			continue
		}
		last := msgs[len(msgs)-1]
		out = append(out, ConversationSummary{Peer: peer, LastMessage: last.Body, UpdatedAt: last.SentAt})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].UpdatedAt.Equal(out[j].UpdatedAt) {
			return out[i].Peer.ID < out[j].Peer.ID
		}
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	return out
}

func (s *CommunityService) Conversation(userID uint, peerID string) (*Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	peer, ok := s.member(peerID)
	if !ok {
		return nil, ErrMemberNotFound
	}
	u := s.user(userID)
	msgs := append([]DirectMessage(nil), u.conversations[peerID]...)
	return &Conversation{Peer: peer, Messages: msgs}, nil
}

// Send appends the message and a canned reply from the peer.
func (s *CommunityService) Send(userID uint, peerID, body string) (*Conversation, error) {
	body = strings.TrimSpace(body)
	if body == "" || len([]rune(body)) > maxMessageLength {
		return nil, ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	peer, ok := s.member(peerID)
	if !ok {
		return nil, ErrMemberNotFound
	}
	u := s.user(userID)
	now := s.now()
	u.conversations[peerID] = append(u.conversations[peerID],
		DirectMessage{From: "me", Body: body, SentAt: now},
		DirectMessage{From: peer.ID, Body: autoReply(peer), SentAt: now.Add(time.Second)},
	)
	s.notify(u, "message", fmt.Sprintf("%s replied to your message.", peer.Name))

	msgs := append([]DirectMessage(nil), u.conversations[peerID]...)
	return &Conversation{Peer: peer, Messages: msgs}, nil
}

// Notifications returns newest first with the unread count.
func (s *CommunityService) Notifications(userID uint) ([]Notification, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.user(userID)

	out := make([]Notification, len(u.notifications))
	unread := 0
	for i, n := range u.notifications {
		out[len(out)-1-i] = n
		if !n.Read {
			unread++
		}
	}
	return out, unread
}

func (s *CommunityService) MarkRead(userID uint, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.user(userID)
	for i := range u.notifications {
		if u.notifications[i].ID == id {
			u.notifications[i].Read = true
			return nil
		}
	}
	return ErrNotificationNotFound
}

func (s *CommunityService) MarkAllRead(userID uint) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.user(userID)
	n := 0
	for i := range u.notifications {
		if !u.notifications[i].Read {
			u.notifications[i].Read = true
			n++
		}
	}
	return n
}

// PurgeUser drops the in-memory state of a deleted account.
func (s *CommunityService) PurgeUser(_ context.Context, userID uint) error {
	s.mu.Lock()
	delete(s.users, userID)
	s.mu.Unlock()
	return nil
}

// user must be called with the write lock held.
func (s *CommunityService) user(userID uint) *userSocial {
	u, ok := s.users[userID]
	if ok {
		return u
	}
	u = &userSocial{
		joined:        map[string]bool{},
		conversations: map[string][]DirectMessage{},
	}
	now := s.now()
	u.conversations["m1"] = []DirectMessage{{From: "m1", Body: "Welcome! Happy to share notes on research methods anytime.", SentAt: now}}
	s.notify(u, "welcome", "Welcome to the community. Join a study group to get started.")
	s.users[userID] = u
	return u
}

func (s *CommunityService) notify(u *userSocial, kind, text string) {
	u.nextNoteID++
	u.notifications = append(u.notifications, Notification{
		ID:        u.nextNoteID,
		Kind:      kind,
		Text:      text,
		CreatedAt: s.now(),
	})
}

func (s *CommunityService) member(id string) (Member, bool) {
	for _, m := range s.members {
		if m.ID == id {
			return m, true
		}
	}
	return Member{}, false
}

func autoReply(peer Member) string {
	return fmt.Sprintf("Thanks for reaching out! I'm mostly working on %s these days, let's talk soon.", strings.ToLower(peer.Field))
}

func seedMembers() []Member {
	return []Member{
		{ID: "m1", Name: "Amara Okafor", Institution: "University of Lagos", Field: "Environmental Science", Avatar: "leaf"},
		{ID: "m2", Name: "Lukas Brandt", Institution: "TU Munich", Field: "Computer Science", Avatar: "chip"},
		{ID: "m3", Name: "Sofia Marquez", Institution: "UNAM", Field: "Sociology", Avatar: "globe"},
		{ID: "m4", Name: "Hiro Tanaka", Institution: "Kyoto University", Field: "Marine Biology", Avatar: "wave"},
		{ID: "m5", Name: "Priya Raman", Institution: "IISc Bangalore", Field: "Data Science", Avatar: "chart"},
	}
}

func seedGroups() []Group {
	return []Group{
		{ID: "g1", Name: "Thesis Writers Circle", Description: "Weekly accountability for long-form writing.", Members: 128},
		{ID: "g2", Name: "Field Methods", Description: "Sampling, transects and field safety.", Members: 54},
		{ID: "g3", Name: "Stats Help Desk", Description: "Ask anything about regression, tests and plots.", Members: 231},
	}
}
