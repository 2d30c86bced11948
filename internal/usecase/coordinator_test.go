package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/RamaShankarRay/XGpt/internal/domain"
	"github.com/RamaShankarRay/XGpt/internal/domain/entity"
	"github.com/RamaShankarRay/XGpt/internal/domain/mocks"
)

// fakeStore is an in-memory functional ChatStore for coordinator tests
type fakeStore struct {
	mu     sync.Mutex
	chats  map[string][]*entity.Chat
	msgs   map[string][]*entity.Message
	nextID int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		chats: make(map[string][]*entity.Chat),
		msgs:  make(map[string][]*entity.Message),
	}
}

func (s *fakeStore) msgKey(userID, chatID string) string {
	return userID + "/" + chatID
}

func (s *fakeStore) ListChats(ctx context.Context, userID string) ([]*entity.Chat, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	chats := make([]*entity.Chat, len(s.chats[userID]))
	for i, chat := range s.chats[userID] {
		chats[i] = chat.Clone()
	}
	sort.SliceStable(chats, func(i, j int) bool {
		return chats[i].UpdatedAt > chats[j].UpdatedAt
	})
	return chats, nil
}

func (s *fakeStore) SaveChat(ctx context.Context, userID string, chat *entity.Chat) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, existing := range s.chats[userID] {
		if existing.ID == chat.ID {
			s.chats[userID][i] = chat.Clone()
			return nil
		}
	}
	s.chats[userID] = append(s.chats[userID], chat.Clone())
	return nil
}

func (s *fakeStore) DeleteChat(ctx context.Context, userID, chatID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.chats[userID][:0]
	found := false
	for _, chat := range s.chats[userID] {
		if chat.ID == chatID {
			found = true
			continue
		}
		kept = append(kept, chat)
	}
	if !found {
		return domain.NewNotFoundError("chat", chatID)
	}
	s.chats[userID] = kept
	delete(s.msgs, s.msgKey(userID, chatID))
	return nil
}

func (s *fakeStore) ListMessages(ctx context.Context, userID, chatID string) ([]*entity.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := s.msgs[s.msgKey(userID, chatID)]
	messages := make([]*entity.Message, len(stored))
	copy(messages, stored)
	sort.SliceStable(messages, func(i, j int) bool {
		return messages[i].Timestamp < messages[j].Timestamp
	})
	return messages, nil
}

func (s *fakeStore) SaveMessage(ctx context.Context, userID string, message *entity.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := s.msgKey(userID, message.ChatID)
	copied := *message
	s.msgs[key] = append(s.msgs[key], &copied)
	return nil
}

func (s *fakeStore) GenerateID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	return fmt.Sprintf("id-%d", s.nextID)
}

func (s *fakeStore) SubscribeChats(ctx context.Context, userID string) (*domain.ChatSubscription, error) {
	chats, _ := s.ListChats(ctx, userID)
	ch := make(chan []*entity.Chat, 1)
	ch <- chats
	return &domain.ChatSubscription{Updates: ch, Close: func() {}}, nil
}

func (s *fakeStore) SubscribeMessages(ctx context.Context, userID, chatID string) (*domain.MessageSubscription, error) {
	messages, _ := s.ListMessages(ctx, userID, chatID)
	ch := make(chan []*entity.Message, 1)
	ch <- messages
	return &domain.MessageSubscription{Updates: ch, Close: func() {}}, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newLocalCoordinator builds an initialized local-only coordinator
func newLocalCoordinator(t *testing.T, completion domain.CompletionClient) (*Coordinator, *fakeStore) {
	t.Helper()
	local := newFakeStore()
	c := NewCoordinator(nil, local, completion, "", testLogger())
	if err := c.Initialize(context.Background(), "user-1"); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	t.Cleanup(c.Close)
	return c, local
}

func TestDeriveTitle(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"single word", "hi", "hi"},
		{"exactly six words", "one two three four five six", "one two three four five six"},
		{"seven words truncated", "one two three four five six seven", "one two three four five six..."},
		{"extra whitespace collapsed", "  Explain   recursion\tin  five words  ", "Explain recursion in five words"},
		{"long question", "Explain how garbage collection works in the Go runtime", "Explain how garbage collection works in..."},
		{"empty content", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := deriveTitle(tt.content); got != tt.want {
				t.Errorf("deriveTitle(%q) = %q, want %q", tt.content, got, tt.want)
			}
		})
	}
}

func TestCreateChat(t *testing.T) {
	c, _ := newLocalCoordinator(t, &mocks.MockCompletionClient{})

	chat, err := c.CreateChat(context.Background())
	if err != nil {
		t.Fatalf("CreateChat failed: %v", err)
	}

	if chat.Title != "New Chat" {
		t.Errorf("title = %q, want %q", chat.Title, "New Chat")
	}
	if chat.MessageCount != 0 {
		t.Errorf("messageCount = %d, want 0", chat.MessageCount)
	}
	if chat.CreatedAt == 0 || chat.UpdatedAt == 0 {
		t.Errorf("timestamps not set: createdAt=%d updatedAt=%d", chat.CreatedAt, chat.UpdatedAt)
	}

	current := c.CurrentChat()
	if current == nil || current.ID != chat.ID {
		t.Fatalf("current chat not set to the new chat")
	}

	chats := c.Chats()
	if len(chats) != 1 || chats[0].ID != chat.ID {
		t.Errorf("chat list not refreshed, got %d chats", len(chats))
	}
}

func TestCreateChatRequiresUser(t *testing.T) {
	c := NewCoordinator(nil, newFakeStore(), &mocks.MockCompletionClient{}, "", testLogger())

	if _, err := c.CreateChat(context.Background()); !errors.Is(err, domain.ErrNoUser) {
		t.Errorf("err = %v, want ErrNoUser", err)
	}
}

func TestSelectChat(t *testing.T) {
	c, _ := newLocalCoordinator(t, &mocks.MockCompletionClient{})

	first, err := c.CreateChat(context.Background())
	if err != nil {
		t.Fatalf("CreateChat failed: %v", err)
	}
	second, err := c.CreateChat(context.Background())
	if err != nil {
		t.Fatalf("CreateChat failed: %v", err)
	}

	if err := c.SelectChat(context.Background(), first.ID); err != nil {
		t.Fatalf("SelectChat failed: %v", err)
	}
	if current := c.CurrentChat(); current == nil || current.ID != first.ID {
		t.Errorf("current chat = %v, want %s", current, first.ID)
	}

	if err := c.SelectChat(context.Background(), "missing"); !domain.IsNotFound(err) {
		t.Errorf("err = %v, want not found", err)
	}
	// Failed select keeps the previous selection
	if current := c.CurrentChat(); current == nil || current.ID != first.ID {
		t.Errorf("selection changed after failed select")
	}

	if err := c.SelectChat(context.Background(), second.ID); err != nil {
		t.Fatalf("SelectChat failed: %v", err)
	}
	if current := c.CurrentChat(); current == nil || current.ID != second.ID {
		t.Errorf("current chat = %v, want %s", current, second.ID)
	}
}

func TestSendMessage(t *testing.T) {
	completion := &mocks.MockCompletionClient{
		CreateCompletionFunc: func(ctx context.Context, req *domain.CompletionRequest) (*domain.CompletionResult, error) {
			if req.Model != "gpt-4o" {
				t.Errorf("model = %q, want gpt-4o", req.Model)
			}
			if req.Temperature != 0.7 {
				t.Errorf("temperature = %v, want 0.7", req.Temperature)
			}
			if req.MaxTokens != 1000 {
				t.Errorf("maxTokens = %d, want 1000", req.MaxTokens)
			}
			return &domain.CompletionResult{
				Content: "Functions calling themselves until done.",
				Role:    string(entity.RoleAssistant),
			}, nil
		},
	}
	c, _ := newLocalCoordinator(t, completion)

	if _, err := c.CreateChat(context.Background()); err != nil {
		t.Fatalf("CreateChat failed: %v", err)
	}

	if err := c.SendMessage(context.Background(), "Explain recursion in five words"); err != nil {
		t.Fatalf("SendMessage failed: %v", err)
	}

	messages := c.Messages()
	if len(messages) != 2 {
		t.Fatalf("got %d messages, want 2", len(messages))
	}
	if messages[0].Role != entity.RoleUser || messages[0].Content != "Explain recursion in five words" {
		t.Errorf("first message = %+v, want the user turn", messages[0])
	}
	if messages[1].Role != entity.RoleAssistant || messages[1].Content != "Functions calling themselves until done." {
		t.Errorf("second message = %+v, want the assistant turn", messages[1])
	}

	current := c.CurrentChat()
	if current.Title != "Explain recursion in five words" {
		t.Errorf("title = %q, want the first message", current.Title)
	}
	if current.MessageCount != 2 {
		t.Errorf("messageCount = %d, want 2", current.MessageCount)
	}
}

func TestSendMessageHistoryGrows(t *testing.T) {
	var lastHistory []domain.CompletionMessage
	completion := &mocks.MockCompletionClient{
		CreateCompletionFunc: func(ctx context.Context, req *domain.CompletionRequest) (*domain.CompletionResult, error) {
			lastHistory = req.Messages
			return &domain.CompletionResult{Content: "ok", Role: string(entity.RoleAssistant)}, nil
		},
	}
	c, _ := newLocalCoordinator(t, completion)

	if _, err := c.CreateChat(context.Background()); err != nil {
		t.Fatalf("CreateChat failed: %v", err)
	}

	if err := c.SendMessage(context.Background(), "first question"); err != nil {
		t.Fatalf("SendMessage failed: %v", err)
	}
	if len(lastHistory) != 1 {
		t.Fatalf("first send history = %d turns, want 1", len(lastHistory))
	}

	if err := c.SendMessage(context.Background(), "second question"); err != nil {
		t.Fatalf("SendMessage failed: %v", err)
	}
	if len(lastHistory) != 3 {
		t.Fatalf("second send history = %d turns, want 3", len(lastHistory))
	}
	if lastHistory[2].Role != entity.RoleUser || lastHistory[2].Content != "second question" {
		t.Errorf("history tail = %+v, want the new user turn", lastHistory[2])
	}

	current := c.CurrentChat()
	if current.MessageCount != 4 {
		t.Errorf("messageCount = %d, want 4", current.MessageCount)
	}
	if current.Title != "first question" {
		t.Errorf("title = %q, want unchanged after second send", current.Title)
	}
}

func TestSendMessageGuards(t *testing.T) {
	c := NewCoordinator(nil, newFakeStore(), &mocks.MockCompletionClient{}, "", testLogger())
	if err := c.SendMessage(context.Background(), "hello"); !errors.Is(err, domain.ErrNoUser) {
		t.Errorf("err = %v, want ErrNoUser", err)
	}

	if err := c.Initialize(context.Background(), "user-1"); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	defer c.Close()

	if err := c.SendMessage(context.Background(), "hello"); !errors.Is(err, domain.ErrNoChat) {
		t.Errorf("err = %v, want ErrNoChat", err)
	}
}

func TestSendMessageBusy(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	var enteredOnce sync.Once
	completion := &mocks.MockCompletionClient{
		CreateCompletionFunc: func(ctx context.Context, req *domain.CompletionRequest) (*domain.CompletionResult, error) {
			enteredOnce.Do(func() { close(entered) })
			<-release
			return &domain.CompletionResult{Content: "ok", Role: string(entity.RoleAssistant)}, nil
		},
	}
	c, _ := newLocalCoordinator(t, completion)

	if _, err := c.CreateChat(context.Background()); err != nil {
		t.Fatalf("CreateChat failed: %v", err)
	}

	done := make(chan error, 1)
	go func() {
		done <- c.SendMessage(context.Background(), "slow question")
	}()

	<-entered
	if err := c.SendMessage(context.Background(), "impatient question"); !errors.Is(err, domain.ErrBusy) {
		t.Errorf("err = %v, want ErrBusy", err)
	}

	close(release)
	if err := <-done; err != nil {
		t.Fatalf("first send failed: %v", err)
	}

	// Completion finished, the lock is released
	if err := c.SendMessage(context.Background(), "follow-up"); errors.Is(err, domain.ErrBusy) {
		t.Errorf("still busy after send completed")
	}
}

func TestSendMessageCompletionError(t *testing.T) {
	completion := &mocks.MockCompletionClient{
		CreateCompletionFunc: func(ctx context.Context, req *domain.CompletionRequest) (*domain.CompletionResult, error) {
			return nil, errors.New("upstream exploded")
		},
	}
	c, local := newLocalCoordinator(t, completion)

	if _, err := c.CreateChat(context.Background()); err != nil {
		t.Fatalf("CreateChat failed: %v", err)
	}
	chatID := c.CurrentChat().ID

	err := c.SendMessage(context.Background(), "doomed question")
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "failed to get assistant reply") {
		t.Errorf("err = %v, want assistant reply failure", err)
	}

	// The user turn stays persisted, nothing is rolled back
	stored, err := local.ListMessages(context.Background(), "user-1", chatID)
	if err != nil {
		t.Fatalf("ListMessages failed: %v", err)
	}
	if len(stored) != 1 || stored[0].Role != entity.RoleUser {
		t.Fatalf("stored messages = %d, want the orphaned user turn", len(stored))
	}

	messages := c.Messages()
	if len(messages) != 1 {
		t.Errorf("cached messages = %d, want 1", len(messages))
	}
	if current := c.CurrentChat(); current.MessageCount != 1 {
		t.Errorf("messageCount = %d, want 1 after failed send", current.MessageCount)
	}
}

func TestInitializeFallsBackWhenSubscribeFails(t *testing.T) {
	local := newFakeStore()
	seeded := &entity.Chat{ID: "c1", Title: "saved earlier", UserID: "user-1", UpdatedAt: 10}
	if err := local.SaveChat(context.Background(), "user-1", seeded); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	remote := &mocks.MockChatStore{
		SubscribeChatsFunc: func(ctx context.Context, userID string) (*domain.ChatSubscription, error) {
			return nil, errors.New("connection refused")
		},
	}

	c := NewCoordinator(remote, local, &mocks.MockCompletionClient{}, "", testLogger())
	if err := c.Initialize(context.Background(), "user-1"); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	defer c.Close()

	if c.UsingRemote() {
		t.Error("still using remote after subscribe failure")
	}
	chats := c.Chats()
	if len(chats) != 1 || chats[0].ID != "c1" {
		t.Errorf("chats = %d, want the locally saved chat", len(chats))
	}
}

func TestStickyFallbackOnWrite(t *testing.T) {
	local := newFakeStore()
	remoteCalls := 0
	remote := &mocks.MockChatStore{
		SaveChatFunc: func(ctx context.Context, userID string, chat *entity.Chat) error {
			remoteCalls++
			return errors.New("connection reset")
		},
	}

	c := NewCoordinator(remote, local, &mocks.MockCompletionClient{}, "", testLogger())
	if err := c.Initialize(context.Background(), "user-1"); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	defer c.Close()

	if !c.UsingRemote() {
		t.Fatal("expected remote mode after initialize")
	}

	chat, err := c.CreateChat(context.Background())
	if err != nil {
		t.Fatalf("CreateChat failed: %v", err)
	}
	if c.UsingRemote() {
		t.Error("not flipped to local after remote write failure")
	}
	if remoteCalls != 1 {
		t.Errorf("remote SaveChat called %d times, want 1", remoteCalls)
	}

	// The write landed locally
	chats, err := local.ListChats(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("ListChats failed: %v", err)
	}
	if len(chats) != 1 || chats[0].ID != chat.ID {
		t.Fatalf("chat not persisted locally")
	}

	// The fallback is sticky: later writes never touch the remote store
	if _, err := c.CreateChat(context.Background()); err != nil {
		t.Fatalf("CreateChat failed: %v", err)
	}
	if remoteCalls != 1 {
		t.Errorf("remote SaveChat called %d times after fallback, want 1", remoteCalls)
	}
}

func TestDeleteChat(t *testing.T) {
	c, _ := newLocalCoordinator(t, &mocks.MockCompletionClient{})

	chat, err := c.CreateChat(context.Background())
	if err != nil {
		t.Fatalf("CreateChat failed: %v", err)
	}

	if err := c.DeleteChat(context.Background(), chat.ID); err != nil {
		t.Fatalf("DeleteChat failed: %v", err)
	}

	if current := c.CurrentChat(); current != nil {
		t.Errorf("current chat = %v, want nil after deleting the selected chat", current)
	}
	if messages := c.Messages(); len(messages) != 0 {
		t.Errorf("messages = %d, want 0", len(messages))
	}
	if chats := c.Chats(); len(chats) != 0 {
		t.Errorf("chats = %d, want 0", len(chats))
	}
}

func TestDeleteChatKeepsOtherSelection(t *testing.T) {
	c, _ := newLocalCoordinator(t, &mocks.MockCompletionClient{})

	kept, err := c.CreateChat(context.Background())
	if err != nil {
		t.Fatalf("CreateChat failed: %v", err)
	}
	doomed, err := c.CreateChat(context.Background())
	if err != nil {
		t.Fatalf("CreateChat failed: %v", err)
	}

	if err := c.SelectChat(context.Background(), kept.ID); err != nil {
		t.Fatalf("SelectChat failed: %v", err)
	}
	if err := c.DeleteChat(context.Background(), doomed.ID); err != nil {
		t.Fatalf("DeleteChat failed: %v", err)
	}

	if current := c.CurrentChat(); current == nil || current.ID != kept.ID {
		t.Errorf("selection lost after deleting another chat")
	}
}
