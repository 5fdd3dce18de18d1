package notification

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/cmlabs-hris/office-portal-go/internal/domain/notification"
	"github.com/cmlabs-hris/office-portal-go/internal/domain/user"
	"github.com/cmlabs-hris/office-portal-go/internal/pkg/email"
	"github.com/cmlabs-hris/office-portal-go/internal/pkg/sse"
)

// Config holds notification service configuration
type Config struct {
	WorkerCount int    // default: 2
	QueueSize   int    // default: 256
	PortalURL   string // linked from emails
}

type service struct {
	users  user.UserRepository
	mailer email.EmailService
	hub    *sse.Hub
	config Config

	mu     sync.RWMutex
	closed bool
	queue  chan notification.Message
	wg     sync.WaitGroup
}

// NewNotificationService creates a notification service whose admin
// broadcasts are delivered by background workers.
func NewNotificationService(users user.UserRepository, mailer email.EmailService, hub *sse.Hub, cfg Config) notification.Service {
	if cfg.WorkerCount == 0 {
		cfg.WorkerCount = 2
	}
	if cfg.QueueSize == 0 {
		cfg.QueueSize = 256
	}

	s := &service{
		users:  users,
		mailer: mailer,
		hub:    hub,
		config: cfg,
		queue:  make(chan notification.Message, cfg.QueueSize),
	}

	for i := 0; i < cfg.WorkerCount; i++ {
		s.wg.Add(1)
		go s.worker(i)
	}

	slog.Info("Notification service started", "workers", cfg.WorkerCount, "queue_size", cfg.QueueSize)
	return s
}

func (s *service) worker(id int) {
	defer s.wg.Done()
	for msg := range s.queue {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		sent := s.broadcast(ctx, msg)
		cancel()
		slog.Debug("Admin broadcast delivered", "worker", id, "kind", msg.Kind, "request_id", msg.RequestID, "sent", sent)
	}
}

// NotifyAdmins queues the broadcast; when the queue is full it is delivered inline.
func (s *service) NotifyAdmins(ctx context.Context, msg notification.Message) {
	if err := msg.Validate(); err != nil {
		slog.Error("Dropping invalid admin notification", "kind", msg.Kind, "error", err)
		return
	}
	queued := false
	s.mu.RLock()
	if !s.closed {
		select {
		case s.queue <- msg:
			queued = true
		default:
		}
	}
	s.mu.RUnlock()

	if !queued {
		s.broadcast(ctx, msg)
	}
}

// broadcast emails each active admin and returns how many sends succeeded.
// A failing recipient never stops delivery to the rest.
func (s *service) broadcast(ctx context.Context, msg notification.Message) int {
	admins, err := s.users.ListAdmins(ctx)
	if err != nil {
		slog.Error("Failed to list admins for notification", "kind", msg.Kind, "error", err)
		return 0
	}

	sent := 0
	for _, admin := range admins {
		if !admin.IsActive {
			continue
		}
		data := s.render(msg, admin.FullName)
		if err := s.mailer.SendRequestEmail(email.Recipient{Email: admin.Email, Name: admin.FullName}, data); err != nil {
			slog.Error("Failed to email admin", "admin_id", admin.ID, "kind", msg.Kind, "request_id", msg.RequestID, "error", err)
			continue
		}
		sent++
	}
	return sent
}

func (s *service) NotifyUser(ctx context.Context, userID string, msg notification.Message) error {
	if err := msg.Validate(); err != nil {
		return err
	}
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return notification.ErrRecipientNotFound
	}
	return s.mailer.SendRequestEmail(email.Recipient{Email: u.Email, Name: u.FullName}, s.render(msg, u.FullName))
}

func (s *service) render(msg notification.Message, recipientName string) email.RequestEmail {
	tpl := email.TemplateRequestSubmitted
	switch msg.Outcome {
	case notification.OutcomeApproved:
		tpl = email.TemplateRequestApproved
	case notification.OutcomeRejected:
		tpl = email.TemplateRequestRejected
	}

	details := make([]email.Detail, 0, len(msg.Details))
	for _, d := range msg.Details {
		details = append(details, email.Detail{Label: d.Label, Value: d.Value})
	}

	return email.RequestEmail{
		Template:      tpl,
		Subject:       msg.Subject(),
		RecipientName: recipientName,
		ActorName:     msg.ActorName,
		RequestLabel:  msg.Kind.Noun(),
		Summary:       msg.Summary,
		Details:       details,
		Reason:        msg.Reason,
		PortalURL:     s.config.PortalURL,
	}
}

func (s *service) Publish(userID string, name string, data interface{}) {
	s.hub.Publish(userID, sse.Event{
		ID:    uuid.NewString(),
		Event: name,
		Data:  data,
	})
}

// Subscribe creates an SSE subscription for a user
func (s *service) Subscribe(ctx context.Context, userID string, isAdmin bool) (<-chan notification.Event, func()) {
	ch, cleanup := s.hub.Subscribe(userID, isAdmin)

	out := make(chan notification.Event, 16)

	go func() {
		defer close(out)
		for {
			select {
			case event, ok := <-ch:
				if !ok {
					return
				}
				select {
				case out <- notification.Event{ID: event.ID, Name: event.Event, Data: event.Data}:
				case <-ctx.Done():
					return
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	return out, cleanup
}

// Close stops accepting broadcasts and waits for queued ones to finish.
func (s *service) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	close(s.queue)
	s.mu.Unlock()

	s.wg.Wait()
	slog.Info("Notification service stopped")
}
