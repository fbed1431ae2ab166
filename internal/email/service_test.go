package email

import (
	"context"
	"encoding/json"
	"errors"
	"net/smtp"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"warnetbook/internal/logger"
	"warnetbook/internal/user"
)

func TestMain(m *testing.M) {
	logger.Init()

	code := m.Run()
	os.Exit(code)
}

func newTestService(rdb *redis.Client) *Service {
	svc := New(rdb, Config{
		From:     "noreply@warnetbook.id",
		FromName: "DompetBowar",
		SMTPHost: "smtp.test.local",
		SMTPPort: "587",
		SMTPUser: "test@example.com",
		SMTPPass: "password",
	})
	svc.retryDelay = time.Millisecond
	return svc
}

func TestSend(t *testing.T) {
	db, mock := redismock.NewClientMock()
	mock.Regexp().ExpectLPush(queueKey, `"subject":"Hello"`).SetVal(1)

	err := newTestService(db).Send(context.Background(), "user@example.com", "User", "Hello", "Test body")
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSendError(t *testing.T) {
	db, mock := redismock.NewClientMock()
	mock.Regexp().ExpectLPush(queueKey, `.*`).SetErr(assert.AnError)

	err := newTestService(db).Send(context.Background(), "user@example.com", "User", "Hello", "Test body")
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDomainMailsAreQueuedWithType(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		send    func(s *Service) error
	}{
		{"topup approved", `"type":"topup_approved"`, func(s *Service) error {
			return s.SendTopupApproved(context.Background(), "budi@example.com", "Budi", 50000, 70000)
		}},
		{"topup rejected", `"type":"topup_rejected"`, func(s *Service) error {
			return s.SendTopupRejected(context.Background(), "budi@example.com", "Budi", 50000, "transfer not received")
		}},
		{"booking receipt", `"subject":"Booking #5 paid"`, func(s *Service) error {
			return s.SendBookingReceipt(context.Background(), "budi@example.com", "Budi", 5, 8000, "wallet", time.Now())
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := redismock.NewClientMock()
			mock.Regexp().ExpectLPush(queueKey, tt.pattern).SetVal(1)

			require.NoError(t, tt.send(newTestService(db)))
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestQueueLength(t *testing.T) {
	db, mock := redismock.NewClientMock()
	mock.ExpectLLen(queueKey).SetVal(5)

	assert.Equal(t, int64(5), newTestService(db).QueueLength(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeliver(t *testing.T) {
	job := Job{Type: "generic", To: "user@example.com", Subject: "Hi", Body: "body"}

	t.Run("success sends once", func(t *testing.T) {
		db, mock := redismock.NewClientMock()
		svc := newTestService(db)

		var sent []string
		svc.send = func(addr string, _ smtp.Auth, from string, to []string, msg []byte) error {
			sent = append(sent, addr)
			assert.Equal(t, "noreply@warnetbook.id", from)
			assert.True(t, strings.Contains(string(msg), "Subject: Hi\r\n"))
			return nil
		}

		svc.deliver(context.Background(), job)
		assert.Equal(t, []string{"smtp.test.local:587"}, sent)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("failure is requeued with the attempt count", func(t *testing.T) {
		db, mock := redismock.NewClientMock()
		svc := newTestService(db)
		svc.send = func(string, smtp.Auth, string, []string, []byte) error { return errors.New("smtp down") }
		mock.Regexp().ExpectLPush(queueKey, `"tries":1`).SetVal(1)

		svc.deliver(context.Background(), job)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("last attempt is parked", func(t *testing.T) {
		db, mock := redismock.NewClientMock()
		svc := newTestService(db)
		svc.send = func(string, smtp.Auth, string, []string, []byte) error { return errors.New("smtp down") }
		mock.Regexp().ExpectLPush(failedQueueKey, `smtp down`).SetVal(1)

		final := job
		final.Tries = maxTries - 1
		svc.deliver(context.Background(), final)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestProcessNextDecodesQueuedJob(t *testing.T) {
	db, mock := redismock.NewClientMock()
	svc := newTestService(db)

	data, err := json.Marshal(Job{Type: "generic", To: "user@example.com", Subject: "Hi"})
	require.NoError(t, err)
	mock.ExpectBRPop(2*time.Second, queueKey).SetVal([]string{queueKey, string(data)})

	delivered := 0
	svc.send = func(string, smtp.Auth, string, []string, []byte) error {
		delivered++
		return nil
	}

	svc.processNext(context.Background())
	assert.Equal(t, 1, delivered)
	assert.NoError(t, mock.ExpectationsWereMet())
}

type stubUsers map[int]*user.User

func (s stubUsers) GetByID(_ context.Context, id int) (*user.User, error) {
	if u, ok := s[id]; ok {
		return u, nil
	}
	return nil, user.ErrUserNotFound
}

func TestReceipts(t *testing.T) {
	db, mock := redismock.NewClientMock()
	users := stubUsers{7: {ID: 7, FullName: "Budi", Email: "budi@example.com"}}
	receipts := NewReceipts(newTestService(db), users)

	mock.Regexp().ExpectLPush(queueKey, `"to":"budi@example.com"`).SetVal(1)
	receipts.TopupApproved(context.Background(), 7, 50000, 50000)

	// Unknown users are skipped without touching the queue.
	receipts.BookingPaid(context.Background(), 99, 5, 8000, "wallet")

	assert.NoError(t, mock.ExpectationsWereMet())
}
