package notify

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu    sync.Mutex
	mails []Message
	posts []string
	fail  error
}

func (r *recorder) SendMail(msg Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail != nil {
		return r.fail
	}
	r.mails = append(r.mails, msg)
	return nil
}

func (r *recorder) PostChannel(text string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail != nil {
		return r.fail
	}
	r.posts = append(r.posts, text)
	return nil
}

func (r *recorder) snapshot() ([]Message, []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Message(nil), r.mails...), append([]string(nil), r.posts...)
}

func TestBusNotifierForward(t *testing.T) {
	bus := NewBusNotifier()
	dst := &recorder{}
	done := make(chan struct{})
	sub := bus.Bus.Subscribe()
	go func() {
		Forward(sub, dst, nil)
		close(done)
	}()

	require.NoError(t, bus.SendMail(Message{To: "alice@example.com", Subject: "hi"}))
	require.NoError(t, bus.PostChannel("charger free"))
	bus.Bus.Close()
	<-done

	mails, posts := dst.snapshot()
	require.Len(t, mails, 1)
	assert.Equal(t, "alice@example.com", mails[0].To)
	assert.Equal(t, []string{"charger free"}, posts)
}

func TestMultiFansOutAndKeepsFirstError(t *testing.T) {
	ok := &recorder{}
	bad := &recorder{fail: errors.New("smtp down")}
	m := Multi{bad, ok}

	err := m.SendMail(Message{To: "bob@example.com"})
	require.EqualError(t, err, "smtp down")
	mails, _ := ok.snapshot()
	assert.Len(t, mails, 1, "healthy transports still receive the message")
}
