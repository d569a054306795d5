package events

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	natsserver "github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"

	"github.com/leandroborgeseng/gestor-de-projetos-sub001/internal/model"
)

// startTestNATS starts an embedded NATS server and returns its client URL.
func startTestNATS(t *testing.T) string {
	t.Helper()
	opts := &natsserver.Options{Host: "127.0.0.1", Port: -1}
	srv, err := natsserver.NewServer(opts)
	if err != nil {
		t.Fatalf("starting embedded NATS: %v", err)
	}
	srv.Start()
	t.Cleanup(srv.Shutdown)
	if !srv.ReadyForConnections(5 * time.Second) {
		t.Fatal("embedded NATS not ready")
	}
	return srv.ClientURL()
}

func TestNoopPublisher(t *testing.T) {
	pub := &NoopPublisher{}
	if err := pub.Publish(context.Background(), TopicSprintCloned, SprintCloned{}); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if err := pub.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}

func TestNATSPublisher_Publish(t *testing.T) {
	url := startTestNATS(t)

	pub, err := NewNATSPublisher(url)
	if err != nil {
		t.Fatalf("creating publisher: %v", err)
	}
	defer pub.Close()

	nc, err := nats.Connect(url)
	if err != nil {
		t.Fatalf("connecting subscriber: %v", err)
	}
	defer nc.Close()

	ch := make(chan *nats.Msg, 1)
	sub, err := nc.ChanSubscribe(TopicDependencyCreated, ch)
	if err != nil {
		t.Fatalf("subscribing: %v", err)
	}
	defer sub.Unsubscribe() //nolint:errcheck
	nc.Flush()

	event := DependencyCreated{
		ProjectID:  "prj-1",
		Dependency: &model.TaskDependency{ID: "dep-1", PredecessorID: "tsk-a", SuccessorID: "tsk-b"},
	}
	if err := pub.Publish(context.Background(), TopicDependencyCreated, event); err != nil {
		t.Fatalf("Publish error: %v", err)
	}
	pub.conn.Flush()

	select {
	case msg := <-ch:
		var got DependencyCreated
		if err := json.Unmarshal(msg.Data, &got); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if got.ProjectID != "prj-1" || got.Dependency.SuccessorID != "tsk-b" {
			t.Errorf("got %+v", got)
		}
		if h := msg.Header.Get(ProjectHeader); h != "prj-1" {
			t.Errorf("%s header = %q, want prj-1", ProjectHeader, h)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for published message")
	}
}

func TestNATSPublisher_CancelledContext(t *testing.T) {
	url := startTestNATS(t)

	pub, err := NewNATSPublisher(url)
	if err != nil {
		t.Fatalf("creating publisher: %v", err)
	}
	defer pub.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := pub.Publish(ctx, TopicSprintCloned, SprintCloned{}); err == nil {
		t.Error("expected error publishing with a cancelled context")
	}
}

func TestNATSPublisher_Close(t *testing.T) {
	url := startTestNATS(t)

	pub, err := NewNATSPublisher(url)
	if err != nil {
		t.Fatalf("creating publisher: %v", err)
	}
	if err := pub.Close(); err != nil {
		t.Fatalf("Close error: %v", err)
	}
	if err := pub.Publish(context.Background(), TopicDependencyDeleted, DependencyDeleted{}); err == nil {
		t.Error("expected error publishing after close")
	}
}

func TestNATSSubscriber_WildcardReceivesAllTopics(t *testing.T) {
	url := startTestNATS(t)

	pub, err := NewNATSPublisher(url)
	if err != nil {
		t.Fatalf("creating publisher: %v", err)
	}
	defer pub.Close()

	sub, err := NewNATSSubscriber(url)
	if err != nil {
		t.Fatalf("creating subscriber: %v", err)
	}
	defer sub.Close()

	ch, cancel, err := sub.Subscribe(TopicAll)
	if err != nil {
		t.Fatalf("subscribing: %v", err)
	}
	defer cancel()

	ctx := context.Background()
	for _, tc := range []struct {
		topic string
		event any
	}{
		{TopicDependencyCreated, DependencyCreated{ProjectID: "prj-1"}},
		{TopicDependencyDeleted, DependencyDeleted{ProjectID: "prj-1", DependencyID: "dep-1"}},
		{TopicSprintCloned, SprintCloned{ProjectID: "prj-1", TaskCount: 2}},
	} {
		if err := pub.Publish(ctx, tc.topic, tc.event); err != nil {
			t.Fatalf("Publish(%s): %v", tc.topic, err)
		}
	}
	pub.conn.Flush()

	for i := range 3 {
		select {
		case msg := <-ch:
			var body map[string]any
			if err := json.Unmarshal(msg, &body); err != nil {
				t.Fatalf("message %d is not JSON: %v", i, err)
			}
			if body["project_id"] != "prj-1" {
				t.Errorf("message %d project_id = %v", i, body["project_id"])
			}
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for message %d", i)
		}
	}
}

func TestNATSSubscriber_SubscribeProject(t *testing.T) {
	url := startTestNATS(t)

	pub, err := NewNATSPublisher(url)
	if err != nil {
		t.Fatalf("creating publisher: %v", err)
	}
	defer pub.Close()

	sub, err := NewNATSSubscriber(url)
	if err != nil {
		t.Fatalf("creating subscriber: %v", err)
	}
	defer sub.Close()

	ch, cancel, err := sub.SubscribeProject(TopicAll, "prj-2")
	if err != nil {
		t.Fatalf("subscribing: %v", err)
	}
	defer cancel()

	ctx := context.Background()
	if err := pub.Publish(ctx, TopicDependencyCreated, DependencyCreated{ProjectID: "prj-1"}); err != nil {
		t.Fatal(err)
	}
	if err := pub.Publish(ctx, TopicSprintCloned, SprintCloned{ProjectID: "prj-2", SourceSprintID: "spr-1"}); err != nil {
		t.Fatal(err)
	}
	pub.conn.Flush()

	select {
	case msg := <-ch:
		var got SprintCloned
		if err := json.Unmarshal(msg, &got); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if got.ProjectID != "prj-2" || got.SourceSprintID != "spr-1" {
			t.Errorf("got %+v, want the prj-2 clone event", got)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for the prj-2 event")
	}

	select {
	case msg := <-ch:
		t.Errorf("unexpected extra message %s", msg)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestProjectOf(t *testing.T) {
	if got := ProjectOf(DependencyDeleted{ProjectID: "prj-3"}); got != "prj-3" {
		t.Errorf("ProjectOf(DependencyDeleted) = %q", got)
	}
	if got := ProjectOf(map[string]string{"project_id": "prj-3"}); got != "" {
		t.Errorf("ProjectOf(map) = %q, want empty", got)
	}
}

func TestNATSSubscriber_Cancel(t *testing.T) {
	url := startTestNATS(t)

	sub, err := NewNATSSubscriber(url)
	if err != nil {
		t.Fatalf("creating subscriber: %v", err)
	}
	defer sub.Close()

	ch, cancel, err := sub.Subscribe(TopicAll)
	if err != nil {
		t.Fatalf("subscribing: %v", err)
	}

	cancel()
	cancel() // second call is a no-op

	if _, ok := <-ch; ok {
		t.Fatal("expected channel to be closed after cancel")
	}
}
