package receipts

import (
	"context"
	"encoding/json"
	"testing"

	"cloud.google.com/go/pubsub"
	"cloud.google.com/go/pubsub/pstest"
)

func TestPubSubSinkPublishes(t *testing.T) {
	// Use the in-memory Pub/Sub emulator.
	server := pstest.NewServer()
	defer server.Close()
	t.Setenv("PUBSUB_EMULATOR_HOST", server.Addr)

	ctx := context.Background()
	admin, err := pubsub.NewClient(ctx, "test-project")
	if err != nil {
		t.Fatalf("create client: %v", err)
	}
	defer admin.Close()
	if _, err := admin.CreateTopic(ctx, "receipts"); err != nil {
		t.Fatalf("create topic: %v", err)
	}

	pub, err := newPubSubSink(ctx, SinkConfig{
		ID:     "topic",
		Type:   TypePubSub,
		PubSub: &PubSubConfig{ProjectID: "test-project", Topic: "receipts"},
	}, nil)
	if err != nil {
		t.Fatalf("newPubSubSink: %v", err)
	}
	defer pub.(Closer).Close()

	if err := pub.Publish(ctx, Receipt{Operation: OperationTextByURL, To: "555", Success: true}); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	msgs := server.Messages()
	if len(msgs) != 1 {
		t.Fatalf("expected 1 message, got %d", len(msgs))
	}
	var got Receipt
	if err := json.Unmarshal(msgs[0].Data, &got); err != nil {
		t.Fatalf("decode message: %v", err)
	}
	if got.To != "555" || msgs[0].Attributes["status"] != OutcomeSent {
		t.Fatalf("unexpected message: %#v attrs=%v", got, msgs[0].Attributes)
	}
	if msgs[0].Attributes["operation"] != OperationTextByURL {
		t.Fatalf("operation attribute = %s", msgs[0].Attributes["operation"])
	}
}
