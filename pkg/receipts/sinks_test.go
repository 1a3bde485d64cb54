package receipts

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeSinksFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write sinks file: %v", err)
	}
	return path
}

func TestLoadSinksYAMLDropsDisabled(t *testing.T) {
	path := writeSinksFile(t, "receipts.yaml", `
sinks:
  - id: " audit "
    type: " Webhook "
    outcomes: [" FAILED "]
    webhook:
      url: " https://hooks.example.com/r "
      headers:
        " X-Source ": " sender "
        X-Empty: "  "
  - id: queue
    type: sqs
    disabled: true
    sqs:
      queue_url: https://sqs.us-east-1.amazonaws.com/1/q
      region: us-east-1
`)

	sinks, err := LoadSinks(path)
	if err != nil {
		t.Fatalf("LoadSinks: %v", err)
	}
	if len(sinks) != 1 {
		t.Fatalf("expected 1 active sink, got %d", len(sinks))
	}
	s := sinks[0]
	if s.ID != "audit" || s.Type != TypeWebhook {
		t.Fatalf("unexpected sink %q/%q", s.ID, s.Type)
	}
	if len(s.Outcomes) != 1 || s.Outcomes[0] != OutcomeFailed {
		t.Fatalf("outcomes = %v", s.Outcomes)
	}
	if s.Webhook.URL != "https://hooks.example.com/r" {
		t.Fatalf("url = %q", s.Webhook.URL)
	}
	if len(s.Webhook.Headers) != 1 || s.Webhook.Headers["X-Source"] != "sender" {
		t.Fatalf("headers = %v", s.Webhook.Headers)
	}
	if s.Webhook.Timeout() != defaultWebhookTimeout {
		t.Fatalf("timeout = %s", s.Webhook.Timeout())
	}
}

func TestLoadSinksJSON(t *testing.T) {
	path := writeSinksFile(t, "receipts.json", `{"sinks":[
		{"id":"topic","type":"sns","sns":{"topic_arn":"arn:aws:sns:us-east-1:1:t","region":"us-east-1"}},
		{"id":"ps","type":"pubsub","pubsub":{"project_id":"p","topic":"t"}},
		{"id":"hook","type":"webhook","webhook":{"url":"http://h","timeout_seconds":2}}
	]}`)

	sinks, err := LoadSinks(path)
	if err != nil {
		t.Fatalf("LoadSinks: %v", err)
	}
	if len(sinks) != 3 {
		t.Fatalf("expected 3 sinks, got %d", len(sinks))
	}
	if sinks[0].SNS.Region != "us-east-1" || sinks[0].SNS.TopicARN == "" {
		t.Fatalf("sns sink not decoded: %#v", sinks[0].SNS)
	}
	if sinks[2].Webhook.Timeout() != 2*time.Second {
		t.Fatalf("timeout = %s", sinks[2].Webhook.Timeout())
	}
}

func TestLoadSinksRejectsInvalidFiles(t *testing.T) {
	cases := map[string]struct {
		content string
		want    string
	}{
		"empty":        {"sinks: []\n", "declares no sinks"},
		"missing id":   {"sinks:\n  - type: webhook\n    webhook:\n      url: http://h\n", "sink id is required"},
		"missing type": {"sinks:\n  - id: a\n", "type is required"},
		"bad outcome":  {"sinks:\n  - id: a\n    type: webhook\n    outcomes: [queued]\n    webhook:\n      url: http://h\n", `unknown outcome "queued"`},
		"no block":     {"sinks:\n  - id: a\n    type: sqs\n", "sqs block is required"},
		"no url":       {"sinks:\n  - id: a\n    type: webhook\n    webhook:\n      url: \" \"\n", "webhook.url is required"},
		"no region":    {"sinks:\n  - id: a\n    type: sns\n    sns:\n      topic_arn: arn\n", "sns.region is required"},
		"half keys": {
			"sinks:\n  - id: a\n    type: sqs\n    sqs:\n      queue_url: q\n      region: r\n      access_key_id: AKIA\n",
			"must be set together",
		},
		"duplicate": {
			"sinks:\n  - id: a\n    type: pubsub\n    pubsub: {project_id: p, topic: t}\n  - id: a\n    type: pubsub\n    disabled: true\n    pubsub: {project_id: p, topic: t}\n",
			`duplicate sink id "a"`,
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := LoadSinks(writeSinksFile(t, "receipts.yaml", tc.content))
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error containing %q, got %v", tc.want, err)
			}
		})
	}
}

func TestLoadSinksPathErrors(t *testing.T) {
	if _, err := LoadSinks("  "); err == nil {
		t.Fatalf("expected error for empty path")
	}
	if _, err := LoadSinks(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestSinkAcceptsByOutcome(t *testing.T) {
	sent := Receipt{Success: true}
	failed := Receipt{}

	all := SinkConfig{}
	if !all.Accepts(sent) || !all.Accepts(failed) {
		t.Fatalf("sink without outcomes should accept both")
	}

	onlyFailed := SinkConfig{Outcomes: []string{OutcomeFailed}}
	if onlyFailed.Accepts(sent) || !onlyFailed.Accepts(failed) {
		t.Fatalf("failed-only sink routed wrongly")
	}
}
