// Package receipts reports the outcome of message sends to downstream sinks.
package receipts

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Sink types.
const (
	TypeWebhook = "webhook"
	TypeSQS     = "sqs"
	TypeSNS     = "sns"
	TypePubSub  = "pubsub"
)

const defaultWebhookTimeout = 5 * time.Second

type sinksFile struct {
	Sinks []SinkConfig `json:"sinks" yaml:"sinks"`
}

// SinkConfig declares one receipt destination. Outcomes limits which receipts
// it receives; empty means both sent and failed.
type SinkConfig struct {
	ID       string         `json:"id" yaml:"id"`
	Type     string         `json:"type" yaml:"type"`
	Disabled bool           `json:"disabled" yaml:"disabled"`
	Outcomes []string       `json:"outcomes" yaml:"outcomes"`
	Webhook  *WebhookConfig `json:"webhook" yaml:"webhook"`
	SQS      *SQSConfig     `json:"sqs" yaml:"sqs"`
	SNS      *SNSConfig     `json:"sns" yaml:"sns"`
	PubSub   *PubSubConfig  `json:"pubsub" yaml:"pubsub"`
}

// WebhookConfig posts receipts as JSON to URL.
type WebhookConfig struct {
	URL            string            `json:"url" yaml:"url"`
	Headers        map[string]string `json:"headers" yaml:"headers"`
	TimeoutSeconds int               `json:"timeout_seconds" yaml:"timeout_seconds"`
}

// Timeout returns the configured timeout or the webhook default.
func (w WebhookConfig) Timeout() time.Duration {
	if w.TimeoutSeconds <= 0 {
		return defaultWebhookTimeout
	}
	return time.Duration(w.TimeoutSeconds) * time.Second
}

// AWSTarget is shared by the SQS and SNS sinks. Static keys are optional;
// without them the default credential chain applies.
type AWSTarget struct {
	Region          string `json:"region" yaml:"region"`
	AccessKeyID     string `json:"access_key_id" yaml:"access_key_id"`
	SecretAccessKey string `json:"secret_access_key" yaml:"secret_access_key"`
}

// SQSConfig sends receipts to a queue.
type SQSConfig struct {
	QueueURL  string `json:"queue_url" yaml:"queue_url"`
	AWSTarget `json:",inline" yaml:",inline"`
}

// SNSConfig publishes receipts to a topic.
type SNSConfig struct {
	TopicARN  string `json:"topic_arn" yaml:"topic_arn"`
	AWSTarget `json:",inline" yaml:",inline"`
}

// PubSubConfig publishes receipts to a GCP topic.
type PubSubConfig struct {
	ProjectID       string `json:"project_id" yaml:"project_id"`
	Topic           string `json:"topic" yaml:"topic"`
	CredentialsFile string `json:"credentials_file" yaml:"credentials_file"`
}

// LoadSinks reads a YAML or JSON sinks file and returns the active sinks in file order.
// Disabled entries are validated but dropped.
func LoadSinks(path string) ([]SinkConfig, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("receipts file path is empty")
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read receipts file: %w", err)
	}

	var file sinksFile
	if strings.EqualFold(filepath.Ext(path), ".json") {
		err = json.Unmarshal(raw, &file)
	} else {
		err = yaml.Unmarshal(raw, &file)
	}
	if err != nil {
		return nil, fmt.Errorf("decode receipts file %s: %w", filepath.Base(path), err)
	}
	if len(file.Sinks) == 0 {
		return nil, errors.New("receipts file declares no sinks")
	}

	seen := make(map[string]bool, len(file.Sinks))
	active := make([]SinkConfig, 0, len(file.Sinks))
	for i, sink := range file.Sinks {
		sink.normalize()
		if err := sink.validate(); err != nil {
			return nil, fmt.Errorf("sinks[%d]: %w", i, err)
		}
		if seen[sink.ID] {
			return nil, fmt.Errorf("sinks[%d]: duplicate sink id %q", i, sink.ID)
		}
		seen[sink.ID] = true
		if !sink.Disabled {
			active = append(active, sink)
		}
	}
	return active, nil
}

// Accepts reports whether the sink subscribes to the receipt's outcome.
func (s SinkConfig) Accepts(r Receipt) bool {
	if len(s.Outcomes) == 0 {
		return true
	}
	outcome := r.Outcome()
	for _, o := range s.Outcomes {
		if o == outcome {
			return true
		}
	}
	return false
}

func (s *SinkConfig) normalize() {
	s.ID = strings.TrimSpace(s.ID)
	s.Type = strings.ToLower(strings.TrimSpace(s.Type))
	for i, o := range s.Outcomes {
		s.Outcomes[i] = strings.ToLower(strings.TrimSpace(o))
	}

	if s.Webhook != nil {
		w := *s.Webhook
		w.URL = strings.TrimSpace(w.URL)
		headers := make(map[string]string, len(w.Headers))
		for k, v := range w.Headers {
			if k, v = strings.TrimSpace(k), strings.TrimSpace(v); k != "" && v != "" {
				headers[k] = v
			}
		}
		w.Headers = headers
		s.Webhook = &w
	}
	if s.SQS != nil {
		q := *s.SQS
		q.QueueURL = strings.TrimSpace(q.QueueURL)
		q.AWSTarget = q.AWSTarget.trimmed()
		s.SQS = &q
	}
	if s.SNS != nil {
		t := *s.SNS
		t.TopicARN = strings.TrimSpace(t.TopicARN)
		t.AWSTarget = t.AWSTarget.trimmed()
		s.SNS = &t
	}
	if s.PubSub != nil {
		p := *s.PubSub
		p.ProjectID = strings.TrimSpace(p.ProjectID)
		p.Topic = strings.TrimSpace(p.Topic)
		p.CredentialsFile = strings.TrimSpace(p.CredentialsFile)
		s.PubSub = &p
	}
}

func (a AWSTarget) trimmed() AWSTarget {
	return AWSTarget{
		Region:          strings.TrimSpace(a.Region),
		AccessKeyID:     strings.TrimSpace(a.AccessKeyID),
		SecretAccessKey: strings.TrimSpace(a.SecretAccessKey),
	}
}

type field struct{ name, value string }

func (s SinkConfig) validate() error {
	if s.ID == "" {
		return errors.New("sink id is required")
	}
	if s.Type == "" {
		return fmt.Errorf("sink %q: type is required", s.ID)
	}
	for _, o := range s.Outcomes {
		if o != OutcomeSent && o != OutcomeFailed {
			return fmt.Errorf("sink %q: unknown outcome %q (want %s or %s)", s.ID, o, OutcomeSent, OutcomeFailed)
		}
	}

	var required []field
	switch s.Type {
	case TypeWebhook:
		if s.Webhook == nil {
			return fmt.Errorf("sink %q: webhook block is required", s.ID)
		}
		required = []field{{"webhook.url", s.Webhook.URL}}
	case TypeSQS:
		if s.SQS == nil {
			return fmt.Errorf("sink %q: sqs block is required", s.ID)
		}
		required = []field{{"sqs.queue_url", s.SQS.QueueURL}, {"sqs.region", s.SQS.Region}}
		if err := s.SQS.AWSTarget.checkKeys(s.ID); err != nil {
			return err
		}
	case TypeSNS:
		if s.SNS == nil {
			return fmt.Errorf("sink %q: sns block is required", s.ID)
		}
		required = []field{{"sns.topic_arn", s.SNS.TopicARN}, {"sns.region", s.SNS.Region}}
		if err := s.SNS.AWSTarget.checkKeys(s.ID); err != nil {
			return err
		}
	case TypePubSub:
		if s.PubSub == nil {
			return fmt.Errorf("sink %q: pubsub block is required", s.ID)
		}
		required = []field{{"pubsub.project_id", s.PubSub.ProjectID}, {"pubsub.topic", s.PubSub.Topic}}
	}

	for _, f := range required {
		if f.value == "" {
			return fmt.Errorf("sink %q: %s is required", s.ID, f.name)
		}
	}
	return nil
}

func (a AWSTarget) checkKeys(id string) error {
	if (a.AccessKeyID == "") != (a.SecretAccessKey == "") {
		return fmt.Errorf("sink %q: access_key_id and secret_access_key must be set together", id)
	}
	return nil
}
