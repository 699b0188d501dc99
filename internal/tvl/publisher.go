package tvl

import (
	"encoding/json"
	"fmt"
)

type natsPublisher interface {
	Publish(subject string, data []byte) error
}

// Publisher sends computed snapshots to nats subject "<subject>.<chain>.<kind>".
type Publisher struct {
	conn    natsPublisher
	subject string
}

func NewPublisher(conn natsPublisher, subject string) *Publisher {
	return &Publisher{
		conn:    conn,
		subject: subject,
	}
}

func (p *Publisher) Publish(snapshot *Snapshot) error {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	subject := fmt.Sprintf("%s.%s.%s", p.subject, snapshot.Chain, snapshot.Kind)
	if err := p.conn.Publish(subject, data); err != nil {
		return fmt.Errorf("publish %s: %w", subject, err)
	}

	return nil
}
