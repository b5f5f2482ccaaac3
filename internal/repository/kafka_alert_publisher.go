package repository

import (
	"context"
	"time"

	"StockPulse/internal/domain/models"
	pkgkafka "StockPulse/pkg/kafka"
	applogger "StockPulse/pkg/logger"
)

// KafkaAlertPublisher implements AlertPublisher on top of the shared
// producer. Messages are keyed by instrument so a partition preserves
// per-instrument ordering.
type KafkaAlertPublisher struct {
	producer     *pkgkafka.Producer
	signalTopic  string
	anomalyTopic string
	l            *applogger.Logger
}

func NewKafkaAlertPublisher(producer *pkgkafka.Producer, signalTopic, anomalyTopic string) *KafkaAlertPublisher {
	return &KafkaAlertPublisher{
		producer:     producer,
		signalTopic:  signalTopic,
		anomalyTopic: anomalyTopic,
		l:            applogger.Nop(),
	}
}

// SetLogger injects a structured logger.
func (p *KafkaAlertPublisher) SetLogger(l *applogger.Logger) {
	if l != nil {
		p.l = l
	}
}

type signalEvent struct {
	Symbol string               `json:"symbol"`
	Market models.Market        `json:"market"`
	At     time.Time            `json:"at"`
	Signal *models.SignalResult `json:"signal"`
}

func (p *KafkaAlertPublisher) PublishSignal(ctx context.Context, inst models.Instrument, sig *models.SignalResult) error {
	event := signalEvent{
		Symbol: inst.Symbol,
		Market: inst.Market,
		At:     time.Now().UTC(),
		Signal: sig,
	}
	if err := p.producer.Publish(ctx, p.signalTopic, []byte(inst.Key()), event); err != nil {
		p.l.Error("publish signal failed",
			applogger.String("symbol", inst.Symbol),
			applogger.Error(err),
		)
		return err
	}
	return nil
}

func (p *KafkaAlertPublisher) PublishAnomaly(ctx context.Context, a *models.AnomalyReport) error {
	key := string(a.Market) + ":" + a.Symbol
	if err := p.producer.Publish(ctx, p.anomalyTopic, []byte(key), a); err != nil {
		p.l.Error("publish anomaly failed",
			applogger.String("symbol", a.Symbol),
			applogger.Error(err),
		)
		return err
	}
	return nil
}

func (p *KafkaAlertPublisher) Close() error {
	return p.producer.Close()
}
