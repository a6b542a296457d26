package events

// NopProducer discards all events. Used when no Kafka brokers are configured.
type NopProducer struct{}

func (NopProducer) PublishOrderCreated(OrderCreatedEvent) error             { return nil }
func (NopProducer) PublishOrderStatusChanged(OrderStatusChangedEvent) error { return nil }
func (NopProducer) Close() error                                            { return nil }
