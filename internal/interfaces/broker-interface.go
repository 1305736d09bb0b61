package interfaces

import "context"

type ConsumerHandler interface {
	HandleMessage(ctx context.Context, message []byte) error
}

type ProducerHandler interface {
	PublishMessage(key, value []byte) error
}
