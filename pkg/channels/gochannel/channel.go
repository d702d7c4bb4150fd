// Package gochannel provides the in-process pub/sub channel used by
// single-binary deployments and tests.
package gochannel

import (
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

const (
	runtimeBuffer = 1000
	testBuffer    = 10
)

// CreateChannel creates the runtime publisher and subscriber pair. The same
// GoChannel instance backs both sides, so events never leave the process.
func CreateChannel(logger watermill.LoggerAdapter) (*gochannel.GoChannel, *gochannel.GoChannel, error) {
	return newChannel(gochannel.Config{
		OutputChannelBuffer: runtimeBuffer,
	}, logger)
}

// CreateTestChannel creates a channel that blocks publishes until the
// subscriber acks, which keeps event assertions deterministic.
func CreateTestChannel(logger watermill.LoggerAdapter) (*gochannel.GoChannel, *gochannel.GoChannel, error) {
	return newChannel(gochannel.Config{
		OutputChannelBuffer:            testBuffer,
		Persistent:                     true,
		BlockPublishUntilSubscriberAck: true,
	}, logger)
}

func newChannel(config gochannel.Config, logger watermill.LoggerAdapter) (*gochannel.GoChannel, *gochannel.GoChannel, error) {
	pubSub := gochannel.NewGoChannel(config, logger)

	return pubSub, pubSub, nil
}
