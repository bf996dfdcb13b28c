package mocks

import (
	context "context"

	mock "github.com/stretchr/testify/mock"

	vec2 "github.com/terrariumai/brains/pkg/vec2/v1"
)

// PubsubAccessLayer is a mock type for the PubsubAccessLayer type
type PubsubAccessLayer struct {
	mock.Mock
}

// BatchPublish provides a mock function with given fields:
func (_m *PubsubAccessLayer) BatchPublish() {
	_m.Called()
}

// QueuePublishEvent provides a mock function with given fields: eventName, payload, region
func (_m *PubsubAccessLayer) QueuePublishEvent(eventName string, payload interface{}, region vec2.Vec2) error {
	ret := _m.Called(eventName, payload, region)

	var r0 error
	if rf, ok := ret.Get(0).(func(string, interface{}, vec2.Vec2) error); ok {
		r0 = rf(eventName, payload, region)
	} else {
		r0 = ret.Error(0)
	}

	return r0
}

// StartBatchPublishLoop provides a mock function with given fields: ctx
func (_m *PubsubAccessLayer) StartBatchPublishLoop(ctx context.Context) {
	_m.Called(ctx)
}
