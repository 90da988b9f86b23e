package mq

import (
	"testing"

	qt "github.com/frankban/quicktest"
	amqp "github.com/rabbitmq/amqp091-go"
)

func TestRoutingKey(t *testing.T) {
	c := qt.New(t)

	c.Assert(routingKey(map[string]string{AttrEntity: "need", AttrAction: "deleted"}), qt.Equals, "need.deleted")
	c.Assert(routingKey(map[string]string{AttrEntity: "a.b"}), qt.Equals, "a_b.unknown")
	c.Assert(routingKey(nil), qt.Equals, "unknown.unknown")
}

func TestHeadersToAttributes(t *testing.T) {
	c := qt.New(t)

	c.Assert(headersToAttributes(nil), qt.IsNil)
	c.Assert(headersToAttributes(amqp.Table{
		AttrEntity:   "farmer",
		AttrFarmerID: []byte("4"),
		"retries":    int32(2),
	}), qt.DeepEquals, map[string]string{
		AttrEntity:   "farmer",
		AttrFarmerID: "4",
		"retries":    "2",
	})
}

func TestRequeueOnFailure(t *testing.T) {
	c := qt.New(t)

	c.Assert(requeueOnFailure(amqp.Delivery{}), qt.IsTrue)
	c.Assert(requeueOnFailure(amqp.Delivery{Redelivered: true}), qt.IsFalse)
}
