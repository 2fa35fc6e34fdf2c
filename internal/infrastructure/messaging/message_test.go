package messaging

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMessage_GeneratesID(t *testing.T) {
	evt := &TenantSwitchedEvent{PreviousTenantID: "acme", TenantID: "globex", SwitchedAt: time.Unix(0, 0).UTC()}

	msg, err := NewMessage("", TypeTenantSwitched, evt.TenantID, evt)
	require.NoError(t, err)

	assert.NotEmpty(t, msg.ID)
	assert.Equal(t, TypeTenantSwitched, msg.Type)
	assert.Equal(t, "globex", msg.TenantID)

	var got TenantSwitchedEvent
	require.NoError(t, msg.UnmarshalPayload(&got))
	assert.Equal(t, "acme", got.PreviousTenantID)
	assert.Equal(t, "globex", got.TenantID)
}

func TestMessage_Metadata(t *testing.T) {
	msg := &Message{}
	assert.Equal(t, "", msg.GetMetadata("request_id"))

	msg.SetMetadata("request_id", "req-1")
	assert.Equal(t, "req-1", msg.GetMetadata("request_id"))
}

func TestNewProducer_Defaults(t *testing.T) {
	p := NewProducer(nil, "", 0)
	assert.Equal(t, StreamTenantSwitch, p.Stream())
	assert.Equal(t, int64(100000), p.maxLen)
}
