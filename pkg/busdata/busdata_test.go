package busdata

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStopBefore(t *testing.T) {
	outboundLast := &Stop{Direction: DirectionOutbound, Sequence: 40}
	inboundFirst := &Stop{Direction: DirectionInbound, Sequence: 1}
	inboundSecond := &Stop{Direction: DirectionInbound, Sequence: 2}

	assert.True(t, outboundLast.Before(inboundFirst))
	assert.True(t, inboundFirst.Before(inboundSecond))
	assert.False(t, inboundSecond.Before(inboundFirst))
	assert.False(t, inboundFirst.Before(inboundFirst))
}

func TestDirection(t *testing.T) {
	assert.Equal(t, "outbound", DirectionOutbound.String())
	assert.Equal(t, "inbound", DirectionInbound.String())
	assert.Equal(t, "direction(2)", Direction(2).String())
	assert.False(t, Direction(2).Valid())

	value, err := DirectionInbound.MarshalCSV()
	assert.NoError(t, err)
	assert.Equal(t, "1", value)
}

func TestIsSingleSegment(t *testing.T) {
	assert.True(t, (&Route{TicketPriceDescription: "本路線收費為一段票"}).IsSingleSegment())
	assert.False(t, (&Route{TicketPriceDescription: "二段票"}).IsSingleSegment())
}
