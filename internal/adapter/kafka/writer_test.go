package kafka

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/floodwatch/glofas-trigger/internal/domain"
)

func TestSerializeToMessage(t *testing.T) {
	w := &Writer{country: "ZMB", label: "7-day"}

	rp := 10
	report := domain.StationTriggerReport{
		Code:            "G1361",
		Name:            "Lukulu",
		Threshold20Year: 7800,
		Forecast:        8000,
		Probability:     1,
		Trigger:         1,
		AlertClass:      domain.AlertMaximum,
		ReturnPeriod:    &rp,
	}

	msg, err := w.serializeToMessage(report)
	require.NoError(t, err)

	assert.Equal(t, []byte("G1361"), msg.Key)
	assert.Contains(t, string(msg.Value), `"stationCode":"G1361"`)
	assert.Contains(t, string(msg.Value), `"fc_trigger":1`)
	assert.Contains(t, string(msg.Value), `"fc_rp":10`)
	require.Len(t, msg.Headers, 2)
	assert.Equal(t, "country", msg.Headers[0].Key)
	assert.Equal(t, []byte("ZMB"), msg.Headers[0].Value)
	assert.Equal(t, "lead_time", msg.Headers[1].Key)
	assert.Equal(t, []byte("7-day"), msg.Headers[1].Value)
}

func TestSerializeToMessageNullReturnPeriod(t *testing.T) {
	w := &Writer{country: "ETH", label: "5-day"}

	msg, err := w.serializeToMessage(domain.StationTriggerReport{
		Code:       domain.NoStationCode,
		AlertClass: domain.AlertNone,
	})
	require.NoError(t, err)

	assert.Contains(t, string(msg.Value), `"fc_rp":null`)
	assert.Contains(t, string(msg.Value), `"fc_rp_flood_extent":null`)
}
