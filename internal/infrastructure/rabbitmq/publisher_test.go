package rabbitmq

import (
	"encoding/json"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Recursos-api/internal/application/ports"
)

func TestNewPublishing_MensajePersistenteConTipo(t *testing.T) {
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	msg, err := newPublishing(ports.AllocationEvent{
		Type:                 ports.EventEmployeeOverAllocated,
		ProjectID:            "p1",
		EmployeeID:           "e1",
		AllocationPercentage: decimal.NewFromInt(70),
		TotalAllocation:      decimal.NewFromInt(130),
		OccurredAt:           at,
	})
	require.NoError(t, err)

	assert.Equal(t, "application/json", msg.ContentType)
	assert.Equal(t, amqp.Persistent, msg.DeliveryMode)
	assert.Equal(t, ports.EventEmployeeOverAllocated, msg.Type)
	assert.Equal(t, at, msg.Timestamp)

	var body map[string]any
	require.NoError(t, json.Unmarshal(msg.Body, &body))
	assert.Equal(t, "employee.over_allocated", body["type"])
	assert.Equal(t, "e1", body["employee_id"])
	assert.Equal(t, "130", body["total_allocation"])
}
