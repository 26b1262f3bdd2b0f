package postgres

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"salonpos/internal/core/id"
	"salonpos/internal/core/types"
	"salonpos/internal/domain/ledger"
)

func TestExtractDBColumns_Movement(t *testing.T) {
	cols := ExtractDBColumns[ledger.Movement]()

	expectedCols := []string{
		"id", "session_id", "kind", "payment_method", "amount", "tip",
		"cash_received", "change", "appointment_id", "notes", "recorded_at", "recorded_by",
	}

	for _, expected := range expectedCols {
		assert.Contains(t, cols, expected)
	}
}

func TestExtractDBColumns_EmbeddedView(t *testing.T) {
	cols := ExtractDBColumns[ledger.View]()

	// Embedded Movement columns plus the join columns.
	assert.Contains(t, cols, "session_id")
	assert.Contains(t, cols, "amount")
	assert.Contains(t, cols, "business_date")
	assert.Contains(t, cols, "customer_name")
}

func TestStructToMap_Movement(t *testing.T) {
	now := time.Now().UTC()
	operator := "op-1"
	m := ledger.Movement{
		ID:            id.New(),
		SessionID:     id.New(),
		Kind:          ledger.KindIncome,
		PaymentMethod: types.PaymentCash,
		Amount:        types.MustMoney("25.00"),
		Tip:           types.MustMoney("5.00"),
		CashReceived:  types.MustMoney("40.00"),
		Change:        types.MustMoney("10.00"),
		Notes:         "Haircut",
		RecordedAt:    now,
		RecordedBy:    &operator,
	}

	res := StructToMap(m)

	assert.Equal(t, m.ID, res["id"])
	assert.Equal(t, m.SessionID, res["session_id"])
	assert.Equal(t, ledger.KindIncome, res["kind"])
	assert.Equal(t, types.PaymentCash, res["payment_method"])
	assert.Equal(t, m.Amount, res["amount"])
	assert.Equal(t, "Haircut", res["notes"])
	assert.Equal(t, now, res["recorded_at"])
	assert.Equal(t, &operator, res["recorded_by"])

	// Nil pointer columns still appear so inserts write NULL explicitly.
	assert.Contains(t, res, "appointment_id")
}

func TestStructToMap_EmbeddedView(t *testing.T) {
	name := "Anna Petrova"
	v := ledger.View{
		Movement: ledger.Movement{
			ID:     id.New(),
			Amount: types.MustMoney("60.00"),
		},
		SessionDate:  time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC),
		CustomerName: &name,
	}

	res := StructToMap(v)

	assert.Equal(t, v.ID, res["id"])
	assert.Equal(t, v.Amount, res["amount"])
	assert.Equal(t, v.SessionDate, res["business_date"])
	assert.Equal(t, &name, res["customer_name"])
}
