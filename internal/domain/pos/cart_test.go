package pos

import (
	"testing"

	"github.com/stretchr/testify/require"

	"salonpos/internal/core/id"
	"salonpos/internal/core/types"
	"salonpos/internal/domain/catalog"
)

func haircut() catalog.Item {
	return catalog.Item{
		ID:        id.MustParse("0190a1b2-0000-7000-8000-000000000001"),
		Label:     "Haircut",
		UnitPrice: types.MustMoney("25.00"),
		Active:    true,
	}
}

func coloring() catalog.Item {
	return catalog.Item{
		ID:        id.MustParse("0190a1b2-0000-7000-8000-000000000002"),
		Label:     "Hair coloring",
		UnitPrice: types.MustMoney("60.00"),
		Active:    true,
	}
}

func TestCart_AddCatalogLine_MergesDuplicates(t *testing.T) {
	cart := NewCart()

	cart.AddCatalogLine(haircut())
	cart.AddCatalogLine(coloring())
	cart.AddCatalogLine(haircut())

	require.Len(t, cart.Lines, 2)
	require.Equal(t, 2, cart.Lines[0].Quantity)
	require.Equal(t, 1, cart.Lines[1].Quantity)
	require.True(t, cart.Subtotal().Equal(types.MustMoney("110.00")))
}

func TestCart_AddFreeformLine(t *testing.T) {
	cart := NewCart()

	cart.AddFreeformLine("Hair wax", types.MustMoney("8.50"))
	require.Len(t, cart.Lines, 1)
	require.Equal(t, LineFreeform, cart.Lines[0].Kind)
	require.Nil(t, cart.Lines[0].RefID)

	// Rejected silently: empty label, zero or negative price.
	cart.AddFreeformLine("   ", types.MustMoney("5.00"))
	cart.AddFreeformLine("Discount", types.Zero())
	cart.AddFreeformLine("Refund", types.MustMoney("-3.00"))
	require.Len(t, cart.Lines, 1)
}

func TestCart_SetQuantity_NeverClamps(t *testing.T) {
	cart := NewCart()
	cart.AddCatalogLine(haircut())
	lineID := cart.Lines[0].LineID

	cart.SetQuantity(lineID, 0)
	require.Equal(t, 0, cart.Lines[0].Quantity)
	require.False(t, cart.LinesValid())

	cart.SetQuantity(lineID, -2)
	require.Equal(t, -2, cart.Lines[0].Quantity)

	cart.SetQuantity(lineID, 3)
	require.True(t, cart.LinesValid())
	require.True(t, cart.Subtotal().Equal(types.MustMoney("75.00")))

	// Unknown line id is a no-op.
	cart.SetQuantity(id.New(), 99)
	require.Equal(t, 3, cart.Lines[0].Quantity)
}

func TestCart_RemoveLine(t *testing.T) {
	cart := NewCart()
	cart.AddCatalogLine(haircut())
	cart.AddCatalogLine(coloring())

	cart.RemoveLine(cart.Lines[0].LineID)
	require.Len(t, cart.Lines, 1)
	require.Equal(t, "Hair coloring", cart.Lines[0].Label)

	cart.RemoveLine(id.New())
	require.Len(t, cart.Lines, 1)
}

func TestCart_BindAppointment_ReplacesCart(t *testing.T) {
	cart := NewCart()
	cart.AddCatalogLine(haircut())
	cart.AddFreeformLine("Hair wax", types.MustMoney("8.50"))

	appt := catalog.Appointment{
		ID:           id.New(),
		CustomerID:   id.New(),
		ServiceID:    coloring().ID,
		ServiceLabel: "Hair coloring",
		Price:        types.MustMoney("60.00"),
	}
	cart.BindAppointment(appt)

	require.Len(t, cart.Lines, 1)
	require.Equal(t, LineAppointment, cart.Lines[0].Kind)
	require.Equal(t, "Hair coloring", cart.Lines[0].Label)
	require.NotNil(t, cart.BoundAppointmentID)
	require.Equal(t, appt.ID, *cart.BoundAppointmentID)

	// Adding after binding keeps the link: mixed carts are allowed.
	cart.AddCatalogLine(haircut())
	require.Len(t, cart.Lines, 2)
	require.NotNil(t, cart.BoundAppointmentID)

	cart.UnbindAppointment()
	require.Nil(t, cart.BoundAppointmentID)
	require.Len(t, cart.Lines, 2)
}

func TestCart_Clear(t *testing.T) {
	cart := NewCart()
	cart.AddCatalogLine(haircut())
	cart.BindAppointment(catalog.Appointment{ID: id.New(), ServiceID: id.New(), ServiceLabel: "Blow dry", Price: types.MustMoney("18.00")})

	cart.Clear()
	require.True(t, cart.IsEmpty())
	require.Nil(t, cart.BoundAppointmentID)
}

func TestCart_Description(t *testing.T) {
	cart := NewCart()
	cart.AddCatalogLine(haircut())
	cart.AddCatalogLine(haircut())
	cart.AddFreeformLine("Hair wax", types.MustMoney("8.50"))

	require.Equal(t, "Haircut x2, Hair wax", cart.Description())
}

func TestComputeTotals(t *testing.T) {
	cart := NewCart()
	cart.AddCatalogLine(haircut())

	totals := ComputeTotals(cart, types.MustMoney("5.00"), types.MustMoney("40.00"), types.PaymentCash)
	require.True(t, totals.Subtotal.Equal(types.MustMoney("25.00")))
	require.True(t, totals.TotalDue.Equal(types.MustMoney("30.00")))
	require.True(t, totals.Change.Equal(types.MustMoney("10.00")))

	// Non-cash methods never produce change regardless of cashReceived.
	totals = ComputeTotals(cart, types.MustMoney("5.00"), types.MustMoney("40.00"), types.PaymentCard)
	require.True(t, totals.Change.IsZero())

	// Underpayment clamps to zero instead of going negative.
	totals = ComputeTotals(cart, types.Zero(), types.MustMoney("20.00"), types.PaymentCash)
	require.True(t, totals.Change.IsZero())
}
