package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReportTransitions(t *testing.T) {
	assert.True(t, ReportPending.CanTransitionTo(ReportReviewed))
	assert.True(t, ReportPending.CanTransitionTo(ReportDismissed))
	assert.True(t, ReportReviewed.CanTransitionTo(ReportResolved))
	assert.False(t, ReportResolved.CanTransitionTo(ReportPending))
	assert.False(t, ReportDismissed.CanTransitionTo(ReportReviewed))
	assert.False(t, ReportReviewed.CanTransitionTo(ReportPending))

	assert.ElementsMatch(t, []string{"pending", "reviewed"}, ReportResolved.Sources())
	assert.ElementsMatch(t, []string{"pending"}, ReportReviewed.Sources())
	assert.Empty(t, ReportPending.Sources())
}

func TestModerationTransitions(t *testing.T) {
	assert.True(t, ModerationPending.CanTransitionTo(ModerationApproved))
	assert.True(t, ModerationApproved.CanTransitionTo(ModerationFlagged))
	assert.True(t, ModerationFlagged.CanTransitionTo(ModerationApproved))
	assert.False(t, ModerationRemoved.CanTransitionTo(ModerationApproved))
	assert.False(t, ModerationApproved.CanTransitionTo(ModerationPending))

	assert.ElementsMatch(t, []string{"pending", "approved", "flagged"}, ModerationRemoved.Sources())
}

func TestApplicationTransitions(t *testing.T) {
	assert.True(t, ApplicationPending.CanTransitionTo(ApplicationApproved))
	assert.True(t, ApplicationPending.CanTransitionTo(ApplicationRejected))
	assert.False(t, ApplicationApproved.CanTransitionTo(ApplicationRejected))
	assert.False(t, ApplicationRejected.CanTransitionTo(ApplicationApproved))
}

func TestOrderAndTicketTransitions(t *testing.T) {
	assert.True(t, OrderPending.CanTransitionTo(OrderCancelled))
	assert.True(t, OrderConfirmed.CanTransitionTo(OrderCompleted))
	assert.False(t, OrderCompleted.CanTransitionTo(OrderCancelled))

	assert.True(t, TicketInProgress.CanTransitionTo(TicketOpen))
	assert.False(t, TicketClosed.CanTransitionTo(TicketOpen))
}

func TestStatusValid(t *testing.T) {
	assert.True(t, ReportDismissed.Valid())
	assert.True(t, ModerationRemoved.Valid())
	assert.True(t, TicketClosed.Valid())
	assert.False(t, ReportStatus("archived").Valid())
	assert.False(t, ModerationStatus("").Valid())
}

func TestOrderTotal(t *testing.T) {
	o := Order{Lines: []OrderLine{
		{Quantity: 2, PriceCents: 450},
		{Quantity: 1, PriceCents: 1200},
	}}
	assert.Equal(t, 2100, o.Total())
}

func TestProductUpdateFields(t *testing.T) {
	name := "Pierogi"
	stock := 0
	u := ProductUpdate{Name: &name, Stock: &stock, Tags: []string{"vegetarian"}}

	fields := u.Fields()
	assert.Equal(t, map[string]interface{}{
		"name":  "Pierogi",
		"stock": 0,
		"tags":  []string{"vegetarian"},
	}, fields)
	assert.Empty(t, ProductUpdate{}.Fields())
}

func TestContentItemText(t *testing.T) {
	assert.Equal(t, "body only", ContentItem{Body: "body only"}.Text())
	assert.Equal(t, "Borscht\n\nbeets", ContentItem{Title: "Borscht", Body: "beets"}.Text())
}
