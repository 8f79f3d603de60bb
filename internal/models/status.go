package models

import "errors"

// ErrInvalidTransition is returned when a record cannot move to the requested status.
var ErrInvalidTransition = errors.New("invalid status transition")

// transitions maps a status to the statuses it may move to.
type transitions[S ~string] map[S][]S

func (t transitions[S]) allows(from, to S) bool {
	for _, next := range t[from] {
		if next == to {
			return true
		}
	}
	return false
}

// sources lists every status that may move to the target.
func (t transitions[S]) sources(to S) []string {
	var out []string
	for from, nexts := range t {
		for _, next := range nexts {
			if next == to {
				out = append(out, string(from))
				break
			}
		}
	}
	return out
}

func (t transitions[S]) known(s S) bool {
	if _, ok := t[s]; ok {
		return true
	}
	for _, nexts := range t {
		for _, next := range nexts {
			if next == s {
				return true
			}
		}
	}
	return false
}

type ReportStatus string

const (
	ReportPending   ReportStatus = "pending"
	ReportReviewed  ReportStatus = "reviewed"
	ReportResolved  ReportStatus = "resolved"
	ReportDismissed ReportStatus = "dismissed"
)

var reportFlow = transitions[ReportStatus]{
	ReportPending:  {ReportReviewed, ReportResolved, ReportDismissed},
	ReportReviewed: {ReportResolved, ReportDismissed},
}

func (s ReportStatus) Valid() bool { return reportFlow.known(s) }
func (s ReportStatus) CanTransitionTo(to ReportStatus) bool { return reportFlow.allows(s, to) }
func (s ReportStatus) Sources() []string { return reportFlow.sources(s) }

// ModerationStatus is the review state of user generated content.
type ModerationStatus string

const (
	ModerationPending  ModerationStatus = "pending"
	ModerationApproved ModerationStatus = "approved"
	ModerationFlagged  ModerationStatus = "flagged"
	ModerationRemoved  ModerationStatus = "removed"
)

var moderationFlow = transitions[ModerationStatus]{
	ModerationPending:  {ModerationApproved, ModerationFlagged, ModerationRemoved},
	ModerationApproved: {ModerationFlagged, ModerationRemoved},
	ModerationFlagged:  {ModerationApproved, ModerationRemoved},
}

func (s ModerationStatus) Valid() bool { return moderationFlow.known(s) }
func (s ModerationStatus) CanTransitionTo(to ModerationStatus) bool {
	return moderationFlow.allows(s, to)
}
func (s ModerationStatus) Sources() []string { return moderationFlow.sources(s) }

type ApplicationStatus string

const (
	ApplicationPending  ApplicationStatus = "pending"
	ApplicationApproved ApplicationStatus = "approved"
	ApplicationRejected ApplicationStatus = "rejected"
)

var applicationFlow = transitions[ApplicationStatus]{
	ApplicationPending: {ApplicationApproved, ApplicationRejected},
}

func (s ApplicationStatus) Valid() bool { return applicationFlow.known(s) }
func (s ApplicationStatus) CanTransitionTo(to ApplicationStatus) bool {
	return applicationFlow.allows(s, to)
}
func (s ApplicationStatus) Sources() []string { return applicationFlow.sources(s) }

type TicketStatus string

const (
	TicketOpen       TicketStatus = "open"
	TicketInProgress TicketStatus = "in_progress"
	TicketClosed     TicketStatus = "closed"
)

var ticketFlow = transitions[TicketStatus]{
	TicketOpen:       {TicketInProgress, TicketClosed},
	TicketInProgress: {TicketClosed, TicketOpen},
}

func (s TicketStatus) Valid() bool { return ticketFlow.known(s) }
func (s TicketStatus) CanTransitionTo(to TicketStatus) bool { return ticketFlow.allows(s, to) }
func (s TicketStatus) Sources() []string { return ticketFlow.sources(s) }

type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderConfirmed OrderStatus = "confirmed"
	OrderCompleted OrderStatus = "completed"
	OrderCancelled OrderStatus = "cancelled"
)

var orderFlow = transitions[OrderStatus]{
	OrderPending:   {OrderConfirmed, OrderCancelled},
	OrderConfirmed: {OrderCompleted, OrderCancelled},
}

func (s OrderStatus) Valid() bool { return orderFlow.known(s) }
func (s OrderStatus) CanTransitionTo(to OrderStatus) bool { return orderFlow.allows(s, to) }
func (s OrderStatus) Sources() []string { return orderFlow.sources(s) }

type NotificationStatus string

const (
	NotificationPending NotificationStatus = "pending"
	NotificationSent    NotificationStatus = "sent"
	NotificationFailed  NotificationStatus = "failed"
)
