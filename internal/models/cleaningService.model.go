package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type ServiceType string

const (
	ServiceTypeStandard         ServiceType = "standard"
	ServiceTypeDeepCleaning     ServiceType = "deep-cleaning"
	ServiceTypeMoveInOut        ServiceType = "move-in/move-out"
	ServiceTypePostConstruction ServiceType = "post-construction"
	ServiceTypeCommercial       ServiceType = "commercial"
	ServiceTypeOffice           ServiceType = "office"
	ServiceTypeCarpet           ServiceType = "carpet"
	ServiceTypeWindow           ServiceType = "window"
)

func (t ServiceType) IsValid() bool {
	switch t {
	case ServiceTypeStandard,
		ServiceTypeDeepCleaning,
		ServiceTypeMoveInOut,
		ServiceTypePostConstruction,
		ServiceTypeCommercial,
		ServiceTypeOffice,
		ServiceTypeCarpet,
		ServiceTypeWindow:
		return true
	}
	return false
}

type BookingFrequency string

const (
	FrequencyOnceOff  BookingFrequency = "once-off"
	FrequencyWeekly   BookingFrequency = "weekly"
	FrequencyBiWeekly BookingFrequency = "bi-weekly"
	FrequencyMonthly  BookingFrequency = "monthly"
)

func (f BookingFrequency) IsValid() bool {
	switch f {
	case FrequencyOnceOff, FrequencyWeekly, FrequencyBiWeekly, FrequencyMonthly:
		return true
	}
	return false
}

func (f BookingFrequency) IsRecurring() bool {
	return f != FrequencyOnceOff
}

type RebookingResponse string

const (
	RebookingUnanswered RebookingResponse = ""
	RebookingAccepted   RebookingResponse = "Yes"
	RebookingDeclined   RebookingResponse = "No"
)

type PaymentMethod string

const (
	PaymentMethodCreditCard   PaymentMethod = "credit-card"
	PaymentMethodBankTransfer PaymentMethod = "bank-transfer"
	PaymentMethodCash         PaymentMethod = "cash"
	PaymentMethodMobileMoney  PaymentMethod = "mobile-money"
	PaymentMethodBalance      PaymentMethod = "balance"
)

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusFailed    PaymentStatus = "failed"
	PaymentStatusRefunded  PaymentStatus = "refunded"
	PaymentStatusRetained  PaymentStatus = "retained"
)

type EquipmentProvider string

const (
	EquipmentByCompany  EquipmentProvider = "company"
	EquipmentByCleaner  EquipmentProvider = "cleaner"
	EquipmentByCustomer EquipmentProvider = "customer"
)

func (p EquipmentProvider) IsValid() bool {
	return p == EquipmentByCompany || p == EquipmentByCleaner || p == EquipmentByCustomer
}

type Extra struct {
	Name string          `json:"name"`
	Fee  decimal.Decimal `json:"fee"`
}

type Payment struct {
	Amount        decimal.Decimal `json:"amount"`
	Method        PaymentMethod   `json:"method"`
	TransactionID string          `json:"transactionId"`
	Status        PaymentStatus   `json:"status"`
	PaidToCleaner bool            `json:"paidToCleaner"`
	PaymentDate   time.Time       `json:"paymentDate"`
	ReceiptURL    string          `json:"receiptUrl,omitempty"`
}

type RequestedDate struct {
	Date          string `json:"date"`
	TimeOfArrival string `json:"timeOfArrival"`
}

// StartsAt combines the date (YYYY-MM-DD) and arrival time (HH:MM) in UTC.
func (d RequestedDate) StartsAt() (time.Time, error) {
	return time.Parse("2006-01-02 15:04", d.Date+" "+d.TimeOfArrival)
}

type TeamMember struct {
	CleanerID     uuid.UUID `json:"cleanerId"`
	IsTeamLead    bool      `json:"isTeamLead"`
	AssignedTasks []string  `json:"assignedTasks,omitempty"`
}

type Equipment struct {
	Name       string            `json:"name"`
	ProvidedBy EquipmentProvider `json:"providedBy"`
	Notes      string            `json:"notes,omitempty"`
}

type CancellationPolicy struct {
	Allowed          bool `gorm:"not null" json:"allowed"`
	DeadlineHours    int  `gorm:"not null" json:"deadlineHours"`
	RefundPercentage int  `gorm:"not null" json:"refundPercentage"`
}

const (
	DefaultCancellationDeadlineHours    = 24
	DefaultCancellationRefundPercentage = 80
)

func DefaultCancellationPolicy() CancellationPolicy {
	return CancellationPolicy{
		Allowed:          true,
		DeadlineHours:    DefaultCancellationDeadlineHours,
		RefundPercentage: DefaultCancellationRefundPercentage,
	}
}

type Rating struct {
	Score    *int       `gorm:"type:smallint" json:"score,omitempty"`
	Feedback string     `gorm:"type:text"     json:"feedback,omitempty"`
	RatedAt  *time.Time `                     json:"ratedAt,omitempty"`
}

type CleaningService struct {
	BaseUUIDModel
	PropertyID               uuid.UUID                          `gorm:"type:uuid;not null;index"              json:"propertyId"`
	RequestingUserID         uuid.UUID                          `gorm:"type:uuid;not null;index"              json:"requestingUserId"`
	CleanerID                *uuid.UUID                         `gorm:"type:uuid;index"                       json:"cleanerId,omitempty"`
	Team                     datatypes.JSONSlice[TeamMember]    `                                             json:"team"`
	ServiceType              ServiceType                        `gorm:"type:text;not null"                    json:"serviceType"`
	Extras                   datatypes.JSONSlice[Extra]         `                                             json:"extras"`
	BaseFee                  decimal.Decimal                    `gorm:"type:decimal(12,2);not null"           json:"baseFee"`
	DiscountAmount           decimal.Decimal                    `gorm:"type:decimal(12,2);not null"           json:"discountAmount"`
	ServiceFee               decimal.Decimal                    `gorm:"type:decimal(12,2);not null"           json:"serviceFee"`
	BookingFrequency         BookingFrequency                   `gorm:"type:text;not null"                    json:"bookingFrequency"`
	IsRecurring              bool                               `gorm:"not null"                              json:"isRecurring"`
	ServiceStatus            ServiceStatus                      `gorm:"type:text;not null;index"              json:"serviceStatus"`
	PaidToCleaner            bool                               `gorm:"not null"                              json:"paidToCleaner"`
	PayoutAmount             decimal.Decimal                    `gorm:"type:decimal(12,2);not null"           json:"payoutAmount"`
	RefundAmount             decimal.Decimal                    `gorm:"type:decimal(12,2);not null"           json:"refundAmount"`
	RetainedAmount           decimal.Decimal                    `gorm:"type:decimal(12,2);not null"           json:"retainedAmount"`
	Checklist                datatypes.JSONSlice[ChecklistItem] `                                             json:"checklist"`
	Payments                 datatypes.JSONSlice[Payment]       `                                             json:"payments"`
	RequestedDates           datatypes.JSONSlice[RequestedDate] `                                             json:"requestedDates"`
	ScheduledAt              *time.Time                         `gorm:"index"                                 json:"scheduledAt,omitempty"`
	ExpiresAt                *time.Time                         `gorm:"index"                                 json:"expiresAt,omitempty"`
	Equipment                datatypes.JSONSlice[Equipment]     `                                             json:"equipmentRequirements"`
	Cancellation             CancellationPolicy                 `gorm:"embedded;embeddedPrefix:cancellation_" json:"cancellationPolicy"`
	HasBeenRebooked          bool                               `gorm:"not null"                              json:"hasBeenRebooked"`
	RebookedFromID           *uuid.UUID                         `gorm:"type:uuid"                             json:"rebookedFromId,omitempty"`
	CleanerAcceptedRebooking RebookingResponse                  `gorm:"type:text;not null;default:''"         json:"cleanerHasAcceptedRebooking"`
	Rating                   Rating                             `gorm:"embedded;embeddedPrefix:rating_"       json:"rating"`
	ReviewedByCleaner        bool                               `gorm:"not null"                              json:"reviewedByCleaner"`
	ReviewedByRequestingUser bool                               `gorm:"not null"                              json:"reviewedByRequestingUser"`
	ChatEnabled              bool                               `gorm:"not null"                              json:"chatEnabled"`
	Version                  int                                `gorm:"not null"                              json:"version"`
}

func (s *CleaningService) ChecklistItems() Checklist {
	return Checklist(s.Checklist)
}

func (s *CleaningService) AllTasksComplete() bool {
	return s.ChecklistItems().AllTasksComplete()
}

func (s *CleaningService) IsRequester(userID uuid.UUID) bool {
	return s.RequestingUserID == userID
}

// IsAssignedCleaner is true for the assigned cleaner and for every team member.
func (s *CleaningService) IsAssignedCleaner(userID uuid.UUID) bool {
	if s.CleanerID != nil && *s.CleanerID == userID {
		return true
	}
	for _, member := range s.Team {
		if member.CleanerID == userID {
			return true
		}
	}
	return false
}

func (s *CleaningService) IsParticipant(userID uuid.UUID) bool {
	return s.IsRequester(userID) || s.IsAssignedCleaner(userID)
}

// AwaitingRebookingAnswer reports a rebooked copy whose cleaner has not yet
// accepted or declined it.
func (s *CleaningService) AwaitingRebookingAnswer() bool {
	return s.HasBeenRebooked &&
		s.ServiceStatus == ServiceStatusPending &&
		s.CleanerAcceptedRebooking == RebookingUnanswered
}

// UnpaidPayments sums the entries still owed to the cleaner and returns a copy
// of the payment list with those entries settled.
func (s *CleaningService) UnpaidPayments(at time.Time) (decimal.Decimal, []Payment) {
	total := decimal.Zero
	settled := make([]Payment, len(s.Payments))
	copy(settled, s.Payments)

	for i := range settled {
		payment := &settled[i]
		if payment.PaidToCleaner {
			continue
		}
		switch payment.Status {
		case PaymentStatusCompleted, PaymentStatusFailed, PaymentStatusRefunded, PaymentStatusRetained:
			continue
		}
		total = total.Add(payment.Amount)
		payment.Status = PaymentStatusCompleted
		payment.PaidToCleaner = true
		payment.PaymentDate = at
	}

	return total, settled
}

// SettleCancellation records how the fee of a cancelled service is split.
// The refund is applied to the unsettled payments in order; whatever it does
// not cover is marked retained, splitting an entry when the refund ends inside it.
func (s *CleaningService) SettleCancellation(refund decimal.Decimal) {
	s.RefundAmount = refund
	s.RetainedAmount = s.ServiceFee.Sub(refund)

	remaining := refund
	var retained []Payment
	for i := range s.Payments {
		payment := &s.Payments[i]
		if payment.Status != PaymentStatusPending {
			continue
		}

		switch {
		case !remaining.IsPositive():
			payment.Status = PaymentStatusRetained
		case remaining.GreaterThanOrEqual(payment.Amount):
			payment.Status = PaymentStatusRefunded
			remaining = remaining.Sub(payment.Amount)
		default:
			kept := *payment
			kept.Amount = payment.Amount.Sub(remaining)
			kept.Status = PaymentStatusRetained
			kept.TransactionID = payment.TransactionID + "-retained"
			retained = append(retained, kept)

			payment.Amount = remaining
			payment.Status = PaymentStatusRefunded
			remaining = decimal.Zero
		}
	}
	s.Payments = append(s.Payments, retained...)
}

// CompletedPaymentTotal sums entries already settled to the cleaner.
func (s *CleaningService) CompletedPaymentTotal() decimal.Decimal {
	total := decimal.Zero
	for _, payment := range s.Payments {
		if payment.Status == PaymentStatusCompleted {
			total = total.Add(payment.Amount)
		}
	}
	return total
}

func NewPendingPayment(amount decimal.Decimal, serviceID uuid.UUID, at time.Time) Payment {
	return Payment{
		Amount:        amount,
		Method:        PaymentMethodBalance,
		TransactionID: "auto-" + serviceID.String(),
		Status:        PaymentStatusPending,
		PaymentDate:   at,
	}
}

// Clone returns a deep copy so a write can be prepared without touching the
// snapshot it was read from.
func (s *CleaningService) Clone() *CleaningService {
	clone := *s
	clone.Team = append(datatypes.JSONSlice[TeamMember](nil), s.Team...)
	clone.Extras = append(datatypes.JSONSlice[Extra](nil), s.Extras...)
	clone.Checklist = append(datatypes.JSONSlice[ChecklistItem](nil), s.Checklist...)
	clone.Payments = append(datatypes.JSONSlice[Payment](nil), s.Payments...)
	clone.RequestedDates = append(datatypes.JSONSlice[RequestedDate](nil), s.RequestedDates...)
	clone.Equipment = append(datatypes.JSONSlice[Equipment](nil), s.Equipment...)
	if s.CleanerID != nil {
		id := *s.CleanerID
		clone.CleanerID = &id
	}
	if s.Rating.Score != nil {
		score := *s.Rating.Score
		clone.Rating.Score = &score
	}
	return &clone
}
