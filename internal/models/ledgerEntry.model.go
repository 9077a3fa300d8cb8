package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type LedgerEntryKind string

const (
	LedgerDebit  LedgerEntryKind = "debit"
	LedgerCredit LedgerEntryKind = "credit"
	LedgerRefund LedgerEntryKind = "refund"
)

// IsIncrease reports whether the entry adds to the user's balance.
func (k LedgerEntryKind) IsIncrease() bool {
	return k == LedgerCredit || k == LedgerRefund
}

type LedgerEntry struct {
	BaseUUIDModel
	UserID       uuid.UUID       `gorm:"type:uuid;not null;index"       json:"userId"`
	ServiceID    *uuid.UUID      `gorm:"type:uuid;index"                json:"serviceId,omitempty"`
	Kind         LedgerEntryKind `gorm:"type:text;not null"             json:"kind"`
	Amount       decimal.Decimal `gorm:"type:decimal(12,2);not null"    json:"amount"`
	BalanceAfter decimal.Decimal `gorm:"type:decimal(12,2);not null"    json:"balanceAfter"`
	EventKey     string          `gorm:"type:text;not null;uniqueIndex" json:"eventKey"`
	Description  string          `gorm:"type:text"                      json:"description,omitempty"`
}

// Event keys identify one logical money movement. A key is applied at most once.

func BookingKey(serviceID uuid.UUID) string {
	return "booking:" + serviceID.String()
}

func BookingCompensationKey(serviceID uuid.UUID) string {
	return "booking-compensation:" + serviceID.String()
}

func PayoutKey(serviceID uuid.UUID) string {
	return "payout:" + serviceID.String()
}

func RefundKey(serviceID uuid.UUID) string {
	return "refund:" + serviceID.String()
}

func DepositKey(depositID uuid.UUID) string {
	return "deposit:" + depositID.String()
}
