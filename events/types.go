package events

import (
	"time"

	"strainchain/block"
)

// EventType is an enum-like string type for ledger events
type EventType string

const (
	EventRecordAppended EventType = "RecordAppended"
	EventBreedingFailed EventType = "BreedingFailed"
)

// LedgerEvent represents any event emitted by the breeding ledger
type LedgerEvent interface {
	Type() EventType
	Timestamp() time.Time
	BlockDigest() string
}

// RecordAppended fires after a record clears validation and joins the chain
type RecordAppended struct {
	record    *block.Record
	height    int
	timestamp time.Time
}

func NewRecordAppended(record *block.Record, height int) *RecordAppended {
	return &RecordAppended{
		record:    record,
		height:    height,
		timestamp: time.Now(),
	}
}

func (e *RecordAppended) Type() EventType {
	return EventRecordAppended
}

func (e *RecordAppended) Timestamp() time.Time {
	return e.timestamp
}

func (e *RecordAppended) BlockDigest() string {
	return e.record.BlockDigest
}

func (e *RecordAppended) Record() *block.Record {
	return e.record
}

func (e *RecordAppended) Height() int {
	return e.height
}

// BreedingFailed fires when a breeding transaction aborts without
// touching the ledger
type BreedingFailed struct {
	strainName string
	reason     string
	timestamp  time.Time
}

func NewBreedingFailed(strainName, reason string) *BreedingFailed {
	return &BreedingFailed{
		strainName: strainName,
		reason:     reason,
		timestamp:  time.Now(),
	}
}

func (e *BreedingFailed) Type() EventType {
	return EventBreedingFailed
}

func (e *BreedingFailed) Timestamp() time.Time {
	return e.timestamp
}

func (e *BreedingFailed) BlockDigest() string {
	return ""
}

func (e *BreedingFailed) StrainName() string {
	return e.strainName
}

func (e *BreedingFailed) Reason() string {
	return e.reason
}
