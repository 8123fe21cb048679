// ABOUTME: Payload encoder for QR contact sharing
// ABOUTME: Serializes one or many contacts and enforces batch and byte limits
package payload

import (
	"errors"
	"fmt"
	"math"

	"github.com/mycrew/mycrew/models"
)

var ErrNoContactSelected = errors.New("no contact selected")

// CapacityReason says which limit a CapacityError hit.
type CapacityReason int

const (
	ReasonTooManyContacts CapacityReason = iota
	ReasonPayloadTooLarge
)

func (r CapacityReason) String() string {
	if r == ReasonTooManyContacts {
		return "too_many_contacts"
	}
	return "payload_too_large"
}

// CapacityError is returned when a payload would not fit a scannable symbol.
// The caller recovers by sending fewer contacts.
type CapacityError struct {
	Reason         CapacityReason
	Requested      int
	Limit          int
	Size           int
	SuggestedCount int
}

func (e *CapacityError) Error() string {
	switch e.Reason {
	case ReasonTooManyContacts:
		return fmt.Sprintf("too many contacts: %d selected, maximum is %d", e.Requested, e.Limit)
	default:
		if e.SuggestedCount > 0 {
			return fmt.Sprintf("payload too large: %d bytes exceeds %d bytes, try %d contacts or fewer",
				e.Size, e.Limit, e.SuggestedCount)
		}
		return fmt.Sprintf("payload too large: %d bytes exceeds %d bytes", e.Size, e.Limit)
	}
}

// SuggestBatchSize scales a rejected batch down by ResizeFactor.
func SuggestBatchSize(requested int) int {
	return int(math.Floor(float64(requested) * ResizeFactor))
}

// EncodeContact builds a single-contact payload with the full location list.
func EncodeContact(c models.Contact) (string, error) {
	text, err := marshal(singlePayload(c))
	if err != nil {
		return "", fmt.Errorf("failed to serialize contact: %w", err)
	}
	if err := checkSize(text, 1); err != nil {
		return "", err
	}
	return text, nil
}

// EncodeContacts builds a multi-contact payload. Each contact keeps only its
// primary location.
func EncodeContacts(cs []models.Contact) (string, error) {
	if err := CheckBatch(len(cs)); err != nil {
		return "", err
	}

	text, err := marshal(listPayload(cs))
	if err != nil {
		return "", fmt.Errorf("failed to serialize contacts: %w", err)
	}
	if err := checkSize(text, len(cs)); err != nil {
		return "", err
	}
	return text, nil
}

// CheckBatch reports whether n contacts may go into one payload, without
// serializing anything.
func CheckBatch(n int) error {
	if n == 0 {
		return ErrNoContactSelected
	}
	if n > MaxBatchSize {
		return &CapacityError{
			Reason:         ReasonTooManyContacts,
			Requested:      n,
			Limit:          MaxBatchSize,
			SuggestedCount: MaxBatchSize,
		}
	}
	return nil
}

// Encode picks the single-contact shape for one contact and the list shape
// otherwise.
func Encode(cs []models.Contact) (string, error) {
	if len(cs) == 1 {
		return EncodeContact(cs[0])
	}
	return EncodeContacts(cs)
}

func checkSize(text string, requested int) error {
	size := len(text)
	if size <= MaxPayloadBytes {
		return nil
	}
	return &CapacityError{
		Reason:         ReasonPayloadTooLarge,
		Requested:      requested,
		Limit:          MaxPayloadBytes,
		Size:           size,
		SuggestedCount: SuggestBatchSize(requested),
	}
}
