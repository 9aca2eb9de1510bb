package models

import "fmt"

type BookingStep string

const (
	BookingStepPaymentForm    BookingStep = "payment-form"
	BookingStepAgreementShown BookingStep = "agreement-shown"
	BookingStepCompleted      BookingStep = "completed"
)

type VerificationStep int

const (
	VerificationStepID VerificationStep = iota
	VerificationStepFace
	VerificationStepNIN
	VerificationStepOwnership
	VerificationStepSubmitted
)

func (s VerificationStep) String() string {
	switch s {
	case VerificationStepID:
		return "id"
	case VerificationStepFace:
		return "face"
	case VerificationStepNIN:
		return "nin"
	case VerificationStepOwnership:
		return "ownership"
	case VerificationStepSubmitted:
		return "submitted"
	default:
		return "unknown"
	}
}

// Title is the heading shown over each step
func (s VerificationStep) Title() string {
	switch s {
	case VerificationStepID:
		return "ID Verification"
	case VerificationStepFace:
		return "Face Capture"
	case VerificationStepNIN:
		return "NIN Verification"
	case VerificationStepOwnership:
		return "Property Ownership"
	default:
		return ""
	}
}

// Progress returns the "Step n of 4" label
func (s VerificationStep) Progress() string {
	if s > VerificationStepOwnership {
		return "Complete"
	}
	return fmt.Sprintf("Step %d of 4", int(s)+1)
}

func (s VerificationStep) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// DocumentKind names an upload slot in the verification and listing wizards
type DocumentKind string

const (
	DocumentID        DocumentKind = "id"
	DocumentFace      DocumentKind = "face"
	DocumentOwnership DocumentKind = "ownership"
	DocumentImage     DocumentKind = "image"
)

// FileHandle is an uploaded file held in memory for the life of a wizard session
type FileHandle struct {
	Name        string `json:"name"`
	Size        int64  `json:"size"`
	SizeLabel   string `json:"size_label"`
	ContentType string `json:"content_type"`
	Data        []byte `json:"-"`
}
