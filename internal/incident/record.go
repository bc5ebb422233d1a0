package incident

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// #region record
// Record is the incident documentation draft. Every text field defaults to
// the empty string and every flag to false.
type Record struct {
	StopDate        string `json:"stopDate"`
	StopTime        string `json:"stopTime"`
	Location        string `json:"location"`
	Agency          string `json:"agency"`
	OfficerName     string `json:"officerName"`
	Badge           string `json:"badge"`
	Reason          string `json:"reason"`
	Actions         string `json:"actions"`
	ConsentRequests string `json:"consentRequests"`
	Searches        string `json:"searches"`
	Passengers      string `json:"passengers"`
	Recording       string `json:"recording"`
	FollowUp        string `json:"followUp"`
	PersonalNotes   string `json:"personalNotes"`

	ConsentRequested bool `json:"consentRequested"`
	SearchConducted  bool `json:"searchConducted"`

	UpdatedAt time.Time `json:"updatedAt"`
}

// Defaults returns an empty draft.
func Defaults() Record { return Record{} }
// #endregion record

// #region fields
// Field names a text field of Record.
type Field string

const (
	FieldStopDate        Field = "stopDate"
	FieldStopTime        Field = "stopTime"
	FieldLocation        Field = "location"
	FieldAgency          Field = "agency"
	FieldOfficerName     Field = "officerName"
	FieldBadge           Field = "badge"
	FieldReason          Field = "reason"
	FieldActions         Field = "actions"
	FieldConsentRequests Field = "consentRequests"
	FieldSearches        Field = "searches"
	FieldPassengers      Field = "passengers"
	FieldRecording       Field = "recording"
	FieldFollowUp        Field = "followUp"
	FieldPersonalNotes   Field = "personalNotes"
)

// Flag names a boolean field of Record.
type Flag string

const (
	FlagConsentRequested Flag = "consentRequested"
	FlagSearchConducted  Flag = "searchConducted"
)

// ErrUnknownField is returned for a field or flag name Record does not have.
var ErrUnknownField = errors.New("unknown documentation field")

// Fields lists the text fields in form order.
func Fields() []Field {
	return []Field{
		FieldStopDate, FieldStopTime, FieldLocation, FieldAgency, FieldOfficerName, FieldBadge,
		FieldReason, FieldActions, FieldConsentRequests, FieldSearches, FieldPassengers,
		FieldRecording, FieldFollowUp, FieldPersonalNotes,
	}
}

// Flags lists the boolean fields in form order.
func Flags() []Flag { return []Flag{FlagConsentRequested, FlagSearchConducted} }

// Label returns the form label for f.
func (f Field) Label() string {
	switch f {
	case FieldStopDate:
		return "Date"
	case FieldStopTime:
		return "Time"
	case FieldLocation:
		return "Location"
	case FieldAgency:
		return "Agency"
	case FieldOfficerName:
		return "Officer name"
	case FieldBadge:
		return "Badge"
	case FieldReason:
		return "Reason stated by officer"
	case FieldActions:
		return "Actions observed (searches, orders)"
	case FieldConsentRequests:
		return "Consent requests & responses"
	case FieldSearches:
		return "What was searched / seized"
	case FieldPassengers:
		return "Passengers / witnesses"
	case FieldRecording:
		return "Recording status"
	case FieldFollowUp:
		return "Follow-up needed"
	case FieldPersonalNotes:
		return "Personal notes"
	}
	return string(f)
}

// Label returns the form label for f.
func (f Flag) Label() string {
	switch f {
	case FlagConsentRequested:
		return "Consent to search requested"
	case FlagSearchConducted:
		return "Search conducted"
	}
	return string(f)
}

func (r *Record) text(f Field) (*string, error) {
	switch f {
	case FieldStopDate:
		return &r.StopDate, nil
	case FieldStopTime:
		return &r.StopTime, nil
	case FieldLocation:
		return &r.Location, nil
	case FieldAgency:
		return &r.Agency, nil
	case FieldOfficerName:
		return &r.OfficerName, nil
	case FieldBadge:
		return &r.Badge, nil
	case FieldReason:
		return &r.Reason, nil
	case FieldActions:
		return &r.Actions, nil
	case FieldConsentRequests:
		return &r.ConsentRequests, nil
	case FieldSearches:
		return &r.Searches, nil
	case FieldPassengers:
		return &r.Passengers, nil
	case FieldRecording:
		return &r.Recording, nil
	case FieldFollowUp:
		return &r.FollowUp, nil
	case FieldPersonalNotes:
		return &r.PersonalNotes, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownField, string(f))
}

func (r *Record) flag(f Flag) (*bool, error) {
	switch f {
	case FlagConsentRequested:
		return &r.ConsentRequested, nil
	case FlagSearchConducted:
		return &r.SearchConducted, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownField, string(f))
}

// Set assigns a text field.
func (r *Record) Set(f Field, value string) error {
	p, err := r.text(f)
	if err != nil {
		return err
	}
	*p = value
	return nil
}

// Get reads a text field.
func (r Record) Get(f Field) (string, error) {
	p, err := r.text(f)
	if err != nil {
		return "", err
	}
	return *p, nil
}

// SetFlag assigns a boolean field.
func (r *Record) SetFlag(f Flag, value bool) error {
	p, err := r.flag(f)
	if err != nil {
		return err
	}
	*p = value
	return nil
}

// GetFlag reads a boolean field.
func (r Record) GetFlag(f Flag) (bool, error) {
	p, err := r.flag(f)
	if err != nil {
		return false, err
	}
	return *p, nil
}
// #endregion fields

// #region codec
// Encode serializes r as the plain field mapping that is persisted.
func Encode(r Record) ([]byte, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("encode documentation: %w", err)
	}
	return data, nil
}

// Decode parses a persisted draft. Drafts written as {"data": {...},
// "updatedAt": ...} are accepted too.
func Decode(data []byte) (Record, error) {
	var envelope struct {
		Data      *Record   `json:"data"`
		UpdatedAt time.Time `json:"updatedAt"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return Record{}, fmt.Errorf("decode documentation: %w", err)
	}
	if envelope.Data != nil {
		r := *envelope.Data
		if r.UpdatedAt.IsZero() {
			r.UpdatedAt = envelope.UpdatedAt
		}
		return r, nil
	}
	var r Record
	if err := json.Unmarshal(data, &r); err != nil {
		return Record{}, fmt.Errorf("decode documentation: %w", err)
	}
	return r, nil
}
// #endregion codec
