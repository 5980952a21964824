package wizard

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// PassengerType picks which travel document is mandatory
type PassengerType string

const (
	PassengerLocal   PassengerType = "local"
	PassengerForeign PassengerType = "foreign"
)

// MinPassportLength applies to foreign passengers only
const MinPassportLength = 6

// PassengerRecord is one traveller, bound to one selected seat
type PassengerRecord struct {
	Seat            string        `json:"seat" validate:"required"`
	FirstName       string        `json:"first_name" validate:"required,max=100"`
	LastName        string        `json:"last_name" validate:"required,max=100"`
	Email           string        `json:"email" validate:"required,email"`
	Phone           string        `json:"phone" validate:"required,phone"`
	DateOfBirth     string        `json:"date_of_birth" validate:"required,dob"`
	PassengerType   PassengerType `json:"passenger_type" validate:"required,oneof=local foreign"`
	NationalID      string        `json:"national_id" validate:"required_if=PassengerType local,max=32"`
	PassportNumber  string        `json:"passport_number" validate:"required_if=PassengerType foreign,max=32"`
	Nationality     string        `json:"nationality" validate:"max=56"`
	SpecialRequests string        `json:"special_requests" validate:"max=500"`
}

// EmptyPassenger is the blank form shown for a seat
func EmptyPassenger(seat string) PassengerRecord {
	return PassengerRecord{Seat: seat, PassengerType: PassengerLocal}
}

// FullName joins first and last name
func (p PassengerRecord) FullName() string {
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}

func (p PassengerRecord) normalized() PassengerRecord {
	p.Seat = strings.ToUpper(strings.TrimSpace(p.Seat))
	p.FirstName = strings.TrimSpace(p.FirstName)
	p.LastName = strings.TrimSpace(p.LastName)
	p.Email = strings.TrimSpace(p.Email)
	p.Phone = strings.TrimSpace(p.Phone)
	p.DateOfBirth = strings.TrimSpace(p.DateOfBirth)
	p.PassengerType = PassengerType(strings.ToLower(strings.TrimSpace(string(p.PassengerType))))
	p.NationalID = strings.TrimSpace(p.NationalID)
	p.PassportNumber = strings.TrimSpace(p.PassportNumber)
	p.Nationality = strings.TrimSpace(p.Nationality)
	p.SpecialRequests = strings.TrimSpace(p.SpecialRequests)
	return p
}

// ValidatePassengers checks a whole submission. Either every record is
// returned normalized, or a *PassengerValidationError describes each bad record.
// Accepted records keep only the document field their type asks for.
func (v *Validator) ValidatePassengers(seats []string, records []PassengerRecord) ([]PassengerRecord, error) {
	if len(records) != len(seats) {
		return nil, &PassengerValidationError{
			Reason: fmt.Sprintf("expected %d passenger record(s), got %d", len(seats), len(records)),
		}
	}

	accepted := make([]PassengerRecord, len(records))
	var bad []RecordError

	for i, raw := range records {
		rec := raw.normalized()

		fields := FieldErrors{}
		if err := v.validate.Struct(rec); err != nil {
			fields = fieldErrors(err)
		}
		if rec.Seat != seats[i] {
			fields["seat"] = fmt.Sprintf("must be seat %s", seats[i])
		}
		if _, set := fields["passport_number"]; !set && rec.PassengerType == PassengerForeign &&
			utf8.RuneCountInString(rec.PassportNumber) < MinPassportLength {
			fields["passport_number"] = fmt.Sprintf("must be at least %d characters", MinPassportLength)
		}

		if len(fields) > 0 {
			bad = append(bad, RecordError{Index: i, Seat: seats[i], Fields: fields})
			continue
		}

		switch rec.PassengerType {
		case PassengerLocal:
			rec.PassportNumber = ""
		case PassengerForeign:
			rec.NationalID = ""
		}
		accepted[i] = rec
	}

	if len(bad) > 0 {
		return nil, &PassengerValidationError{Records: bad}
	}
	return accepted, nil
}
