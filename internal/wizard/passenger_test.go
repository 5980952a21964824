package wizard

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedValidator() *Validator {
	return NewValidatorWithClock(func() time.Time {
		return time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	})
}

func validLocal(seat string) PassengerRecord {
	return PassengerRecord{
		Seat:          seat,
		FirstName:     "Amara",
		LastName:      "Okafor",
		Email:         "amara@example.com",
		Phone:         "+1 (555) 010-2030",
		DateOfBirth:   "1990-04-12",
		PassengerType: PassengerLocal,
		NationalID:    "NID-48211",
	}
}

func validForeign(seat string) PassengerRecord {
	p := validLocal(seat)
	p.FirstName = "Lukas"
	p.PassengerType = PassengerForeign
	p.NationalID = ""
	p.PassportNumber = "X1234567"
	p.Nationality = "DE"
	return p
}

func TestValidatePassengers_AcceptsValidRecords(t *testing.T) {
	v := fixedValidator()

	got, err := v.ValidatePassengers([]string{"5A", "5B"}, []PassengerRecord{validLocal("5A"), validForeign("5b")})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "5B", got[1].Seat)
}

func TestValidatePassengers_LocalMissingNationalID(t *testing.T) {
	v := fixedValidator()
	rec := validLocal("5A")
	rec.NationalID = ""
	rec.PassportNumber = "X1234567"

	_, err := v.ValidatePassengers([]string{"5A"}, []PassengerRecord{rec})

	var pve *PassengerValidationError
	require.ErrorAs(t, err, &pve)
	require.Len(t, pve.Records, 1)
	assert.Equal(t, 0, pve.Records[0].Index)
	assert.Equal(t, FieldErrors{"national_id": "is required for local passengers"}, pve.Records[0].Fields)
}

func TestValidatePassengers_DocumentRuleIgnoresOtherField(t *testing.T) {
	v := fixedValidator()

	tests := []struct {
		name      string
		rec       PassengerRecord
		wantError string
	}{
		{"local with passport only", func() PassengerRecord {
			r := validLocal("1A")
			r.NationalID, r.PassportNumber = "", "P1"
			return r
		}(), "national_id"},
		{"local with both", func() PassengerRecord {
			r := validLocal("1A")
			r.PassportNumber = "P1"
			return r
		}(), ""},
		{"foreign with national id only", func() PassengerRecord {
			r := validForeign("1A")
			r.PassportNumber, r.NationalID = "", "N1"
			return r
		}(), "passport_number"},
		{"foreign with short passport", func() PassengerRecord {
			r := validForeign("1A")
			r.PassportNumber = "X1234"
			return r
		}(), "passport_number"},
		{"foreign with six character passport", func() PassengerRecord {
			r := validForeign("1A")
			r.PassportNumber = "X12345"
			return r
		}(), ""},
		{"foreign with both", func() PassengerRecord {
			r := validForeign("1A")
			r.NationalID = "N1"
			return r
		}(), ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := v.ValidatePassengers([]string{"1A"}, []PassengerRecord{tt.rec})
			if tt.wantError == "" {
				require.NoError(t, err)
				if got[0].PassengerType == PassengerLocal {
					assert.NotEmpty(t, got[0].NationalID)
					assert.Empty(t, got[0].PassportNumber)
				} else {
					assert.NotEmpty(t, got[0].PassportNumber)
					assert.Empty(t, got[0].NationalID)
				}
				return
			}
			var pve *PassengerValidationError
			require.ErrorAs(t, err, &pve)
			assert.Contains(t, pve.Records[0].Fields, tt.wantError)
			assert.Len(t, pve.Records[0].Fields, 1)
		})
	}
}

func TestValidatePassengers_IsAllOrNothing(t *testing.T) {
	v := fixedValidator()
	bad := validLocal("5B")
	bad.Email = "not-an-email"

	got, err := v.ValidatePassengers([]string{"5A", "5B", "5C"},
		[]PassengerRecord{validLocal("5A"), bad, validLocal("5C")})

	assert.Nil(t, got)
	var pve *PassengerValidationError
	require.ErrorAs(t, err, &pve)
	require.Len(t, pve.Records, 1)
	assert.Equal(t, 1, pve.Records[0].Index)
	assert.Equal(t, "5B", pve.Records[0].Seat)
	assert.Equal(t, FieldErrors{"email": "must be a valid email address"}, pve.Records[0].Fields)
}

func TestValidatePassengers_FieldRules(t *testing.T) {
	v := fixedValidator()

	tests := []struct {
		name   string
		mutate func(*PassengerRecord)
		field  string
	}{
		{"blank first name", func(p *PassengerRecord) { p.FirstName = "   " }, "first_name"},
		{"blank last name", func(p *PassengerRecord) { p.LastName = "" }, "last_name"},
		{"short phone", func(p *PassengerRecord) { p.Phone = "555-0102" }, "phone"},
		{"letters in phone", func(p *PassengerRecord) { p.Phone = "555-010-20AB" }, "phone"},
		{"missing dob", func(p *PassengerRecord) { p.DateOfBirth = "" }, "date_of_birth"},
		{"future dob", func(p *PassengerRecord) { p.DateOfBirth = "2027-01-01" }, "date_of_birth"},
		{"malformed dob", func(p *PassengerRecord) { p.DateOfBirth = "12/04/1990" }, "date_of_birth"},
		{"unknown type", func(p *PassengerRecord) { p.PassengerType = "alien" }, "passenger_type"},
		{"wrong seat", func(p *PassengerRecord) { p.Seat = "9F" }, "seat"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := validLocal("5A")
			tt.mutate(&rec)

			_, err := v.ValidatePassengers([]string{"5A"}, []PassengerRecord{rec})
			var pve *PassengerValidationError
			require.ErrorAs(t, err, &pve)
			assert.Contains(t, pve.Records[0].Fields, tt.field)
		})
	}
}

func TestValidatePassengers_PhoneFormats(t *testing.T) {
	for _, phone := range []string{"5550102030", "+44 20 7946 0958", "(555) 010-2030", "555 010 2030"} {
		assert.True(t, isPhone(phone), phone)
	}
	for _, phone := range []string{"", "+123", "555.010.2030", "++5550102030"} {
		assert.False(t, isPhone(phone), phone)
	}
}

func TestValidatePassengers_CountMismatch(t *testing.T) {
	v := fixedValidator()

	_, err := v.ValidatePassengers([]string{"5A", "5B"}, []PassengerRecord{validLocal("5A")})
	var pve *PassengerValidationError
	require.ErrorAs(t, err, &pve)
	assert.Empty(t, pve.Records)
	assert.Contains(t, pve.Error(), "expected 2")
}

func TestValidatePassengers_ShortPassportMessage(t *testing.T) {
	v := fixedValidator()

	rec := validForeign("1A")
	rec.PassportNumber = "  AB12 "
	_, err := v.ValidatePassengers([]string{"1A"}, []PassengerRecord{rec})

	var pve *PassengerValidationError
	require.ErrorAs(t, err, &pve)
	assert.Equal(t, FieldErrors{"passport_number": "must be at least 6 characters"}, pve.Records[0].Fields)
}
