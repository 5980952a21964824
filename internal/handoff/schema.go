package handoff

import (
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

const headerProperties = `
	"version":    {"const": 1},
	"session_id": {"type": "string", "minLength": 1},
	"stored_at":  {"type": "string", "format": "date-time"},
	"expires_at": {"type": "string", "format": "date-time"}`

const seatIDSchema = `{"type": "string", "pattern": "^[1-9][0-9]*[A-Z]$"}`

var schemaSources = map[Kind]string{
	KindDraft: `{
		"type": "object",
		"required": ["version", "session_id", "stored_at", "expires_at", "draft"],
		"properties": {` + headerProperties + `,
			"draft": {
				"type": "object",
				"required": ["session_id", "flight", "cabin_class", "passenger_count", "layout", "selection", "step"],
				"properties": {
					"flight": {"type": "object", "required": ["id"]},
					"passenger_count": {"type": "integer", "minimum": 1},
					"layout": {"type": "object", "required": ["rows", "columns"]},
					"selection": {
						"type": "object",
						"required": ["seats", "capacity"],
						"properties": {"seats": {"type": ["array", "null"], "items": ` + seatIDSchema + `}}
					},
					"step": {"enum": ["SEARCH", "SEAT_SELECTION", "PASSENGER_INFO", "PAYMENT", "CONFIRMED"]}
				}
			}
		}
	}`,
	KindSeats: `{
		"type": "object",
		"required": ["version", "session_id", "stored_at", "expires_at", "flight_id", "seats"],
		"properties": {` + headerProperties + `,
			"flight_id": {"type": "string", "minLength": 1},
			"seats": {"type": "array", "minItems": 1, "items": ` + seatIDSchema + `}
		}
	}`,
	KindPassengers: `{
		"type": "object",
		"required": ["version", "session_id", "stored_at", "expires_at", "flight", "seats", "passengers", "pricing"],
		"properties": {` + headerProperties + `,
			"flight": {"type": "object", "required": ["id", "flight_number"]},
			"seats": {"type": "array", "minItems": 1, "items": ` + seatIDSchema + `},
			"passengers": {
				"type": "array",
				"minItems": 1,
				"items": {
					"type": "object",
					"required": ["seat", "first_name", "last_name", "email", "phone", "date_of_birth", "passenger_type"],
					"properties": {
						"first_name": {"type": "string", "minLength": 1},
						"last_name": {"type": "string", "minLength": 1},
						"passenger_type": {"enum": ["local", "foreign"]}
					}
				}
			},
			"pricing": {
				"type": "object",
				"required": ["total", "currency"],
				"properties": {"total": {"type": "number", "minimum": 0}}
			}
		}
	}`,
	KindReceipt: `{
		"type": "object",
		"required": ["version", "session_id", "stored_at", "expires_at", "receipt"],
		"properties": {` + headerProperties + `,
			"receipt": {
				"type": "object",
				"required": ["booking_reference", "transaction_id", "flight", "seats", "passengers", "pricing", "issued_at"],
				"properties": {
					"booking_reference": {"type": "string", "pattern": "^[A-Z0-9]{6}$"},
					"transaction_id": {"type": "string", "minLength": 1}
				}
			}
		}
	}`,
}

func compileSchemas() (map[Kind]*gojsonschema.Schema, error) {
	out := make(map[Kind]*gojsonschema.Schema, len(schemaSources))
	for kind, src := range schemaSources {
		s, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(src))
		if err != nil {
			return nil, fmt.Errorf("compile %s hand-off schema: %w", kind, err)
		}
		out[kind] = s
	}
	return out, nil
}

func checkSchema(s *gojsonschema.Schema, raw []byte) ([]string, error) {
	result, err := s.Validate(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return nil, err
	}
	if result.Valid() {
		return nil, nil
	}
	problems := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		problems = append(problems, fmt.Sprintf("%v", e))
	}
	return problems, nil
}
