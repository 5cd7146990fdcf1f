package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type contactRequest struct {
	Type    string `json:"type" validate:"required,oneof=signup password-reset contact"`
	Email   string `json:"email" validate:"required,email"`
	Message string `json:"message" validate:"max=2000"`
}

func decodeContact(body interface{}) error {
	raw, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, "/api/functions/send-email", bytes.NewReader(raw))
	var c contactRequest
	return DecodeAndValidate(req, &c)
}

func TestProperty_MissingRequiredFieldsRejected(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("only complete requests pass", prop.ForAll(
		func(withType, withEmail bool) bool {
			body := map[string]interface{}{}
			if withType {
				body["type"] = "contact"
			}
			if withEmail {
				body["email"] = "apotheke@example.de"
			}
			err := decodeContact(body)
			if withType && withEmail {
				return err == nil
			}
			return err != nil
		},
		gen.Bool(),
		gen.Bool(),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestFormatValidationErrors_UsesJSONNames(t *testing.T) {
	err := decodeContact(map[string]interface{}{"type": "newsletter", "email": "nope"})
	require.Error(t, err)

	errs := FormatValidationErrors(err)
	require.Len(t, errs, 2)
	byField := map[string]string{}
	for _, e := range errs {
		byField[e.Field] = e.Message
	}
	assert.Equal(t, "Value must be one of: signup password-reset contact", byField["type"])
	assert.Equal(t, "Invalid email format", byField["email"])
}

func TestRespondWithDecodeError(t *testing.T) {
	w := httptest.NewRecorder()
	RespondWithDecodeError(w, decodeContact(map[string]interface{}{"type": "contact"}))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "validation_errors")

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("{not json"))
	var c contactRequest
	w = httptest.NewRecorder()
	RespondWithDecodeError(w, DecodeAndValidate(req, &c))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid request body")
}
