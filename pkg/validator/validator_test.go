package validator

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type contactForm struct {
	Name     string   `json:"name" validate:"required,max=120"`
	Email    string   `json:"email" validate:"required,email"`
	Phone    string   `json:"phone" validate:"required,phone"`
	Color    string   `json:"color" validate:"omitempty,hexcolor"`
	Products []string `json:"product_ids" validate:"omitempty,min=1"`
	Status   string   `json:"status" validate:"omitempty,oneof=pending contacted completed"`
}

func validForm() contactForm {
	return contactForm{Name: "Ana", Email: "ana@example.com", Phone: "(11) 98888-7777"}
}

func fieldsOf(t *testing.T, err error) map[string]string {
	t.Helper()
	require.Error(t, err)
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	return ve.Fields()
}

func TestValidate_Valid(t *testing.T) {
	assert.NoError(t, Validate(validForm()))
}

func TestValidate_UsesJSONNames(t *testing.T) {
	f := validForm()
	f.Name = ""
	f.Email = "nope"

	fields := fieldsOf(t, Validate(f))
	assert.Equal(t, "is required", fields["name"])
	assert.Equal(t, "must be a valid email address", fields["email"])
}

func TestValidate_Phone(t *testing.T) {
	for _, phone := range []string{"11999999999", "+55 (11) 99999-9999", "5511999999999"} {
		f := validForm()
		f.Phone = phone
		assert.NoError(t, Validate(f), phone)
	}
	for _, phone := range []string{"123", "call me", "1199999999x"} {
		f := validForm()
		f.Phone = phone
		assert.Equal(t, "must be a valid phone number", fieldsOf(t, Validate(f))["phone"], phone)
	}
}

func TestValidate_OneOfAndHexColor(t *testing.T) {
	f := validForm()
	f.Status = "archived"
	f.Color = "navy"

	fields := fieldsOf(t, Validate(f))
	assert.Equal(t, "must be one of: pending contacted completed", fields["status"])
	assert.Equal(t, "must be a hex color such as #183263", fields["color"])
}

func TestValidationError_Message(t *testing.T) {
	f := validForm()
	f.Name = ""
	err := Validate(f)
	assert.Equal(t, "field 'name' is required", err.Error())
}

func TestDecodeAndValidate(t *testing.T) {
	body := `{"name":"Ana","email":"ana@example.com","phone":"11999999999"}`
	r := httptest.NewRequest("POST", "/api/v1/contacts", strings.NewReader(body))
	var dst contactForm
	require.NoError(t, DecodeAndValidate(httptest.NewRecorder(), r, &dst))
	assert.Equal(t, "Ana", dst.Name)
}

func TestDecodeAndValidate_BadJSON(t *testing.T) {
	r := httptest.NewRequest("POST", "/api/v1/contacts", strings.NewReader("{"))
	var dst contactForm
	err := DecodeAndValidate(httptest.NewRecorder(), r, &dst)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode request body")
}

func TestDecodeAndValidate_TooLarge(t *testing.T) {
	big := `{"name":"` + strings.Repeat("a", maxBodyBytes+1) + `"}`
	r := httptest.NewRequest("POST", "/api/v1/contacts", strings.NewReader(big))
	var dst contactForm
	assert.Error(t, DecodeAndValidate(httptest.NewRecorder(), r, &dst))
}
