package validator

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	domain "github.com/ghuser/catalog/services/catalog/domain"
)

type createBody struct {
	Name  *string  `json:"name" validate:"required"`
	Price *float64 `json:"price" validate:"required,gte=0"`
}

func newJSONRequest(body string) *http.Request {
	return httptest.NewRequest(http.MethodPost, "/items", strings.NewReader(body))
}

func TestDecodeValid_Success(t *testing.T) {
	req, err := DecodeValid[createBody](newJSONRequest(`{"name":"Widget","price":0}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if *req.Name != "Widget" {
		t.Errorf("name: got %q", *req.Name)
	}
	if *req.Price != 0 {
		t.Errorf("zero price must be accepted, got %v", *req.Price)
	}
}

func TestDecodeValid_MalformedJSON(t *testing.T) {
	_, err := DecodeValid[createBody](newJSONRequest(`{"name":`))
	var ve *domain.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %T", err)
	}
	if len(ve.Fields) != 1 || ve.Fields[0].Field != "body" {
		t.Errorf("expected single body-level field error, got %+v", ve.Fields)
	}
}

func TestDecodeValid_MissingFields(t *testing.T) {
	_, err := DecodeValid[createBody](newJSONRequest(`{}`))
	var ve *domain.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %T", err)
	}
	if len(ve.Fields) != 2 {
		t.Fatalf("expected both missing fields reported, got %+v", ve.Fields)
	}
	// Field names come from the json tags, not the Go struct fields.
	if ve.Fields[0].Field != "name" || ve.Fields[1].Field != "price" {
		t.Errorf("expected json tag names, got %+v", ve.Fields)
	}
}

func TestDecodeValid_NegativeNumber(t *testing.T) {
	_, err := DecodeValid[createBody](newJSONRequest(`{"name":"Widget","price":-1}`))
	var ve *domain.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %T", err)
	}
	if ve.Fields[0].Field != "price" {
		t.Errorf("expected price violation, got %+v", ve.Fields)
	}
}
