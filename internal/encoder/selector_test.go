package encoder

import (
	"context"
	"strings"
	"testing"

	"github.com/haulage-networks/exchange-delivery/internal/delivery"
)

type stubEncoder struct{ name string }

func (s *stubEncoder) EncodeMessage(_ context.Context, _ *delivery.Context) (*delivery.EncodedInvoice, error) {
	return &delivery.EncodedInvoice{}, nil
}

func TestSelectorSelect(t *testing.T) {
	csv := &stubEncoder{name: "csv"}

	s := NewSelector()
	s.Register(delivery.AdapterTypeCsv, csv)

	got, err := s.Select(delivery.AdapterTypeCsv)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != csv {
		t.Errorf("expected the registered csv encoder")
	}
}

func TestSelectorUnregisteredType(t *testing.T) {
	s := NewSelector()
	s.Register(delivery.AdapterTypeCsv, &stubEncoder{})

	_, err := s.Select(delivery.AdapterTypeOpenApi)
	if err == nil {
		t.Fatalf("expected error but got none")
	}
	if delivery.CodeOf(err) != delivery.ErrCodeConfiguration {
		t.Errorf("expected configuration error, got %s", delivery.CodeOf(err))
	}
	if !strings.Contains(err.Error(), "OpenApi") {
		t.Errorf("expected the error to name the unsupported type, got %q", err.Error())
	}
}

func TestSelectorRejectsUndefinedType(t *testing.T) {
	s := NewSelector()
	s.Register(delivery.AdapterTypeUndefined, &stubEncoder{})

	if _, err := s.Select(delivery.AdapterTypeUndefined); err == nil {
		t.Errorf("expected error for the undefined adapter type")
	}
}

func TestSelectorLastRegistrationWins(t *testing.T) {
	first := &stubEncoder{name: "first"}
	second := &stubEncoder{name: "second"}

	s := NewSelector()
	s.Register(delivery.AdapterTypePidx, first)
	s.Register(delivery.AdapterTypePidx, second)

	got, err := s.Select(delivery.AdapterTypePidx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != second {
		t.Errorf("expected the second registration to win")
	}
}
