package validate_test

import (
	"errors"
	"testing"

	"github.com/ardanlabs/powledger/foundation/validate"
)

type transfer struct {
	From  string `json:"from" validate:"required"`
	To    string `json:"to" validate:"required,nefield=From"`
	Value int64  `json:"value"`
}

func Test_Check(t *testing.T) {
	if err := validate.Check(transfer{From: "A", To: "B", Value: 10}); err != nil {
		t.Fatalf("Should be able to validate a good value: %s", err)
	}

	err := validate.Check(transfer{From: "", To: "", Value: -1})
	if err == nil {
		t.Fatalf("Should not be able to validate empty identifiers.")
	}

	if !validate.IsFieldErrors(err) {
		t.Fatalf("Should get back field errors: %T", err)
	}

	fields := validate.GetFieldErrors(err).Fields()
	if _, exists := fields["from"]; !exists {
		t.Logf("got: %v", fields)
		t.Fatalf("Should have an error for the from field using the json name.")
	}
	if _, exists := fields["to"]; !exists {
		t.Logf("got: %v", fields)
		t.Fatalf("Should have an error for the to field using the json name.")
	}
}

func Test_SameAccount(t *testing.T) {
	err := validate.Check(transfer{From: "A", To: "A"})
	if err == nil {
		t.Fatalf("Should not be able to send to the same account.")
	}

	fields := validate.GetFieldErrors(err).Fields()
	if len(fields) != 1 || fields["to"] == "" {
		t.Logf("got: %v", fields)
		t.Fatalf("Should only have an error for the to field.")
	}
}

func Test_NotFieldErrors(t *testing.T) {
	if validate.IsFieldErrors(errors.New("boom")) {
		t.Fatalf("Should not treat a plain error as field errors.")
	}

	if validate.GetFieldErrors(errors.New("boom")) != nil {
		t.Fatalf("Should get back nil for a plain error.")
	}
}
