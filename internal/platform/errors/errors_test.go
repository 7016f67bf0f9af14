package errors

import (
	stderrs "errors"
	"net/http"
	"testing"
)

func TestHTTPStatusCodeMapping(t *testing.T) {
	cases := []struct {
		code ErrorCode
		want int
	}{
		{ErrorCodeNotFound, http.StatusNotFound},
		{ErrorCodeInvalidArgument, http.StatusUnprocessableEntity},
		{ErrorCodeValidation, http.StatusBadRequest},
		{ErrorCodeJSON, http.StatusBadRequest},
		{ErrorCodeUnauthorized, http.StatusUnauthorized},
		{ErrorCodeForbidden, http.StatusForbidden},
		{ErrorCodeUpstream, http.StatusBadGateway},
		{ErrorCodeUnavailable, http.StatusServiceUnavailable},
		{ErrorCodeNotConfigured, http.StatusInternalServerError},
		{ErrorCodePanic, http.StatusInternalServerError},
		{ErrorCodeUnknown, http.StatusInternalServerError},
		{9999, http.StatusInternalServerError}, // default branch
	}
	for _, c := range cases {
		if got := HTTPStatusCode(c.code); got != c.want {
			t.Fatalf("HTTPStatusCode(%v) = %d, want %d", c.code, got, c.want)
		}
	}
}

func TestErrorTypeAndMethods(t *testing.T) {
	// nil *Error should render "<nil>"
	var e *Error
	if e.Error() != "<nil>" {
		t.Fatalf("nil *Error render = %q, want <nil>", e.Error())
	}

	// New / Newf
	e1 := New(ErrorCodeValidation, "bad stuff")
	if CodeOf(e1) != ErrorCodeValidation {
		t.Fatalf("CodeOf(New) = %v", CodeOf(e1))
	}
	e2 := Newf(ErrorCodeJSON, "bad json %d", 12)
	if got := e2.Error(); got != "bad json 12" {
		t.Fatalf("Newf().Error = %q", got)
	}

	// Wrap / Wrapf / Unwrap
	src := stderrs.New("root")
	e3 := Wrap(src, ErrorCodeUpstream, "upload failed")
	if u := stderrs.Unwrap(e3); u == nil || u.Error() != "root" {
		t.Fatalf("Wrap did not keep orig")
	}
	if CodeOf(e3) != ErrorCodeUpstream {
		t.Fatalf("CodeOf(Wrap) = %v", CodeOf(e3))
	}
	e4 := Wrapf(src, ErrorCodeForbidden, "nope %s", "here")
	// Error() includes message + ": " + orig
	if want := "nope here: root"; e4.Error() != want {
		t.Fatalf("Wrapf().Error = %q, want %q", e4.Error(), want)
	}

	// As
	if got, ok := As(e4); !ok || got.Code() != ErrorCodeForbidden {
		t.Fatalf("As() failed for our error")
	}
	if _, ok := As(src); ok {
		t.Fatalf("As() true for foreign error")
	}

	// WithField (copy-on-write) and WithOp
	e5 := Wrap(src, ErrorCodeInvalidArgument, "oops")
	e6 := WithField(e5, "cid")
	e7 := WithOp(e6, "pin")
	if f, _ := As(e6); f.Field() != "cid" {
		t.Fatalf("WithField did not set field")
	}
	if o, _ := As(e7); o.Op() != "pin" {
		t.Fatalf("WithOp did not set op")
	}
	if orig, _ := As(e5); orig.Field() != "" || orig.Op() != "" {
		t.Fatalf("copy-on-write mutated the original")
	}
	// foreign errors pass through unchanged
	if got := WithField(src, "x"); got != src {
		t.Fatalf("WithField changed a foreign error")
	}
}

func TestWireAndRoot(t *testing.T) {
	if w := WireFrom(nil); w.Code != ErrorCodeUnknown || w.Message != "" {
		t.Fatalf("WireFrom(nil) = %+v", w)
	}

	src := stderrs.New("deep")
	e := Wrap(Wrap(src, ErrorCodeUpstream, "mid"), ErrorCodeUpstream, "top")
	if got := Root(e); got != src {
		t.Fatalf("Root = %v, want %v", got, src)
	}

	w := WireFrom(WithField(Validationf("cid is required"), "cid"))
	if w.Code != ErrorCodeValidation || w.Field != "cid" {
		t.Fatalf("WireFrom wire = %+v", w)
	}

	// foreign error maps to Unknown
	fw := WireFrom(src)
	if fw.Code != ErrorCodeUnknown || fw.Message != "deep" {
		t.Fatalf("foreign WireFrom = %+v", fw)
	}

	status, wire := HTTP(Unauthorizedf("no"))
	if status != http.StatusUnauthorized || wire.Message != "no" {
		t.Fatalf("HTTP() = %d %+v", status, wire)
	}
	if status, _ := HTTP(nil); status != http.StatusOK {
		t.Fatalf("HTTP(nil) status = %d", status)
	}
}

func TestIsCodeAndWrapIf(t *testing.T) {
	if !IsCode(NotConfiguredf("pinata credentials missing"), ErrorCodeNotConfigured) {
		t.Fatalf("IsCode false for matching code")
	}
	if IsCode(stderrs.New("x"), ErrorCodeUpstream) {
		t.Fatalf("IsCode true for foreign error")
	}
	if WrapIf(nil, ErrorCodeUpstream, "x") != nil {
		t.Fatalf("WrapIf(nil) != nil")
	}
	if err := WrapIf(stderrs.New("y"), ErrorCodeUpstream, "x"); CodeOf(err) != ErrorCodeUpstream {
		t.Fatalf("WrapIf did not wrap")
	}
}
