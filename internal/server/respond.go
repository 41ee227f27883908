package server

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/bichil/orgchart/pkg/errors"
	"github.com/bichil/orgchart/pkg/export"
	"github.com/bichil/orgchart/pkg/i18n"
)

// maxBody bounds request bodies; the largest legitimate body is an imported chart.
const maxBody = 4 << 20

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}

// statusFor maps an error code to an HTTP status.
func statusFor(code errors.Code) int {
	switch code {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidFormat, errors.ErrCodeInvalidPath, errors.ErrCodeMalformedSnapshot:
		return http.StatusBadRequest
	case errors.ErrCodeInvalidEdge:
		return http.StatusUnprocessableEntity
	case errors.ErrCodeNotFound:
		return http.StatusNotFound
	case errors.ErrCodeRootDeletion, errors.ErrCodePreview, errors.ErrCodeBusy, errors.ErrCodeNoBaseline,
		errors.ErrCodeSlotUnreadable:
		return http.StatusConflict
	case errors.ErrCodeUnsupported:
		return http.StatusNotImplemented
	case errors.ErrCodeExport:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	status := statusFor(code)
	msg := errors.UserMessage(err)
	if status >= 500 {
		s.logger.Error("request failed", "code", code, "error", err)
	}
	writeJSON(w, status, errorBody{Error: errorDetail{Code: string(code), Message: msg}})
}

// writeExportError shows the localized message the editor uses for failed
// downloads, keeping the cause for the log.
func (s *Server) writeExportError(w http.ResponseWriter, r *http.Request, err error) {
	if !errors.Is(err, errors.ErrCodeExport) {
		s.writeError(w, err)
		return
	}
	lang := i18n.Match(r.Header.Get("Accept-Language"))
	s.logger.Warn("export failed", "error", err)
	msg := i18n.T(lang, i18n.ExportFailed, errors.UserMessage(err))
	if stderrors.Is(err, export.ErrNoDiagram) {
		msg = i18n.T(lang, i18n.DiagramNotFound)
	}
	writeJSON(w, statusFor(errors.ErrCodeExport), errorBody{Error: errorDetail{Code: string(errors.ErrCodeExport), Message: msg}})
}

// decode reads a JSON body into dst and validates it. An empty body is
// allowed when optional is true.
func decode(r *http.Request, dst any, optional bool) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if optional && stderrors.Is(err, io.EOF) {
			return nil
		}
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid request body")
	}
	if err := validate.Struct(dst); err != nil {
		return errors.New(errors.ErrCodeInvalidInput, "%s", formatValidation(err))
	}
	return nil
}

func formatValidation(err error) string {
	var verrs validator.ValidationErrors
	if !stderrors.As(err, &verrs) {
		return err.Error()
	}
	msgs := make([]string, 0, len(verrs))
	for _, e := range verrs {
		switch e.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s is required", e.Field()))
		case "max":
			msgs = append(msgs, fmt.Sprintf("%s must be at most %s characters", e.Field(), e.Param()))
		case "nefield":
			msgs = append(msgs, fmt.Sprintf("%s must differ from %s", e.Field(), strings.ToLower(e.Param())))
		default:
			msgs = append(msgs, fmt.Sprintf("%s is invalid", e.Field()))
		}
	}
	return strings.Join(msgs, "; ")
}

func confirmed(r *http.Request) bool {
	switch strings.ToLower(r.URL.Query().Get("confirm")) {
	case "1", "true", "yes":
		return true
	}
	return false
}

func errNeedsConfirm(action string) error {
	return errors.New(errors.ErrCodeInvalidInput, "%s needs confirmation: repeat with ?confirm=true", action)
}
