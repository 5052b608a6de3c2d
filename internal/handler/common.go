package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	apperrors "banking-service/internal/errors"
)

type Response struct {
	Data  interface{} `json:"data,omitempty"`
	Error *Error      `json:"error,omitempty"`
}

type Error struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	Details    string `json:"details,omitempty"`
	TrackingID string `json:"trackingId,omitempty"`
}

var validate = newValidator()

// newValidator builds a validator that reports fields by their wire names.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func writeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	json.NewEncoder(w).Encode(Response{Data: data})
}

// writeError translates err into the response envelope. Every error is
// logged exactly once here; internal errors reach the caller as a generic
// message plus tracking id while the detail stays in the logs.
func writeError(w http.ResponseWriter, logger *slog.Logger, err error) {
	appErr, ok := apperrors.AsAppError(err)
	if !ok {
		appErr = apperrors.NewInternalError("an unexpected error occurred", err)
	}

	statusCode := appErr.HTTPStatus()
	body := Error{
		Code:    string(appErr.Code),
		Message: appErr.Message,
		Details: appErr.Details,
	}

	if appErr.IsBusiness() {
		logger.Warn("Request failed",
			"status", statusCode,
			"code", appErr.Code,
			"message", appErr.Message)
	} else {
		logger.Error("Request failed",
			"status", statusCode,
			"code", appErr.Code,
			"tracking_id", appErr.TrackingID,
			"message", appErr.Message,
			"details", appErr.Details)
		body.Message = "an unexpected error occurred"
		body.Details = ""
		body.TrackingID = appErr.TrackingID
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(Response{Error: &body})
}

// validateRequest checks req against its validate tags and folds any
// violations into a single invalid-argument error.
func validateRequest(req any) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}

	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return apperrors.NewInternalError("failed to validate request", err)
	}

	details := make([]string, 0, len(validationErrors))
	for _, fieldErr := range validationErrors {
		details = append(details, fieldErr.Field()+": "+fieldErrorMsg(fieldErr))
	}

	appErr := apperrors.NewAppError(apperrors.InvalidArgument, "invalid request data")
	appErr.Details = strings.Join(details, "; ")
	return appErr
}

func fieldErrorMsg(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return "this field is required"
	case "max":
		return "value is too long"
	case "len":
		return "value must be exactly " + err.Param() + " characters"
	case "gt":
		return "value must be greater than " + err.Param()
	case "gte":
		return "value must be greater than or equal to " + err.Param()
	case "oneof":
		return "value must be one of " + err.Param()
	default:
		return "invalid value"
	}
}
