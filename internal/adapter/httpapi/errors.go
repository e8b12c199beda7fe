package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/grpc-ecosystem/grpc-gateway/v2/runtime"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/eslsoft/neurostudy/internal/entity"
)

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ToStatus maps domain errors onto gRPC status codes.
func ToStatus(err error) *status.Status {
	switch {
	case err == nil:
		return status.New(codes.OK, "")
	case errors.Is(err, errMalformedBody),
		errors.Is(err, entity.ErrInvalidIdentity),
		errors.Is(err, entity.ErrPasswordTooShort),
		errors.Is(err, entity.ErrInvalidXPAmount),
		errors.Is(err, entity.ErrUnsupportedLanguage),
		errors.Is(err, entity.ErrEmptyQuiz),
		errors.Is(err, entity.ErrInvalidOption),
		errors.Is(err, entity.ErrInvalidQuizSession):
		return status.New(codes.InvalidArgument, err.Error())
	case errors.Is(err, entity.ErrInvalidCredentials), errors.Is(err, entity.ErrNotLoggedIn):
		return status.New(codes.Unauthenticated, err.Error())
	case errors.Is(err, entity.ErrProRequired), errors.Is(err, entity.ErrUpgradeRequired):
		return status.New(codes.PermissionDenied, err.Error())
	case errors.Is(err, entity.ErrAccountExists):
		return status.New(codes.AlreadyExists, err.Error())
	case errors.Is(err, entity.ErrNoQuizSession), errors.Is(err, entity.ErrNoDocument):
		return status.New(codes.NotFound, err.Error())
	case errors.Is(err, entity.ErrInvalidQuizTransition):
		return status.New(codes.FailedPrecondition, err.Error())
	default:
		return status.New(codes.Internal, err.Error())
	}
}

func writeError(w http.ResponseWriter, err error) {
	st := ToStatus(err)
	writeJSON(w, runtime.HTTPStatusFromCode(st.Code()), errorBody{
		Code:    st.Code().String(),
		Message: st.Message(),
	})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if v == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(v)
}
