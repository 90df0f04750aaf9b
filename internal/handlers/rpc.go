// Package handlers exposes the storefront and dashboard operations as JSON
// remote procedures mounted at /rpc/<namespace>.<procedure>.
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"ecommerce-platform/internal/middleware"
	"ecommerce-platform/internal/models"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
)

// RPCPrefix is the path every procedure is mounted under.
const RPCPrefix = "/rpc/"

const maxBodyBytes = 1 << 20

// Procedure handles one call. The returned value becomes the "data" field of
// the response; a non-nil error becomes the "error" field.
type Procedure func(w http.ResponseWriter, r *http.Request) (interface{}, error)

type dataBody struct {
	Data interface{} `json:"data"`
}

type errorBody struct {
	Error string `json:"error"`
}

// RPC decodes, validates and answers procedure calls.
type RPC struct {
	validate *validator.Validate
	logger   logrus.FieldLogger
}

func NewRPC(logger logrus.FieldLogger) *RPC {
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	validate := validator.New()
	// Report JSON field names in validation messages
	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &RPC{validate: validate, logger: logger}
}

// Path returns the route of a procedure.
func Path(name string) string {
	return RPCPrefix + name
}

// Mount registers fn as a POST procedure on r.
func (p *RPC) Mount(r chi.Router, name string, fn Procedure) {
	r.Post(Path(name), p.Handle(fn))
}

// Handle adapts fn into an http.HandlerFunc that writes the response envelope.
func (p *RPC) Handle(fn Procedure) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data, err := fn(w, r)
		if err != nil {
			p.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, dataBody{Data: data})
	}
}

// Decode reads the JSON body into dst and validates it. An empty body decodes
// to the zero value so argument-less procedures accept it.
func (p *RPC) Decode(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	defer body.Close()

	if err := json.NewDecoder(body).Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: malformed request body", models.ErrInvalidInput)
	}
	return p.validate.Struct(dst)
}

func (p *RPC) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, message := statusFor(err)

	entry := p.logger.WithFields(logrus.Fields{
		"path":   r.URL.Path,
		"status": status,
	})
	if status >= http.StatusInternalServerError {
		entry.WithError(err).Error("Procedure failed")
	} else {
		entry.WithError(err).Debug("Procedure rejected")
	}

	writeJSON(w, status, errorBody{Error: message})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// subject returns the session subject stored by the route gate.
func subject(r *http.Request) (string, error) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil || claims.SubjectID == "" {
		return "", models.ErrUnauthorized
	}
	return claims.SubjectID, nil
}

type idRequest struct {
	ID string `json:"id" validate:"required"`
}

type pageRequest struct {
	Limit  int `json:"limit" validate:"omitempty,min=1,max=100"`
	Offset int `json:"offset" validate:"omitempty,min=0"`
}
