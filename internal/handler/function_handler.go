package handler

import (
	"context"
	"net/http"
	"strings"

	"social-scheduler/internal/middleware"
	"social-scheduler/internal/model"
	"social-scheduler/pkg/apierror"
)

type tokenValidator interface {
	ValidateToken(tokenString string) (*model.AuthClaims, error)
}

type contentGenerator interface {
	Generate(ctx context.Context, userID string, req model.GenerateContentRequest) (model.GenerationResult, error)
}

type accountBroker interface {
	Handle(ctx context.Context, userID string, req model.SocialAuthRequest) (any, error)
}

// FunctionHandler serves the edge-function compatible endpoints. They answer
// with bare JSON bodies and authenticate inside the handler so failures keep
// the endpoint's fixed status and flat error shape.
type FunctionHandler struct {
	validator tokenValidator
	generator contentGenerator
	accounts  accountBroker
}

func NewFunctionHandler(validator tokenValidator, generator contentGenerator, accounts accountBroker) *FunctionHandler {
	return &FunctionHandler{validator: validator, generator: generator, accounts: accounts}
}

func (h *FunctionHandler) GenerateContent(w http.ResponseWriter, r *http.Request) {
	const failure = http.StatusInternalServerError

	claims, err := h.authenticate(r, "No authorization header provided", "Invalid authentication token")
	if err != nil {
		writeFunctionError(w, failure, err)
		return
	}

	var payload model.GenerateContentRequest
	if err := decodeJSON(r, &payload); err != nil {
		writeFunctionError(w, failure, err)
		return
	}

	result, err := h.generator.Generate(r.Context(), claims.UserID, payload)
	if err != nil {
		writeFunctionError(w, failure, err)
		return
	}

	writeFunctionJSON(w, http.StatusOK, result)
}

func (h *FunctionHandler) SocialMediaAuth(w http.ResponseWriter, r *http.Request) {
	const failure = http.StatusBadRequest

	claims, err := h.authenticate(r, "No authorization header", "Unauthorized")
	if err != nil {
		writeFunctionError(w, failure, err)
		return
	}

	var payload model.SocialAuthRequest
	if err := decodeJSON(r, &payload); err != nil {
		writeFunctionError(w, failure, err)
		return
	}

	body, err := h.accounts.Handle(r.Context(), claims.UserID, payload)
	if err != nil {
		writeFunctionError(w, failure, err)
		return
	}

	writeFunctionJSON(w, http.StatusOK, body)
}

func (h *FunctionHandler) authenticate(r *http.Request, missing string, invalid string) (*model.AuthClaims, error) {
	if strings.TrimSpace(r.Header.Get("Authorization")) == "" {
		return nil, apierror.Unauthorized(missing)
	}

	token, ok := middleware.BearerToken(r)
	if !ok {
		return nil, apierror.Unauthorized(invalid)
	}

	claims, err := h.validator.ValidateToken(token)
	if err != nil {
		return nil, apierror.Unauthorized(invalid)
	}
	return claims, nil
}
