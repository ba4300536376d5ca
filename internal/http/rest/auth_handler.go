package rest

import (
	"net/http"

	"github.com/bwise1/upzunction/internal/model"
	"github.com/bwise1/upzunction/util"
	"github.com/bwise1/upzunction/util/tracing"
	"github.com/bwise1/upzunction/util/values"
	"github.com/go-chi/chi/v5"
)

func (api *API) AuthRoutes() chi.Router {
	mux := chi.NewRouter()

	mux.Method(http.MethodPost, "/register", Handler(api.Register))
	mux.Method(http.MethodPost, "/register/verify", Handler(api.RegisterVerify))
	mux.Method(http.MethodPost, "/login", Handler(api.Login))
	mux.Method(http.MethodPost, "/password-reset", Handler(api.PasswordReset))
	mux.Method(http.MethodPost, "/password-reset/otp", Handler(api.PasswordResetOTP))
	mux.Method(http.MethodPost, "/password-reset/new", Handler(api.PasswordResetNew))
	return mux
}

func (api *API) Register(_ http.ResponseWriter, r *http.Request) *ServerResponse {
	tc := r.Context().Value(values.ContextTracingKey).(tracing.Context)

	var req model.RegisterRequest
	if decodeErr := util.DecodeJSONBody(&tc, r.Body, &req); decodeErr != nil {
		return respondWithError(decodeErr, "unable to decode request", values.BadRequestBody, &tc)
	}
	if err := util.ValidateStruct(req); err != nil {
		return respondWithError(err, "Enter a valid username and email address.", values.BadRequestBody, &tc)
	}

	session, err := api.Deps.Accounts.RequestRegistration(r.Context(), req)
	if err != nil {
		return api.fail(err, &tc)
	}
	return respond("A verification OTP has been sent to your email.", values.Success, session)
}

func (api *API) RegisterVerify(_ http.ResponseWriter, r *http.Request) *ServerResponse {
	tc := r.Context().Value(values.ContextTracingKey).(tracing.Context)

	var req model.RegisterVerifyRequest
	if decodeErr := util.DecodeJSONBody(&tc, r.Body, &req); decodeErr != nil {
		return respondWithError(decodeErr, "unable to decode request", values.BadRequestBody, &tc)
	}
	if err := util.ValidateStruct(req); err != nil {
		return respondWithError(err, "session_id, a 6 digit otp and both passwords are required", values.BadRequestBody, &tc)
	}

	user, err := api.Deps.Accounts.CompleteRegistration(r.Context(), req)
	if err != nil {
		return api.fail(err, &tc)
	}
	return api.loginResponse(user, "Registration successful! You are now logged in.", values.Created, &tc)
}

func (api *API) Login(_ http.ResponseWriter, r *http.Request) *ServerResponse {
	tc := r.Context().Value(values.ContextTracingKey).(tracing.Context)

	var req model.LoginRequest
	if decodeErr := util.DecodeJSONBody(&tc, r.Body, &req); decodeErr != nil {
		return respondWithError(decodeErr, "unable to decode request", values.BadRequestBody, &tc)
	}
	if err := util.ValidateStruct(req); err != nil {
		return respondWithError(err, "username and password are required", values.BadRequestBody, &tc)
	}

	user, err := api.Deps.Accounts.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		return api.fail(err, &tc)
	}
	return api.loginResponse(user, "Login successful", values.Success, &tc)
}

func (api *API) PasswordReset(_ http.ResponseWriter, r *http.Request) *ServerResponse {
	tc := r.Context().Value(values.ContextTracingKey).(tracing.Context)

	var req model.PasswordResetRequest
	if decodeErr := util.DecodeJSONBody(&tc, r.Body, &req); decodeErr != nil {
		return respondWithError(decodeErr, "unable to decode request", values.BadRequestBody, &tc)
	}
	if err := util.ValidateStruct(req); err != nil {
		return respondWithError(err, "Enter a valid email address.", values.BadRequestBody, &tc)
	}

	session, err := api.Deps.Accounts.RequestPasswordReset(r.Context(), req.Email)
	if err != nil {
		return api.fail(err, &tc)
	}
	return respond("An OTP has been sent to your email.", values.Success, session)
}

func (api *API) PasswordResetOTP(_ http.ResponseWriter, r *http.Request) *ServerResponse {
	tc := r.Context().Value(values.ContextTracingKey).(tracing.Context)

	var req model.PasswordResetOTPRequest
	if decodeErr := util.DecodeJSONBody(&tc, r.Body, &req); decodeErr != nil {
		return respondWithError(decodeErr, "unable to decode request", values.BadRequestBody, &tc)
	}
	if err := util.ValidateStruct(req); err != nil {
		return respondWithError(err, "session_id and a 6 digit otp are required", values.BadRequestBody, &tc)
	}

	if err := api.Deps.Accounts.VerifyPasswordReset(r.Context(), req.SessionID, req.OTP); err != nil {
		return api.fail(err, &tc)
	}
	return respond("OTP verified. Choose a new password.", values.Success, nil)
}

func (api *API) PasswordResetNew(_ http.ResponseWriter, r *http.Request) *ServerResponse {
	tc := r.Context().Value(values.ContextTracingKey).(tracing.Context)

	var req model.PasswordResetNewRequest
	if decodeErr := util.DecodeJSONBody(&tc, r.Body, &req); decodeErr != nil {
		return respondWithError(decodeErr, "unable to decode request", values.BadRequestBody, &tc)
	}
	if err := util.ValidateStruct(req); err != nil {
		return respondWithError(err, "session_id and both passwords are required", values.BadRequestBody, &tc)
	}

	if err := api.Deps.Accounts.CompletePasswordReset(r.Context(), req.SessionID, req.Password, req.Password2); err != nil {
		return api.fail(err, &tc)
	}
	return respond("Your password has been reset successfully. Please log in.", values.Success, nil)
}

func (api *API) loginResponse(user *model.User, message, status string, tc *tracing.Context) *ServerResponse {
	token, _, err := api.createToken(user.ID.String())
	if err != nil {
		return api.fail(err, tc)
	}
	return respond(message, status, model.LoginResponse{
		User: &model.LoginUserResponse{
			ID:       user.ID,
			Username: user.Username,
			Email:    user.Email,
		},
		Token: token,
	})
}
