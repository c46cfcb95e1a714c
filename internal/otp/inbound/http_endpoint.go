package inbound

import (
	"github.com/samber/lo"
	"github.com/shandysiswandi/orvio/internal/otp/usecase"
	"github.com/shandysiswandi/orvio/internal/pkg/router"
)

// HTTPEndpoint exposes HTTP handlers for OTP delivery and relay devices.
type HTTPEndpoint struct {
	uc uc
}

// SendOTP charges the caller and starts an OTP delivery transaction.
// @Summary Send an OTP
// @Description Charges the caller's credit balance, creates a transaction, and begins pushing the code to relay devices.
// @Tags OTP
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body SendOTPRequest true "Send payload"
// @Success 200 {object} router.successResponse{data=SendOTPResponse} "Transaction created"
// @Failure 400 {object} router.errorResponse "Invalid request body"
// @Failure 401 {object} router.errorResponse "Authentication required"
// @Failure 402 {object} router.errorResponse "Insufficient credits"
// @Failure 422 {object} router.errorResponse "Validation error"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/otp/send [post]
func (h *HTTPEndpoint) SendOTP(r *router.Request) (any, error) {
	var req SendOTPRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.SendOTP(r.Context(), usecase.SendOTPInput{
		PhoneNumber:      req.PhoneNumber,
		WebhookURL:       req.WebhookURL,
		WebhookSecret:    req.WebhookSecret,
		OTPExpirySeconds: req.OTPExpirySeconds,
		OrgName:          req.OrgName,
	})
	if err != nil {
		return nil, err
	}

	return SendOTPResponse{TID: resp.TID}, nil
}

// Acknowledge records a device-side delivery confirmation.
// @Summary Acknowledge delivery
// @Description Called by the relay device once the push arrived. Duplicate, expired, and wrong-device races come back as statuses.
// @Tags OTP
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body AcknowledgeRequest true "Ack payload"
// @Success 200 {object} router.successResponse{data=AcknowledgeResponse} "Ack status"
// @Failure 400 {object} router.errorResponse "Invalid request body"
// @Failure 401 {object} router.errorResponse "Authentication required"
// @Failure 422 {object} router.errorResponse "Validation error"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/otp/ack [post]
func (h *HTTPEndpoint) Acknowledge(r *router.Request) (any, error) {
	var req AcknowledgeRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.Acknowledge(r.Context(), usecase.AcknowledgeInput{
		TID:      req.TID,
		DeviceID: req.DeviceID,
	})
	if err != nil {
		return nil, err
	}

	return AcknowledgeResponse{Status: resp.Status.String()}, nil
}

// VerifyOTP checks the code the end user typed in.
// @Summary Verify an OTP
// @Description Compares the submitted code with the transaction's code. Expired and mismatched codes both report invalid.
// @Tags OTP
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body VerifyOTPRequest true "Verify payload"
// @Success 200 {object} router.successResponse{data=VerifyOTPResponse} "Verification status"
// @Failure 400 {object} router.errorResponse "Invalid request body"
// @Failure 401 {object} router.errorResponse "Authentication required"
// @Failure 422 {object} router.errorResponse "Validation error"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/otp/verify [post]
func (h *HTTPEndpoint) VerifyOTP(r *router.Request) (any, error) {
	var req VerifyOTPRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.VerifyOTP(r.Context(), usecase.VerifyOTPInput{
		TID:  req.TID,
		Code: req.Code,
	})
	if err != nil {
		return nil, err
	}

	status := "invalid"
	if resp.Verified {
		status = "verified"
	}

	return VerifyOTPResponse{Status: status}, nil
}

// Stats aggregates delivery counters across the caller's devices.
// @Summary Delivery statistics
// @Description Returns per-device delivery counters plus totals for the authenticated user.
// @Tags OTP
// @Produce json
// @Security BearerAuth
// @Success 200 {object} router.successResponse{data=StatsResponse} "Delivery statistics"
// @Failure 401 {object} router.errorResponse "Authentication required"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/otp/stats [get]
func (h *HTTPEndpoint) Stats(r *router.Request) (any, error) {
	resp, err := h.uc.Stats(r.Context(), usecase.StatsInput{})
	if err != nil {
		return nil, err
	}

	return StatsResponse{
		Devices: lo.Map(resp.Devices, func(dev usecase.DeviceStats, _ int) DeviceStatsResponse {
			return DeviceStatsResponse{
				DeviceID:           dev.DeviceID,
				Active:             dev.Active,
				AttemptsFailed:     dev.AttemptsFailed,
				SentAwaitingVerify: dev.SentAwaitingVerify,
				SentVerified:       dev.SentVerified,
				TotalSent:          dev.TotalSent,
				SuccessfulSends:    dev.SuccessfulSends,
				RetriedSends:       dev.RetriedSends,
			}
		}),
		TotalSent:        resp.TotalSent,
		TotalVerified:    resp.TotalVerified,
		TotalFailed:      resp.TotalFailed,
		OpenTransactions: resp.OpenTransactions,
	}, nil
}

// RegisterDevice adds the caller's device to the relay pool.
// @Summary Register relay device
// @Description Upserts the device, adds it to the active pool, and issues a device-scoped token for acknowledgments.
// @Tags Device
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body RegisterDeviceRequest true "Register payload"
// @Success 200 {object} router.successResponse{data=RegisterDeviceResponse} "Registered device"
// @Failure 400 {object} router.errorResponse "Invalid request body"
// @Failure 401 {object} router.errorResponse "Authentication required"
// @Failure 422 {object} router.errorResponse "Validation error"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/devices [post]
func (h *HTTPEndpoint) RegisterDevice(r *router.Request) (any, error) {
	var req RegisterDeviceRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.RegisterDevice(r.Context(), usecase.RegisterDeviceInput{
		DeviceID:  req.DeviceID,
		PushToken: req.PushToken,
	})
	if err != nil {
		return nil, err
	}

	return RegisterDeviceResponse{DeviceID: resp.DeviceID, DeviceToken: resp.DeviceToken}, nil
}

// DeactivateDevice removes a device from the relay pool.
// @Summary Deactivate relay device
// @Description Removes the device from the active delivery pool. Its counters remain queryable.
// @Tags Device
// @Produce json
// @Security BearerAuth
// @Param id path string true "Device ID"
// @Success 200 {object} router.successResponse{data=DeactivateDeviceResponse} "Device deactivated"
// @Failure 401 {object} router.errorResponse "Authentication required"
// @Failure 404 {object} router.errorResponse "Device not found"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/devices/{id} [delete]
func (h *HTTPEndpoint) DeactivateDevice(r *router.Request) (any, error) {
	err := h.uc.DeactivateDevice(r.Context(), usecase.DeactivateDeviceInput{
		DeviceID: r.GetParam("id"),
	})
	if err != nil {
		return nil, err
	}

	return DeactivateDeviceResponse{}, nil
}
