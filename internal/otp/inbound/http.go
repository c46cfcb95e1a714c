package inbound

import (
	"context"

	"github.com/shandysiswandi/orvio/internal/otp/usecase"
	"github.com/shandysiswandi/orvio/internal/pkg/router"
)

type uc interface {
	SendOTP(ctx context.Context, in usecase.SendOTPInput) (*usecase.SendOTPOutput, error)
	Acknowledge(ctx context.Context, in usecase.AcknowledgeInput) (*usecase.AcknowledgeOutput, error)
	VerifyOTP(ctx context.Context, in usecase.VerifyOTPInput) (*usecase.VerifyOTPOutput, error)
	Stats(ctx context.Context, in usecase.StatsInput) (*usecase.StatsOutput, error)

	RegisterDevice(ctx context.Context, in usecase.RegisterDeviceInput) (*usecase.RegisterDeviceOutput, error)
	DeactivateDevice(ctx context.Context, in usecase.DeactivateDeviceInput) error
}

func RegisterHTTPEndpoint(r *router.Router, uc uc) {
	end := &HTTPEndpoint{uc: uc}

	// OTP Delivery (need authenticated)
	r.POST("/api/v1/otp/send", end.SendOTP)
	r.POST("/api/v1/otp/ack", end.Acknowledge)
	r.POST("/api/v1/otp/verify", end.VerifyOTP)
	r.GET("/api/v1/otp/stats", end.Stats)

	// Relay Devices (need authenticated)
	r.POST("/api/v1/devices", end.RegisterDevice)
	r.DELETE("/api/v1/devices/:id", end.DeactivateDevice)
}
