package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"paxum-payment-service/internal/client"
	"paxum-payment-service/internal/dto"
	"paxum-payment-service/internal/service"
)

type PaymentHandler struct {
	paymentService service.PaymentService
	logger         *zap.SugaredLogger
}

func NewPaymentHandler(paymentService service.PaymentService, logger *zap.SugaredLogger) *PaymentHandler {
	return &PaymentHandler{
		paymentService: paymentService,
		logger:         logger,
	}
}

func (h *PaymentHandler) CreatePayment(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.CreatePaymentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	resp, err := h.paymentService.CreateSession(ctx, &req)
	if err != nil {
		return h.mapCreateError(err)
	}

	return c.JSON(http.StatusCreated, resp)
}

func (h *PaymentHandler) mapCreateError(err error) error {
	var verr *service.ValidationError
	if errors.As(err, &verr) {
		return echo.NewHTTPError(http.StatusBadRequest, verr.Messages)
	}
	if errors.Is(err, client.ErrCredentialsNotConfigured) {
		return echo.NewHTTPError(http.StatusServiceUnavailable,
			"payment service not configured, contact support")
	}

	h.logger.Errorw("create payment failed", "error", err)
	return echo.NewHTTPError(http.StatusInternalServerError, "failed to create payment")
}

func (h *PaymentHandler) GetPaymentStatus(c echo.Context) error {
	ctx := c.Request().Context()

	refID := c.QueryParam("refId")
	if refID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "missing required parameter: refId")
	}

	resp, err := h.paymentService.GetStatus(ctx, refID)
	if err != nil {
		if errors.Is(err, service.ErrPaymentNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "payment not found")
		}
		h.logger.Errorw("payment status check failed", "ref_id", refID, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to check payment status")
	}

	return c.JSON(http.StatusOK, resp)
}

// PaxosWebhook always answers 200. The ack contract prevents provider retry
// storms; processing problems surface in logs and the event ledger instead.
func (h *PaymentHandler) PaxosWebhook(c echo.Context) error {
	ctx := c.Request().Context()

	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		h.logger.Warnw("webhook body read failed", "error", err)
		return c.JSON(http.StatusOK, &dto.WebhookAck{Received: true, Error: "unreadable body"})
	}

	ack := h.paymentService.HandleWebhook(ctx, c.Request().Header, body)

	return c.JSON(http.StatusOK, ack)
}
