// Package exchangedelivery manages delivery layer of currency exchanges.
package exchangedelivery

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/fintru/wallet-ledger/internal/domain"
	"github.com/fintru/wallet-ledger/internal/middleware"
	"github.com/fintru/wallet-ledger/pkg/errorspkg"
	"github.com/fintru/wallet-ledger/pkg/jsonresponse"
	"github.com/fintru/wallet-ledger/pkg/moneypkg"
	"github.com/fintru/wallet-ledger/pkg/tokenpkg"
)

// Service provides service layer interface needed by exchange delivery layer.
//
//go:generate mockgen -source http.go -destination http_mock.go -package exchangedelivery
type Service interface {
	Exchange(ctx context.Context, owner string, arg domain.CreateExchangeParams) (domain.ExchangeTxResult, error)
	Rates(ctx context.Context) (map[string]map[string]string, error)
}

// Handler facilitates exchange delivery layer logic.
type Handler struct {
	service Service
}

// NewHandler returns exchange handler.
func NewHandler(es Service) *Handler {
	return &Handler{service: es}
}

type request struct {
	FromWalletID int64  `json:"from_wallet_id" binding:"required,min=1"`
	ToWalletID   int64  `json:"to_wallet_id" binding:"required,min=1"`
	Amount       string `json:"amount" binding:"required"`
}

type data struct {
	Exchange domain.ExchangeTxResult `json:"exchange"`
}

type response struct {
	Data data `json:"data,omitempty"`
}

type insufficientFundsResponse struct {
	Error     string `json:"error"`
	Available string `json:"available"`
	Required  string `json:"required"`
}

// Create handles http request to exchange funds between two wallets of the
// requester.
func (h *Handler) Create(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req request
	if err := gctx.ShouldBindJSON(&req); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, jsonresponse.Error(err))

		return
	}

	authPayload := gctx.MustGet(middleware.AuthPayloadKey).(*tokenpkg.Payload)

	result, err := h.service.Exchange(ctx, authPayload.Username, domain.CreateExchangeParams{
		FromWalletID: req.FromWalletID,
		ToWalletID:   req.ToWalletID,
		Amount:       req.Amount,
	})
	if err != nil {
		l.Info().Err(err).Send()

		var insufficient *domain.InsufficientBalanceError
		if errors.As(err, &insufficient) {
			gctx.JSON(http.StatusBadRequest, insufficientFundsResponse{
				Error:     domain.ErrInsufficientBalance.Error(),
				Available: insufficient.Available,
				Required:  insufficient.Required,
			})

			return
		}

		switch {
		case err == domain.ErrWalletNotFound:
			gctx.JSON(http.StatusNotFound, jsonresponse.Error(err))
			return
		case err == domain.ErrWalletOwnerMismatch:
			gctx.JSON(http.StatusUnauthorized, jsonresponse.Error(err))
			return
		case err == domain.ErrSameWallet,
			err == domain.ErrSameCurrency,
			err == domain.ErrRateUnavailable,
			err == moneypkg.ErrInvalidAmount,
			err == moneypkg.ErrNegativeAmount,
			errors.Is(err, domain.ErrInsufficientBalance):
			gctx.JSON(http.StatusBadRequest, jsonresponse.Error(err))
			return
		}

		gctx.JSON(http.StatusInternalServerError, jsonresponse.Error(errorspkg.ErrInternal))

		return
	}

	gctx.JSON(http.StatusCreated, response{Data: data{result}})
}

type ratesData struct {
	Rates map[string]map[string]string `json:"rates"`
}

type ratesResponse struct {
	Data ratesData `json:"data,omitempty"`
}

// Rates handles http request to fetch the current conversion rate table for
// all supported currency pairs.
func (h *Handler) Rates(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	rates, err := h.service.Rates(ctx)
	if err != nil {
		gctx.JSON(http.StatusInternalServerError, jsonresponse.Error(errorspkg.ErrInternal))
		return
	}

	gctx.JSON(http.StatusOK, ratesResponse{Data: ratesData{rates}})
}
