// Package transferdelivery manages delivery layer of transfers.
package transferdelivery

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

// Service provides service layer interface needed by transfer delivery layer.
//
//go:generate mockgen -source http.go -destination http_mock.go -package transferdelivery
type Service interface {
	Preview(ctx context.Context, fromOwner string, arg domain.CreateTransferParams) (domain.TransferPreview, error)
	Transfer(ctx context.Context, fromOwner string, arg domain.CreateTransferParams) (domain.TransferTxResult, error)
	ListTransfers(ctx context.Context, owner string, pageSize, pageID int32) ([]domain.Transaction, error)
}

// Handler facilitates transfer delivery layer logic.
type Handler struct {
	service Service
}

// NewHandler returns transfer handler.
func NewHandler(ts Service) *Handler {
	return &Handler{service: ts}
}

type request struct {
	FromWalletID int64  `json:"from_wallet_id" binding:"required,min=1"`
	ToWalletID   int64  `json:"to_wallet_id" binding:"required,min=1"`
	Amount       string `json:"amount" binding:"required"`
	Confirmed    bool   `json:"confirmed"`
}

type data struct {
	Transfer domain.TransferTxResult `json:"transfer"`
}

type response struct {
	Data data `json:"data,omitempty"`
}

type confirmationResponse struct {
	Error   string                 `json:"error"`
	Preview domain.TransferPreview `json:"preview"`
}

type insufficientFundsResponse struct {
	Error     string `json:"error"`
	Available string `json:"available"`
	Required  string `json:"required"`
}

// Create handles http request to transfer funds between two wallets. A
// cross-currency transfer without the confirmed flag is answered with the
// current conversion preview instead of being committed.
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

	arg := domain.CreateTransferParams{
		FromWalletID: req.FromWalletID,
		ToWalletID:   req.ToWalletID,
		Amount:       req.Amount,
		Confirmed:    req.Confirmed,
	}

	result, err := h.service.Transfer(ctx, authPayload.Username, arg)
	if err != nil {
		l.Info().Err(err).Send()

		if err == domain.ErrConfirmationRequired {
			preview, perr := h.service.Preview(ctx, authPayload.Username, arg)
			if perr != nil {
				gctx.JSON(http.StatusInternalServerError, jsonresponse.Error(errorspkg.ErrInternal))
				return
			}

			gctx.JSON(http.StatusBadRequest, confirmationResponse{
				Error:   err.Error(),
				Preview: preview,
			})

			return
		}

		h.respondError(gctx, err)

		return
	}

	gctx.JSON(http.StatusCreated, response{Data: data{result}})
}

type previewData struct {
	Preview domain.TransferPreview `json:"preview"`
}

type previewResponse struct {
	Data previewData `json:"data,omitempty"`
}

// Preview handles http request to compute a prospective transfer outcome
// without moving funds.
func (h *Handler) Preview(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req request
	if err := gctx.ShouldBindJSON(&req); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, jsonresponse.Error(err))

		return
	}

	authPayload := gctx.MustGet(middleware.AuthPayloadKey).(*tokenpkg.Payload)

	preview, err := h.service.Preview(ctx, authPayload.Username, domain.CreateTransferParams{
		FromWalletID: req.FromWalletID,
		ToWalletID:   req.ToWalletID,
		Amount:       req.Amount,
	})
	if err != nil {
		l.Info().Err(err).Send()
		h.respondError(gctx, err)

		return
	}

	gctx.JSON(http.StatusOK, previewResponse{Data: previewData{preview}})
}

type listRequest struct {
	PageID   int32 `form:"page_id" binding:"required,min=1"`
	PageSize int32 `form:"page_size" binding:"required,min=1,max=100"`
}

type listData struct {
	Transfers []domain.Transaction `json:"transfers"`
}

type listResponse struct {
	Data listData `json:"data,omitempty"`
}

// List handles http request to list the requester's transfer history.
func (h *Handler) List(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req listRequest
	if err := gctx.ShouldBindQuery(&req); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, jsonresponse.Error(err))

		return
	}

	authPayload := gctx.MustGet(middleware.AuthPayloadKey).(*tokenpkg.Payload)

	transfers, err := h.service.ListTransfers(ctx, authPayload.Username, req.PageSize, req.PageID)
	if err != nil {
		gctx.JSON(http.StatusInternalServerError, jsonresponse.Error(errorspkg.ErrInternal))
		return
	}

	gctx.JSON(http.StatusOK, listResponse{Data: listData{transfers}})
}

func (h *Handler) respondError(gctx *gin.Context, err error) {
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
	case err == domain.ErrWalletOwnerMismatch:
		gctx.JSON(http.StatusUnauthorized, jsonresponse.Error(err))
	case err == domain.ErrSameWallet,
		err == domain.ErrRateUnavailable,
		err == moneypkg.ErrInvalidAmount,
		err == moneypkg.ErrNegativeAmount,
		errors.Is(err, domain.ErrInsufficientBalance):
		gctx.JSON(http.StatusBadRequest, jsonresponse.Error(err))
	default:
		gctx.JSON(http.StatusInternalServerError, jsonresponse.Error(errorspkg.ErrInternal))
	}
}
