// Package walletdelivery manages delivery layer of wallets.
package walletdelivery

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

// Service provides service layer interface needed by wallet delivery layer.
//
//go:generate mockgen -source http.go -destination http_mock.go -package walletdelivery
type Service interface {
	Create(ctx context.Context, owner, currency string) (domain.Wallet, error)
	GetForOwner(ctx context.Context, owner string, id int64) (domain.Wallet, error)
	List(ctx context.Context, owner string, pageSize, pageID int32) ([]domain.Wallet, error)
	Deposit(ctx context.Context, owner string, walletID int64, amount string) (domain.Wallet, domain.Transaction, error)
	Withdraw(ctx context.Context, owner string, walletID int64, amount string) (domain.Wallet, domain.Transaction, error)
	ListTransactions(ctx context.Context, owner string, walletID int64, pageSize, pageID int32) ([]domain.Transaction, error)
}

// Handler facilitates wallet delivery layer logic.
type Handler struct {
	service Service
}

// NewHandler returns wallet handler.
func NewHandler(ws Service) *Handler {
	return &Handler{service: ws}
}

type data struct {
	Wallet domain.Wallet `json:"wallet"`
}

type response struct {
	Data data `json:"data,omitempty"`
}

type insufficientFundsResponse struct {
	Error     string `json:"error"`
	Available string `json:"available"`
	Required  string `json:"required"`
}

type createRequest struct {
	Currency string `json:"currency" binding:"required,currency"`
}

// Create handles http request to open a wallet.
func (h *Handler) Create(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req createRequest
	if err := gctx.ShouldBindJSON(&req); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, jsonresponse.Error(err))

		return
	}

	authPayload := gctx.MustGet(middleware.AuthPayloadKey).(*tokenpkg.Payload)

	wallet, err := h.service.Create(ctx, authPayload.Username, req.Currency)
	if err != nil {
		switch err {
		case domain.ErrUnsupportedCurrency:
			gctx.JSON(http.StatusBadRequest, jsonresponse.Error(err))
			return
		case domain.ErrCurrencyAlreadyExists:
			gctx.JSON(http.StatusConflict, jsonresponse.Error(err))
			return
		}

		gctx.JSON(http.StatusInternalServerError, jsonresponse.Error(errorspkg.ErrInternal))

		return
	}

	gctx.JSON(http.StatusCreated, response{Data: data{wallet}})
}

type getRequest struct {
	ID int64 `uri:"id" binding:"required,min=1"`
}

// Get handles http request to get a wallet.
func (h *Handler) Get(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req getRequest
	if err := gctx.ShouldBindUri(&req); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, jsonresponse.Error(err))

		return
	}

	authPayload := gctx.MustGet(middleware.AuthPayloadKey).(*tokenpkg.Payload)

	wallet, err := h.service.GetForOwner(ctx, authPayload.Username, req.ID)
	if err != nil {
		switch err {
		case domain.ErrWalletNotFound:
			gctx.JSON(http.StatusNotFound, jsonresponse.Error(err))
			return
		case domain.ErrWalletOwnerMismatch:
			gctx.JSON(http.StatusUnauthorized, jsonresponse.Error(err))
			return
		}

		gctx.JSON(http.StatusInternalServerError, jsonresponse.Error(errorspkg.ErrInternal))

		return
	}

	gctx.JSON(http.StatusOK, response{Data: data{wallet}})
}

type listRequest struct {
	PageID   int32 `form:"page_id" binding:"required,min=1"`
	PageSize int32 `form:"page_size" binding:"required,min=1,max=100"`
}

type dataWallets struct {
	Wallets []domain.Wallet `json:"wallets"`
}

type responseWallets struct {
	Data dataWallets `json:"data,omitempty"`
}

// List handles http request to list the requester's wallets.
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

	wallets, err := h.service.List(ctx, authPayload.Username, req.PageSize, req.PageID)
	if err != nil {
		gctx.JSON(http.StatusInternalServerError, jsonresponse.Error(errorspkg.ErrInternal))
		return
	}

	gctx.JSON(http.StatusOK, responseWallets{Data: dataWallets{wallets}})
}

type amountRequest struct {
	Amount string `json:"amount" binding:"required"`
}

type dataMovement struct {
	Wallet      domain.Wallet      `json:"wallet"`
	Transaction domain.Transaction `json:"transaction"`
}

type responseMovement struct {
	Data dataMovement `json:"data,omitempty"`
}

// Deposit handles http request to deposit funds into a wallet.
func (h *Handler) Deposit(gctx *gin.Context) {
	h.move(gctx, h.service.Deposit)
}

// Withdraw handles http request to withdraw funds from a wallet.
func (h *Handler) Withdraw(gctx *gin.Context) {
	h.move(gctx, h.service.Withdraw)
}

func (h *Handler) move(
	gctx *gin.Context,
	op func(ctx context.Context, owner string, walletID int64, amount string) (domain.Wallet, domain.Transaction, error),
) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var uri getRequest
	if err := gctx.ShouldBindUri(&uri); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, jsonresponse.Error(err))

		return
	}

	var req amountRequest
	if err := gctx.ShouldBindJSON(&req); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, jsonresponse.Error(err))

		return
	}

	authPayload := gctx.MustGet(middleware.AuthPayloadKey).(*tokenpkg.Payload)

	wallet, transaction, err := op(ctx, authPayload.Username, uri.ID, req.Amount)
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
		case err == moneypkg.ErrInvalidAmount,
			err == moneypkg.ErrNegativeAmount,
			errors.Is(err, domain.ErrInsufficientBalance):
			gctx.JSON(http.StatusBadRequest, jsonresponse.Error(err))
			return
		}

		gctx.JSON(http.StatusInternalServerError, jsonresponse.Error(errorspkg.ErrInternal))

		return
	}

	gctx.JSON(http.StatusCreated, responseMovement{Data: dataMovement{wallet, transaction}})
}

type listTransactionsRequest struct {
	WalletID int64 `form:"wallet_id" binding:"omitempty,min=1"`
	PageID   int32 `form:"page_id" binding:"required,min=1"`
	PageSize int32 `form:"page_size" binding:"required,min=1,max=100"`
}

type dataTransactions struct {
	Transactions []domain.Transaction `json:"transactions"`
}

type responseTransactions struct {
	Data dataTransactions `json:"data,omitempty"`
}

// ListTransactions handles http request to list the requester's transaction
// history, newest first.
func (h *Handler) ListTransactions(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req listTransactionsRequest
	if err := gctx.ShouldBindQuery(&req); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, jsonresponse.Error(err))

		return
	}

	authPayload := gctx.MustGet(middleware.AuthPayloadKey).(*tokenpkg.Payload)

	transactions, err := h.service.ListTransactions(ctx, authPayload.Username, req.WalletID, req.PageSize, req.PageID)
	if err != nil {
		switch err {
		case domain.ErrWalletNotFound:
			gctx.JSON(http.StatusNotFound, jsonresponse.Error(err))
			return
		case domain.ErrWalletOwnerMismatch:
			gctx.JSON(http.StatusUnauthorized, jsonresponse.Error(err))
			return
		}

		gctx.JSON(http.StatusInternalServerError, jsonresponse.Error(errorspkg.ErrInternal))

		return
	}

	gctx.JSON(http.StatusOK, responseTransactions{Data: dataTransactions{transactions}})
}
